package server

import (
	"context"
	"errors"
	"mutsamarket/app/comment"
	"mutsamarket/app/item"
	"mutsamarket/app/user"
	"mutsamarket/infra/media"
	"mutsamarket/internal/middleware"
	"mutsamarket/pkg/auth"
	"mutsamarket/pkg/httperror"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type MediaReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

type Pinger interface {
	Ping() error
}

// BrokerHealth reports whether the event broker connection is usable.
type BrokerHealth interface {
	IsHealthy() bool
}

type Options struct {
	Users        user.Repository
	Items        *item.Store
	Comments     *comment.Store
	Tokens       *auth.TokenIssuer
	Media        MediaReader
	Health       Pinger
	Broker       BrokerHealth
	StaticPrefix string
	MaxImageSize int64
}

// New builds the fiber app with every route registered.
func New(opts Options) *fiber.App {
	bodyLimit := 4 * 1024 * 1024
	if limit := int(opts.MaxImageSize) + 1024*1024; limit > bodyLimit {
		bodyLimit = limit
	}

	app := fiber.New(fiber.Config{
		IdleTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Concurrency:  256 * 1024,
		BodyLimit:    bodyLimit,
		ErrorHandler: writeError,
	})
	app.Use(middleware.NewRequestLoggerMiddleware())

	directory := user.NewDirectory(opts.Users)
	authenticated := middleware.NewAuthenticationMiddleware(opts.Tokens)

	app.Get("/health", health(opts.Health, opts.Broker))

	staticPrefix := strings.TrimSuffix(opts.StaticPrefix, "/")
	if staticPrefix == "" {
		staticPrefix = "/static"
	}
	app.Get(staticPrefix+"/:itemId/:file", serveImage(opts.Media))

	api := app.Group("/api/v1")

	users := api.Group("/users")
	users.Post("/register", handle[user.RegisterRequest, user.RegisterResponse](user.NewRegisterHandler(opts.Users)))
	users.Post("/login", handle[user.LoginRequest, user.LoginResponse](user.NewLoginHandler(directory, opts.Tokens)))

	api.Get("/items/all", handle[item.GetAllItemsRequest, item.GetAllItemsResponse](item.NewGetAllItemsHandler(opts.Items)))
	api.Get("/items", handle[item.GetItemsRequest, item.GetItemsResponse](item.NewGetItemsHandler(opts.Items)))
	api.Get("/items/:itemId", handle[item.GetItemRequest, item.GetItemResponse](item.NewGetItemHandler(opts.Items)))
	api.Get("/items/:itemId/comments", handle[comment.GetCommentsRequest, comment.GetCommentsResponse](comment.NewGetCommentsHandler(opts.Comments)))

	api.Post("/items", authenticated, handle[item.CreateItemRequest, item.CreateItemResponse](item.NewCreateItemHandler(opts.Items)))
	api.Put("/items/:itemId", authenticated, handle[item.UpdateItemRequest, item.UpdateItemResponse](item.NewUpdateItemHandler(opts.Items)))
	api.Put("/items/:itemId/image", authenticated, handleUpload(item.NewUploadItemImageHandler(opts.Items, opts.MaxImageSize)))
	api.Delete("/items/:itemId", authenticated, handle[item.DeleteItemRequest, item.DeleteItemResponse](item.NewDeleteItemHandler(opts.Items)))

	api.Post("/items/:itemId/comments", authenticated, handle[comment.CreateCommentRequest, comment.CreateCommentResponse](comment.NewCreateCommentHandler(opts.Comments)))
	api.Put("/items/:itemId/comments/:commentId", authenticated, handle[comment.UpdateCommentRequest, comment.UpdateCommentResponse](comment.NewUpdateCommentHandler(opts.Comments)))
	api.Put("/items/:itemId/comments/:commentId/reply", authenticated, handle[comment.ReplyCommentRequest, comment.ReplyCommentResponse](comment.NewReplyCommentHandler(opts.Comments)))
	api.Delete("/items/:itemId/comments/:commentId", authenticated, handle[comment.DeleteCommentRequest, comment.DeleteCommentResponse](comment.NewDeleteCommentHandler(opts.Comments)))

	return app
}

// health fails when the database is unreachable. A broken broker only
// degrades the report since event publishing is best effort.
func health(db Pinger, broker BrokerHealth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report := fiber.Map{"status": "ok"}

		if broker != nil {
			report["events"] = "ok"
			if !broker.IsHealthy() {
				report["status"] = "degraded"
				report["events"] = "unavailable"
			}
		}

		if db != nil {
			if err := db.Ping(); err != nil {
				zap.L().Error("Health check failed", zap.Error(err))
				report["status"] = "unavailable"
				report["database"] = "unavailable"
				return c.Status(fiber.StatusServiceUnavailable).JSON(report)
			}
		}

		return c.JSON(report)
	}
}

func serveImage(images MediaReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemID, err := c.ParamsInt("itemId")
		if err != nil || itemID <= 0 {
			return writeError(c, httperror.NotFound("media.not_found", "Image not found", nil))
		}

		file := c.Params("file")
		if file == "" || strings.ContainsAny(file, `/\`) || file == ".." {
			return writeError(c, httperror.NotFound("media.not_found", "Image not found", nil))
		}

		data, err := images.Get(c.UserContext(), c.Params("itemId")+"/"+file)
		if err != nil {
			if errors.Is(err, media.ErrNotFound) {
				return writeError(c, httperror.NotFound("media.not_found", "Image not found", nil))
			}
			return writeError(c, httperror.InternalServerError("media.read_failed", "Failed to read image", err))
		}

		c.Type(strings.TrimPrefix(filepath.Ext(file), "."))
		return c.Send(data)
	}
}
