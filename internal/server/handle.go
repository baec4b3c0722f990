package server

import (
	"context"
	"errors"
	"io"
	"mutsamarket/app/item"
	"mutsamarket/pkg/httperror"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Request any
type Response any

type HandlerInterface[R Request, Res Response] interface {
	Handle(ctx context.Context, req *R) (*Res, error)
}

func handle[R Request, Res Response](handler HandlerInterface[R, Res]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req R

		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return writeError(c, httperror.BadRequest(
				"request.invalid_body",
				"Invalid body",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ParamsParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_path_params",
				"Invalid path params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.QueryParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_query_params",
				"Invalid query params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ReqHeaderParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_headers",
				"Invalid headers",
				fiber.Map{"error": err.Error()},
			))
		}

		res, err := handler.Handle(c.UserContext(), &req)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(res)
	}
}

// handleUpload reads the multipart "image" part instead of a JSON body.
func handleUpload(handler *item.UploadItemImageHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req item.UploadItemImageRequest

		if err := c.ParamsParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_path_params",
				"Invalid path params",
				fiber.Map{"error": err.Error()},
			))
		}

		file, err := c.FormFile("image")
		if err != nil {
			return writeError(c, httperror.BadRequest(
				"upload.missing_file",
				"Image file is required (use 'image' field)",
				fiber.Map{"error": err.Error()},
			))
		}

		fileReader, err := file.Open()
		if err != nil {
			return writeError(c, httperror.InternalServerError("upload.file_open_error", "Failed to open uploaded file", err))
		}
		defer fileReader.Close()

		req.Data, err = io.ReadAll(fileReader)
		if err != nil {
			return writeError(c, httperror.InternalServerError("upload.file_read_error", "Failed to read file content", err))
		}
		req.Filename = file.Filename
		req.ContentType = file.Header.Get(fiber.HeaderContentType)

		res, err := handler.Handle(c.UserContext(), &req)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(res)
	}
}

func writeError(c *fiber.Ctx, err error) error {
	var httpErr *httperror.Error
	if errors.As(err, &httpErr) {
		if httpErr.Status == fiber.StatusNoContent {
			return c.SendStatus(fiber.StatusNoContent)
		}

		payload := fiber.Map{
			"code":    httpErr.Code,
			"message": httpErr.Message,
		}

		if httpErr.Details != nil {
			payload["details"] = httpErr.Details
		}

		if httpErr.Status >= fiber.StatusInternalServerError {
			zap.L().Error("Handler returned server error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		} else {
			zap.L().Warn("Handler returned client error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		}

		return c.Status(httpErr.Status).JSON(payload)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		zap.L().Warn("Fiber validation error", zap.String("message", fiberErr.Message), zap.Error(err))
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"code":    "request.invalid",
			"message": fiberErr.Message,
		})
	}

	zap.L().Error("Unhandled error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    "internal_server_error",
		"message": "Internal server error.",
	})
}
