package main

import (
	"context"
	"fmt"
	"mutsamarket/app/comment"
	"mutsamarket/app/item"
	"mutsamarket/app/user"
	"mutsamarket/infra/grpc"
	"mutsamarket/infra/media"
	"mutsamarket/infra/rabbitmq"
	"mutsamarket/infra/sqldb"
	"mutsamarket/internal/server"
	"mutsamarket/pkg/auth"
	"mutsamarket/pkg/aws"
	"mutsamarket/pkg/config"
	"mutsamarket/pkg/events"
	"mutsamarket/pkg/logger"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type imageStore interface {
	item.ImageStore
	server.MediaReader
}

func main() {
	appConfig := config.Read()

	flush, err := logger.Init(appConfig.IsProduction())
	if err != nil {
		panic(err)
	}
	defer flush()

	zap.L().Info("app starting...",
		zap.String("env", appConfig.AppEnv),
		zap.String("databaseDriver", appConfig.DatabaseDriver),
		zap.String("imageStorage", appConfig.ImageStorage),
	)

	db, err := sqldb.Connect(appConfig)
	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := sqldb.Migrate(context.Background(), db); err != nil {
		zap.L().Fatal("Failed to migrate database", zap.Error(err))
	}

	repository := sqldb.NewRepository(db)
	defer repository.Close()

	var images imageStore
	if appConfig.ImageStorage == config.StorageS3 {
		bucket := aws.NewS3Bucket(appConfig)
		defer bucket.Close()
		images = media.NewBucketStore(bucket)
	} else {
		images = media.NewLocalStore(appConfig.MediaDir)
	}

	var publisher events.Publisher
	var broker server.BrokerHealth
	if appConfig.RabbitMQURL != "" {
		rabbitPublisher, err := rabbitmq.NewPublisher(appConfig.RabbitMQURL, appConfig.ServiceName)
		if err != nil {
			zap.L().Warn("Event publishing disabled", zap.Error(err))
		} else {
			defer rabbitPublisher.Close()
			publisher = rabbitPublisher
			broker = rabbitPublisher
		}
	}

	directory := user.NewDirectory(repository)

	itemStore := item.NewStore(repository, directory, images, item.Options{
		StaticPrefix: appConfig.StaticPrefix,
		Service:      appConfig.ServiceName,
		Publisher:    publisher,
	})
	commentStore := comment.NewStore(repository, directory, comment.Options{
		Service:   appConfig.ServiceName,
		Publisher: publisher,
	})

	app := server.New(server.Options{
		Users:        repository,
		Items:        itemStore,
		Comments:     commentStore,
		Tokens:       auth.NewTokenIssuer(appConfig.JWTSecret, appConfig.JWTTTL, appConfig.ServiceName),
		Media:        images,
		Health:       repository,
		Broker:       broker,
		StaticPrefix: appConfig.StaticPrefix,
		MaxImageSize: appConfig.MaxImageSize(),
	})

	var grpcServer *grpc.Server
	if appConfig.GRPCPort != "" {
		grpcServer, err = grpc.NewServer(appConfig.GRPCPort)
		if err != nil {
			zap.L().Fatal("Failed to create gRPC server", zap.Error(err))
		}

		go func() {
			if err := grpcServer.Start(); err != nil {
				zap.L().Error("gRPC server stopped", zap.Error(err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitorDatabase(ctx, repository, grpcServer)

	go func() {
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", appConfig.Port)); err != nil {
			zap.L().Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	zap.L().Info("Server started on port", zap.String("port", appConfig.Port))

	gracefulShutdown(app, grpcServer)
}

// monitorDatabase logs pool stats and mirrors database reachability into the
// gRPC health status.
func monitorDatabase(ctx context.Context, repository *sqldb.Repository, grpcServer *grpc.Server) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := repository.Ping()
			if grpcServer != nil {
				grpcServer.SetServing(err == nil)
			}
			if err != nil {
				zap.L().Error("Database ping failed", zap.Error(err))
				continue
			}

			stats := repository.GetPoolStats()
			zap.L().Debug("Connection pool stats", zap.Any("stats", stats))
		}
	}
}

func gracefulShutdown(app *fiber.App, grpcServer *grpc.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		zap.L().Error("Error during server shutdown", zap.Error(err))
	}

	zap.L().Info("Server gracefully stopped")
}
