package main

import (
	"context"
	"errors"
	"mutsamarket/infra/media"
	"mutsamarket/infra/rabbitmq"
	"mutsamarket/internal/consumers"
	"mutsamarket/pkg/aws"
	"mutsamarket/pkg/config"
	"mutsamarket/pkg/events"
	"mutsamarket/pkg/logger"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	appConfig := config.Read()

	flush, err := logger.Init(appConfig.IsProduction())
	if err != nil {
		panic(err)
	}
	defer flush()

	zap.L().Info("Market media worker starting...",
		zap.String("serviceName", appConfig.ServiceName),
		zap.String("imageStorage", appConfig.ImageStorage),
	)

	if appConfig.RabbitMQURL == "" {
		zap.L().Fatal("RABBITMQ_URL is required for worker service")
	}

	var store consumers.MediaDeleter
	if appConfig.ImageStorage == config.StorageS3 {
		bucket := aws.NewS3Bucket(appConfig)
		defer bucket.Close()
		store = media.NewBucketStore(bucket)
	} else {
		store = media.NewLocalStore(appConfig.MediaDir)
	}

	cleanup := consumers.NewMediaCleanupHandler(store, appConfig.StaticPrefix)

	// queue name: {service}.{purpose}.{events}.{version}
	consumer, err := rabbitmq.NewConsumer(appConfig.RabbitMQURL, rabbitmq.ConsumerConfig{
		Exchange:       events.ItemExchange,
		QueueName:      appConfig.ServiceName + ".media.item.deleted.v1",
		RoutingKeys:    []string{events.ItemDeletedEvent + "." + events.EventVersionV1},
		ServiceName:    appConfig.ServiceName,
		PrefetchCount:  10,
		WorkerPoolSize: 4,
	})
	if err != nil {
		zap.L().Fatal("Failed to create item consumer", zap.Error(err))
	}
	defer consumer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	zap.L().Info("Worker service started. Waiting for events...", zap.String("exchange", events.ItemExchange))

	if err := consumer.Consume(ctx, cleanup.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		zap.L().Error("Item consumer stopped", zap.Error(err))
	}

	zap.L().Info("Worker service stopped gracefully")
}
