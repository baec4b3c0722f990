package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mutsamarket/pkg/events"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const handleTimeout = 30 * time.Second

type EventHandler func(ctx context.Context, event *events.Event) error

type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	queueName   string
	serviceName string
	workers     int
}

type ConsumerConfig struct {
	Exchange       string   // e.g. "market.item"
	QueueName      string   // e.g. "market.media.item.deleted.v1"
	RoutingKeys    []string // e.g. ["item.deleted.v1"]
	ServiceName    string
	PrefetchCount  int // defaults to 10
	WorkerPoolSize int // defaults to 1
}

// NewConsumer declares the exchange, the queue and a dead letter queue bound
// to the same routing keys on "<exchange>.dlx".
func NewConsumer(url string, config ConsumerConfig) (*Consumer, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := setupQueue(channel, config); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	workers := config.WorkerPoolSize
	if workers <= 0 {
		workers = 1
	}

	zap.L().Info("RabbitMQ consumer created successfully",
		zap.String("queue", config.QueueName),
		zap.String("exchange", config.Exchange),
		zap.Strings("routingKeys", config.RoutingKeys),
		zap.Int("workers", workers),
	)

	return &Consumer{
		conn:        conn,
		channel:     channel,
		queueName:   config.QueueName,
		serviceName: config.ServiceName,
		workers:     workers,
	}, nil
}

func setupQueue(channel *amqp.Channel, config ConsumerConfig) error {
	prefetchCount := config.PrefetchCount
	if prefetchCount == 0 {
		prefetchCount = 10
	}
	if err := channel.Qos(prefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := declareTopic(channel, config.Exchange); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	dlxName := config.Exchange + ".dlx"
	if err := declareTopic(channel, dlxName); err != nil {
		return fmt.Errorf("failed to declare DLX: %w", err)
	}

	queue, err := channel.QueueDeclare(
		config.QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-dead-letter-exchange": dlxName},
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	dlqName := config.QueueName + ".dlq"
	if _, err := channel.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}

	for _, routingKey := range config.RoutingKeys {
		if err := channel.QueueBind(dlqName, routingKey, dlxName, false, nil); err != nil {
			return fmt.Errorf("failed to bind DLQ: %w", err)
		}
		if err := channel.QueueBind(queue.Name, routingKey, config.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	return nil
}

// Consume dispatches deliveries to handler on up to WorkerPoolSize goroutines
// and blocks until ctx is cancelled or the delivery channel closes.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		c.serviceName, // consumer tag
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	zap.L().Info("Started consuming messages", zap.String("queue", c.queueName))

	var wg sync.WaitGroup
	defer wg.Wait()

	slots := make(chan struct{}, c.workers)

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Consumer context cancelled, stopping...")
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				zap.L().Warn("Message channel closed")
				return errors.New("message channel closed")
			}

			select {
			case slots <- struct{}{}:
			case <-ctx.Done():
				_ = msg.Nack(false, true)
				return ctx.Err()
			}

			wg.Add(1)
			go func(msg amqp.Delivery) {
				defer func() {
					<-slots
					wg.Done()
				}()
				handleDelivery(ctx, c.queueName, msg, handler)
			}(msg)
		}
	}
}

// Acknowledger is the subset of amqp.Delivery used to settle a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(ctx context.Context, queue string, msg amqp.Delivery, handler EventHandler) {
	traceID, _ := msg.Headers["x-trace-id"].(string)
	service, _ := msg.Headers["x-service"].(string)

	zap.L().Info("Received message",
		zap.String("queue", queue),
		zap.String("routingKey", msg.RoutingKey),
		zap.String("traceId", traceID),
		zap.String("sourceService", service),
	)

	Dispatch(ctx, msg.Body, msg, handler)
}

// Dispatch decodes body into an event, runs handler and settles the message.
// Malformed bodies and handler failures are nacked without requeue so they
// land in the dead letter queue.
func Dispatch(ctx context.Context, body []byte, ack Acknowledger, handler EventHandler) {
	var event events.Event
	if err := json.Unmarshal(body, &event); err != nil {
		zap.L().Error("Failed to unmarshal event", zap.Error(err))
		_ = ack.Nack(false, false)
		return
	}

	processCtx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	if err := handler(processCtx, &event); err != nil {
		zap.L().Error("Failed to process event",
			zap.Error(err),
			zap.String("event", event.Event),
			zap.String("traceId", event.TraceID),
		)
		_ = ack.Nack(false, false)
		return
	}

	if err := ack.Ack(false); err != nil {
		zap.L().Error("Failed to acknowledge message",
			zap.Error(err),
			zap.String("traceId", event.TraceID),
		)
		return
	}

	zap.L().Info("Successfully processed event",
		zap.String("event", event.Event),
		zap.String("traceId", event.TraceID),
	)
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			zap.L().Error("Failed to close channel", zap.Error(err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			zap.L().Error("Failed to close connection", zap.Error(err))
			return err
		}
	}
	zap.L().Info("RabbitMQ consumer closed")
	return nil
}
