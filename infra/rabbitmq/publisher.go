package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"mutsamarket/pkg/events"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Publisher implements events.Publisher over a single confirm-mode channel.
type Publisher struct {
	conn    *amqp.Connection
	service string

	mu       sync.Mutex
	channel  *amqp.Channel
	confirms chan amqp.Confirmation
	declared map[string]bool
}

var _ events.Publisher = (*Publisher)(nil)

func NewPublisher(url, service string) (*Publisher, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.Confirm(false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	zap.L().Info("RabbitMQ publisher connected successfully")

	return &Publisher{
		conn:     conn,
		service:  service,
		channel:  channel,
		confirms: channel.NotifyPublish(make(chan amqp.Confirmation, 1)),
		declared: make(map[string]bool),
	}, nil
}

// Publish sends event to exchange under its routing key and waits for the
// broker to confirm it. Publishes are serialized so confirms pair up with
// their messages.
func (p *Publisher) Publish(ctx context.Context, exchange string, event *events.Event, headers events.Headers) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	service := headers.Service
	if service == "" {
		service = p.service
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.Timestamp,
		Headers: amqp.Table{
			"x-trace-id":       headers.TraceID,
			"x-correlation-id": headers.CorrelationID,
			"x-service":        service,
		},
	}
	routingKey := event.GetRoutingKey()

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[exchange] {
		if err := declareTopic(p.channel, exchange); err != nil {
			return fmt.Errorf("failed to declare exchange: %w", err)
		}
		p.declared[exchange] = true
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.channel.PublishWithContext(publishCtx, exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	select {
	case confirm, ok := <-p.confirms:
		if !ok {
			return errors.New("publisher channel closed")
		}
		if !confirm.Ack {
			return errors.New("message was not acknowledged by broker")
		}
	case <-publishCtx.Done():
		return fmt.Errorf("publish confirmation timeout: %w", publishCtx.Err())
	}

	zap.L().Debug("Event published",
		zap.String("exchange", exchange),
		zap.String("routingKey", routingKey),
		zap.String("traceId", headers.TraceID),
	)

	return nil
}

func (p *Publisher) IsHealthy() bool {
	if p == nil || p.conn == nil || p.channel == nil {
		return false
	}
	return !p.conn.IsClosed() && !p.channel.IsClosed()
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			zap.L().Error("Failed to close channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			zap.L().Error("Failed to close connection", zap.Error(err))
			return err
		}
	}
	zap.L().Info("RabbitMQ publisher closed")
	return nil
}
