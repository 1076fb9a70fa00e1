package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"jobselect/config"
	"jobselect/domain"
)

// EventHandler processes one ApplicationSubmitted event.
type EventHandler func(ctx context.Context, evt domain.ApplicationSubmitted) error

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *zap.Logger
}

// NewRabbitMQ connects and declares the durable extraction queue.
func NewRabbitMQ(cfg *config.Config, logger *zap.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.RabbitMQQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	logger.Info("connected to rabbitmq", zap.String("queue", q.Name))
	return &RabbitMQ{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

func (r *RabbitMQ) PublishApplicationSubmitted(ctx context.Context, evt domain.ApplicationSubmitted) error {
	ctx, span := tracer.Start(ctx, "RabbitMQ.PublishApplicationSubmitted")
	defer span.End()

	body, err := json.Marshal(evt)
	if err != nil {
		span.RecordError(err)
		return domain.Internal("marshal event", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = r.channel.PublishWithContext(
		ctx,
		"",           // exchange
		r.queue.Name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		span.RecordError(err)
		r.logger.Error("failed to publish application event",
			zap.String("application_id", evt.ApplicationID),
			zap.Error(err))
		return domain.Internal("publish to rabbitmq", err)
	}
	return nil
}

// Consume delivers events to handler until ctx is cancelled. Malformed
// messages are dropped; handled messages are acked whatever the outcome since
// failures are recorded on the extract row.
func (r *RabbitMQ) Consume(ctx context.Context, handler EventHandler) error {
	msgs, err := r.channel.ConsumeWithContext(
		ctx,
		r.queue.Name,
		"",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			var evt domain.ApplicationSubmitted
			if err := json.Unmarshal(d.Body, &evt); err != nil {
				r.logger.Warn("invalid application event", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			if err := handler(ctx, evt); err != nil {
				r.logger.Error("application event handler failed",
					zap.String("application_id", evt.ApplicationID),
					zap.Error(err))
			}
			_ = d.Ack(false)
		}
	}()
	return nil
}

func (r *RabbitMQ) Close() {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}
