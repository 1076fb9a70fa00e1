package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"jobselect/config"
	"jobselect/domain"
)

const natsWorkerQueue = "resume-workers"

type NATSBroker struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

func NewNATSBroker(cfg *config.Config, logger *zap.Logger) (*NATSBroker, error) {
	opts := []nats.Option{
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}

	conn, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	logger.Info("connected to nats", zap.String("subject", cfg.NATSSubject))
	return &NATSBroker{conn: conn, subject: cfg.NATSSubject, logger: logger}, nil
}

func (b *NATSBroker) PublishApplicationSubmitted(ctx context.Context, evt domain.ApplicationSubmitted) error {
	_, span := tracer.Start(ctx, "NATS.PublishApplicationSubmitted")
	defer span.End()

	data, err := json.Marshal(evt)
	if err != nil {
		span.RecordError(err)
		return domain.Internal("marshal event", err)
	}

	span.SetAttributes(
		String("nats.subject", b.subject),
		Int("message.size", len(data)),
	)

	if err := b.conn.Publish(b.subject, data); err != nil {
		span.RecordError(err)
		b.logger.Error("failed to publish application event",
			zap.String("application_id", evt.ApplicationID),
			zap.Error(err))
		return domain.Internal("publish to nats", err)
	}

	b.logger.Debug("published application event",
		zap.String("application_id", evt.ApplicationID),
		zap.String("subject", b.subject))
	return nil
}

// Consume joins the worker queue group so each event is handled once across
// replicas. The subscription is drained when ctx is cancelled.
func (b *NATSBroker) Consume(ctx context.Context, handler EventHandler) error {
	sub, err := b.conn.QueueSubscribe(b.subject, natsWorkerQueue, func(msg *nats.Msg) {
		var evt domain.ApplicationSubmitted
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			b.logger.Warn("invalid application event", zap.Error(err))
			return
		}
		if err := handler(ctx, evt); err != nil {
			b.logger.Error("application event handler failed",
				zap.String("application_id", evt.ApplicationID),
				zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", b.subject, err)
	}

	go func() {
		<-ctx.Done()
		_ = sub.Drain()
	}()
	return nil
}

func (b *NATSBroker) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}
