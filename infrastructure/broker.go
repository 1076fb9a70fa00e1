package infrastructure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"jobselect/config"
	"jobselect/domain"
)

// Broker carries ApplicationSubmitted events from intake to the resume worker.
type Broker interface {
	PublishApplicationSubmitted(ctx context.Context, evt domain.ApplicationSubmitted) error
	Consume(ctx context.Context, handler EventHandler) error
	Close()
}

// NewBroker connects the broker selected by BROKER.
func NewBroker(cfg *config.Config, logger *zap.Logger) (Broker, error) {
	switch cfg.Broker {
	case "rabbitmq":
		return NewRabbitMQ(cfg, logger)
	case "nats":
		return NewNATSBroker(cfg, logger)
	case "none":
		return NewLocalBroker(logger), nil
	default:
		return nil, fmt.Errorf("unsupported broker %q", cfg.Broker)
	}
}
