package infrastructure

import (
	"context"

	"go.uber.org/zap"

	"jobselect/domain"
)

// LocalBroker delivers events in-process when no external broker is configured.
type LocalBroker struct {
	events chan domain.ApplicationSubmitted
	logger *zap.Logger
}

func NewLocalBroker(logger *zap.Logger) *LocalBroker {
	return &LocalBroker{events: make(chan domain.ApplicationSubmitted, 256), logger: logger}
}

// PublishApplicationSubmitted enqueues evt, failing if the buffer is full.
func (b *LocalBroker) PublishApplicationSubmitted(ctx context.Context, evt domain.ApplicationSubmitted) error {
	select {
	case b.events <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return domain.Internal("local event queue is full", nil)
	}
}

// Consume handles events on a single goroutine until ctx is cancelled.
func (b *LocalBroker) Consume(ctx context.Context, handler EventHandler) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-b.events:
				if err := handler(ctx, evt); err != nil {
					b.logger.Error("application event handler failed",
						zap.String("application_id", evt.ApplicationID),
						zap.Error(err))
				}
			}
		}
	}()
	return nil
}

func (b *LocalBroker) Close() {}
