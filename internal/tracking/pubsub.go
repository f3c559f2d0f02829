package tracking

import (
	"context"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/angelmondragon/fooddash-backend/pkg/logger"
)

// PubSubPublisher publishes without waiting for the server ack. A failed send
// is logged and the ordering key resumed so later updates still flow.
type PubSubPublisher struct {
	publisher *gcppubsub.Publisher
	logg      *logger.Logger
}

// NewPubSubPublisher wraps the shared tracking topic handle.
func NewPubSubPublisher(p *gcppubsub.Publisher, logg *logger.Logger) *PubSubPublisher {
	return &PubSubPublisher{publisher: p, logg: logg}
}

func (p *PubSubPublisher) Publish(ctx context.Context, orderingKey string, data []byte, attrs map[string]string) {
	if p == nil || p.publisher == nil {
		return
	}
	result := p.publisher.Publish(ctx, &gcppubsub.Message{
		Data:        data,
		OrderingKey: orderingKey,
		Attributes:  attrs,
	})
	go func() {
		if _, err := result.Get(context.WithoutCancel(ctx)); err != nil {
			p.publisher.ResumePublish(orderingKey)
			if p.logg != nil {
				logCtx := p.logg.WithFields(context.WithoutCancel(ctx), map[string]any{
					"order_id": orderingKey,
					"error":    err.Error(),
				})
				p.logg.Warn(logCtx, "tracking.location.publish_failed")
			}
		}
	}()
}
