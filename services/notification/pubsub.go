package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"tuwi/models"
)

// RedisPublisher publishes booking events on a Redis channel that the
// realtime layer subscribes to.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) BookingCreated(ctx context.Context, b models.Booking) error {
	return p.Publish(ctx, NewBookingEvent(models.EventBookingCreated, b))
}

func (p *RedisPublisher) Publish(ctx context.Context, evt models.BookingEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", evt.Type, err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", evt.Type, p.channel, err)
	}
	return nil
}
