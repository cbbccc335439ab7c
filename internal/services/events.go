package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/HammerMeetNail/slotswap/internal/logging"
	"github.com/HammerMeetNail/slotswap/internal/models"
)

const swapEventChannelPrefix = "swap-events:"

func swapEventChannel(userID uuid.UUID) string {
	return swapEventChannelPrefix + userID.String()
}

// RedisEventBus fans swap events out over redis pub/sub, one channel per user.
type RedisEventBus struct {
	client *redis.Client
}

func NewRedisEventBus(client *redis.Client) *RedisEventBus {
	return &RedisEventBus{client: client}
}

func (b *RedisEventBus) Publish(ctx context.Context, userID uuid.UUID, event models.SwapEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding swap event: %w", err)
	}
	if err := b.client.Publish(ctx, swapEventChannel(userID), payload).Err(); err != nil {
		return fmt.Errorf("publishing swap event: %w", err)
	}
	return nil
}

// Subscribe streams events addressed to userID until ctx is done or the
// returned close function is called.
func (b *RedisEventBus) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan models.SwapEvent, func() error, error) {
	pubsub := b.client.Subscribe(ctx, swapEventChannel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribing to swap events: %w", err)
	}

	events := make(chan models.SwapEvent)
	go func() {
		defer close(events)
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event models.SwapEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logging.Warn("Dropping malformed swap event", map[string]interface{}{
						"channel": msg.Channel,
						"error":   err.Error(),
					})
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, pubsub.Close, nil
}
