package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

// RedisBroker publishes events on one pub/sub channel per identity, so any
// server instance can serve a subscriber.
type RedisBroker struct {
	client *redis.Client
	prefix string
	logger *utils.Logger
}

func NewRedisBroker(ctx context.Context, addr, password, prefix string, logger *utils.Logger) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBroker{
		client: client,
		prefix: prefix,
		logger: logger,
	}, nil
}

func (b *RedisBroker) channel(identity models.Identity) string {
	return channelName(b.prefix, identity)
}

func channelName(prefix string, identity models.Identity) string {
	return prefix + ":" + ownerKey(identity)
}

func (b *RedisBroker) Publish(ctx context.Context, event SummaryEvent) error {
	identity := recordIdentity(event.Summary)
	if identity.IsZero() {
		return errors.New("event has no owner")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel(identity), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, identity models.Identity) (<-chan SummaryEvent, error) {
	if identity.IsZero() {
		return nil, errors.New("subscription requires an identity")
	}

	pubsub := b.client.Subscribe(ctx, b.channel(identity))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan SummaryEvent, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event SummaryEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warn("Dropping undecodable event", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- event:
				default:
				}
			}
		}
	}()

	return out, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}
