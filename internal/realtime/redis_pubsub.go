package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// ChatChannel carries chat, comment and like events between instances.
	ChatChannel = "chaines:chat"
	eventTTL    = 5 * time.Second
)

// redisPayload is the message published to Redis for cross-instance fan-out.
type redisPayload struct {
	Data json.RawMessage `json:"data"`
	At   int64           `json:"at"`
}

// RedisPubSub implements ChatPublisher using Redis pub/sub.
type RedisPubSub struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisPubSub creates a Redis pub/sub bridge for chat events.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	return &RedisPubSub{client: client, channel: ChatChannel, logger: logger}
}

// PublishChatEvent publishes an encoded chat frame to every instance.
func (r *RedisPubSub) PublishChatEvent(ctx context.Context, payload []byte) error {
	body, err := json.Marshal(redisPayload{Data: payload, At: time.Now().UnixMilli()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, eventTTL)
	defer cancel()
	return r.client.Publish(ctx, r.channel, body).Err()
}

// Subscribe delivers every chat event on the channel to handler until ctx is done
// or the returned cancel is called.
func (r *RedisPubSub) Subscribe(ctx context.Context, handler func(payload []byte)) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(ctx)
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err = pubsub.Receive(ctx); err != nil {
		cancelCtx()
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var p redisPayload
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					r.logger.Warn("invalid chat event on redis", zap.Error(err))
					continue
				}
				handler(p.Data)
			}
		}
	}()
	return cancelCtx, nil
}
