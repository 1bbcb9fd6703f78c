package notify

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Channel carries change events between contexts. It replaces the
// transient storage-key trick older clients used for the same purpose.
const Channel = "estatecrm.changes"

// RedisNotifier broadcasts change events over a Redis pub/sub channel.
type RedisNotifier struct {
	client *redis.Client
	logger *log.Logger
}

// NewRedis connects to Redis and verifies reachability. Callers should
// fall back to Nop when this fails; live cross-context updates are an
// optional capability.
func NewRedis(ctx context.Context, addr, password string, db int, logger *log.Logger) (*RedisNotifier, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisNotifier{client: client, logger: logger}, nil
}

func (n *RedisNotifier) Available() bool { return true }

func (n *RedisNotifier) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, Channel, payload).Err()
}

// Subscribe consumes events until ctx is done. Undecodable payloads are
// logged and dropped; the worst case is a missed refresh.
func (n *RedisNotifier) Subscribe(ctx context.Context, handler func(Event)) {
	sub := n.client.Subscribe(ctx, Channel)
	go func() {
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					n.logger.Printf("notify: dropping malformed event: %v", err)
					continue
				}
				handler(event)
			}
		}
	}()
}

// Close releases the Redis connection.
func (n *RedisNotifier) Close() error { return n.client.Close() }
