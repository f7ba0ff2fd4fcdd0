package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/config"
)

const (
	attentionChannel = "reader:need_attention"
	foundListPrefix  = "reader:found"
)

// RedisQueue implements Queue on redis pub/sub for attention requests and a
// per-partition list for found candidates.
type RedisQueue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisQueue creates a redis-backed queue and verifies the connection.
func NewRedisQueue(cfg config.RedisConfig, logger *zap.Logger) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisQueue{client: client, logger: logger}, nil
}

// Attention subscribes to the attention channel and forwards partition
// names until ctx is cancelled.
func (q *RedisQueue) Attention(ctx context.Context) (<-chan string, error) {
	sub := q.client.Subscribe(ctx, attentionChannel)

	// Force the subscription to be established before returning.
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", attentionChannel, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// RequestAttention publishes a partition name on the attention channel.
func (q *RedisQueue) RequestAttention(ctx context.Context, partition string) error {
	if err := q.client.Publish(ctx, attentionChannel, partition).Err(); err != nil {
		return fmt.Errorf("failed to request attention for %s: %w", partition, err)
	}
	return nil
}

// PublishFound pushes the acceptor item id on the partition's found list.
func (q *RedisQueue) PublishFound(ctx context.Context, partition, itemID string) error {
	key := fmt.Sprintf("%s:%s", foundListPrefix, partition)
	if err := q.client.RPush(ctx, key, itemID).Err(); err != nil {
		return fmt.Errorf("failed to publish found candidate %s: %w", itemID, err)
	}
	return nil
}

// Close closes the redis client
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
