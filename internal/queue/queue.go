// Package queue carries the two notification flows of the reader: inbound
// "partition needs attention" requests consumed by the dispatcher, and
// outbound "candidate found" events emitted by workers.
//
// Delivery is at-least-once; duplicate deliveries are tolerated downstream
// (the dispatcher dedups via its live-worker map, the worker via its lease).
package queue

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/config"
)

// Queue is the notification transport between the reader and its
// surroundings.
type Queue interface {
	// Attention returns a channel of partition names requesting attention.
	// The channel closes when ctx is cancelled or the transport fails.
	Attention(ctx context.Context) (<-chan string, error)

	// RequestAttention asks for a partition to be scanned.
	RequestAttention(ctx context.Context, partition string) error

	// PublishFound emits the acceptor item id of a found candidate.
	PublishFound(ctx context.Context, partition, itemID string) error

	Close() error
}

// New creates a queue for the configured backend.
func New(cfg *config.Config, logger *zap.Logger) (Queue, error) {
	switch cfg.Queue.Backend {
	case "redis":
		return NewRedisQueue(cfg.Redis, logger)
	case "nats":
		return NewNatsQueue(cfg.Nats, logger)
	default:
		return nil, fmt.Errorf("unsupported queue backend: %s", cfg.Queue.Backend)
	}
}
