package queue

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/config"
)

const (
	attentionSubject  = "reader.need_attention"
	foundSubjectFmt   = "reader.found.%s"
	attentionQueueGrp = "reader-dispatchers"
)

// NatsQueue implements Queue on plain NATS subjects. Attention requests use
// a queue group so that at most one dispatcher instance receives each
// request.
type NatsQueue struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewNatsQueue connects to the NATS server.
func NewNatsQueue(cfg config.NatsConfig, logger *zap.Logger) (*NatsQueue, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("reader"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return &NatsQueue{conn: conn, logger: logger}, nil
}

// Attention subscribes to the attention subject and forwards partition
// names until ctx is cancelled.
func (q *NatsQueue) Attention(ctx context.Context) (<-chan string, error) {
	msgs := make(chan *nats.Msg, 64)
	sub, err := q.conn.ChanQueueSubscribe(attentionSubject, attentionQueueGrp, msgs)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", attentionSubject, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer func() {
			if err := sub.Unsubscribe(); err != nil {
				q.logger.Warn("failed to unsubscribe", zap.Error(err))
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- string(msg.Data):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// RequestAttention publishes a partition name on the attention subject.
func (q *NatsQueue) RequestAttention(ctx context.Context, partition string) error {
	if err := q.conn.Publish(attentionSubject, []byte(partition)); err != nil {
		return fmt.Errorf("failed to request attention for %s: %w", partition, err)
	}
	return nil
}

// PublishFound emits the acceptor item id on the partition's found subject.
func (q *NatsQueue) PublishFound(ctx context.Context, partition, itemID string) error {
	subject := fmt.Sprintf(foundSubjectFmt, partition)
	if err := q.conn.Publish(subject, []byte(itemID)); err != nil {
		return fmt.Errorf("failed to publish found candidate %s: %w", itemID, err)
	}
	return nil
}

// Close drains and closes the connection
func (q *NatsQueue) Close() error {
	return q.conn.Drain()
}
