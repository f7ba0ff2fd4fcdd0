package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/model"
)

// Hash field names of the per-partition checkpoint key.
const (
	fieldStartTime   = "t_start"
	fieldEndTime     = "t_end"
	fieldLoadedCount = "loaded_count"

	fieldPrevStartTime   = "p_t_start"
	fieldPrevEndTime     = "p_t_end"
	fieldPrevLoadedCount = "p_loaded_count"

	fieldProcessedCount = "processed_count"
	fieldCurrent        = "current"

	fieldStarted = "started"
	fieldEnded   = "ended"
)

// RedisCheckpointStore implements CheckpointStore on redis hashes, one hash
// per partition.
type RedisCheckpointStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCheckpointStore creates a checkpoint store and verifies the
// connection.
func NewRedisCheckpointStore(host string, port int, password string, db int, logger *zap.Logger) (CheckpointStore, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCheckpointStore{
		client: client,
		logger: logger,
	}, nil
}

func checkpointKey(partition string) string {
	return fmt.Sprintf("load_state:%s", partition)
}

// State returns the partition checkpoint, or nil when nothing was persisted
// yet.
func (s *RedisCheckpointStore) State(ctx context.Context, partition string) (*model.Checkpoint, error) {
	fields, err := s.client.HGetAll(ctx, checkpointKey(partition)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	cp := &model.Checkpoint{
		Window: model.LoadWindow{
			StartTS:     parseInt(fields[fieldStartTime]),
			EndTS:       parseInt(fields[fieldEndTime]),
			LoadedCount: parseInt(fields[fieldLoadedCount]),
		},
		Prev: model.LoadWindow{
			StartTS:     parseInt(fields[fieldPrevStartTime]),
			EndTS:       parseInt(fields[fieldPrevEndTime]),
			LoadedCount: parseInt(fields[fieldPrevLoadedCount]),
		},
		ProcessedCount: parseInt(fields[fieldProcessedCount]),
		Started:        fields[fieldStarted] == "1",
		Ended:          fields[fieldEnded] == "1",
	}

	if raw, ok := fields[fieldCurrent]; ok && raw != "" && raw != "{}" {
		var item model.Item
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cursor item: %w", err)
		}
		cp.Current = &item
	}

	return cp, nil
}

// CommitWindow promotes the current window to previous and writes the new
// current window in a single pipeline.
func (s *RedisCheckpointStore) CommitWindow(ctx context.Context, partition string, window model.LoadWindow) error {
	key := checkpointKey(partition)

	prev, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to read checkpoint before commit: %w", err)
	}

	pipe := s.client.TxPipeline()
	if len(prev) > 0 {
		pipe.HSet(ctx, key,
			fieldPrevStartTime, prev[fieldStartTime],
			fieldPrevEndTime, prev[fieldEndTime],
			fieldPrevLoadedCount, prev[fieldLoadedCount],
			fieldProcessedCount, 0,
			fieldCurrent, "{}",
		)
	}
	pipe.HSet(ctx, key,
		fieldStartTime, window.StartTS,
		fieldEndTime, window.EndTS,
		fieldLoadedCount, window.LoadedCount,
	)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to commit window: %w", err)
	}

	return nil
}

// SetCursor writes the item entering evaluation and increments the processed
// count atomically.
func (s *RedisCheckpointStore) SetCursor(ctx context.Context, partition string, item *model.Item) (int64, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal cursor item: %w", err)
	}

	key := checkpointKey(partition)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fieldCurrent, data)
	incr := pipe.HIncrBy(ctx, key, fieldProcessedCount, 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to set cursor: %w", err)
	}

	return incr.Val(), nil
}

// SetStarted marks a run in progress.
func (s *RedisCheckpointStore) SetStarted(ctx context.Context, partition string) error {
	err := s.client.HSet(ctx, checkpointKey(partition), fieldStarted, "1", fieldEnded, "0").Err()
	if err != nil {
		return fmt.Errorf("failed to set started: %w", err)
	}
	return nil
}

// SetEnded marks the current window complete.
func (s *RedisCheckpointStore) SetEnded(ctx context.Context, partition string) error {
	err := s.client.HSet(ctx, checkpointKey(partition), fieldEnded, "1", fieldStarted, "0").Err()
	if err != nil {
		return fmt.Errorf("failed to set ended: %w", err)
	}
	return nil
}

// Reset drops all checkpoint state for the partition.
func (s *RedisCheckpointStore) Reset(ctx context.Context, partition string) error {
	if err := s.client.Del(ctx, checkpointKey(partition)).Err(); err != nil {
		return fmt.Errorf("failed to reset checkpoint: %w", err)
	}
	return nil
}

// Ping checks the redis connection
func (s *RedisCheckpointStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client
func (s *RedisCheckpointStore) Close() error {
	return s.client.Close()
}

func parseInt(v string) int64 {
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// Older deployments stored timestamps as floats.
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0
		}
		return int64(f)
	}
	return n
}
