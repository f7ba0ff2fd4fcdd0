package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/model"
)

// Lease hash fields. Status payload entries carry the data prefix so they can
// be cleared wholesale when a new status replaces them.
const (
	leaseStarted = "started"
	leaseEnded   = "ended"
	leaseOwner   = "owner"
	leaseStatus  = "status"

	statusDataPrefix = "data:"
)

// tryStartScript atomically claims the lease iff it is not currently
// started. Returns 1 on success, 0 when the aspect is owned elsewhere.
var tryStartScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "started") == "1" then
	return 0
end
redis.call("HSET", KEYS[1], "started", "1", "ended", "0", "owner", ARGV[1])
return 1
`)

// RedisLeaseStore implements LeaseStore on redis hashes, one hash per aspect.
type RedisLeaseStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisLeaseStore creates a lease store and verifies the connection.
func NewRedisLeaseStore(host string, port int, password string, db int, logger *zap.Logger) (LeaseStore, error) {
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

	return &RedisLeaseStore{
		client: client,
		logger: logger,
	}, nil
}

// TryStart atomically claims the aspect. Fails closed: any store error
// yields false, since a missed start is retried later while a false success
// would allow double-processing.
func (s *RedisLeaseStore) TryStart(ctx context.Context, key model.AspectKey, owner string) (bool, error) {
	res, err := tryStartScript.Run(ctx, s.client, []string{key.String()}, owner).Int()
	if err != nil {
		return false, fmt.Errorf("failed to claim lease %s: %w", key, err)
	}
	return res == 1, nil
}

// Stop records the aspect as ended.
func (s *RedisLeaseStore) Stop(ctx context.Context, key model.AspectKey) error {
	err := s.client.HSet(ctx, key.String(), leaseStarted, "0", leaseEnded, "1").Err()
	if err != nil {
		return fmt.Errorf("failed to stop lease %s: %w", key, err)
	}
	return nil
}

// SetStatus records the status and payload for observability, replacing the
// previous status payload entirely so stale fields never survive. Errors are
// logged and swallowed; status never affects lease correctness.
func (s *RedisLeaseStore) SetStatus(ctx context.Context, key model.AspectKey, status string, payload map[string]string) error {
	keyStr := key.String()

	existing, err := s.client.HKeys(ctx, keyStr).Result()
	if err == nil {
		pipe := s.client.TxPipeline()
		if stale := staleDataFields(existing); len(stale) > 0 {
			pipe.HDel(ctx, keyStr, stale...)
		}
		pipe.HSet(ctx, keyStr, statusFields(status, payload)...)
		_, err = pipe.Exec(ctx)
	}
	if err != nil {
		s.logger.Warn("failed to set lease status",
			zap.String("aspect", keyStr),
			zap.String("status", status),
			zap.Error(err))
	}
	return nil
}

// statusFields renders a status and its payload as hash field pairs.
func statusFields(status string, payload map[string]string) []interface{} {
	fields := []interface{}{leaseStatus, status}
	for k, v := range payload {
		fields = append(fields, statusDataPrefix+k, v)
	}
	return fields
}

// staleDataFields returns the payload fields among existing hash fields.
func staleDataFields(existing []string) []string {
	var stale []string
	for _, f := range existing {
		if strings.HasPrefix(f, statusDataPrefix) {
			stale = append(stale, f)
		}
	}
	return stale
}

// State returns the persisted lease state, or nil if none exists.
func (s *RedisLeaseStore) State(ctx context.Context, key model.AspectKey) (*model.LeaseState, error) {
	fields, err := s.client.HGetAll(ctx, key.String()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read lease %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	return &model.LeaseState{
		Started: fields[leaseStarted] == "1",
		Ended:   fields[leaseEnded] == "1",
		Owner:   fields[leaseOwner],
		Status:  fields[leaseStatus],
	}, nil
}

// Ping checks the redis connection
func (s *RedisLeaseStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client
func (s *RedisLeaseStore) Close() error {
	return s.client.Close()
}
