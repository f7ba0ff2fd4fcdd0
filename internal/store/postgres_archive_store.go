package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexeyproskuryakov/read/internal/model"
)

// PostgresArchiveStore implements ArchiveStore using PostgreSQL.
type PostgresArchiveStore struct {
	pool *pgxpool.Pool
}

// NewPostgresArchiveStore connects to postgres and ensures the archive table
// exists.
func NewPostgresArchiveStore(host string, port int, database, user, password string, maxConns int32) (*PostgresArchiveStore, error) {
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?pool_max_conns=%d",
		user, password, host, port, database, maxConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresArchiveStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresArchiveStore) ensureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS acted_records (
			item_id        TEXT PRIMARY KEY,
			partition      TEXT NOT NULL,
			text           TEXT NOT NULL,
			reference_link TEXT,
			text_hash      TEXT NOT NULL,
			actor          TEXT NOT NULL,
			acted_at       TIMESTAMPTZ NOT NULL,
			archived_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure archive schema: %w", err)
	}
	return nil
}

// ArchiveActed upserts acted records into the archive table. Re-archiving a
// record is a no-op. Returns the number of newly archived records.
func (s *PostgresArchiveStore) ArchiveActed(ctx context.Context, recs []*model.CandidateRecord) (int64, error) {
	query := `
		INSERT INTO acted_records (
			item_id, partition, text, reference_link, text_hash, actor, acted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (item_id) DO NOTHING
	`

	var archived int64
	for _, rec := range recs {
		tag, err := s.pool.Exec(ctx, query,
			rec.ItemID,
			rec.Partition,
			rec.Text,
			rec.ReferenceLink,
			rec.TextHash,
			rec.Actor,
			rec.ActedAt,
		)
		if err != nil {
			return archived, fmt.Errorf("failed to archive record %s: %w", rec.ItemID, err)
		}
		archived += tag.RowsAffected()
	}

	return archived, nil
}

// Ping checks the postgres connection
func (s *PostgresArchiveStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool
func (s *PostgresArchiveStore) Close() {
	s.pool.Close()
}
