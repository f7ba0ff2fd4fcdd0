package store

import (
	"context"
	"errors"
	"time"

	"github.com/alexeyproskuryakov/read/internal/model"
)

// ErrNotFound is returned when a key or record is not found
var ErrNotFound = errors.New("not found")

// CheckpointStore holds per-partition load windows and resumable cursors.
// Every write is individually atomic; window commits and cursor writes need
// not be atomic with each other.
type CheckpointStore interface {
	// State returns the partition checkpoint, or nil if none exists yet.
	State(ctx context.Context, partition string) (*model.Checkpoint, error)

	// CommitWindow promotes the current window to previous, zeroes the
	// processed count, and writes the new current window.
	CommitWindow(ctx context.Context, partition string, window model.LoadWindow) error

	// SetCursor records the item entering evaluation and increments the
	// processed count. Returns the new processed count.
	SetCursor(ctx context.Context, partition string, item *model.Item) (int64, error)

	// SetStarted marks a run in progress; SetEnded marks it complete so the
	// next plan takes the extrapolation branch.
	SetStarted(ctx context.Context, partition string) error
	SetEnded(ctx context.Context, partition string) error

	// Reset drops all checkpoint state for the partition.
	Reset(ctx context.Context, partition string) error

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// LeaseStore coordinates exclusive ownership of aspects.
type LeaseStore interface {
	// TryStart atomically succeeds iff no start is currently recorded for
	// the aspect. It must fail closed: a store error yields false.
	TryStart(ctx context.Context, key model.AspectKey, owner string) (bool, error)

	// Stop records the aspect as ended and no longer started.
	Stop(ctx context.Context, key model.AspectKey) error

	// SetStatus is a best-effort observability update; it never affects
	// lease correctness.
	SetStatus(ctx context.Context, key model.AspectKey, status string, payload map[string]string) error

	// State returns the persisted lease state, or nil if none exists.
	State(ctx context.Context, key model.AspectKey) (*model.LeaseState, error)

	Ping(ctx context.Context) error
	Close() error
}

// ResultStore is the document store of candidate records, keyed uniquely by
// item id. Storage is bounded: acted records are the durable output and are
// migrated out before eviction.
type ResultStore interface {
	// InsertReady inserts a ready record if none exists for the item id.
	// Returns false when a record was already present.
	InsertReady(ctx context.Context, rec *model.CandidateRecord) (bool, error)

	// MarkActed flips an existing record to acted (creating one if the
	// record was already evicted), updating rather than duplicating.
	MarkActed(ctx context.Context, itemID, actor, textHash string) error

	// CanAct reports whether the actor has not yet acted on this item id
	// or this text hash.
	CanAct(ctx context.Context, actor, itemID, textHash string) (bool, error)

	// Record returns the record for an item id, or ErrNotFound.
	Record(ctx context.Context, itemID string) (*model.CandidateRecord, error)

	// UnactedRecords lists ready, not-yet-acted records, optionally
	// filtered by partition ("" means all).
	UnactedRecords(ctx context.Context, partition string) ([]*model.CandidateRecord, error)

	// ActedRecords lists acted records with acted_at >= since.
	ActedRecords(ctx context.Context, since time.Time) ([]*model.CandidateRecord, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ArchiveStore is the durable sink acted records are migrated into before
// the bounded result store evicts them.
type ArchiveStore interface {
	// ArchiveActed upserts acted records; re-archiving is a no-op.
	ArchiveActed(ctx context.Context, recs []*model.CandidateRecord) (int64, error)

	Ping(ctx context.Context) error
	Close()
}

// Cache is a small TTL cache used to keep duplicate-group re-evaluation
// cheap after a crash-resume.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
