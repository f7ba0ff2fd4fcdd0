package model

import "fmt"

// LoadWindow captures the bounds of one fetch pass over a partition.
// It exists only to extrapolate throughput for the next pass.
type LoadWindow struct {
	StartTS     int64
	EndTS       int64
	LoadedCount int64
}

// IsZero reports whether the window has never been written.
func (w LoadWindow) IsZero() bool {
	return w.StartTS == 0 && w.EndTS == 0 && w.LoadedCount == 0
}

// Checkpoint is the durable per-partition progress state: the current and
// previous load windows, the resumable cursor, and the run start/end flags.
type Checkpoint struct {
	Window LoadWindow
	Prev   LoadWindow

	// Current is the last item that entered evaluation. ProcessedCount
	// increments exactly once per item entering evaluation.
	Current        *Item
	ProcessedCount int64

	Started bool
	Ended   bool
}

// LeaseState is the persisted start/stop flag pair for one aspect.
// Started and Ended are never both true.
type LeaseState struct {
	Started bool
	Ended   bool
	Owner   string
	Status  string
}

// AspectKind names a partition-scoped activity guarded by a lease.
type AspectKind string

const (
	// AspectSearch guards the per-partition comment search run.
	AspectSearch AspectKind = "search"
	// AspectSupply guards the singleton dispatcher loop.
	AspectSupply AspectKind = "supply"
)

// AspectKey identifies a lease. The key is structured so nothing ever needs
// to parse a partition name back out of a string.
type AspectKey struct {
	Kind      AspectKind
	Partition string
}

// SearchAspect returns the lease key for a partition's search run.
func SearchAspect(partition string) AspectKey {
	return AspectKey{Kind: AspectSearch, Partition: partition}
}

// String renders the redis key for this aspect.
func (k AspectKey) String() string {
	return fmt.Sprintf("lease:%s:%s", k.Kind, k.Partition)
}
