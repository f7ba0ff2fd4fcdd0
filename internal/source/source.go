// Package source defines the boundary to the external content service. The
// client is assumed to handle its own authentication and outbound rate
// limiting.
package source

import (
	"context"

	"github.com/alexeyproskuryakov/read/internal/model"
)

// ContentSource fetches items and their children from the content service.
type ContentSource interface {
	// Search returns all items matching the query (used with an
	// external-ref query to find duplicate groups).
	Search(ctx context.Context, query string) ([]model.Item, error)

	// FetchRecent returns up to limit items of a partition ordered
	// ascending by creation time.
	FetchRecent(ctx context.Context, partition string, limit int64) ([]model.Item, error)

	// Children returns an item's child entries in their natural,
	// site-defined order.
	Children(ctx context.Context, item *model.Item) ([]model.ChildEntry, error)
}
