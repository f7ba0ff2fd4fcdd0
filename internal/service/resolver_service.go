package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/model"
	"github.com/alexeyproskuryakov/read/internal/source"
	"github.com/alexeyproskuryakov/read/internal/store"
)

// ResolverService finds the duplicate group of an item and picks the single
// group member that should receive the action.
type ResolverService struct {
	contentSrc   source.ContentSource
	groupCache   store.Cache
	cacheTTL     time.Duration
	minCopyCount int
	logger       *zap.Logger
}

// NewResolverService creates a duplicate-group resolver.
func NewResolverService(
	contentSrc source.ContentSource,
	groupCache store.Cache,
	cacheTTL time.Duration,
	minCopyCount int,
	logger *zap.Logger,
) *ResolverService {
	return &ResolverService{
		contentSrc:   contentSrc,
		groupCache:   groupCache,
		cacheTTL:     cacheTTL,
		minCopyCount: minCopyCount,
		logger:       logger,
	}
}

// Group returns all items sharing the item's external reference, always
// including the item itself. Results are memoized briefly so re-evaluating
// an item after a crash-resume stays cheap and idempotent.
func (s *ResolverService) Group(ctx context.Context, item *model.Item) ([]model.Item, error) {
	cacheKey := "group:" + item.ExternalRef
	if cached, err := s.groupCache.Get(ctx, cacheKey); err == nil {
		if group, ok := cached.([]model.Item); ok {
			return group, nil
		}
	}

	query := fmt.Sprintf("url:'%s'", item.ExternalRef)
	found, err := s.contentSrc.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("group search failed for %s: %w", item.ID, err)
	}

	group := make([]model.Item, 0, len(found)+1)
	seen := make(map[string]struct{}, len(found)+1)
	for _, it := range append(found, *item) {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		group = append(group, it)
	}

	if err := s.groupCache.Set(ctx, cacheKey, group, s.cacheTTL); err != nil {
		s.logger.Debug("failed to cache group", zap.String("item", item.ID), zap.Error(err))
	}

	return group, nil
}

// PickAcceptor returns the earliest-created, non-archived group member whose
// child count is below half the group average, or nil. Groups smaller than
// the minimum copy count are never processed.
func (s *ResolverService) PickAcceptor(group []model.Item) *model.Item {
	if len(group) < s.minCopyCount {
		return nil
	}

	ordered := make([]model.Item, len(group))
	copy(ordered, group)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt < ordered[j].CreatedAt
	})

	var total int64
	for _, it := range ordered {
		total += it.ChildCount
	}
	halfAvg := float64(total) / float64(2*len(ordered))

	for i := range ordered {
		it := &ordered[i]
		if !it.Archived && float64(it.ChildCount) < halfAvg {
			return it
		}
	}

	return nil
}
