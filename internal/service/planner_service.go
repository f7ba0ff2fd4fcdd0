package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/model"
	"github.com/alexeyproskuryakov/read/internal/source"
	"github.com/alexeyproskuryakov/read/internal/store"
)

// extrapolationFloor is the fetch size used when the throughput
// extrapolation rounds down to nothing.
const extrapolationFloor = 25

// PlannerService sizes the next fetch window of a partition from its
// checkpoint history and commits the resulting window.
type PlannerService struct {
	checkpoints  store.CheckpointStore
	contentSrc   source.ContentSource
	defaultLimit int64
	logger       *zap.Logger

	now func() int64
}

// NewPlannerService creates a window planner.
func NewPlannerService(
	checkpoints store.CheckpointStore,
	contentSrc source.ContentSource,
	defaultLimit int64,
	logger *zap.Logger,
) *PlannerService {
	return &PlannerService{
		checkpoints:  checkpoints,
		contentSrc:   contentSrc,
		defaultLimit: defaultLimit,
		logger:       logger,
		now:          func() int64 { return time.Now().Unix() },
	}
}

// Plan computes how many new items to request and the cursor timestamp below
// which items were already seen (0 when there is no cursor).
func (s *PlannerService) Plan(ctx context.Context, partition string) (int64, int64, error) {
	cp, err := s.checkpoints.State(ctx, partition)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read checkpoint for %s: %w", partition, err)
	}

	limit := s.defaultLimit
	var since int64

	if cp != nil {
		if cp.Ended {
			// The previous pass completed: extrapolate how much new
			// content accumulated since its end.
			elapsed := s.now() - cp.Window.EndTS
			span := cp.Window.EndTS - cp.Window.StartTS
			if span < 1 {
				span = 1
			}
			limit = int64(float64(elapsed) * float64(cp.Window.LoadedCount) / float64(span))
			if limit < 1 {
				limit = extrapolationFloor
			}
		} else if cp.Window.IsZero() {
			// Interrupted before any window was committed: there is no
			// remainder to resume, fetch a full window.
			limit = s.defaultLimit
		} else {
			// The previous pass was interrupted: resume its remainder.
			limit = cp.Window.LoadedCount - cp.ProcessedCount
			if limit < 0 {
				limit = 0
			}
		}

		if limit > s.defaultLimit {
			limit = s.defaultLimit
		}

		if cp.Current != nil {
			since = cp.Current.CreatedAt
		}
	}

	return limit, since, nil
}

// Load plans a window, fetches up to its limit, drops items at or before the
// cursor, and commits the new window bounds. An empty fetch leaves the
// window untouched so the next plan retries the same extrapolation.
func (s *PlannerService) Load(ctx context.Context, partition string) ([]model.Item, error) {
	limit, since, err := s.Plan(ctx, partition)
	if err != nil {
		return nil, err
	}

	fetched, err := s.contentSrc.FetchRecent(ctx, partition, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items for %s: %w", partition, err)
	}

	items := fetched[:0:0]
	for _, item := range fetched {
		if item.CreatedAt > since {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		s.logger.Debug("nothing new to load",
			zap.String("partition", partition),
			zap.Int64("limit", limit))
		return nil, nil
	}

	window := model.LoadWindow{
		StartTS:     items[0].CreatedAt,
		EndTS:       items[len(items)-1].CreatedAt,
		LoadedCount: int64(len(items)),
	}
	if err := s.checkpoints.CommitWindow(ctx, partition, window); err != nil {
		return nil, fmt.Errorf("failed to commit window for %s: %w", partition, err)
	}

	s.logger.Info("planned load window",
		zap.String("partition", partition),
		zap.Int64("limit", limit),
		zap.Int("loaded", len(items)),
		zap.Int64("window_start", window.StartTS),
		zap.Int64("window_end", window.EndTS))

	return items, nil
}
