package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/metrics"
	"github.com/alexeyproskuryakov/read/internal/store"
)

// ArchiveService periodically migrates acted records out of the bounded
// result store into the durable archive before eviction can lose them.
type ArchiveService struct {
	results  store.ResultStore
	archive  store.ArchiveStore
	interval time.Duration
	lookback time.Duration
	batch    int
	metrics  *metrics.Metrics
	logger   *zap.Logger

	stopCh chan struct{}
}

// NewArchiveService creates an archive service. metrics may be nil.
func NewArchiveService(
	results store.ResultStore,
	archive store.ArchiveStore,
	interval, lookback time.Duration,
	batch int,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ArchiveService {
	if interval <= 0 {
		interval = time.Minute
	}
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	if batch <= 0 {
		batch = 100
	}

	return &ArchiveService{
		results:  results,
		archive:  archive,
		interval: interval,
		lookback: lookback,
		batch:    batch,
		metrics:  m,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the migration loop.
func (s *ArchiveService) Start() {
	s.logger.Info("starting archive service",
		zap.Duration("interval", s.interval),
		zap.Duration("lookback", s.lookback),
		zap.Int("batch", s.batch))

	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), s.interval)
				s.RunOnce(ctx)
				cancel()
			case <-s.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the migration loop.
func (s *ArchiveService) Stop() {
	close(s.stopCh)
	s.logger.Info("archive service stopped")
}

// RunOnce migrates one pass of recently acted records.
func (s *ArchiveService) RunOnce(ctx context.Context) {
	since := time.Now().Add(-s.lookback)

	recs, err := s.results.ActedRecords(ctx, since)
	if err != nil {
		s.logger.Error("failed to list acted records", zap.Error(err))
		if s.metrics != nil {
			s.metrics.ArchiveErrors.Inc()
		}
		return
	}
	if len(recs) == 0 {
		return
	}

	var total int64
	for start := 0; start < len(recs); start += s.batch {
		end := start + s.batch
		if end > len(recs) {
			end = len(recs)
		}

		archived, err := s.archive.ArchiveActed(ctx, recs[start:end])
		total += archived
		if err != nil {
			s.logger.Error("failed to archive acted records",
				zap.Int("batch_start", start),
				zap.Error(err))
			if s.metrics != nil {
				s.metrics.ArchiveErrors.Inc()
			}
			return
		}
	}

	if total > 0 {
		s.logger.Info("archived acted records", zap.Int64("count", total))
		if s.metrics != nil {
			s.metrics.RecordsArchived.Add(float64(total))
		}
	}
}
