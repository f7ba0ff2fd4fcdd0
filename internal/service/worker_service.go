package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/metrics"
	"github.com/alexeyproskuryakov/read/internal/model"
	"github.com/alexeyproskuryakov/read/internal/queue"
	"github.com/alexeyproskuryakov/read/internal/store"
)

// stopTimeout bounds the STOPPING transition when the run context is
// already cancelled.
const stopTimeout = 10 * time.Second

// WorkerService runs one full pass over a partition: plan a window, iterate
// its items, checkpoint progress before each evaluation, and emit accepted
// candidates. The whole run is bracketed by the partition's search lease.
type WorkerService struct {
	planner     *PlannerService
	resolver    *ResolverService
	selector    *SelectorService
	leases      *LeaseService
	checkpoints store.CheckpointStore
	results     store.ResultStore
	notify      queue.Queue
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewWorkerService creates a partition worker. metrics may be nil.
func NewWorkerService(
	planner *PlannerService,
	resolver *ResolverService,
	selector *SelectorService,
	leases *LeaseService,
	checkpoints store.CheckpointStore,
	results store.ResultStore,
	notify queue.Queue,
	m *metrics.Metrics,
	logger *zap.Logger,
) *WorkerService {
	return &WorkerService{
		planner:     planner,
		resolver:    resolver,
		selector:    selector,
		leases:      leases,
		checkpoints: checkpoints,
		results:     results,
		notify:      notify,
		metrics:     m,
		logger:      logger,
	}
}

// Run executes one partition pass. Lease contention is a normal outcome, not
// an error. The STOPPING transition (window marked ended, lease released)
// always executes, even on error or cancellation.
func (s *WorkerService) Run(ctx context.Context, partition string) error {
	key := model.SearchAspect(partition)

	if !s.leases.Start(ctx, key) {
		s.logger.Info("partition is owned elsewhere, skipping run",
			zap.String("partition", partition))
		if s.metrics != nil {
			s.metrics.LeaseConflicts.WithLabelValues(partition).Inc()
		}
		return nil
	}

	started := time.Now()
	if s.metrics != nil {
		s.metrics.RunsStarted.WithLabelValues(partition).Inc()
	}

	var runErr error
	defer func() {
		// STOPPING runs on its own context so a cancelled run still
		// marks the window ended and releases the lease.
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()

		if err := s.checkpoints.SetEnded(stopCtx, partition); err != nil {
			s.logger.Error("failed to mark window ended",
				zap.String("partition", partition),
				zap.Error(err))
		}
		s.leases.Stop(stopCtx, key)

		outcome := "ok"
		if runErr != nil {
			outcome = "error"
		}
		if s.metrics != nil {
			s.metrics.RunsFinished.WithLabelValues(partition, outcome).Inc()
			s.metrics.RunDuration.WithLabelValues(partition).Observe(time.Since(started).Seconds())
		}
	}()

	items, err := s.planner.Load(ctx, partition)
	if err != nil {
		runErr = fmt.Errorf("failed to plan partition %s: %w", partition, err)
		return runErr
	}

	s.leases.SetStatus(ctx, key, StatusWork, map[string]string{
		"retrieved": strconv.Itoa(len(items)),
	})
	if err := s.checkpoints.SetStarted(ctx, partition); err != nil {
		runErr = fmt.Errorf("failed to mark run started for %s: %w", partition, err)
		return runErr
	}

	s.logger.Info("starting partition run",
		zap.String("partition", partition),
		zap.Int("items", len(items)))

	for i := range items {
		// Cooperative cancellation point between items.
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			return runErr
		default:
		}

		item := &items[i]

		// Checkpoint before evaluation: a crash here resumes at or
		// after this item, re-evaluating at most one item.
		if _, err := s.checkpoints.SetCursor(ctx, partition, item); err != nil {
			s.logger.Error("failed to write cursor, skipping item",
				zap.String("partition", partition),
				zap.String("item", item.ID),
				zap.Error(err))
			continue
		}
		if s.metrics != nil {
			s.metrics.ItemsProcessed.WithLabelValues(partition).Inc()
		}

		// A single bad item never aborts the whole run.
		if err := s.evaluate(ctx, partition, key, item); err != nil {
			s.logger.Error("item evaluation failed",
				zap.String("partition", partition),
				zap.String("item", item.ID),
				zap.Error(err))
			if s.metrics != nil {
				s.metrics.ItemErrors.WithLabelValues(partition).Inc()
			}
		}
	}

	return nil
}

// evaluate resolves the item's duplicate group, picks the acceptor, and
// tries each other group member as a donor until one yields a qualifying
// remark.
func (s *WorkerService) evaluate(ctx context.Context, partition string, key model.AspectKey, item *model.Item) error {
	group, err := s.resolver.Group(ctx, item)
	if err != nil {
		return err
	}

	acceptor := s.resolver.PickAcceptor(group)
	if acceptor == nil {
		return nil
	}

	for i := range group {
		donor := &group[i]
		if donor.ID == acceptor.ID || donor.Partition == acceptor.Partition {
			continue
		}

		entry, err := s.selector.Select(ctx, donor, acceptor)
		if err != nil {
			return err
		}
		if entry == nil {
			continue
		}

		s.logger.Info("found candidate remark",
			zap.String("partition", partition),
			zap.String("acceptor", acceptor.ID),
			zap.String("donor", donor.ID))

		rec := &model.CandidateRecord{
			ItemID:        acceptor.ID,
			Ready:         true,
			Partition:     partition,
			Text:          entry.Body,
			ReferenceLink: acceptor.Permalink,
		}
		inserted, err := s.results.InsertReady(ctx, rec)
		if err != nil {
			return fmt.Errorf("failed to store candidate for %s: %w", acceptor.ID, err)
		}
		if !inserted {
			// Already handled on a previous evaluation.
			return nil
		}

		s.leases.SetStatus(ctx, key, StatusWork, map[string]string{
			"state": "found",
			"for":   acceptor.ID,
		})
		if s.metrics != nil {
			s.metrics.CandidatesFound.WithLabelValues(partition).Inc()
		}

		if err := s.notify.PublishFound(ctx, partition, acceptor.ID); err != nil {
			s.logger.Warn("failed to publish found candidate",
				zap.String("acceptor", acceptor.ID),
				zap.Error(err))
		}

		return nil
	}

	return nil
}
