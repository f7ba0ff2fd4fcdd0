package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/metrics"
	"github.com/alexeyproskuryakov/read/internal/model"
	"github.com/alexeyproskuryakov/read/internal/queue"
)

// supplyAspect is the singleton lease held by the dispatch loop, so that at
// most one dispatcher instance consumes the attention stream.
var supplyAspect = model.AspectKey{Kind: model.AspectSupply, Partition: "comments"}

// DispatcherService consumes "partition needs attention" notifications and
// keeps at most one live worker per partition. The live map is advisory and
// cheap; the worker's lease is the authoritative guard, so a dispatcher
// restart loses no correctness.
type DispatcherService struct {
	notify  queue.Queue
	workers *WorkerService
	leases  *LeaseService
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu   sync.Mutex
	live map[string]struct{}
	wg   sync.WaitGroup
}

// NewDispatcherService creates a dispatcher. metrics may be nil.
func NewDispatcherService(notify queue.Queue, workers *WorkerService, leases *LeaseService, m *metrics.Metrics, logger *zap.Logger) *DispatcherService {
	return &DispatcherService{
		notify:  notify,
		workers: workers,
		leases:  leases,
		metrics: m,
		logger:  logger,
		live:    make(map[string]struct{}),
	}
}

// Start claims the supply lease, subscribes to attention notifications, and
// dispatches workers until ctx is cancelled. It never blocks on anything
// beyond launching a worker.
func (d *DispatcherService) Start(ctx context.Context) error {
	if !d.leases.Start(ctx, supplyAspect) {
		return fmt.Errorf("dispatcher lease %s is owned elsewhere", supplyAspect)
	}

	partitions, err := d.notify.Attention(ctx)
	if err != nil {
		d.leases.Stop(ctx, supplyAspect)
		return fmt.Errorf("failed to subscribe to attention notifications: %w", err)
	}

	d.logger.Info("dispatcher started")

	go func() {
		for partition := range partitions {
			d.Dispatch(ctx, partition)
		}
		d.logger.Info("attention stream closed, dispatcher stopping")
		d.leases.Stop(context.Background(), supplyAspect)
	}()

	return nil
}

// Dispatch launches a worker for the partition unless one is already live.
func (d *DispatcherService) Dispatch(ctx context.Context, partition string) {
	d.mu.Lock()
	if _, ok := d.live[partition]; ok {
		d.mu.Unlock()
		d.logger.Debug("worker already live for partition",
			zap.String("partition", partition))
		return
	}
	d.live[partition] = struct{}{}
	d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.WorkersLive.Inc()
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("worker panicked",
					zap.String("partition", partition),
					zap.Any("panic", r))
			}
			d.mu.Lock()
			delete(d.live, partition)
			d.mu.Unlock()
			if d.metrics != nil {
				d.metrics.WorkersLive.Dec()
			}
		}()

		if err := d.workers.Run(ctx, partition); err != nil {
			d.logger.Error("partition run failed",
				zap.String("partition", partition),
				zap.Error(err))
		}
	}()
}

// LiveCount returns the number of currently live workers.
func (d *DispatcherService) LiveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// Wait blocks until all live workers have terminated.
func (d *DispatcherService) Wait() {
	d.wg.Wait()
}
