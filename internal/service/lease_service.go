package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/model"
	"github.com/alexeyproskuryakov/read/internal/store"
)

// Lease status values.
const (
	StatusWork = "work"
	StatusEnd  = "end"
)

// LeaseService brackets partition runs with an exclusive lease so that two
// workers never process the same aspect concurrently.
type LeaseService struct {
	leaseStore store.LeaseStore
	owner      string
	logger     *zap.Logger
}

// NewLeaseService creates a lease service acting as the given owner.
func NewLeaseService(leaseStore store.LeaseStore, owner string, logger *zap.Logger) *LeaseService {
	return &LeaseService{
		leaseStore: leaseStore,
		owner:      owner,
		logger:     logger,
	}
}

// Start tries to claim the aspect. It fails closed: if the lease store is
// unreachable the claim is reported as lost, since a missed start is merely
// retried later while a false success would allow double-processing.
func (s *LeaseService) Start(ctx context.Context, key model.AspectKey) bool {
	started, err := s.leaseStore.TryStart(ctx, key, s.owner)
	if err != nil {
		s.logger.Warn("lease claim failed, assuming owned elsewhere",
			zap.String("aspect", key.String()),
			zap.Error(err))
		return false
	}
	if !started {
		return false
	}

	s.leaseStore.SetStatus(ctx, key, StatusWork, map[string]string{
		"state": "started",
		"by":    s.owner,
	})

	return true
}

// Stop releases the aspect.
func (s *LeaseService) Stop(ctx context.Context, key model.AspectKey) {
	if err := s.leaseStore.Stop(ctx, key); err != nil {
		s.logger.Error("failed to release lease",
			zap.String("aspect", key.String()),
			zap.Error(err))
		return
	}

	s.leaseStore.SetStatus(ctx, key, StatusEnd, map[string]string{
		"state": "stopped",
	})
}

// SetStatus records a best-effort observability status for the aspect.
func (s *LeaseService) SetStatus(ctx context.Context, key model.AspectKey, status string, payload map[string]string) {
	s.leaseStore.SetStatus(ctx, key, status, payload)
}
