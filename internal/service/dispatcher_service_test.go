package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/model"
	"github.com/alexeyproskuryakov/read/internal/store"
)

func newDispatcherFixture() (*DispatcherService, *MockLeaseStore, *MockQueue) {
	logger := zap.NewNop()
	leaseStore := new(MockLeaseStore)
	notify := new(MockQueue)

	// A worker whose only collaborator calls happen when the lease is
	// granted; contention makes Run return immediately.
	checkpoints := new(MockCheckpointStore)
	results := new(MockResultStore)
	src := new(MockContentSource)

	planner := NewPlannerService(checkpoints, src, 100, logger)
	resolver := NewResolverService(src, store.NewInMemoryCache(16), time.Minute, 3, logger)
	selector := NewSelectorService(src, 10, 5, 500, logger)
	leases := NewLeaseService(leaseStore, "tester", logger)
	worker := NewWorkerService(planner, resolver, selector, leases,
		checkpoints, results, notify, nil, logger)

	return NewDispatcherService(notify, worker, leases, nil, logger), leaseStore, notify
}

func TestDispatchSingleLiveWorkerPerPartition(t *testing.T) {
	d, leaseStore, _ := newDispatcherFixture()

	release := make(chan struct{})
	claimed := make(chan struct{})
	leaseStore.On("TryStart", mock.Anything, model.SearchAspect("x"), "tester").
		Run(func(args mock.Arguments) {
			close(claimed)
			<-release
		}).
		Return(false, nil).Once()

	ctx := context.Background()
	d.Dispatch(ctx, "x")
	<-claimed

	// Second dispatch while the first worker is live is a no-op.
	d.Dispatch(ctx, "x")
	assert.Equal(t, 1, d.LiveCount())

	close(release)
	d.Wait()
	assert.Equal(t, 0, d.LiveCount())
}

func TestDispatchDifferentPartitionsRunConcurrently(t *testing.T) {
	d, leaseStore, _ := newDispatcherFixture()

	release := make(chan struct{})
	leaseStore.On("TryStart", mock.Anything, mock.Anything, "tester").
		Run(func(args mock.Arguments) { <-release }).
		Return(false, nil)

	ctx := context.Background()
	d.Dispatch(ctx, "x")
	d.Dispatch(ctx, "y")

	assert.Eventually(t, func() bool { return d.LiveCount() == 2 },
		time.Second, 10*time.Millisecond)

	close(release)
	d.Wait()
	assert.Equal(t, 0, d.LiveCount())
}

func TestDispatchRecoversWorkerPanic(t *testing.T) {
	d, leaseStore, _ := newDispatcherFixture()

	leaseStore.On("TryStart", mock.Anything, mock.Anything, "tester").
		Run(func(args mock.Arguments) { panic("boom") }).
		Return(false, nil)

	d.Dispatch(context.Background(), "x")
	d.Wait()

	// The panic was observed and the partition is dispatchable again.
	assert.Equal(t, 0, d.LiveCount())
}

func TestDispatcherStartConsumesAttentionStream(t *testing.T) {
	d, leaseStore, notify := newDispatcherFixture()

	requests := make(chan string, 2)
	notify.On("Attention", mock.Anything).Return((<-chan string)(requests), nil)

	leaseStore.On("TryStart", mock.Anything, supplyAspect, "tester").
		Return(true, nil).Once()
	leaseStore.On("SetStatus", mock.Anything, supplyAspect, mock.Anything, mock.Anything).
		Return(nil)
	leaseStore.On("Stop", mock.Anything, supplyAspect).Return(nil)

	done := make(chan struct{})
	leaseStore.On("TryStart", mock.Anything, model.SearchAspect("x"), "tester").
		Run(func(args mock.Arguments) { close(done) }).
		Return(false, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.NoError(t, d.Start(ctx))

	requests <- "x"
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("attention request was not dispatched")
	}

	close(requests)
	d.Wait()
}

func TestDispatcherStartLeaseContention(t *testing.T) {
	d, leaseStore, _ := newDispatcherFixture()

	leaseStore.On("TryStart", mock.Anything, supplyAspect, "tester").
		Return(false, nil).Once()

	err := d.Start(context.Background())
	assert.Error(t, err)
	leaseStore.AssertExpectations(t)
}
