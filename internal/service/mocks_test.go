package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/alexeyproskuryakov/read/internal/model"
)

// MockContentSource is a mock implementation of source.ContentSource
type MockContentSource struct {
	mock.Mock
}

func (m *MockContentSource) Search(ctx context.Context, query string) ([]model.Item, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockContentSource) FetchRecent(ctx context.Context, partition string, limit int64) ([]model.Item, error) {
	args := m.Called(ctx, partition, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockContentSource) Children(ctx context.Context, item *model.Item) ([]model.ChildEntry, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChildEntry), args.Error(1)
}

// MockCheckpointStore is a mock implementation of store.CheckpointStore
type MockCheckpointStore struct {
	mock.Mock
}

func (m *MockCheckpointStore) State(ctx context.Context, partition string) (*model.Checkpoint, error) {
	args := m.Called(ctx, partition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Checkpoint), args.Error(1)
}

func (m *MockCheckpointStore) CommitWindow(ctx context.Context, partition string, window model.LoadWindow) error {
	args := m.Called(ctx, partition, window)
	return args.Error(0)
}

func (m *MockCheckpointStore) SetCursor(ctx context.Context, partition string, item *model.Item) (int64, error) {
	args := m.Called(ctx, partition, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCheckpointStore) SetStarted(ctx context.Context, partition string) error {
	args := m.Called(ctx, partition)
	return args.Error(0)
}

func (m *MockCheckpointStore) SetEnded(ctx context.Context, partition string) error {
	args := m.Called(ctx, partition)
	return args.Error(0)
}

func (m *MockCheckpointStore) Reset(ctx context.Context, partition string) error {
	args := m.Called(ctx, partition)
	return args.Error(0)
}

func (m *MockCheckpointStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCheckpointStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockLeaseStore is a mock implementation of store.LeaseStore
type MockLeaseStore struct {
	mock.Mock
}

func (m *MockLeaseStore) TryStart(ctx context.Context, key model.AspectKey, owner string) (bool, error) {
	args := m.Called(ctx, key, owner)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeaseStore) Stop(ctx context.Context, key model.AspectKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockLeaseStore) SetStatus(ctx context.Context, key model.AspectKey, status string, payload map[string]string) error {
	args := m.Called(ctx, key, status, payload)
	return args.Error(0)
}

func (m *MockLeaseStore) State(ctx context.Context, key model.AspectKey) (*model.LeaseState, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LeaseState), args.Error(1)
}

func (m *MockLeaseStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLeaseStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockResultStore is a mock implementation of store.ResultStore
type MockResultStore struct {
	mock.Mock
}

func (m *MockResultStore) InsertReady(ctx context.Context, rec *model.CandidateRecord) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}

func (m *MockResultStore) MarkActed(ctx context.Context, itemID, actor, textHash string) error {
	args := m.Called(ctx, itemID, actor, textHash)
	return args.Error(0)
}

func (m *MockResultStore) CanAct(ctx context.Context, actor, itemID, textHash string) (bool, error) {
	args := m.Called(ctx, actor, itemID, textHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockResultStore) Record(ctx context.Context, itemID string) (*model.CandidateRecord, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CandidateRecord), args.Error(1)
}

func (m *MockResultStore) UnactedRecords(ctx context.Context, partition string) ([]*model.CandidateRecord, error) {
	args := m.Called(ctx, partition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.CandidateRecord), args.Error(1)
}

func (m *MockResultStore) ActedRecords(ctx context.Context, since time.Time) ([]*model.CandidateRecord, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.CandidateRecord), args.Error(1)
}

func (m *MockResultStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockResultStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockQueue is a mock implementation of queue.Queue
type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) Attention(ctx context.Context) (<-chan string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan string), args.Error(1)
}

func (m *MockQueue) RequestAttention(ctx context.Context, partition string) error {
	args := m.Called(ctx, partition)
	return args.Error(0)
}

func (m *MockQueue) PublishFound(ctx context.Context, partition, itemID string) error {
	args := m.Called(ctx, partition, itemID)
	return args.Error(0)
}

func (m *MockQueue) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockArchiveStore is a mock implementation of store.ArchiveStore
type MockArchiveStore struct {
	mock.Mock
}

func (m *MockArchiveStore) ArchiveActed(ctx context.Context, recs []*model.CandidateRecord) (int64, error) {
	args := m.Called(ctx, recs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockArchiveStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockArchiveStore) Close() {
	m.Called()
}
