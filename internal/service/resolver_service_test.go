package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/model"
	"github.com/alexeyproskuryakov/read/internal/store"
)

func newResolver(src *MockContentSource, minCopyCount int) *ResolverService {
	cache := store.NewInMemoryCache(16)
	return NewResolverService(src, cache, time.Minute, minCopyCount, zap.NewNop())
}

func TestGroupIncludesSelfAndDedups(t *testing.T) {
	item := model.Item{ID: "a", ExternalRef: "http://ext/1", Partition: "x"}

	src := new(MockContentSource)
	src.On("Search", mock.Anything, "url:'http://ext/1'").Return([]model.Item{
		{ID: "b", ExternalRef: "http://ext/1", Partition: "y"},
		{ID: "a", ExternalRef: "http://ext/1", Partition: "x"},
	}, nil)

	r := newResolver(src, 2)

	group, err := r.Group(context.Background(), &item)
	require.NoError(t, err)
	assert.Len(t, group, 2)

	ids := map[string]bool{}
	for _, it := range group {
		ids[it.ID] = true
	}
	assert.True(t, ids["a"])
	assert.True(t, ids["b"])
}

func TestGroupIsCached(t *testing.T) {
	item := model.Item{ID: "a", ExternalRef: "http://ext/1"}

	src := new(MockContentSource)
	src.On("Search", mock.Anything, mock.Anything).Return([]model.Item{}, nil).Once()

	r := newResolver(src, 2)

	_, err := r.Group(context.Background(), &item)
	require.NoError(t, err)
	_, err = r.Group(context.Background(), &item)
	require.NoError(t, err)

	src.AssertNumberOfCalls(t, "Search", 1)
}

func TestPickAcceptorHalfAverage(t *testing.T) {
	// child counts [2, 10, 2]: halfAvg = 14/6 ~= 2.33, so both items with
	// count 2 qualify and the earliest-created wins.
	group := []model.Item{
		{ID: "late", ChildCount: 2, CreatedAt: 300},
		{ID: "busy", ChildCount: 10, CreatedAt: 100},
		{ID: "early", ChildCount: 2, CreatedAt: 200},
	}

	r := newResolver(new(MockContentSource), 3)

	acceptor := r.PickAcceptor(group)
	require.NotNil(t, acceptor)
	assert.Equal(t, "early", acceptor.ID)
}

func TestPickAcceptorSkipsArchived(t *testing.T) {
	group := []model.Item{
		{ID: "a", ChildCount: 2, CreatedAt: 100, Archived: true},
		{ID: "b", ChildCount: 10, CreatedAt: 200},
		{ID: "c", ChildCount: 2, CreatedAt: 300},
	}

	r := newResolver(new(MockContentSource), 3)

	acceptor := r.PickAcceptor(group)
	require.NotNil(t, acceptor)
	assert.Equal(t, "c", acceptor.ID)
}

func TestPickAcceptorNoneBelowHalfAverage(t *testing.T) {
	group := []model.Item{
		{ID: "a", ChildCount: 5, CreatedAt: 100},
		{ID: "b", ChildCount: 5, CreatedAt: 200},
		{ID: "c", ChildCount: 5, CreatedAt: 300},
	}

	r := newResolver(new(MockContentSource), 3)

	// halfAvg = 15/6 = 2.5; every count is 5.
	assert.Nil(t, r.PickAcceptor(group))
}

func TestPickAcceptorGroupTooSmall(t *testing.T) {
	group := []model.Item{
		{ID: "a", ChildCount: 0, CreatedAt: 100},
		{ID: "b", ChildCount: 10, CreatedAt: 200},
	}

	r := newResolver(new(MockContentSource), 3)

	assert.Nil(t, r.PickAcceptor(group))
}
