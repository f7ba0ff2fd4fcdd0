package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/model"
)

func TestLeaseStartSuccess(t *testing.T) {
	key := model.SearchAspect("x")

	leaseStore := new(MockLeaseStore)
	leaseStore.On("TryStart", mock.Anything, key, "w1").Return(true, nil)
	leaseStore.On("SetStatus", mock.Anything, key, StatusWork,
		map[string]string{"state": "started", "by": "w1"}).Return(nil)

	s := NewLeaseService(leaseStore, "w1", zap.NewNop())

	assert.True(t, s.Start(context.Background(), key))
	leaseStore.AssertExpectations(t)
}

func TestLeaseStartContention(t *testing.T) {
	key := model.SearchAspect("x")

	leaseStore := new(MockLeaseStore)
	leaseStore.On("TryStart", mock.Anything, key, "w1").Return(false, nil)

	s := NewLeaseService(leaseStore, "w1", zap.NewNop())

	assert.False(t, s.Start(context.Background(), key))
	leaseStore.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLeaseStartFailsClosed(t *testing.T) {
	key := model.SearchAspect("x")

	leaseStore := new(MockLeaseStore)
	leaseStore.On("TryStart", mock.Anything, key, "w1").
		Return(false, errors.New("store unreachable"))

	s := NewLeaseService(leaseStore, "w1", zap.NewNop())

	assert.False(t, s.Start(context.Background(), key))
}

func TestLeaseStop(t *testing.T) {
	key := model.SearchAspect("x")

	leaseStore := new(MockLeaseStore)
	leaseStore.On("Stop", mock.Anything, key).Return(nil)
	leaseStore.On("SetStatus", mock.Anything, key, StatusEnd,
		map[string]string{"state": "stopped"}).Return(nil)

	s := NewLeaseService(leaseStore, "w1", zap.NewNop())
	s.Stop(context.Background(), key)

	leaseStore.AssertExpectations(t)
}
