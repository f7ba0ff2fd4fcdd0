package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/model"
)

func TestArchiveRunOnceMigratesActedRecords(t *testing.T) {
	recs := []*model.CandidateRecord{
		{ItemID: "a", Acted: true, ActedAt: time.Now()},
		{ItemID: "b", Acted: true, ActedAt: time.Now()},
	}

	results := new(MockResultStore)
	results.On("ActedRecords", mock.Anything, mock.Anything).Return(recs, nil)

	archive := new(MockArchiveStore)
	archive.On("ArchiveActed", mock.Anything, recs).Return(int64(2), nil)

	s := NewArchiveService(results, archive, time.Minute, time.Hour, 100, nil, zap.NewNop())
	s.RunOnce(context.Background())

	archive.AssertCalled(t, "ArchiveActed", mock.Anything, recs)
}

func TestArchiveRunOnceBatches(t *testing.T) {
	recs := []*model.CandidateRecord{
		{ItemID: "a"}, {ItemID: "b"}, {ItemID: "c"},
	}

	results := new(MockResultStore)
	results.On("ActedRecords", mock.Anything, mock.Anything).Return(recs, nil)

	archive := new(MockArchiveStore)
	archive.On("ArchiveActed", mock.Anything, recs[0:2]).Return(int64(2), nil)
	archive.On("ArchiveActed", mock.Anything, recs[2:3]).Return(int64(1), nil)

	s := NewArchiveService(results, archive, time.Minute, time.Hour, 2, nil, zap.NewNop())
	s.RunOnce(context.Background())

	archive.AssertNumberOfCalls(t, "ArchiveActed", 2)
}

func TestArchiveRunOnceToleratesListFailure(t *testing.T) {
	results := new(MockResultStore)
	results.On("ActedRecords", mock.Anything, mock.Anything).
		Return(nil, errors.New("mongo unreachable"))

	archive := new(MockArchiveStore)

	s := NewArchiveService(results, archive, time.Minute, time.Hour, 100, nil, zap.NewNop())
	s.RunOnce(context.Background())

	archive.AssertNotCalled(t, "ArchiveActed", mock.Anything, mock.Anything)
}
