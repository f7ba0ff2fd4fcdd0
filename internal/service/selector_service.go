package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/model"
	"github.com/alexeyproskuryakov/read/internal/source"
)

// maxSkip caps how many of a donor's most-reactive children are skipped.
const maxSkip = 34

// SelectorService walks a donor's children and picks the first entry that is
// plausible, novel, and not already present on the acceptor.
type SelectorService struct {
	contentSrc source.ContentSource
	shiftPart  int64
	minScore   int64
	maxScore   int64
	logger     *zap.Logger
}

// NewSelectorService creates a candidate selector with inclusive donor score
// bounds.
func NewSelectorService(
	contentSrc source.ContentSource,
	shiftPart, minScore, maxScore int64,
	logger *zap.Logger,
) *SelectorService {
	return &SelectorService{
		contentSrc: contentSrc,
		shiftPart:  shiftPart,
		minScore:   minScore,
		maxScore:   maxScore,
		logger:     logger,
	}
}

// Select returns the first qualifying child of the donor, or nil when none
// qualifies. Callers must ensure donor and acceptor are distinct items in
// distinct partitions.
func (s *SelectorService) Select(ctx context.Context, donor, acceptor *model.Item) (*model.ChildEntry, error) {
	// The first children of a reactive donor are the most visible ones;
	// reusing those would be too recognizable. A donor with too few
	// children to skip past them is not worth touching at all.
	skip := donor.ChildCount / s.shiftPart
	if skip == 0 {
		return nil, nil
	}
	if skip > maxSkip {
		skip = maxSkip
	}

	children, err := s.contentSrc.Children(ctx, donor)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donor children for %s: %w", donor.ID, err)
	}

	// Acceptor children are fetched once, on the first candidate reaching
	// the novelty gate.
	var existing []map[string]struct{}
	haveExisting := false

	for i := range children {
		if int64(i) < skip {
			continue
		}
		entry := &children[i]

		if entry.Score < s.minScore || entry.Score > s.maxScore {
			continue
		}
		if entry.Author == acceptor.Author {
			continue
		}
		if !isGoodText(entry.Body) {
			continue
		}

		tokens := tokenSet(entry.Body)
		if tooNoisy(entry.Body, tokens) {
			continue
		}

		if !haveExisting {
			acceptorChildren, err := s.contentSrc.Children(ctx, acceptor)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch acceptor children for %s: %w", acceptor.ID, err)
			}
			existing = make([]map[string]struct{}, 0, len(acceptorChildren))
			for _, c := range acceptorChildren {
				existing = append(existing, tokenSet(c.Body))
			}
			haveExisting = true
		}

		if s.alreadyPresent(tokens, existing) {
			s.logger.Debug("candidate already present on acceptor",
				zap.String("donor", donor.ID),
				zap.String("acceptor", acceptor.ID))
			continue
		}

		return entry, nil
	}

	return nil, nil
}

// alreadyPresent is the novelty gate: a candidate whose distinct-word set
// equals any existing child's set is effectively already there.
func (s *SelectorService) alreadyPresent(tokens map[string]struct{}, existing []map[string]struct{}) bool {
	for _, e := range existing {
		if sameTokenSet(tokens, e) {
			return true
		}
	}
	return false
}
