package service

import (
	"context"
	"fmt"

	"github.com/garyjia/tkdn-compliance/internal/application/policy"
	"github.com/garyjia/tkdn-compliance/internal/application/port"
	"github.com/garyjia/tkdn-compliance/internal/domain/apperr"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// AccessPolicy decides whether a caller may perform an operation
type AccessPolicy interface {
	Authorize(caller entity.Caller, op policy.Operation, ownerID string) error
	ListFilter(caller entity.Caller) (string, error)
}

// ListingCache is the read-through projection in front of submission listings
type ListingCache interface {
	List(ctx context.Context, filter port.SubmissionFilter, load func(context.Context, port.SubmissionFilter) ([]*entity.SubmissionSummary, error)) ([]*entity.SubmissionSummary, error)
	Invalidate()
}

// Stores groups the repositories the services read from
type Stores struct {
	Submissions port.SubmissionRepository
	Items       port.ItemRepository
	Documents   port.DocumentRepository
	History     port.HistoryRepository
}

// loadHeader returns the submission header or a NotFound error
func (s Stores) loadHeader(ctx context.Context, id string) (*entity.Submission, error) {
	sub, err := s.Submissions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission %s: %w", id, err)
	}
	if sub == nil {
		return nil, apperr.New(apperr.KindNotFound, "submission %s not found", id)
	}
	return sub, nil
}

// assemble attaches items, document metadata and history to a submission header
func (s Stores) assemble(ctx context.Context, sub *entity.Submission) (*entity.Submission, error) {
	items, err := s.Items.GetBySubmissionID(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	docs, err := s.Documents.ListBySubmissionID(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	history, err := s.History.GetBySubmissionID(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	sub.Items = items
	sub.Documents = docs
	sub.History = history
	return sub, nil
}

// load reads and assembles a full submission
func (s Stores) load(ctx context.Context, id string) (*entity.Submission, error) {
	sub, err := s.loadHeader(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, sub)
}
