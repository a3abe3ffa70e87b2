package service

import (
	"context"
	"time"

	"github.com/garyjia/tkdn-compliance/internal/application/policy"
	"github.com/garyjia/tkdn-compliance/internal/application/workflow"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

// ReviewInput is a reviewer's decision on a submission
type ReviewInput struct {
	Target           entity.SubmissionStatus
	Notes            string
	RejectionReason  string
	PresentationDate *time.Time
}

// ReviewService drives submissions through review
type ReviewService interface {
	Review(ctx context.Context, caller entity.Caller, id string, in ReviewInput) (*entity.Submission, error)
}

type reviewServiceImpl struct {
	stores Stores
	engine workflow.Engine
	policy AccessPolicy
	cache  ListingCache
	logger Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(stores Stores, engine workflow.Engine, access AccessPolicy, cache ListingCache, logger Logger) ReviewService {
	return &reviewServiceImpl{
		stores: stores,
		engine: engine,
		policy: access,
		cache:  cache,
		logger: logger,
	}
}

// Review applies a status transition and returns the updated submission
func (s *reviewServiceImpl) Review(ctx context.Context, caller entity.Caller, id string, in ReviewInput) (*entity.Submission, error) {
	if err := s.policy.Authorize(caller, policy.OpSubmissionReview, ""); err != nil {
		return nil, err
	}

	updated, err := s.engine.ReviewSubmission(ctx, workflow.ReviewCommand{
		SubmissionID:     id,
		Target:           in.Target,
		Notes:            in.Notes,
		RejectionReason:  in.RejectionReason,
		PresentationDate: in.PresentationDate,
		Reviewer:         caller.ID,
	})
	if err != nil {
		s.logger.Error("Review rejected", "submission_id", id, "reviewer", caller.ID, "target", in.Target, "error", err)
		return nil, err
	}
	s.cache.Invalidate()

	s.logger.Info("Submission reviewed",
		"submission_id", id,
		"reviewer", caller.ID,
		"status", updated.Status,
	)

	return s.stores.assemble(ctx, updated)
}
