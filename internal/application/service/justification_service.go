package service

import (
	"context"

	"github.com/garyjia/tkdn-compliance/internal/application/policy"
	"github.com/garyjia/tkdn-compliance/internal/application/workflow"
	"github.com/garyjia/tkdn-compliance/internal/domain/apperr"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
	"github.com/garyjia/tkdn-compliance/pkg/utils"
)

// JustificationService manages the post-acceptance justification document
type JustificationService interface {
	Upload(ctx context.Context, caller entity.Caller, submissionID string, file FileUpload) (*entity.Document, error)
	Review(ctx context.Context, caller entity.Caller, submissionID string, decision entity.JustificationStatus, reason string) (*entity.Document, error)
}

type justificationServiceImpl struct {
	stores Stores
	engine workflow.Engine
	policy AccessPolicy
	cache  ListingCache
	logger Logger
}

// NewJustificationService creates a new JustificationService
func NewJustificationService(stores Stores, engine workflow.Engine, access AccessPolicy, cache ListingCache, logger Logger) JustificationService {
	return &justificationServiceImpl{
		stores: stores,
		engine: engine,
		policy: access,
		cache:  cache,
		logger: logger,
	}
}

// Upload stores a new pending justification, replacing a pending or rejected one
func (s *justificationServiceImpl) Upload(ctx context.Context, caller entity.Caller, submissionID string, file FileUpload) (*entity.Document, error) {
	sub, err := s.stores.loadHeader(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, policy.OpJustificationUpload, sub.OwnerID); err != nil {
		return nil, err
	}
	if len(file.Content) == 0 {
		return nil, apperr.Validation("justification file is empty")
	}

	doc, err := s.engine.UploadJustification(ctx, workflow.UploadCommand{
		SubmissionID: submissionID,
		Uploader:     caller.ID,
		FileName:     utils.SanitizeString(file.FileName),
		MimeType:     file.MimeType,
		Content:      file.Content,
	})
	if err != nil {
		s.logger.Error("Justification upload rejected", "submission_id", submissionID, "owner_id", caller.ID, "error", err)
		return nil, err
	}
	s.cache.Invalidate()

	s.logger.Info("Justification uploaded",
		"submission_id", submissionID,
		"document_id", doc.ID,
		"file_size", doc.FileSize,
	)
	return doc, nil
}

// Review approves or rejects the pending justification
func (s *justificationServiceImpl) Review(ctx context.Context, caller entity.Caller, submissionID string, decision entity.JustificationStatus, reason string) (*entity.Document, error) {
	if err := s.policy.Authorize(caller, policy.OpJustificationReview, ""); err != nil {
		return nil, err
	}

	doc, err := s.engine.ReviewJustification(ctx, workflow.JustificationDecision{
		SubmissionID: submissionID,
		Decision:     decision,
		Reason:       reason,
		Reviewer:     caller.ID,
	})
	if err != nil {
		s.logger.Error("Justification review rejected", "submission_id", submissionID, "reviewer", caller.ID, "error", err)
		return nil, err
	}
	s.cache.Invalidate()

	s.logger.Info("Justification reviewed",
		"submission_id", submissionID,
		"reviewer", caller.ID,
		"decision", doc.JustificationStatus,
	)
	return doc, nil
}
