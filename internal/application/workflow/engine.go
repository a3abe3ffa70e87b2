package workflow

import (
	"context"
	"time"

	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

// ReviewCommand asks for a submission status transition
type ReviewCommand struct {
	SubmissionID     string
	Target           entity.SubmissionStatus
	Notes            string
	RejectionReason  string
	PresentationDate *time.Time
	Reviewer         string
}

// UploadCommand carries a new justification file for an accepted submission
type UploadCommand struct {
	SubmissionID string
	Uploader     string
	FileName     string
	MimeType     string
	Content      []byte
}

// JustificationDecision resolves the pending justification document
type JustificationDecision struct {
	SubmissionID string
	Decision     entity.JustificationStatus
	Reason       string
	Reviewer     string
}

// Engine applies lifecycle changes to submissions. Each call is one store transaction;
// events are dispatched only after the transaction commits.
// Callers are expected to have passed the access policy already.
type Engine interface {
	// CreateSubmission assigns the next identifier and persists the submission with its items and documents
	CreateSubmission(ctx context.Context, s *entity.Submission) (*entity.Submission, error)

	// ReviewSubmission moves a submission along its review lifecycle
	ReviewSubmission(ctx context.Context, cmd ReviewCommand) (*entity.Submission, error)

	// UploadJustification replaces the live justification document with a new pending one
	UploadJustification(ctx context.Context, cmd UploadCommand) (*entity.Document, error)

	// ReviewJustification approves or rejects the pending justification document
	ReviewJustification(ctx context.Context, cmd JustificationDecision) (*entity.Document, error)

	// PurgeSubmission hard-deletes a submission and everything attached to it
	PurgeSubmission(ctx context.Context, id, actor string) error
}
