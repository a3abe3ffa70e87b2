package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/tkdn-compliance/internal/application/dispatcher"
	"github.com/garyjia/tkdn-compliance/internal/application/port"
	"github.com/garyjia/tkdn-compliance/internal/domain/apperr"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
	"github.com/garyjia/tkdn-compliance/internal/domain/event"
	domainwf "github.com/garyjia/tkdn-compliance/internal/domain/workflow"
)

// engineImpl is the concrete implementation of Engine
type engineImpl struct {
	submissionRepo port.SubmissionRepository
	itemRepo       port.ItemRepository
	documentRepo   port.DocumentRepository
	historyRepo    port.HistoryRepository
	txManager      port.TransactionManager
	dispatcher     dispatcher.Dispatcher
	syncEvents     bool

	now func() time.Time
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithDispatcher sets the event dispatcher for emitting events
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engineImpl) {
		e.dispatcher = d
	}
}

// WithSynchronousEvents makes every command wait for its subscribers before returning
func WithSynchronousEvents() EngineOption {
	return func(e *engineImpl) {
		e.syncEvents = true
	}
}

// WithClock overrides the time source used for identifiers and timestamps
func WithClock(now func() time.Time) EngineOption {
	return func(e *engineImpl) {
		e.now = now
	}
}

// NewEngine creates a new workflow engine
func NewEngine(
	submissionRepo port.SubmissionRepository,
	itemRepo port.ItemRepository,
	documentRepo port.DocumentRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	opts ...EngineOption,
) Engine {
	e := &engineImpl{
		submissionRepo: submissionRepo,
		itemRepo:       itemRepo,
		documentRepo:   documentRepo,
		historyRepo:    historyRepo,
		txManager:      txManager,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// CreateSubmission persists a new pending submission in one transaction
func (e *engineImpl) CreateSubmission(ctx context.Context, s *entity.Submission) (*entity.Submission, error) {
	if s == nil {
		return nil, fmt.Errorf("submission cannot be nil")
	}

	now := e.now()
	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		id, err := e.submissionRepo.NextID(txCtx, now.Year())
		if err != nil {
			return fmt.Errorf("failed to allocate submission id: %w", err)
		}

		s.ID = id
		s.Status = entity.StatusPending
		s.CreatedAt = now
		s.UpdatedAt = now

		if err := e.submissionRepo.Create(txCtx, s); err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}

		for i, item := range s.Items {
			item.SubmissionID = id
			item.Position = i + 1
			item.CreatedAt = now
		}
		if err := e.itemRepo.CreateBatch(txCtx, id, s.Items); err != nil {
			return fmt.Errorf("failed to create items: %w", err)
		}

		for _, doc := range s.Documents {
			doc.SubmissionID = id
			doc.UploadedAt = now
			if err := e.documentRepo.Create(txCtx, doc); err != nil {
				return fmt.Errorf("failed to store %s document: %w", doc.Type, err)
			}
		}

		return e.historyRepo.Create(txCtx, &entity.History{
			SubmissionID: id,
			Actor:        s.OwnerID,
			Action:       entity.ActionSubmissionCreated,
			NewStatus:    string(entity.StatusPending),
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}

	compliant := 0
	for _, item := range s.Items {
		if item.IsCompliant {
			compliant++
		}
	}

	e.emit(ctx, event.NewEvent(event.TypeSubmissionCreated, s.ID, s.OwnerID, map[string]interface{}{
		event.KeyOwnerID:        s.OwnerID,
		event.KeyNewStatus:      string(entity.StatusPending),
		event.KeyItemCount:      len(s.Items),
		event.KeyCompliantCount: compliant,
	}))

	return s, nil
}

// ReviewSubmission re-reads the submission inside the transaction and applies a compare-and-set update
func (e *engineImpl) ReviewSubmission(ctx context.Context, cmd ReviewCommand) (*entity.Submission, error) {
	var (
		updated  *entity.Submission
		previous entity.SubmissionStatus
		trigger  domainwf.Trigger
	)

	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		current, err := e.submissionRepo.GetByID(txCtx, cmd.SubmissionID)
		if err != nil {
			return fmt.Errorf("failed to load submission: %w", err)
		}
		if current == nil {
			return apperr.New(apperr.KindNotFound, "submission %s not found", cmd.SubmissionID)
		}
		if current.Status.IsFinal() {
			return finalizedError(current)
		}

		var ok bool
		trigger, ok = reviewTrigger(cmd.Target)
		if !ok {
			return apperr.Validation("target status %q is not a review outcome", cmd.Target)
		}

		notes := strings.TrimSpace(cmd.Notes)
		if cmd.Target.IsFinal() && notes == "" {
			return apperr.New(apperr.KindMissingReviewNotes, "review notes are required to mark a submission %s", cmd.Target)
		}
		if cmd.PresentationDate != nil && cmd.Target != entity.StatusAccepted {
			return apperr.Validation("presentation date may only be set when accepting")
		}

		machine := BuildSubmissionStateMachine(domainwf.State(current.Status))
		if err := machine.Fire(trigger); err != nil {
			return apperr.InvalidTransition(string(current.Status), string(cmd.Target), err)
		}

		now := e.now()
		previous = current.Status
		current.Status = entity.SubmissionStatus(machine.State())
		current.ReviewNotes = notes
		current.ReviewedAt = &now
		current.ReviewedBy = cmd.Reviewer
		current.UpdatedAt = now
		current.RejectionReason = ""
		current.PresentationDate = nil

		switch current.Status {
		case entity.StatusRejected:
			current.RejectionReason = strings.TrimSpace(cmd.RejectionReason)
			if current.RejectionReason == "" {
				current.RejectionReason = notes
			}
		case entity.StatusAccepted:
			current.PresentationDate = cmd.PresentationDate
		}

		applied, err := e.submissionRepo.UpdateReview(txCtx, current, previous)
		if err != nil {
			return fmt.Errorf("failed to update submission: %w", err)
		}
		if !applied {
			latest, err := e.submissionRepo.GetByID(txCtx, cmd.SubmissionID)
			if err != nil {
				return fmt.Errorf("failed to reload submission: %w", err)
			}
			if latest == nil {
				return apperr.New(apperr.KindNotFound, "submission %s not found", cmd.SubmissionID)
			}
			if latest.Status.IsFinal() {
				return finalizedError(latest)
			}
			return fmt.Errorf("submission %s changed concurrently (status %s)", cmd.SubmissionID, latest.Status)
		}

		if err := e.historyRepo.Create(txCtx, &entity.History{
			SubmissionID:   current.ID,
			Actor:          cmd.Reviewer,
			Action:         entity.ActionSubmissionReviewed,
			PreviousStatus: string(previous),
			NewStatus:      string(current.Status),
			Notes:          notes,
			CreatedAt:      now,
		}); err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, event.NewEvent(event.TypeStatusChanged, updated.ID, cmd.Reviewer, map[string]interface{}{
		event.KeyOwnerID:        updated.OwnerID,
		event.KeyPreviousStatus: string(previous),
		event.KeyNewStatus:      string(updated.Status),
		event.KeyTrigger:        trigger.String(),
		event.KeyReason:         updated.RejectionReason,
	}))

	return updated, nil
}

// UploadJustification destructively replaces any pending or rejected justification
func (e *engineImpl) UploadJustification(ctx context.Context, cmd UploadCommand) (*entity.Document, error) {
	var (
		doc      *entity.Document
		ownerID  string
		previous string
	)

	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		sub, err := e.submissionRepo.GetByID(txCtx, cmd.SubmissionID)
		if err != nil {
			return fmt.Errorf("failed to load submission: %w", err)
		}
		if sub == nil {
			return apperr.New(apperr.KindNotFound, "submission %s not found", cmd.SubmissionID)
		}
		if sub.Status != entity.StatusAccepted {
			return apperr.New(apperr.KindNotAccepted, "submission %s is %s, justification requires accepted", sub.ID, sub.Status)
		}
		ownerID = sub.OwnerID

		existing, err := e.documentRepo.GetJustification(txCtx, sub.ID)
		if err != nil {
			return fmt.Errorf("failed to load justification: %w", err)
		}

		from := justificationState(existing)
		previous = from.String()
		machine := BuildJustificationStateMachine(from)
		if err := machine.Fire(domainwf.TriggerUpload); err != nil {
			if errors.Is(err, domainwf.ErrFinalState) {
				return apperr.New(apperr.KindAlreadyApproved, "justification for %s is already approved", sub.ID)
			}
			return apperr.InvalidTransition(from.String(), domainwf.StatePending.String(), err)
		}

		if existing != nil {
			if err := e.documentRepo.Delete(txCtx, existing.ID); err != nil {
				return fmt.Errorf("failed to remove previous justification: %w", err)
			}
		}

		now := e.now()
		doc = &entity.Document{
			SubmissionID:        sub.ID,
			Type:                entity.DocJustification,
			FileName:            cmd.FileName,
			FileSize:            int64(len(cmd.Content)),
			MimeType:            cmd.MimeType,
			Content:             cmd.Content,
			UploadedAt:          now,
			JustificationStatus: entity.JustificationStatus(machine.State()),
		}
		if err := e.documentRepo.Create(txCtx, doc); err != nil {
			return fmt.Errorf("failed to store justification: %w", err)
		}

		return e.historyRepo.Create(txCtx, &entity.History{
			SubmissionID:   sub.ID,
			Actor:          cmd.Uploader,
			Action:         entity.ActionJustificationUploaded,
			PreviousStatus: from.String(),
			NewStatus:      machine.State().String(),
			Notes:          cmd.FileName,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, event.NewEvent(event.TypeJustificationUploaded, doc.SubmissionID, cmd.Uploader, map[string]interface{}{
		event.KeyOwnerID:        ownerID,
		event.KeyPreviousStatus: previous,
		event.KeyNewStatus:      string(doc.JustificationStatus),
		event.KeyFileSize:       doc.FileSize,
	}))

	return doc, nil
}

// ReviewJustification records the reviewer's decision on the pending justification
func (e *engineImpl) ReviewJustification(ctx context.Context, cmd JustificationDecision) (*entity.Document, error) {
	var trigger domainwf.Trigger
	switch cmd.Decision {
	case entity.JustificationApproved:
		trigger = domainwf.TriggerApprove
	case entity.JustificationRejected:
		trigger = domainwf.TriggerReject
	default:
		return nil, apperr.Validation("decision must be approved or rejected, got %q", cmd.Decision)
	}

	reason := strings.TrimSpace(cmd.Reason)
	if cmd.Decision == entity.JustificationRejected && reason == "" {
		return nil, apperr.New(apperr.KindMissingRejectionReason, "a reason is required to reject a justification")
	}
	if cmd.Decision == entity.JustificationApproved {
		reason = ""
	}

	var (
		doc     *entity.Document
		ownerID string
	)

	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		sub, err := e.submissionRepo.GetByID(txCtx, cmd.SubmissionID)
		if err != nil {
			return fmt.Errorf("failed to load submission: %w", err)
		}
		if sub == nil {
			return apperr.New(apperr.KindNotFound, "submission %s not found", cmd.SubmissionID)
		}
		ownerID = sub.OwnerID

		doc, err = e.documentRepo.GetJustification(txCtx, sub.ID)
		if err != nil {
			return fmt.Errorf("failed to load justification: %w", err)
		}
		if doc == nil || doc.JustificationStatus != entity.JustificationPending {
			return apperr.New(apperr.KindNoJustificationDoc, "submission %s has no pending justification", sub.ID)
		}

		machine := BuildJustificationStateMachine(justificationState(doc))
		if err := machine.Fire(trigger); err != nil {
			return apperr.InvalidTransition(string(doc.JustificationStatus), string(cmd.Decision), err)
		}

		now := e.now()
		doc.JustificationStatus = entity.JustificationStatus(machine.State())
		doc.JustificationReviewedAt = &now
		doc.JustificationReviewedBy = cmd.Reviewer
		doc.JustificationRejectionReason = reason

		applied, err := e.documentRepo.UpdateJustificationReview(txCtx, doc)
		if err != nil {
			return fmt.Errorf("failed to update justification: %w", err)
		}
		if !applied {
			return apperr.New(apperr.KindNoJustificationDoc, "submission %s has no pending justification", sub.ID)
		}

		return e.historyRepo.Create(txCtx, &entity.History{
			SubmissionID:   sub.ID,
			Actor:          cmd.Reviewer,
			Action:         entity.ActionJustificationReviewed,
			PreviousStatus: string(entity.JustificationPending),
			NewStatus:      string(doc.JustificationStatus),
			Notes:          reason,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, event.NewEvent(event.TypeJustificationReviewed, doc.SubmissionID, cmd.Reviewer, map[string]interface{}{
		event.KeyOwnerID:        ownerID,
		event.KeyPreviousStatus: string(entity.JustificationPending),
		event.KeyNewStatus:      string(doc.JustificationStatus),
		event.KeyReason:         reason,
	}))

	return doc, nil
}

// PurgeSubmission deletes the submission; items, documents and history cascade
func (e *engineImpl) PurgeSubmission(ctx context.Context, id, actor string) error {
	var ownerID string

	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		sub, err := e.submissionRepo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to load submission: %w", err)
		}
		if sub == nil {
			return apperr.New(apperr.KindNotFound, "submission %s not found", id)
		}
		ownerID = sub.OwnerID

		deleted, err := e.submissionRepo.Delete(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to delete submission: %w", err)
		}
		if !deleted {
			return apperr.New(apperr.KindNotFound, "submission %s not found", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.emit(ctx, event.NewEvent(event.TypeSubmissionPurged, id, actor, map[string]interface{}{
		event.KeyOwnerID: ownerID,
	}))

	return nil
}

// emit runs after commit, so subscriber failures never undo a command.
// The dispatcher logs each failing handler.
func (e *engineImpl) emit(ctx context.Context, evt *event.Event) {
	if e.dispatcher == nil {
		return
	}
	if e.syncEvents {
		_ = e.dispatcher.Dispatch(ctx, evt)
		return
	}
	e.dispatcher.DispatchAsync(ctx, evt)
}

func finalizedError(s *entity.Submission) error {
	return apperr.New(apperr.KindAlreadyFinalized, "submission %s was already %s", s.ID, s.Status)
}
