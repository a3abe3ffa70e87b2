package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/garyjia/tkdn-compliance/internal/application/policy"
	"github.com/garyjia/tkdn-compliance/internal/application/port"
	"github.com/garyjia/tkdn-compliance/internal/application/workflow"
	"github.com/garyjia/tkdn-compliance/internal/domain/apperr"
	"github.com/garyjia/tkdn-compliance/internal/domain/compliance"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
	"github.com/garyjia/tkdn-compliance/pkg/utils"
)

// ItemInput is the canonical officer-entered item. Derived percentages are computed, never accepted.
type ItemInput struct {
	Name                 string  `json:"name" validate:"required,max=300"`
	Quantity             int     `json:"quantity" validate:"min=1"`
	Unit                 string  `json:"unit" validate:"required,max=50"`
	Brand                string  `json:"brand" validate:"max=200"`
	Model                string  `json:"model" validate:"max=200"`
	Specification        string  `json:"specification" validate:"max=5000"`
	Category             string  `json:"category"`
	FinalPrice           float64 `json:"final_price"`
	ForeignPrice         float64 `json:"foreign_price"`
	DomesticValuePercent float64 `json:"domestic_value_percent"`
}

// FileUpload is an opaque file received at the boundary
type FileUpload struct {
	FileName string
	MimeType string
	Content  []byte
}

// DocumentUpload is a base document attached at creation
type DocumentUpload struct {
	Type entity.DocumentType
	FileUpload
}

// CreateSubmissionInput carries everything an officer submits
type CreateSubmissionInput struct {
	PPK       entity.PPKInfo
	Items     []ItemInput
	Documents []DocumentUpload
}

// SubmissionService handles creation and read access to submissions
type SubmissionService interface {
	Create(ctx context.Context, caller entity.Caller, in CreateSubmissionInput) (*entity.Submission, error)
	List(ctx context.Context, caller entity.Caller, status entity.SubmissionStatus) ([]*entity.SubmissionSummary, error)
	Get(ctx context.Context, caller entity.Caller, id string) (*entity.Submission, error)
	GetDocument(ctx context.Context, caller entity.Caller, submissionID string, documentID int64) (*entity.Document, error)
	Purge(ctx context.Context, caller entity.Caller, id string) error
}

type submissionServiceImpl struct {
	stores    Stores
	engine    workflow.Engine
	evaluator *compliance.Evaluator
	policy    AccessPolicy
	cache     ListingCache
	validate  *validator.Validate
	logger    Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	stores Stores,
	engine workflow.Engine,
	evaluator *compliance.Evaluator,
	access AccessPolicy,
	cache ListingCache,
	logger Logger,
) SubmissionService {
	return &submissionServiceImpl{
		stores:    stores,
		engine:    engine,
		evaluator: evaluator,
		policy:    access,
		cache:     cache,
		validate:  utils.NewValidator(),
		logger:    logger,
	}
}

// Create validates and evaluates the submission, then persists it as pending
func (s *submissionServiceImpl) Create(ctx context.Context, caller entity.Caller, in CreateSubmissionInput) (*entity.Submission, error) {
	if err := s.policy.Authorize(caller, policy.OpSubmissionCreate, caller.ID); err != nil {
		return nil, err
	}

	ppk := sanitizePPK(in.PPK)
	if err := s.validate.Struct(ppk); err != nil {
		return nil, validationFailure("ppk_info", err)
	}

	items, err := s.evaluateItems(in.Items)
	if err != nil {
		return nil, err
	}

	docs, err := buildDocuments(in.Documents)
	if err != nil {
		return nil, err
	}

	created, err := s.engine.CreateSubmission(ctx, &entity.Submission{
		OwnerID:   caller.ID,
		PPK:       ppk,
		Items:     items,
		Documents: docs,
	})
	if err != nil {
		s.logger.Error("Failed to create submission", "owner_id", caller.ID, "error", err)
		return nil, err
	}
	s.cache.Invalidate()

	s.logger.Info("Submission created",
		"submission_id", created.ID,
		"owner_id", caller.ID,
		"items", len(items),
		"documents", len(docs),
	)

	return s.stores.load(ctx, created.ID)
}

// List returns summaries filtered by the caller's visibility
func (s *submissionServiceImpl) List(ctx context.Context, caller entity.Caller, status entity.SubmissionStatus) ([]*entity.SubmissionSummary, error) {
	owner, err := s.policy.ListFilter(caller)
	if err != nil {
		return nil, err
	}
	if status != "" && !status.IsValid() {
		return nil, apperr.Validation("unknown status filter %q", status)
	}

	summaries, err := s.cache.List(ctx, port.SubmissionFilter{OwnerID: owner, Status: status}, s.stores.Submissions.List)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	if summaries == nil {
		summaries = []*entity.SubmissionSummary{}
	}
	return summaries, nil
}

// Get returns the full submission if the caller may read it
func (s *submissionServiceImpl) Get(ctx context.Context, caller entity.Caller, id string) (*entity.Submission, error) {
	sub, err := s.stores.loadHeader(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, policy.OpSubmissionRead, sub.OwnerID); err != nil {
		return nil, err
	}
	return s.stores.assemble(ctx, sub)
}

// GetDocument returns a document including its content
func (s *submissionServiceImpl) GetDocument(ctx context.Context, caller entity.Caller, submissionID string, documentID int64) (*entity.Document, error) {
	sub, err := s.stores.loadHeader(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, policy.OpDocumentRead, sub.OwnerID); err != nil {
		return nil, err
	}

	doc, err := s.stores.Documents.GetByID(ctx, submissionID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return nil, apperr.New(apperr.KindNotFound, "document %d not found in submission %s", documentID, submissionID)
	}
	return doc, nil
}

// Purge hard-deletes a submission
func (s *submissionServiceImpl) Purge(ctx context.Context, caller entity.Caller, id string) error {
	if err := s.policy.Authorize(caller, policy.OpSubmissionPurge, ""); err != nil {
		return err
	}

	if err := s.engine.PurgeSubmission(ctx, id, caller.ID); err != nil {
		return err
	}
	s.cache.Invalidate()

	s.logger.Info("Submission purged", "submission_id", id, "actor", caller.ID)
	return nil
}

// evaluateItems validates each item and fixes its compliance figures and thresholds
func (s *submissionServiceImpl) evaluateItems(inputs []ItemInput) ([]*entity.Item, error) {
	if len(inputs) == 0 {
		return nil, apperr.Validation("at least one item is required")
	}

	items := make([]*entity.Item, 0, len(inputs))
	for i, in := range inputs {
		in.Name = utils.SanitizeString(in.Name)
		in.Unit = utils.SanitizeString(in.Unit)
		in.Brand = utils.SanitizeString(in.Brand)
		in.Model = utils.SanitizeString(in.Model)
		in.Specification = utils.SanitizeString(in.Specification)
		in.Category = strings.TrimSpace(in.Category)

		if err := s.validate.Struct(in); err != nil {
			return nil, validationFailure(fmt.Sprintf("item %d", i+1), err)
		}

		result, err := s.evaluator.Evaluate(compliance.Input{
			Category:             in.Category,
			FinalPrice:           in.FinalPrice,
			ForeignPrice:         in.ForeignPrice,
			DomesticValuePercent: in.DomesticValuePercent,
		})
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}

		items = append(items, &entity.Item{
			Name:                    in.Name,
			Quantity:                in.Quantity,
			Unit:                    in.Unit,
			Brand:                   in.Brand,
			Model:                   in.Model,
			Specification:           in.Specification,
			Category:                in.Category,
			FinalPrice:              in.FinalPrice,
			ForeignPrice:            in.ForeignPrice,
			DomesticValuePercent:    in.DomesticValuePercent,
			LocalContentPercent:     result.LocalContentPercent,
			TotalPercent:            result.TotalPercent,
			IsCompliant:             result.IsCompliant,
			MinLocalContentPercent:  result.Rule.MinLocalContentPercent,
			MinDomesticValuePercent: result.Rule.MinDomesticValuePercent,
			MinTotalPercent:         result.Rule.MinTotalPercent,
		})
	}
	return items, nil
}

// buildDocuments checks the base document set: every required type once, supporting optional
func buildDocuments(uploads []DocumentUpload) ([]*entity.Document, error) {
	seen := make(map[entity.DocumentType]bool, len(uploads))
	docs := make([]*entity.Document, 0, len(uploads))

	for _, u := range uploads {
		if !u.Type.IsBase() {
			return nil, apperr.Validation("document type %q cannot be attached at creation", u.Type)
		}
		if seen[u.Type] {
			return nil, apperr.Validation("document type %q supplied more than once", u.Type)
		}
		if len(u.Content) == 0 {
			return nil, apperr.Validation("document %q is empty", u.Type)
		}
		seen[u.Type] = true

		docs = append(docs, &entity.Document{
			Type:     u.Type,
			FileName: utils.SanitizeString(u.FileName),
			FileSize: int64(len(u.Content)),
			MimeType: u.MimeType,
			Content:  u.Content,
		})
	}

	var missing []string
	for _, required := range entity.RequiredDocumentTypes() {
		if !seen[required] {
			missing = append(missing, string(required))
		}
	}
	if len(missing) > 0 {
		return nil, apperr.Validation("missing required documents: %s", strings.Join(missing, ", "))
	}

	return docs, nil
}

func sanitizePPK(p entity.PPKInfo) entity.PPKInfo {
	return entity.PPKInfo{
		Name:       utils.SanitizeString(p.Name),
		NationalID: strings.TrimSpace(p.NationalID),
		Email:      strings.TrimSpace(p.Email),
		Phone:      strings.TrimSpace(p.Phone),
		WorkUnit:   utils.SanitizeString(p.WorkUnit),
		Position:   utils.SanitizeString(p.Position),
	}
}

// validationFailure turns validator output into a ValidationError naming the failing fields
func validationFailure(subject string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Validation("%s is invalid: %v", subject, err)
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return apperr.Validation("%s has invalid fields: %s", subject, strings.Join(fields, ", "))
}
