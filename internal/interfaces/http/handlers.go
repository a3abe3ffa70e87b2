package http

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/tkdn-compliance/internal/application/service"
	"github.com/garyjia/tkdn-compliance/internal/domain/apperr"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

// HealthChecker reports the status of each backing component
type HealthChecker interface {
	Health(ctx context.Context) map[string]error
}

// Services bundles the application services the handlers call
type Services struct {
	Submissions    service.SubmissionService
	Reviews        service.ReviewService
	Justifications service.JustificationService
	Reports        service.ReportService
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	services    Services
	health      HealthChecker
	maxFileSize int64
	logger      Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, health HealthChecker, maxFileSize int64, logger Logger) *Handlers {
	if maxFileSize <= 0 || maxFileSize > MaxFileSize {
		maxFileSize = MaxFileSize
	}
	return &Handlers{
		services:    services,
		health:      health,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// ReviewRequest is the body of POST /submissions/:id/review
type ReviewRequest struct {
	Status           string `json:"status" binding:"required"`
	Notes            string `json:"notes"`
	RejectionReason  string `json:"rejection_reason"`
	PresentationDate string `json:"presentation_date"`
}

// JustificationReviewRequest is the body of POST /submissions/:id/justification/review
type JustificationReviewRequest struct {
	Decision string `json:"decision" binding:"required"`
	Reason   string `json:"reason"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	components := make(map[string]string)
	for name, err := range h.health.Health(ctx) {
		if err != nil {
			components[name] = err.Error()
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	c.JSON(code, Response{
		Success: code == http.StatusOK,
		Data: HealthResponse{
			Status:     status,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Components: components,
		},
		RequestID: requestIDFrom(c),
	})
}

// CreateSubmission handles POST /api/v1/submissions.
// The body is multipart: a "payload" JSON field plus one file per document type.
func (h *Handlers) CreateSubmission(c *gin.Context) {
	baseTypes := append(entity.RequiredDocumentTypes(), entity.DocSupporting)
	limitBody(c, len(baseTypes), h.maxFileSize)

	form, err := parseForm(c)
	if err != nil {
		h.respondError(c, "create_submission", err)
		return
	}

	payloads := form.Value["payload"]
	if len(payloads) != 1 {
		h.respondError(c, "create_submission", apperr.Validation("exactly one payload field is required"))
		return
	}
	payload, err := decodeSubmissionPayload([]byte(payloads[0]))
	if err != nil {
		h.respondError(c, "create_submission", err)
		return
	}

	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var documents []service.DocumentUpload
	for _, field := range fields {
		headers := form.File[field]
		if len(headers) != 1 {
			h.respondError(c, "create_submission", apperr.Validation("document %s must be sent exactly once", field))
			return
		}
		file, err := readFile(headers[0], h.maxFileSize)
		if err != nil {
			h.respondError(c, "create_submission", err)
			return
		}
		documents = append(documents, service.DocumentUpload{Type: entity.DocumentType(field), FileUpload: file})
	}

	sub, err := h.services.Submissions.Create(c.Request.Context(), callerFrom(c), service.CreateSubmissionInput{
		PPK:       payload.PPK,
		Items:     payload.Items,
		Documents: documents,
	})
	if err != nil {
		h.respondError(c, "create_submission", err)
		return
	}

	respondOK(c, http.StatusCreated, sub)
}

// ListSubmissions handles GET /api/v1/submissions
func (h *Handlers) ListSubmissions(c *gin.Context) {
	status := entity.SubmissionStatus(strings.TrimSpace(c.Query("status")))

	summaries, err := h.services.Submissions.List(c.Request.Context(), callerFrom(c), status)
	if err != nil {
		h.respondError(c, "list_submissions", err)
		return
	}

	respondOK(c, http.StatusOK, summaries)
}

// GetSubmission handles GET /api/v1/submissions/:id
func (h *Handlers) GetSubmission(c *gin.Context) {
	sub, err := h.services.Submissions.Get(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, "get_submission", err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"submission":              sub,
		"justification_available": sub.JustificationAvailable(),
	})
}

// PurgeSubmission handles DELETE /api/v1/submissions/:id
func (h *Handlers) PurgeSubmission(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Submissions.Purge(c.Request.Context(), callerFrom(c), id); err != nil {
		h.respondError(c, "purge_submission", err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id, "purged": true})
}

// ReviewSubmission handles POST /api/v1/submissions/:id/review
func (h *Handlers) ReviewSubmission(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, "review_submission", apperr.Validation("invalid review body: %v", err))
		return
	}

	in := service.ReviewInput{
		Target:          entity.SubmissionStatus(strings.TrimSpace(req.Status)),
		Notes:           req.Notes,
		RejectionReason: req.RejectionReason,
	}
	if req.PresentationDate != "" {
		date, err := parseDate(req.PresentationDate)
		if err != nil {
			h.respondError(c, "review_submission", err)
			return
		}
		in.PresentationDate = &date
	}

	sub, err := h.services.Reviews.Review(c.Request.Context(), callerFrom(c), c.Param("id"), in)
	if err != nil {
		h.respondError(c, "review_submission", err)
		return
	}

	respondOK(c, http.StatusOK, sub)
}

// GetDocument handles GET /api/v1/submissions/:id/documents/:documentId
func (h *Handlers) GetDocument(c *gin.Context) {
	docID, err := strconv.ParseInt(c.Param("documentId"), 10, 64)
	if err != nil || docID <= 0 {
		h.respondError(c, "get_document", apperr.Validation("invalid document id %q", c.Param("documentId")))
		return
	}

	doc, err := h.services.Submissions.GetDocument(c.Request.Context(), callerFrom(c), c.Param("id"), docID)
	if err != nil {
		h.respondError(c, "get_document", err)
		return
	}

	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", attachment(doc.FileName))
	c.Data(http.StatusOK, contentType, doc.Content)
}

// UploadJustification handles POST /api/v1/submissions/:id/justification
func (h *Handlers) UploadJustification(c *gin.Context) {
	limitBody(c, 1, h.maxFileSize)

	form, err := parseForm(c)
	if err != nil {
		h.respondError(c, "upload_justification", err)
		return
	}
	headers := form.File["file"]
	if len(headers) != 1 {
		h.respondError(c, "upload_justification", apperr.Validation("exactly one file field is required"))
		return
	}

	file, err := readFile(headers[0], h.maxFileSize)
	if err != nil {
		h.respondError(c, "upload_justification", err)
		return
	}

	doc, err := h.services.Justifications.Upload(c.Request.Context(), callerFrom(c), c.Param("id"), file)
	if err != nil {
		h.respondError(c, "upload_justification", err)
		return
	}

	respondOK(c, http.StatusOK, doc)
}

// ReviewJustification handles POST /api/v1/submissions/:id/justification/review
func (h *Handlers) ReviewJustification(c *gin.Context) {
	var req JustificationReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, "review_justification", apperr.Validation("invalid decision body: %v", err))
		return
	}

	doc, err := h.services.Justifications.Review(c.Request.Context(), callerFrom(c), c.Param("id"),
		entity.JustificationStatus(strings.TrimSpace(req.Decision)), req.Reason)
	if err != nil {
		h.respondError(c, "review_justification", err)
		return
	}

	respondOK(c, http.StatusOK, doc)
}

// ExportReport handles GET /api/v1/reports/compliance.xlsx
func (h *Handlers) ExportReport(c *gin.Context) {
	report, err := h.services.Reports.Export(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.respondError(c, "export_report", err)
		return
	}

	c.Header("Content-Disposition", attachment(report.FileName))
	c.Data(http.StatusOK, report.ContentType, report.Content)
}

// parseDate accepts a calendar date or an RFC 3339 timestamp
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validation("presentation_date %q is not a date", s)
}

func attachment(fileName string) string {
	name := strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(fileName)
	if name == "" {
		name = "download"
	}
	return fmt.Sprintf(`attachment; filename="%s"`, name)
}
