package entity

import "time"

// Document is a file attached to a submission. Content is never interpreted.
type Document struct {
	ID           int64        `json:"id"`
	SubmissionID string       `json:"submission_id"`
	Type         DocumentType `json:"document_type"`
	FileName     string       `json:"file_name"`
	FileSize     int64        `json:"file_size"`
	MimeType     string       `json:"mime_type"`
	Content      []byte       `json:"-"`
	UploadedAt   time.Time    `json:"uploaded_at"`

	// Justification-only fields
	JustificationStatus          JustificationStatus `json:"justification_status,omitempty"`
	JustificationReviewedAt      *time.Time          `json:"justification_reviewed_at,omitempty"`
	JustificationReviewedBy      string              `json:"justification_reviewed_by,omitempty"`
	JustificationRejectionReason string              `json:"justification_rejection_reason,omitempty"`
}
