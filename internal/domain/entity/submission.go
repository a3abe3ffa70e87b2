package entity

import "time"

// Caller identifies who is invoking an operation
type Caller struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// PPKInfo is the identity record of the procurement officer of record
type PPKInfo struct {
	Name       string `json:"name" validate:"required,max=200"`
	NationalID string `json:"national_id" validate:"required,nik"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,phone"`
	WorkUnit   string `json:"work_unit" validate:"required,max=200"`
	Position   string `json:"position" validate:"required,max=200"`
}

// Submission is a product-sourcing evaluation moving through review
type Submission struct {
	ID               string           `json:"id"`
	OwnerID          string           `json:"owner_id"`
	Status           SubmissionStatus `json:"status"`
	PPK              PPKInfo          `json:"ppk_info"`
	Items            []*Item          `json:"items"`
	Documents        []*Document      `json:"documents"`
	History          []*History       `json:"history,omitempty"`
	ReviewNotes      string           `json:"review_notes,omitempty"`
	RejectionReason  string           `json:"rejection_reason,omitempty"`
	PresentationDate *time.Time       `json:"presentation_date,omitempty"`
	ReviewedAt       *time.Time       `json:"reviewed_at,omitempty"`
	ReviewedBy       string           `json:"reviewed_by,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// JustificationAvailable reports whether the owner should be offered the justification upload
func (s *Submission) JustificationAvailable() bool {
	return s.Status == StatusAccepted && s.PresentationDate != nil
}

// Justification returns the live justification document, if any
func (s *Submission) Justification() *Document {
	for _, d := range s.Documents {
		if d.Type == DocJustification {
			return d
		}
	}
	return nil
}

// SubmissionSummary is the listing projection of a submission
type SubmissionSummary struct {
	ID                  string              `json:"id"`
	OwnerID             string              `json:"owner_id"`
	Status              SubmissionStatus    `json:"status"`
	PPKName             string              `json:"ppk_name"`
	WorkUnit            string              `json:"work_unit"`
	ItemCount           int                 `json:"item_count"`
	CompliantItemCount  int                 `json:"compliant_item_count"`
	JustificationStatus JustificationStatus `json:"justification_status,omitempty"`
	PresentationDate    *time.Time          `json:"presentation_date,omitempty"`
	ReviewedAt          *time.Time          `json:"reviewed_at,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
}
