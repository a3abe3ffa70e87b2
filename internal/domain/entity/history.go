package entity

import "time"

// History is one entry in the decision log of a submission.
// It records who moved the submission or its justification and why;
// it does not keep copies of replaced documents.
type History struct {
	ID             int64     `json:"id"`
	SubmissionID   string    `json:"submission_id"`
	Actor          string    `json:"actor"`
	Action         string    `json:"action"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	NewStatus      string    `json:"new_status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
