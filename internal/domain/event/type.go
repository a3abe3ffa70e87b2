package event

// Type identifies the type of domain event
type Type string

const (
	TypeSubmissionCreated     Type = "submission.created"
	TypeStatusChanged         Type = "submission.status_changed"
	TypeSubmissionPurged      Type = "submission.purged"
	TypeJustificationUploaded Type = "justification.uploaded"
	TypeJustificationReviewed Type = "justification.reviewed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeSubmissionCreated,
		TypeStatusChanged,
		TypeSubmissionPurged,
		TypeJustificationUploaded,
		TypeJustificationReviewed:
		return true
	default:
		return false
	}
}

// AllTypes lists every event type in publication order
func AllTypes() []Type {
	return []Type{
		TypeSubmissionCreated,
		TypeStatusChanged,
		TypeSubmissionPurged,
		TypeJustificationUploaded,
		TypeJustificationReviewed,
	}
}
