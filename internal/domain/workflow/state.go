package workflow

// State represents a node in a submission or justification lifecycle
type State string

// Submission lifecycle states
const (
	StatePending     State = "pending"
	StateUnderReview State = "under_review"
	StateAccepted    State = "accepted"
	StateRejected    State = "rejected"
)

// Justification lifecycle states. Pending and rejected are shared with the submission machine.
const (
	StateAbsent   State = "absent"
	StateApproved State = "approved"
)

var validStates = map[State]bool{
	StatePending:     true,
	StateUnderReview: true,
	StateAccepted:    true,
	StateRejected:    true,
	StateAbsent:      true,
	StateApproved:    true,
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known workflow state
func (s State) IsValid() bool {
	return validStates[s]
}
