package workflow

import (
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
	domainwf "github.com/garyjia/tkdn-compliance/internal/domain/workflow"
)

// submissionLifecycle is the one-shot review lifecycle of a submission
var submissionLifecycle = domainwf.MustDefine("submission",
	[]domainwf.State{domainwf.StateAccepted, domainwf.StateRejected},
	domainwf.Transition{From: domainwf.StatePending, Trigger: domainwf.TriggerStartReview, To: domainwf.StateUnderReview},
	domainwf.Transition{From: domainwf.StatePending, Trigger: domainwf.TriggerAccept, To: domainwf.StateAccepted},
	domainwf.Transition{From: domainwf.StatePending, Trigger: domainwf.TriggerReject, To: domainwf.StateRejected},
	domainwf.Transition{From: domainwf.StateUnderReview, Trigger: domainwf.TriggerAccept, To: domainwf.StateAccepted},
	domainwf.Transition{From: domainwf.StateUnderReview, Trigger: domainwf.TriggerReject, To: domainwf.StateRejected},
)

// justificationLifecycle covers the single live justification document.
// Only approval is final; a rejected document may be replaced by a new upload.
var justificationLifecycle = domainwf.MustDefine("justification",
	[]domainwf.State{domainwf.StateApproved},
	domainwf.Transition{From: domainwf.StateAbsent, Trigger: domainwf.TriggerUpload, To: domainwf.StatePending},
	domainwf.Transition{From: domainwf.StatePending, Trigger: domainwf.TriggerUpload, To: domainwf.StatePending},
	domainwf.Transition{From: domainwf.StatePending, Trigger: domainwf.TriggerApprove, To: domainwf.StateApproved},
	domainwf.Transition{From: domainwf.StatePending, Trigger: domainwf.TriggerReject, To: domainwf.StateRejected},
	domainwf.Transition{From: domainwf.StateRejected, Trigger: domainwf.TriggerUpload, To: domainwf.StatePending},
)

// BuildSubmissionStateMachine positions a machine on the submission lifecycle
func BuildSubmissionStateMachine(initialState domainwf.State) *domainwf.Machine {
	return submissionLifecycle.Start(initialState)
}

// BuildJustificationStateMachine positions a machine on the justification lifecycle
func BuildJustificationStateMachine(initialState domainwf.State) *domainwf.Machine {
	return justificationLifecycle.Start(initialState)
}

// reviewTrigger maps a requested submission status to the trigger that reaches it
func reviewTrigger(target entity.SubmissionStatus) (domainwf.Trigger, bool) {
	switch target {
	case entity.StatusUnderReview:
		return domainwf.TriggerStartReview, true
	case entity.StatusAccepted:
		return domainwf.TriggerAccept, true
	case entity.StatusRejected:
		return domainwf.TriggerReject, true
	default:
		return "", false
	}
}

// justificationState derives the sub-workflow state from the live justification document
func justificationState(doc *entity.Document) domainwf.State {
	if doc == nil {
		return domainwf.StateAbsent
	}
	switch doc.JustificationStatus {
	case entity.JustificationApproved:
		return domainwf.StateApproved
	case entity.JustificationRejected:
		return domainwf.StateRejected
	default:
		return domainwf.StatePending
	}
}
