// Package metrics exposes workflow counters for Prometheus and feeds them from domain events.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/garyjia/tkdn-compliance/internal/domain/event"
)

var (
	itemEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tkdn",
		Subsystem: "compliance",
		Name:      "item_evaluations_total",
		Help:      "Items evaluated at submission creation, by outcome.",
	}, []string{"result"})

	statusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tkdn",
		Subsystem: "workflow",
		Name:      "transitions_total",
		Help:      "Submission and justification state changes.",
	}, []string{"workflow", "from", "to"})

	justificationBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tkdn",
		Subsystem: "workflow",
		Name:      "justification_upload_bytes",
		Help:      "Size of uploaded justification documents.",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
	})

	submissionsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tkdn",
		Subsystem: "workflow",
		Name:      "submissions_purged_total",
		Help:      "Submissions hard-deleted by reviewers.",
	})
)

const (
	workflowSubmission    = "submission"
	workflowJustification = "justification"
)

// RecordEvaluation counts the outcome of the items of one new submission
func RecordEvaluation(total, compliant int) {
	if total <= 0 {
		return
	}
	itemEvaluations.WithLabelValues("compliant").Add(float64(compliant))
	itemEvaluations.WithLabelValues("non_compliant").Add(float64(total - compliant))
}

// RecordTransition counts one state change of a workflow
func RecordTransition(workflow, from, to string) {
	if from == "" {
		from = "none"
	}
	statusTransitions.WithLabelValues(workflow, from, to).Inc()
}

// RecordUpload observes the size of a justification upload
func RecordUpload(size int64) {
	justificationBytes.Observe(float64(size))
}

// HandleEvent translates a domain event into metric updates.
// It matches the dispatcher handler signature so it can be subscribed directly.
func HandleEvent(ctx context.Context, evt *event.Event) error {
	switch evt.Type {
	case event.TypeSubmissionCreated:
		RecordEvaluation(int(evt.GetPayloadInt(event.KeyItemCount)), int(evt.GetPayloadInt(event.KeyCompliantCount)))
		RecordTransition(workflowSubmission, "", evt.GetPayloadString(event.KeyNewStatus))
	case event.TypeStatusChanged:
		RecordTransition(workflowSubmission, evt.GetPayloadString(event.KeyPreviousStatus), evt.GetPayloadString(event.KeyNewStatus))
	case event.TypeJustificationUploaded:
		RecordUpload(evt.GetPayloadInt(event.KeyFileSize))
		RecordTransition(workflowJustification, evt.GetPayloadString(event.KeyPreviousStatus), evt.GetPayloadString(event.KeyNewStatus))
	case event.TypeJustificationReviewed:
		RecordTransition(workflowJustification, evt.GetPayloadString(event.KeyPreviousStatus), evt.GetPayloadString(event.KeyNewStatus))
	case event.TypeSubmissionPurged:
		submissionsPurged.Inc()
	}
	return nil
}
