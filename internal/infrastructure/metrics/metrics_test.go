package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/tkdn-compliance/internal/domain/event"
)

func TestHandleEventCreated(t *testing.T) {
	compliant := testutil.ToFloat64(itemEvaluations.WithLabelValues("compliant"))
	nonCompliant := testutil.ToFloat64(itemEvaluations.WithLabelValues("non_compliant"))
	created := testutil.ToFloat64(statusTransitions.WithLabelValues("submission", "none", "pending"))

	evt := event.NewEvent(event.TypeSubmissionCreated, "TKDN-2025-0001", "officer-1", map[string]interface{}{
		event.KeyNewStatus:      "pending",
		event.KeyItemCount:      3,
		event.KeyCompliantCount: 1,
	})
	require.NoError(t, HandleEvent(context.Background(), evt))

	assert.Equal(t, compliant+1, testutil.ToFloat64(itemEvaluations.WithLabelValues("compliant")))
	assert.Equal(t, nonCompliant+2, testutil.ToFloat64(itemEvaluations.WithLabelValues("non_compliant")))
	assert.Equal(t, created+1, testutil.ToFloat64(statusTransitions.WithLabelValues("submission", "none", "pending")))
}

func TestHandleEventTransitions(t *testing.T) {
	accepted := testutil.ToFloat64(statusTransitions.WithLabelValues("submission", "pending", "accepted"))
	rejected := testutil.ToFloat64(statusTransitions.WithLabelValues("justification", "pending", "rejected"))
	purged := testutil.ToFloat64(submissionsPurged)

	ctx := context.Background()
	require.NoError(t, HandleEvent(ctx, event.NewEvent(event.TypeStatusChanged, "TKDN-2025-0001", "reviewer-1", map[string]interface{}{
		event.KeyPreviousStatus: "pending",
		event.KeyNewStatus:      "accepted",
	})))
	require.NoError(t, HandleEvent(ctx, event.NewEvent(event.TypeJustificationReviewed, "TKDN-2025-0001", "reviewer-1", map[string]interface{}{
		event.KeyPreviousStatus: "pending",
		event.KeyNewStatus:      "rejected",
	})))
	require.NoError(t, HandleEvent(ctx, event.NewEvent(event.TypeSubmissionPurged, "TKDN-2025-0001", "reviewer-1", nil)))

	assert.Equal(t, accepted+1, testutil.ToFloat64(statusTransitions.WithLabelValues("submission", "pending", "accepted")))
	assert.Equal(t, rejected+1, testutil.ToFloat64(statusTransitions.WithLabelValues("justification", "pending", "rejected")))
	assert.Equal(t, purged+1, testutil.ToFloat64(submissionsPurged))
}

func TestRecordEvaluationIgnoresEmpty(t *testing.T) {
	before := testutil.ToFloat64(itemEvaluations.WithLabelValues("compliant"))
	RecordEvaluation(0, 0)
	assert.Equal(t, before, testutil.ToFloat64(itemEvaluations.WithLabelValues("compliant")))
}
