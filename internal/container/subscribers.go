package container

import (
	"context"

	"go.uber.org/zap"

	"github.com/garyjia/tkdn-compliance/internal/application/dispatcher"
	"github.com/garyjia/tkdn-compliance/internal/domain/event"
	"github.com/garyjia/tkdn-compliance/internal/infrastructure/metrics"
)

const (
	handlerMetrics     = "metrics"
	handlerOwnerNotice = "owner_notice"
)

// registerSubscribers attaches the metric recorder and the owner notice log to every event type.
func registerSubscribers(disp dispatcher.Dispatcher, logger *zap.Logger) {
	notices := logger.Named("notice")
	for _, t := range event.AllTypes() {
		disp.Subscribe(t, handlerMetrics, metrics.HandleEvent)
		disp.Subscribe(t, handlerOwnerNotice, ownerNotice(notices))
	}
}

// ownerNotice records what the submission owner should be told about an event.
// Delivery channels hang off this log stream.
func ownerNotice(logger *zap.Logger) dispatcher.Handler {
	return func(ctx context.Context, evt *event.Event) error {
		fields := []zap.Field{
			zap.String("event_id", evt.ID),
			zap.String("event_type", evt.Type.String()),
			zap.String("submission_id", evt.SubmissionID),
			zap.String("actor", evt.Actor),
			zap.String("correlation_id", evt.CorrelationID),
		}
		if owner := evt.GetPayloadString(event.KeyOwnerID); owner != "" {
			fields = append(fields, zap.String("owner_id", owner))
		}
		if status := evt.GetPayloadString(event.KeyNewStatus); status != "" {
			fields = append(fields, zap.String("status", status))
		}
		if reason := evt.GetPayloadString(event.KeyReason); reason != "" {
			fields = append(fields, zap.String("reason", reason))
		}

		logger.Info(noticeMessage(evt.Type), fields...)
		return nil
	}
}

func noticeMessage(t event.Type) string {
	switch t {
	case event.TypeSubmissionCreated:
		return "Submission received"
	case event.TypeStatusChanged:
		return "Submission status changed"
	case event.TypeSubmissionPurged:
		return "Submission purged"
	case event.TypeJustificationUploaded:
		return "Justification uploaded"
	case event.TypeJustificationReviewed:
		return "Justification reviewed"
	default:
		return "Submission event"
	}
}
