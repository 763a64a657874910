// Package notify fans events out to interested subjects. The real delivery
// channels (email, chat) live outside this service; this implementation
// records events for the collaborators that pick them up.
package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event names emitted by the pipelines and engines.
const (
	EventMatchesReady  = "matches_ready"
	EventCrawlFailed   = "crawl_failed"
	EventRoleActivated = "role_activated"
	EventRoleMatches   = "role_matches_ready"
)

// Notifier delivers an event about a subject. Implementations must not
// block the caller on downstream delivery.
type Notifier interface {
	Notify(ctx context.Context, subjectID uuid.UUID, event string, payload map[string]string)
}

// LogNotifier writes events to the structured log. Delivery failures are
// impossible here; real notifiers log and swallow theirs too, callers never
// see them.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, subjectID uuid.UUID, event string, payload map[string]string) {
	fields := make([]zap.Field, 0, len(payload)+2)
	fields = append(fields, zap.String("subject_id", subjectID.String()), zap.String("event", event))
	for k, v := range payload {
		fields = append(fields, zap.String(k, v))
	}
	n.logger.Info("notification", fields...)
}
