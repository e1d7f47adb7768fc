package recorder

import "StreakSentinel/internal/model"

// Recorder persists run history for later inspection. It is write-only
// observability: the decision path never reads it back.
type Recorder interface {
	RecordRun(outcome *model.Outcome) error
	Close() error
}
