package notifier

import (
	"context"
	"log"

	"StreakSentinel/internal/model"
)

// Notifier delivers a run outcome to the operator.
type Notifier interface {
	Notify(ctx context.Context, outcome *model.Outcome) error
	Name() string
}

// NoopNotifier is used when no sink is configured or --no-email is set.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (n *NoopNotifier) Name() string { return "noop" }

func (n *NoopNotifier) Notify(_ context.Context, outcome *model.Outcome) error {
	log.Printf("[INFO] notifications disabled, would send: %s", Subject(outcome))
	return nil
}

// MultiNotifier fans an outcome out to several sinks. Send failures are
// logged per sink and the first one is returned.
type MultiNotifier struct {
	Sinks []Notifier
}

func NewMultiNotifier(sinks ...Notifier) *MultiNotifier {
	return &MultiNotifier{Sinks: sinks}
}

func (m *MultiNotifier) Name() string { return "multi" }

func (m *MultiNotifier) Notify(ctx context.Context, outcome *model.Outcome) error {
	var firstErr error
	for _, s := range m.Sinks {
		if err := s.Notify(ctx, outcome); err != nil {
			log.Printf("[ERROR] %s notify: %v", s.Name(), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
