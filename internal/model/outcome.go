package model

import "time"

// Decision is the action chosen by the strategy engine for one run.
type Decision string

const (
	DecisionSkipAlreadyOwned      Decision = "SKIP_ALREADY_OWNED"
	DecisionSkipInsufficientFunds Decision = "SKIP_INSUFFICIENT_FUNDS"
	DecisionBuy                   Decision = "BUY"
)

// Severity classifies the gem balance independently of the buy/skip decision.
type Severity string

const (
	SeverityOut     Severity = "OUT_OF_GEMS"
	SeverityLow     Severity = "LOW_GEMS"
	SeverityHealthy Severity = "HEALTHY"
)

// OutcomeKind is the terminal classification of one run.
type OutcomeKind string

const (
	OutcomeAlreadyOwned      OutcomeKind = "ALREADY_OWNED"
	OutcomePurchased         OutcomeKind = "PURCHASED"
	OutcomeInsufficientFunds OutcomeKind = "INSUFFICIENT_FUNDS"
	OutcomeStreakBroken      OutcomeKind = "STREAK_BROKEN"
	OutcomeDryRun            OutcomeKind = "DRY_RUN"
	OutcomeError             OutcomeKind = "ERROR"
)

// Outcome summarizes one run for notification and recording.
type Outcome struct {
	Kind     OutcomeKind
	Decision Decision
	Severity Severity

	Streak        int
	Balance       int // balance after purchase, when one happened
	HasFreeze     bool
	PurchaseCost  int
	LowThreshold  int

	Err error // set only for OutcomeError

	At time.Time
}

// Completed reports whether the run reached a decision. Business-level skips
// (already owned, insufficient funds) complete the run; only auth/transport
// failures do not.
func (o *Outcome) Completed() bool {
	return o.Kind != OutcomeError
}
