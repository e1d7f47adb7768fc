package keeper

import (
	"context"
	"errors"
	"log"
	"time"

	"StreakSentinel/internal/duolingo"
	"StreakSentinel/internal/model"
	"StreakSentinel/internal/notifier"
	"StreakSentinel/internal/recorder"
	"StreakSentinel/internal/strategy"
)

// API is the slice of the Duolingo client the keeper drives.
type API interface {
	Login(ctx context.Context) error
	FetchProfile(ctx context.Context) (*model.Profile, error)
	Purchase(ctx context.Context, itemName, languageCode string) (*model.PurchaseResult, error)
	SetToken(token string)
	SessionToken() string
}

// Keeper runs one streak-maintenance check: authenticate, read the profile,
// decide, optionally purchase, then notify and record.
type Keeper struct {
	Client   API
	Notifier notifier.Notifier
	Recorder recorder.Recorder

	SessionFile  string
	ItemName     string
	PurchaseCost int
	LowThreshold int
	DryRun       bool
}

// New creates a Keeper with the strategy defaults filled in.
func New(client API, n notifier.Notifier, rec recorder.Recorder) *Keeper {
	return &Keeper{
		Client:       client,
		Notifier:     n,
		Recorder:     rec,
		ItemName:     "streak_freeze",
		PurchaseCost: strategy.DefaultPurchaseCost,
		LowThreshold: strategy.DefaultLowThreshold,
	}
}

// authenticate establishes a session and returns a fresh profile snapshot.
// A cached token is used optimistically; if the server rejects it, the
// keeper falls back to a credential login and overwrites the cache.
func (k *Keeper) authenticate(ctx context.Context) (*model.Profile, error) {
	cached, err := duolingo.LoadSession(k.SessionFile)
	if err != nil {
		log.Printf("[WARN] read session cache: %v", err)
	}
	if cached != "" {
		k.Client.SetToken(cached)
		profile, err := k.Client.FetchProfile(ctx)
		if err == nil {
			log.Println("[INFO] cached session token accepted")
			return profile, nil
		}
		var authErr *duolingo.AuthenticationError
		if !errors.As(err, &authErr) {
			return nil, err
		}
		log.Println("[WARN] cached session token rejected, logging in fresh")
		k.Client.SetToken("")
	}

	if err := k.Client.Login(ctx); err != nil {
		return nil, err
	}
	if err := duolingo.SaveSession(k.SessionFile, k.Client.SessionToken()); err != nil {
		log.Printf("[WARN] write session cache: %v", err)
	}
	return k.Client.FetchProfile(ctx)
}

// Run executes the full check and returns the terminal outcome. Business
// skips (already owned, insufficient funds) complete the run; only auth and
// transport failures yield an error outcome.
func (k *Keeper) Run(ctx context.Context) *model.Outcome {
	log.Println("[INFO] starting streak maintenance check")

	outcome := k.evaluate(ctx)
	outcome.At = time.Now()

	if err := k.Notifier.Notify(ctx, outcome); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
	if err := k.Recorder.RecordRun(outcome); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}

	log.Printf("[INFO] run finished: %s", outcome.Kind)
	return outcome
}

func (k *Keeper) evaluate(ctx context.Context) *model.Outcome {
	profile, err := k.authenticate(ctx)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return &model.Outcome{Kind: model.OutcomeError, Err: err,
			PurchaseCost: k.PurchaseCost, LowThreshold: k.LowThreshold}
	}

	balance := profile.Balance()
	hasFreeze := profile.HasItem(k.ItemName)
	decision := strategy.Decide(hasFreeze, balance, k.PurchaseCost)
	severity := strategy.ClassifyBalance(balance, k.PurchaseCost, k.LowThreshold)

	log.Printf("[INFO] streak=%d extended_today=%v gems=%d freeze=%v decision=%s",
		profile.SiteStreak, profile.StreakExtendedToday, balance, hasFreeze, decision)

	outcome := &model.Outcome{
		Decision:     decision,
		Severity:     severity,
		Streak:       profile.SiteStreak,
		Balance:      balance,
		HasFreeze:    hasFreeze,
		PurchaseCost: k.PurchaseCost,
		LowThreshold: k.LowThreshold,
	}

	// A zero streak means protection already failed; there is nothing left
	// to buy a freeze for this cycle, only the operator to alert.
	if profile.SiteStreak == 0 {
		log.Println("[WARN] streak has been broken")
		outcome.Kind = model.OutcomeStreakBroken
		return outcome
	}

	switch decision {
	case model.DecisionSkipAlreadyOwned:
		outcome.Kind = model.OutcomeAlreadyOwned
	case model.DecisionSkipInsufficientFunds:
		outcome.Kind = model.OutcomeInsufficientFunds
	case model.DecisionBuy:
		k.buy(ctx, profile, outcome)
	}
	return outcome
}

// buy performs (or, in dry-run mode, only reports) the purchase and fills in
// the outcome. Purchase-time "already owned" is a normal terminal state.
func (k *Keeper) buy(ctx context.Context, profile *model.Profile, outcome *model.Outcome) {
	language := duolingo.ResolveLearningLanguage(profile)

	if k.DryRun {
		log.Printf("[INFO] dry run: would purchase %s for language %s (cost %d gems)",
			k.ItemName, language, k.PurchaseCost)
		// No purchase happened; the outcome keeps the real balance and the
		// formatter derives the hypothetical remainder.
		outcome.Kind = model.OutcomeDryRun
		return
	}

	log.Printf("[INFO] purchasing %s for language %s", k.ItemName, language)
	result, err := k.Client.Purchase(ctx, k.ItemName, language)
	if err != nil {
		var owned *duolingo.AlreadyOwnedError
		var broke *duolingo.InsufficientFundsError
		switch {
		case errors.As(err, &owned):
			log.Println("[INFO] server reports item already owned")
			outcome.Kind = model.OutcomeAlreadyOwned
			outcome.HasFreeze = true
		case errors.As(err, &broke):
			log.Printf("[WARN] %v", err)
			outcome.Kind = model.OutcomeInsufficientFunds
		default:
			log.Printf("[ERROR] purchase: %v", err)
			outcome.Kind = model.OutcomeError
			outcome.Err = err
		}
		return
	}

	log.Printf("[INFO] purchased %s at %s", result.ItemName, result.PurchasedAt.Format(time.RFC3339))
	outcome.Kind = model.OutcomePurchased
	outcome.HasFreeze = true
	// Balance updates are not re-fetched; report the computed remainder.
	outcome.Balance = profile.Balance() - k.PurchaseCost
	outcome.Severity = strategy.ClassifyBalance(outcome.Balance, k.PurchaseCost, k.LowThreshold)
}

// Status runs the read path only and renders the status report.
func (k *Keeper) Status(ctx context.Context) (string, error) {
	profile, err := k.authenticate(ctx)
	if err != nil {
		return "", err
	}
	balance := profile.Balance()
	severity := strategy.ClassifyBalance(balance, k.PurchaseCost, k.LowThreshold)
	return notifier.FormatStatusReport(profile.SiteStreak, profile.StreakExtendedToday,
		profile.HasItem(k.ItemName), balance, severity), nil
}
