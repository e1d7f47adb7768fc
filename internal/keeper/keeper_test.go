package keeper

import (
	"context"
	"path/filepath"
	"testing"

	"StreakSentinel/internal/duolingo"
	"StreakSentinel/internal/model"
	"StreakSentinel/internal/notifier"
	"StreakSentinel/internal/recorder"
)

// fakeAPI is a controllable stand-in for the Duolingo client.
type fakeAPI struct {
	profile     *model.Profile
	loginErr    error
	fetchErrs   []error // consumed one per FetchProfile call
	purchaseErr error

	token         string
	loginCalls    int
	fetchCalls    int
	purchaseCalls int
	lastItem      string
	lastLanguage  string
}

func (f *fakeAPI) Login(_ context.Context) error {
	f.loginCalls++
	if f.loginErr != nil {
		return f.loginErr
	}
	f.token = "fresh-token"
	return nil
}

func (f *fakeAPI) FetchProfile(_ context.Context) (*model.Profile, error) {
	f.fetchCalls++
	if len(f.fetchErrs) > 0 {
		err := f.fetchErrs[0]
		f.fetchErrs = f.fetchErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.profile, nil
}

func (f *fakeAPI) Purchase(_ context.Context, itemName, languageCode string) (*model.PurchaseResult, error) {
	f.purchaseCalls++
	f.lastItem = itemName
	f.lastLanguage = languageCode
	if f.purchaseErr != nil {
		return nil, f.purchaseErr
	}
	return &model.PurchaseResult{ItemName: itemName}, nil
}

func (f *fakeAPI) SetToken(token string) { f.token = token }
func (f *fakeAPI) SessionToken() string  { return f.token }

// captureNotifier records the last outcome it was asked to deliver.
type captureNotifier struct {
	last *model.Outcome
}

func (c *captureNotifier) Name() string { return "capture" }
func (c *captureNotifier) Notify(_ context.Context, o *model.Outcome) error {
	c.last = o
	return nil
}

func intPtr(v int) *int { return &v }

func profileWith(balance int, hasFreeze bool) *model.Profile {
	inv := map[string]*int64{}
	if hasFreeze {
		ts := int64(1700000000)
		inv["streak_freeze"] = &ts
	} else {
		inv["streak_freeze"] = nil
	}
	return &model.Profile{
		ID:         42,
		Username:   "alice",
		SiteStreak: 365,
		GemBalance: intPtr(balance),
		Inventory:  inv,
		Languages:  []model.Language{{Code: "es", Current: true}},
	}
}

func newTestKeeper(api *fakeAPI) (*Keeper, *captureNotifier) {
	sink := &captureNotifier{}
	k := New(api, sink, recorder.NewNoopRecorder())
	return k, sink
}

func TestRun_AlreadyOwnedSkipsRegardlessOfBalance(t *testing.T) {
	for _, balance := range []int{0, 199, 250, 5000} {
		api := &fakeAPI{profile: profileWith(balance, true)}
		k, sink := newTestKeeper(api)

		outcome := k.Run(context.Background())
		if outcome.Kind != model.OutcomeAlreadyOwned {
			t.Errorf("balance %d: expected ALREADY_OWNED, got %s", balance, outcome.Kind)
		}
		if api.purchaseCalls != 0 {
			t.Errorf("balance %d: expected zero purchase calls, got %d", balance, api.purchaseCalls)
		}
		if !outcome.Completed() {
			t.Error("already-owned must complete the run")
		}
		if sink.last == nil {
			t.Error("expected a notification for already-owned outcome")
		}
	}
}

func TestRun_InsufficientFunds(t *testing.T) {
	api := &fakeAPI{profile: &model.Profile{
		Rupees:    intPtr(50),
		Inventory: map[string]*int64{},
	}}
	k, _ := newTestKeeper(api)

	outcome := k.Run(context.Background())
	if outcome.Kind != model.OutcomeInsufficientFunds {
		t.Fatalf("expected INSUFFICIENT_FUNDS, got %s", outcome.Kind)
	}
	if outcome.Severity != model.SeverityOut {
		t.Errorf("expected OUT severity, got %s", outcome.Severity)
	}
	if api.purchaseCalls != 0 {
		t.Errorf("expected zero purchase calls, got %d", api.purchaseCalls)
	}
	if !outcome.Completed() {
		t.Error("insufficient funds must complete the run")
	}
}

func TestRun_PurchaseSuccess(t *testing.T) {
	api := &fakeAPI{profile: profileWith(250, false)}
	k, sink := newTestKeeper(api)

	outcome := k.Run(context.Background())
	if outcome.Kind != model.OutcomePurchased {
		t.Fatalf("expected PURCHASED, got %s", outcome.Kind)
	}
	if api.purchaseCalls != 1 {
		t.Fatalf("expected one purchase call, got %d", api.purchaseCalls)
	}
	if api.lastItem != "streak_freeze" || api.lastLanguage != "es" {
		t.Errorf("unexpected purchase args: %s / %s", api.lastItem, api.lastLanguage)
	}
	if outcome.Balance != 50 {
		t.Errorf("expected computed remainder 50, got %d", outcome.Balance)
	}
	if !outcome.HasFreeze {
		t.Error("expected freeze equipped after purchase")
	}
	if sink.last == nil || sink.last.Kind != model.OutcomePurchased {
		t.Error("expected purchase notification")
	}
}

func TestRun_DryRunNeverPurchases(t *testing.T) {
	api := &fakeAPI{profile: profileWith(800, false)}
	k, _ := newTestKeeper(api)
	k.DryRun = true

	outcome := k.Run(context.Background())
	if outcome.Kind != model.OutcomeDryRun {
		t.Fatalf("expected DRY_RUN, got %s", outcome.Kind)
	}
	if outcome.Decision != model.DecisionBuy {
		t.Errorf("dry run must still report the decision, got %s", outcome.Decision)
	}
	if api.purchaseCalls != 0 {
		t.Errorf("dry run made %d purchase calls", api.purchaseCalls)
	}
	if !outcome.Completed() {
		t.Error("dry run must complete the run")
	}
	if outcome.Balance != 800 {
		t.Errorf("dry run must report the real balance, got %d", outcome.Balance)
	}
}

func TestRun_BrokenStreakAlertsWithoutBuying(t *testing.T) {
	profile := profileWith(800, false)
	profile.SiteStreak = 0
	api := &fakeAPI{profile: profile}
	k, sink := newTestKeeper(api)

	outcome := k.Run(context.Background())
	if outcome.Kind != model.OutcomeStreakBroken {
		t.Fatalf("expected STREAK_BROKEN, got %s", outcome.Kind)
	}
	if api.purchaseCalls != 0 {
		t.Errorf("broken streak must not purchase, got %d calls", api.purchaseCalls)
	}
	if !outcome.Completed() {
		t.Error("broken streak must complete the run")
	}
	if sink.last == nil || sink.last.Kind != model.OutcomeStreakBroken {
		t.Error("expected a streak-broken notification")
	}
}

func TestRun_PurchaseAlreadyOwnedIsSuccess(t *testing.T) {
	api := &fakeAPI{
		profile:     profileWith(500, false),
		purchaseErr: &duolingo.AlreadyOwnedError{ItemName: "streak_freeze"},
	}
	k, _ := newTestKeeper(api)

	outcome := k.Run(context.Background())
	if outcome.Kind != model.OutcomeAlreadyOwned {
		t.Fatalf("expected ALREADY_OWNED, got %s", outcome.Kind)
	}
	if !outcome.Completed() {
		t.Error("purchase-time already-owned must complete the run")
	}
	if api.purchaseCalls != 1 {
		t.Errorf("expected exactly one purchase attempt, got %d", api.purchaseCalls)
	}
}

func TestRun_PurchaseInsufficientFundsFromServer(t *testing.T) {
	api := &fakeAPI{
		profile:     profileWith(500, false),
		purchaseErr: &duolingo.InsufficientFundsError{ItemName: "streak_freeze"},
	}
	k, _ := newTestKeeper(api)

	outcome := k.Run(context.Background())
	if outcome.Kind != model.OutcomeInsufficientFunds {
		t.Fatalf("expected INSUFFICIENT_FUNDS, got %s", outcome.Kind)
	}
	if !outcome.Completed() {
		t.Error("server-side insufficient funds must complete the run")
	}
}

func TestRun_AuthFailureIsErrorOutcome(t *testing.T) {
	api := &fakeAPI{
		profile:  profileWith(500, false),
		loginErr: &duolingo.AuthenticationError{Reason: "bad credentials"},
	}
	k, sink := newTestKeeper(api)

	outcome := k.Run(context.Background())
	if outcome.Kind != model.OutcomeError {
		t.Fatalf("expected ERROR, got %s", outcome.Kind)
	}
	if outcome.Completed() {
		t.Error("auth failure must not count as completed")
	}
	if outcome.Err == nil {
		t.Error("expected error preserved on the outcome")
	}
	if sink.last == nil || sink.last.Kind != model.OutcomeError {
		t.Error("expected an error-class notification")
	}
}

func TestRun_PurchaseBlockedIsErrorOutcome(t *testing.T) {
	api := &fakeAPI{
		profile:     profileWith(500, false),
		purchaseErr: &duolingo.BlockedError{},
	}
	k, _ := newTestKeeper(api)

	outcome := k.Run(context.Background())
	if outcome.Kind != model.OutcomeError {
		t.Fatalf("expected ERROR, got %s", outcome.Kind)
	}
	if outcome.Completed() {
		t.Error("blocked purchase must not count as completed")
	}
}

func TestAuthenticate_CachedTokenAccepted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := duolingo.SaveSession(path, "cached-tok"); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	api := &fakeAPI{profile: profileWith(250, true)}
	k, _ := newTestKeeper(api)
	k.SessionFile = path

	outcome := k.Run(context.Background())
	if !outcome.Completed() {
		t.Fatalf("run failed: %v", outcome.Err)
	}
	if api.loginCalls != 0 {
		t.Errorf("cached token accepted, expected no login, got %d", api.loginCalls)
	}
	if api.token != "cached-tok" {
		t.Errorf("expected cached token installed, got %q", api.token)
	}
}

func TestAuthenticate_RejectedCacheFallsBackToLogin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := duolingo.SaveSession(path, "stale-tok"); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	api := &fakeAPI{
		profile:   profileWith(250, true),
		fetchErrs: []error{&duolingo.AuthenticationError{Reason: "expired"}},
	}
	k, _ := newTestKeeper(api)
	k.SessionFile = path

	outcome := k.Run(context.Background())
	if !outcome.Completed() {
		t.Fatalf("run failed: %v", outcome.Err)
	}
	if api.loginCalls != 1 {
		t.Errorf("expected fallback login, got %d calls", api.loginCalls)
	}

	cached, err := duolingo.LoadSession(path)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if cached != "fresh-token" {
		t.Errorf("expected cache overwritten after fresh login, got %q", cached)
	}
}

func TestStatus_ReadPathOnly(t *testing.T) {
	api := &fakeAPI{profile: profileWith(450, false)}
	k, _ := newTestKeeper(api)

	report, err := k.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if report == "" {
		t.Fatal("expected non-empty status report")
	}
	if api.purchaseCalls != 0 {
		t.Errorf("status must not purchase, got %d calls", api.purchaseCalls)
	}
}

var _ notifier.Notifier = (*captureNotifier)(nil)
