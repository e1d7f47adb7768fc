package main

import (
	"context"
	"testing"

	"StreakSentinel/internal/config"
	"StreakSentinel/internal/keeper"
	"StreakSentinel/internal/model"
	"StreakSentinel/internal/notifier"
	"StreakSentinel/internal/recorder"
)

type stubAPI struct {
	fetchCalls int
}

func (s *stubAPI) Login(context.Context) error { return nil }

func (s *stubAPI) FetchProfile(context.Context) (*model.Profile, error) {
	s.fetchCalls++
	ts := int64(1700000000)
	balance := 500
	return &model.Profile{
		ID:         1,
		Username:   "alice",
		SiteStreak: 10,
		GemBalance: &balance,
		Inventory:  map[string]*int64{"streak_freeze": &ts},
	}, nil
}

func (s *stubAPI) Purchase(context.Context, string, string) (*model.PurchaseResult, error) {
	return &model.PurchaseResult{}, nil
}

func (s *stubAPI) SetToken(string)      {}
func (s *stubAPI) SessionToken() string { return "tok" }

// The startup check must finish before the daemon starts waiting for
// signals, so a shutdown right after startup still gets a full run.
func TestRunDaemon_StartupCheckCompletesBeforeExit(t *testing.T) {
	t.Setenv("RUN_ON_START", "true")

	api := &stubAPI{}
	k := keeper.New(api, notifier.NewNoopNotifier(), recorder.NewNoopRecorder())

	cfg := &config.Config{}
	cfg.Schedule.DailyCron = "0 0 6 * * *"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := runDaemon(ctx, cfg, k); err != nil {
		t.Fatalf("runDaemon: %v", err)
	}
	if api.fetchCalls == 0 {
		t.Error("startup check did not run before the daemon exited")
	}
}
