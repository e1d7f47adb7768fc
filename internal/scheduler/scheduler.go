package scheduler

import (
	"context"
	"fmt"
	"log"

	"StreakSentinel/internal/keeper"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the daily check from an internal cron in daemon mode.
// The default deployment runs once and leaves scheduling to the OS.
type Scheduler struct {
	Cron   *cron.Cron
	Keeper *keeper.Keeper
	Ctx    context.Context
}

// NewScheduler creates a Scheduler.
func NewScheduler(ctx context.Context, k *keeper.Keeper) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Keeper: k,
		Ctx:    ctx,
	}
}

// Register adds the daily check at the given cron expression.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) dailyTask() {
	log.Println("[INFO] running scheduled daily check")
	outcome := s.Keeper.Run(s.Ctx)
	if !outcome.Completed() {
		log.Printf("[ERROR] scheduled run failed: %v", outcome.Err)
	}
}
