// Package scheduler drives recurring analysis runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// runTimeout bounds one watch run so a hung data source cannot pile up
// overlapping runs.
const runTimeout = 2 * time.Minute

// Analyzer is the part of the tracker the scheduler drives.
type Analyzer interface {
	Analyze(ctx context.Context, symbol, period string) (*model.Report, error)
}

// Scheduler manages the recurring watch task for one symbol.
type Scheduler struct {
	Cron    *cron.Cron
	Tracker Analyzer
	Symbol  string
	Period  string
	Ctx     context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, tr Analyzer, symbol, period string) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Tracker: tr,
		Symbol:  symbol,
		Period:  period,
		Ctx:     ctx,
	}
}

// Register registers the watch task on its cron spec.
func (s *Scheduler) Register(watchCron string) error {
	if _, err := s.Cron.AddFunc(watchCron, s.watchTask); err != nil {
		return fmt.Errorf("register watch task: %w", err)
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

// RunNow executes the watch task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.watchTask()
}

func (s *Scheduler) watchTask() {
	log.Printf("[INFO] running watch task for %s", s.Symbol)
	ctx, cancel := context.WithTimeout(s.Ctx, runTimeout)
	defer cancel()

	if _, err := s.Tracker.Analyze(ctx, s.Symbol, s.Period); err != nil {
		log.Printf("[ERROR] watch analyze %s: %v", s.Symbol, err)
	}
}
