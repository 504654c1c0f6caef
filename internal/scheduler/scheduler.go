package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"NormPeakPlot/internal/model"
	"NormPeakPlot/internal/notifier"
	"NormPeakPlot/internal/pipeline"
)

// Sender delivers refresh summaries. *notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler regenerates the outputs on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Pipeline  *pipeline.Pipeline
	Notifier  Sender // nil disables notifications
	State     *StateStore
	StartDate time.Time
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. Overlapping runs are skipped.
func NewScheduler(ctx context.Context, p *pipeline.Pipeline, n Sender, store *StateStore) *Scheduler {
	logger := cron.PrintfLogger(log.New(os.Stderr, "[cron] ", log.LstdFlags))
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		Pipeline: p,
		Notifier: n,
		State:    store,
		Ctx:      ctx,
	}
}

// Register adds the refresh task under a six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) refreshTask() {
	if _, err := s.RunNow(); err != nil {
		log.Printf("[ERROR] refresh: %v", err)
	}
}

// Outcome describes one refresh.
type Outcome struct {
	RunID   string
	Changed bool
	Result  *pipeline.Result
}

// RunNow refreshes immediately. Outputs are rewritten on every run; state
// and notifications only advance when the last observation changes.
func (s *Scheduler) RunNow() (*Outcome, error) {
	runID := uuid.NewString()
	series := s.Pipeline.Spec.Name
	log.Printf("[INFO] running refresh %s for %s", runID, series)

	res, err := s.Pipeline.Run(s.Ctx, s.StartDate, time.Time{})
	if err != nil {
		s.trySend(notifier.FormatFailure(series, err, runID))
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	out := &Outcome{RunID: runID, Result: res}
	prev, seen := s.State.Get(series)
	if seen && prev.LastObservation.Equal(res.EndDate) {
		log.Printf("[INFO] %s unchanged since %s (run %s)", series, res.EndDate.Format(model.DateFormat), prev.LastRunID)
		return out, nil
	}

	out.Changed = true
	st := SeriesState{
		LastObservation: res.EndDate,
		LastRunID:       runID,
		LastRunAt:       time.Now(),
		Outputs:         res.Outputs,
	}
	if err := s.State.Put(series, st); err != nil {
		log.Printf("[ERROR] save refresh state: %v", err)
	}
	s.trySend(notifier.FormatRefreshReport(res, runID))
	return out, nil
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
