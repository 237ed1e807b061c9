package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/rosterd/internal/config"
	"git.home.luguber.info/inful/rosterd/internal/logfields"
	"git.home.luguber.info/inful/rosterd/internal/notify"
	"git.home.luguber.info/inful/rosterd/internal/roster"
)

// defaultReminderText is broadcast when the schedule has no custom text.
const defaultReminderText = "⚽ Завтра игра! Отметься: играешь или нет?"

// Scheduler wraps gocron for the periodic roster jobs: the match-day
// reminder broadcast and the post-match roster reset.
type Scheduler struct {
	scheduler gocron.Scheduler
	engine    *roster.Engine
	notifier  notify.Notifier
}

// NewScheduler creates the scheduler and registers the configured jobs.
// Empty cron expressions disable the corresponding job.
func NewScheduler(cfg config.ScheduleConfig, engine *roster.Engine, notifier notify.Notifier) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	s := &Scheduler{
		scheduler: sched,
		engine:    engine,
		notifier:  notifier,
	}

	if cfg.ReminderCron != "" {
		text := cfg.ReminderText
		if text == "" {
			text = defaultReminderText
		}
		job, err := sched.NewJob(
			gocron.CronJob(cfg.ReminderCron, false),
			gocron.NewTask(s.sendReminder, text),
			gocron.WithName("match-reminder"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to schedule reminder: %w", err)
		}
		slog.Info("reminder scheduled", "cron", cfg.ReminderCron, logfields.ScheduleID(job.ID().String()))
	}

	if cfg.ResetCron != "" {
		job, err := sched.NewJob(
			gocron.CronJob(cfg.ResetCron, false),
			gocron.NewTask(s.resetRoster),
			gocron.WithName("roster-reset"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to schedule reset: %w", err)
		}
		slog.Info("roster reset scheduled", "cron", cfg.ResetCron, logfields.ScheduleID(job.ID().String()))
	}

	return s, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) sendReminder(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Threshold zero marks a schedule-driven broadcast, not a milestone.
	n := roster.Notification{Text: text}
	if err := s.notifier.Broadcast(ctx, n); err != nil {
		slog.Error("failed to send reminder", logfields.Error(err))
		return
	}
	slog.Info("match reminder sent")
}

func (s *Scheduler) resetRoster() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.engine.Reset(ctx); err != nil {
		slog.Error("scheduled roster reset failed", logfields.Error(err))
	}
}
