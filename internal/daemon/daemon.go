// Package daemon wires the roster engine, its collaborators and the
// HTTP surface into one long-running process.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/rosterd/internal/config"
	"git.home.luguber.info/inful/rosterd/internal/journal"
	"git.home.luguber.info/inful/rosterd/internal/logfields"
	"git.home.luguber.info/inful/rosterd/internal/metrics"
	"git.home.luguber.info/inful/rosterd/internal/notify"
	"git.home.luguber.info/inful/rosterd/internal/roster"
	"git.home.luguber.info/inful/rosterd/internal/server"
	"git.home.luguber.info/inful/rosterd/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Daemon owns the construction order and lifecycle of every component.
type Daemon struct {
	cfg      *config.Config
	engine   *roster.Engine
	journal  journal.Journal
	notifier notify.Notifier
	recorder metrics.Recorder
	server   *server.Server
	sched    *Scheduler
	watcher  *ConfigWatcher
}

// New builds the daemon from configuration: store, journal, notifier,
// metrics, engine, HTTP server, scheduler.
func New(cfg *config.Config, configPath string) (*Daemon, error) {
	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create roster store: %w", err)
	}

	d := &Daemon{cfg: cfg, recorder: metrics.NoopRecorder{}, notifier: notify.Noop{}}

	var registry *prom.Registry
	if cfg.Metrics.Enabled {
		registry = prom.NewRegistry()
		d.recorder = metrics.NewPrometheusRecorder(registry)
	}

	if cfg.Journal.Enabled {
		path := cfg.Journal.Path
		if path == "" {
			path = filepath.Join(cfg.DataDir, "journal.db")
		}
		j, err := journal.NewSQLiteJournal(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		d.journal = j
	}

	if cfg.Broadcast.Enabled {
		n, err := notify.NewNATSNotifier(cfg.Broadcast.NATSURL, cfg.Broadcast.Subject)
		if err != nil {
			d.closeCollaborators()
			return nil, fmt.Errorf("failed to create notifier: %w", err)
		}
		d.notifier = n
	}

	opts := []roster.EngineOption{
		roster.WithRecorder(d.recorder),
		roster.WithMessages(messagesFromConfig(cfg.Messages)),
	}
	if d.journal != nil {
		opts = append(opts, roster.WithJournal(d.journal))
	}
	engine, err := roster.NewEngine(st, cfg.Thresholds, opts...)
	if err != nil {
		d.closeCollaborators()
		return nil, err
	}
	d.engine = engine

	serverOpts := server.Options{
		Journal:  d.journal,
		Notifier: d.notifier,
		Recorder: d.recorder,
	}
	if registry != nil {
		serverOpts.PrometheusHandler = metrics.HTTPHandler(registry)
	}
	d.server = server.New(cfg, engine, serverOpts)

	sched, err := NewScheduler(cfg.Schedule, engine, d.notifier)
	if err != nil {
		d.closeCollaborators()
		return nil, err
	}
	d.sched = sched

	if configPath != "" {
		watcher, err := NewConfigWatcher(configPath, d)
		if err != nil {
			slog.Warn("config watcher disabled", logfields.Error(err))
		} else {
			d.watcher = watcher
		}
	}

	return d, nil
}

// Engine exposes the roster engine, mainly for tests and the CLI.
func (d *Daemon) Engine() *roster.Engine { return d.engine }

// Run starts all components and blocks until the context is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.server.Start(ctx); err != nil {
		return err
	}
	d.sched.Start(ctx)
	if d.watcher != nil {
		if err := d.watcher.Start(ctx); err != nil {
			slog.Warn("failed to start config watcher", logfields.Error(err))
		}
	}

	slog.Info("rosterd running",
		"addr", d.cfg.HTTP.Addr,
		"thresholds", fmt.Sprint(d.cfg.Thresholds),
		"journal", d.cfg.Journal.Enabled,
		"broadcast", d.cfg.Broadcast.Enabled)

	<-ctx.Done()
	return d.shutdown()
}

// reload applies a changed configuration. Thresholds and messages take
// effect live; storage, transport and schedule changes need a restart.
func (d *Daemon) reload(cfg *config.Config) {
	d.engine.SetThresholds(cfg.Thresholds)
	d.engine.SetMessages(messagesFromConfig(cfg.Messages))
	d.cfg.Thresholds = cfg.Thresholds
	d.cfg.Messages = cfg.Messages
	slog.Info("configuration reloaded", "thresholds", fmt.Sprint(cfg.Thresholds))
}

func (d *Daemon) shutdown() error {
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if d.watcher != nil {
		d.watcher.Stop()
	}
	if err := d.sched.Stop(shutdownCtx); err != nil {
		slog.Error("failed to stop scheduler", logfields.Error(err))
	}
	if err := d.server.Stop(shutdownCtx); err != nil {
		slog.Error("failed to stop HTTP server", logfields.Error(err))
	}
	d.closeCollaborators()
	return nil
}

// closeCollaborators releases the journal and notifier. Used on shutdown
// and when construction fails after they were already opened.
func (d *Daemon) closeCollaborators() {
	if d.journal != nil {
		if err := d.journal.Close(); err != nil {
			slog.Error("failed to close journal", logfields.Error(err))
		}
	}
	if err := d.notifier.Close(); err != nil {
		slog.Error("failed to close notifier", logfields.Error(err))
	}
}

// messagesFromConfig merges config overrides onto the default message set.
func messagesFromConfig(mc config.MessagesConfig) roster.Messages {
	m := roster.DefaultMessages()
	if mc.Greeting != "" {
		m.GreetingText = mc.Greeting
	}
	if mc.ConfirmPlaying != "" {
		m.ConfirmPlaying = mc.ConfirmPlaying
	}
	if mc.ConfirmNot != "" {
		m.ConfirmNot = mc.ConfirmNot
	}
	if mc.ConfirmMaybe != "" {
		m.ConfirmMaybe = mc.ConfirmMaybe
	}
	if mc.Milestone != "" {
		m.MilestoneText = mc.Milestone
	}
	if mc.Reset != "" {
		m.ResetText = mc.Reset
	}
	if mc.EmptyRoster != "" {
		m.EmptyRoster = mc.EmptyRoster
	}
	return m
}
