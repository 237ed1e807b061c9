package roster

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"git.home.luguber.info/inful/rosterd/internal/logfields"
	"git.home.luguber.info/inful/rosterd/internal/metrics"
	"git.home.luguber.info/inful/rosterd/internal/retry"
)

// Store persists the roster aggregate. Load returns an empty roster when
// no snapshot exists yet; Save must be atomic with respect to partial
// writes so a crash cannot corrupt the snapshot.
type Store interface {
	Load() (*Roster, error)
	Save(*Roster) error
}

// Journal receives an append-only trail of roster events. All methods are
// best-effort from the engine's point of view: a journal failure is
// logged but never fails the roster operation itself.
type Journal interface {
	StatusChanged(ctx context.Context, p Participant, s Status) error
	MilestoneFired(ctx context.Context, threshold, playing int) error
	RosterReset(ctx context.Context) error
}

// Notification is a one-shot broadcast for the shared event channel,
// emitted when attendance first reaches a configured capacity milestone.
type Notification struct {
	Threshold int    `json:"threshold"`
	Text      string `json:"text"`
}

// StatsReport is a point-in-time summary of the roster.
type StatsReport struct {
	Playing    int
	NotPlaying int
	Maybe      int
	Ignored    int
	Players    []Participant
}

// Engine owns the single in-memory roster for the process lifetime and is
// the sole mutator of the store. Every mutating operation runs under one
// lock covering the whole read-modify-write-persist sequence, so two
// concurrent status changes can never observe each other mid-flight and
// stats never see a half-applied mutation.
type Engine struct {
	mu         sync.Mutex
	roster     *Roster
	store      Store
	journal    Journal
	recorder   metrics.Recorder
	thresholds []int
	messages   Messages
	saveRetry  retry.Policy
}

// EngineOption configures optional engine collaborators.
type EngineOption func(*Engine)

// WithJournal attaches an event journal.
func WithJournal(j Journal) EngineOption {
	return func(e *Engine) { e.journal = j }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

// WithMessages overrides the default user-facing message set.
func WithMessages(m Messages) EngineOption {
	return func(e *Engine) { e.messages = m }
}

// WithSaveRetry overrides the snapshot save retry policy.
func WithSaveRetry(p retry.Policy) EngineOption {
	return func(e *Engine) { e.saveRetry = p }
}

// NewEngine loads the roster from the store and returns an engine ready
// to serve requests. Thresholds are kept sorted; duplicates and
// non-positive values are rejected by config validation before they
// reach here.
func NewEngine(store Store, thresholds []int, opts ...EngineOption) (*Engine, error) {
	r, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	sorted := make([]int, len(thresholds))
	copy(sorted, thresholds)
	sort.Ints(sorted)

	e := &Engine{
		roster:     r,
		store:      store,
		recorder:   metrics.NoopRecorder{},
		thresholds: sorted,
		messages:   DefaultMessages(),
		saveRetry:  retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(e)
	}

	slog.Info("roster engine ready",
		slog.Int("playing", r.CountByStatus(StatusPlaying)),
		slog.Int("ever_seen", len(r.EverSeen)),
		slog.Int("last_notified_threshold", r.LastNotifiedThreshold))
	return e, nil
}

// RecordInteraction marks the participant as having interacted and
// persists the roster. Called for any inbound request, including ones
// that change no status (opening the menu counts as first contact).
func (e *Engine) RecordInteraction(ctx context.Context, p Participant) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.roster.RecordInteraction(p)
	if err := e.save(); err != nil {
		return err
	}
	e.observeCounts()
	return nil
}

// SetStatus records the participant's new attendance intent, persists the
// roster and evaluates capacity milestones. It returns the confirmation
// text for the requesting participant and, when a milestone is first
// reached, a broadcast notification for the shared channel.
//
// On a save failure the in-memory roster has already been mutated but the
// change is not durable; the caller must not confirm the action to the
// participant and may retry the whole operation.
func (e *Engine) SetStatus(ctx context.Context, p Participant, s Status) (string, *Notification, error) {
	if !s.Valid() {
		return "", nil, fmt.Errorf("invalid status %q", s)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	prevThreshold := e.roster.LastNotifiedThreshold
	e.roster.SetStatus(p, s)
	notification := e.evaluateThresholds()

	if err := e.save(); err != nil {
		// A milestone only counts as announced once it is durable.
		// Rolling the marker back keeps it armed for the retried
		// operation, otherwise the retry would persist the advanced
		// marker and the announcement would be lost.
		e.roster.LastNotifiedThreshold = prevThreshold
		return "", nil, err
	}

	e.recorder.IncStatusChange(string(s))
	e.observeCounts()
	if e.journal != nil {
		if err := e.journal.StatusChanged(ctx, p, s); err != nil {
			slog.Warn("failed to journal status change", logfields.Participant(int64(p.ID)), logfields.Error(err))
		}
		if notification != nil {
			if err := e.journal.MilestoneFired(ctx, notification.Threshold, e.roster.CountByStatus(StatusPlaying)); err != nil {
				slog.Warn("failed to journal milestone", logfields.Error(err))
			}
		}
	}
	if notification != nil {
		e.recorder.IncMilestone(notification.Threshold)
		slog.Info("attendance milestone reached",
			slog.Int("threshold", notification.Threshold),
			slog.Int("playing", e.roster.CountByStatus(StatusPlaying)))
	}

	return e.messages.Confirmation(s), notification, nil
}

// Stats computes the current report. Ignored is everyone who has ever
// interacted but holds no status; the clamp guards against integrity
// drift in a loaded snapshot, it never triggers in normal operation.
func (e *Engine) Stats() StatsReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statsLocked()
}

func (e *Engine) statsLocked() StatsReport {
	playing := e.roster.Members(StatusPlaying)
	sort.Slice(playing, func(i, j int) bool { return playing[i].ID < playing[j].ID })

	report := StatsReport{
		Playing:    len(playing),
		NotPlaying: e.roster.CountByStatus(StatusNotPlaying),
		Maybe:      e.roster.CountByStatus(StatusMaybe),
		Players:    playing,
	}
	ignored := len(e.roster.EverSeen) - report.Playing - report.NotPlaying - report.Maybe
	if ignored < 0 {
		ignored = 0
	}
	report.Ignored = ignored
	return report
}

// StatsWithText returns the report together with its rendered text, both
// taken from the same locked snapshot so the counts and the text cannot
// disagree.
func (e *Engine) StatsWithText() (StatsReport, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	report := e.statsLocked()
	return report, e.messages.StatsReport(report)
}

// StatsText renders the stats report for the requesting participant.
func (e *Engine) StatsText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.messages.StatsReport(e.statsLocked())
}

// Greeting returns the first-contact text the transport sends on a start
// interaction.
func (e *Engine) Greeting() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.messages.Greeting()
}

// Reset re-initializes the roster to its empty state and persists it.
// Milestones are re-armed: a fresh roster starts with no announced
// threshold.
func (e *Engine) Reset(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.roster.Reset()
	if err := e.save(); err != nil {
		return "", err
	}
	e.observeCounts()
	if e.journal != nil {
		if err := e.journal.RosterReset(ctx); err != nil {
			slog.Warn("failed to journal reset", logfields.Error(err))
		}
	}
	slog.Info("roster reset")
	return e.messages.ResetDone(), nil
}

// SetThresholds replaces the milestone list for future evaluations. The
// last notified threshold is never rewound, so lowering the list cannot
// re-announce an already-fired milestone.
func (e *Engine) SetThresholds(thresholds []int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sorted := make([]int, len(thresholds))
	copy(sorted, thresholds)
	sort.Ints(sorted)
	e.thresholds = sorted
}

// SetMessages replaces the user-facing message set.
func (e *Engine) SetMessages(m Messages) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = m
}

// evaluateThresholds returns a notification for the highest configured
// threshold first reached by the current playing count, or nil. The last
// notified threshold only ever moves up: dropping below an announced
// milestone and climbing back never re-announces it.
func (e *Engine) evaluateThresholds() *Notification {
	playing := e.roster.CountByStatus(StatusPlaying)
	for i := len(e.thresholds) - 1; i >= 0; i-- {
		t := e.thresholds[i]
		if playing >= t && t > e.roster.LastNotifiedThreshold {
			e.roster.LastNotifiedThreshold = t
			return &Notification{Threshold: t, Text: e.messages.Milestone(t)}
		}
	}
	return nil
}

// save writes the snapshot through the store, retrying transient
// failures per the configured policy before giving up.
func (e *Engine) save() error {
	start := time.Now()
	err := e.store.Save(e.roster)
	for attempt := 1; err != nil && attempt <= e.saveRetry.MaxRetries; attempt++ {
		time.Sleep(e.saveRetry.Delay(attempt))
		slog.Warn("retrying roster save", slog.Int("attempt", attempt), logfields.Error(err))
		err = e.store.Save(e.roster)
	}
	e.recorder.ObserveSaveDuration(time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to persist roster: %w", err)
	}
	return nil
}

func (e *Engine) observeCounts() {
	report := e.statsLocked()
	e.recorder.SetRosterCounts(report.Playing, report.NotPlaying, report.Maybe, report.Ignored)
}
