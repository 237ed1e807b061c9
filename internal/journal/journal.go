// Package journal keeps an append-only history of roster events.
//
// The journal is a side-car concern: the engine writes through it
// best-effort, and a journal failure never fails the roster operation
// that produced the event.
package journal

import (
	"context"
	"time"

	"git.home.luguber.info/inful/rosterd/internal/roster"
)

// EventType names the kinds of journaled events.
type EventType string

const (
	EventStatusChanged  EventType = "StatusChanged"
	EventMilestoneFired EventType = "MilestoneFired"
	EventRosterReset    EventType = "RosterReset"
)

// Entry is one journaled roster event.
type Entry struct {
	ID          int64
	Type        EventType
	Participant roster.ParticipantID
	Status      roster.Status
	Threshold   int
	Playing     int
	Timestamp   time.Time
}

// Journal persists and queries roster events.
type Journal interface {
	// StatusChanged records a participant's status change.
	StatusChanged(ctx context.Context, p roster.Participant, s roster.Status) error

	// MilestoneFired records a capacity milestone notification.
	MilestoneFired(ctx context.Context, threshold, playing int) error

	// RosterReset records an explicit roster reset.
	RosterReset(ctx context.Context) error

	// GetByParticipant retrieves all events for one participant.
	GetByParticipant(ctx context.Context, id roster.ParticipantID) ([]Entry, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Entry, error)

	// Close closes the journal and releases resources.
	Close() error
}
