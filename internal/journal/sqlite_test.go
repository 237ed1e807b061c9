package journal

import (
	"testing"
	"time"

	"git.home.luguber.info/inful/rosterd/internal/roster"
)

func TestJournalAppendAndRetrieve(t *testing.T) {
	j, err := NewSQLiteJournal(":memory:")
	if err != nil {
		t.Fatalf("failed to create journal: %v", err)
	}
	defer func() { _ = j.Close() }()

	ctx := t.Context()
	p := roster.Participant{ID: 42, Name: "Вася"}

	if err := j.StatusChanged(ctx, p, roster.StatusPlaying); err != nil {
		t.Fatalf("failed to append status change: %v", err)
	}
	if err := j.StatusChanged(ctx, p, roster.StatusMaybe); err != nil {
		t.Fatalf("failed to append status change: %v", err)
	}

	entries, err := j.GetByParticipant(ctx, 42)
	if err != nil {
		t.Fatalf("failed to get entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Type != EventStatusChanged {
		t.Errorf("expected %s, got %s", EventStatusChanged, entries[0].Type)
	}
	if entries[0].Status != roster.StatusPlaying {
		t.Errorf("expected playing first, got %s", entries[0].Status)
	}
	if entries[1].Status != roster.StatusMaybe {
		t.Errorf("expected maybe second, got %s", entries[1].Status)
	}
}

func TestJournalMilestoneAndReset(t *testing.T) {
	j, err := NewSQLiteJournal(":memory:")
	if err != nil {
		t.Fatalf("failed to create journal: %v", err)
	}
	defer func() { _ = j.Close() }()

	ctx := t.Context()
	if err := j.MilestoneFired(ctx, 12, 12); err != nil {
		t.Fatalf("failed to append milestone: %v", err)
	}
	if err := j.RosterReset(ctx); err != nil {
		t.Fatalf("failed to append reset: %v", err)
	}

	start := time.Now().Add(-1 * time.Hour)
	end := time.Now().Add(1 * time.Hour)
	entries, err := j.GetRange(ctx, start, end)
	if err != nil {
		t.Fatalf("failed to get range: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Type != EventMilestoneFired || entries[0].Threshold != 12 {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Type != EventRosterReset {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestJournalRangeExcludesOutside(t *testing.T) {
	j, err := NewSQLiteJournal(":memory:")
	if err != nil {
		t.Fatalf("failed to create journal: %v", err)
	}
	defer func() { _ = j.Close() }()

	ctx := t.Context()
	if err := j.StatusChanged(ctx, roster.Participant{ID: 1}, roster.StatusPlaying); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	past := time.Now().Add(-2 * time.Hour)
	entries, err := j.GetRange(ctx, past, past.Add(time.Hour))
	if err != nil {
		t.Fatalf("failed to get range: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries in past range, got %d", len(entries))
	}
}
