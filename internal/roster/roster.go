package roster

import "log/slog"

// ParticipantID is the stable identifier for a person, supplied by the
// transport layer (a chat user id). It is never generated internally.
type ParticipantID int64

// Participant is the transport-level view of a person: a stable id plus
// an optional display name used when rendering the roster list.
type Participant struct {
	ID   ParticipantID
	Name string
}

// Roster is the persisted aggregate: who intends to play, everyone who
// has ever interacted, and the highest capacity milestone already
// announced. A participant holds at most one status at a time; the map
// representation makes that structural.
type Roster struct {
	StatusOf              map[ParticipantID]Status
	EverSeen              map[ParticipantID]bool
	Names                 map[ParticipantID]string
	LastNotifiedThreshold int
}

// New returns an empty roster, the state of a first run with no snapshot.
func New() *Roster {
	return &Roster{
		StatusOf: make(map[ParticipantID]Status),
		EverSeen: make(map[ParticipantID]bool),
		Names:    make(map[ParticipantID]string),
	}
}

// FromSets rebuilds a roster from the snapshot encoding, which stores the
// three status sets separately. A well-formed snapshot has disjoint sets
// and everSeen covering their union; a snapshot that violates either is
// repaired deterministically (playing wins over not-playing wins over
// maybe, everSeen is widened) and the repair is logged. The roster must
// stay usable even when the snapshot has drifted.
func FromSets(playing, notPlaying, maybe, everSeen []ParticipantID, names map[ParticipantID]string, lastNotified int) *Roster {
	r := New()
	repaired := 0
	for _, set := range []struct {
		status  Status
		members []ParticipantID
	}{
		{StatusPlaying, playing},
		{StatusNotPlaying, notPlaying},
		{StatusMaybe, maybe},
	} {
		for _, id := range set.members {
			if prev, ok := r.StatusOf[id]; ok {
				repaired++
				slog.Warn("participant present in two status sets, keeping first",
					"participant", int64(id), "kept", string(prev), "dropped", string(set.status))
				continue
			}
			r.StatusOf[id] = set.status
		}
	}
	for _, id := range everSeen {
		r.EverSeen[id] = true
	}
	for id := range r.StatusOf {
		if !r.EverSeen[id] {
			repaired++
			r.EverSeen[id] = true
		}
	}
	for id, name := range names {
		r.Names[id] = name
	}
	r.LastNotifiedThreshold = lastNotified
	if repaired > 0 {
		slog.Warn("repaired roster snapshot on load", "repairs", repaired)
	}
	return r
}

// SetStatus moves a participant into the given status set, removing them
// from whichever set held them before. Removal from a set that does not
// contain the participant is a no-op, not an error.
func (r *Roster) SetStatus(p Participant, s Status) {
	r.StatusOf[p.ID] = s
	r.RecordInteraction(p)
}

// RecordInteraction marks a participant as having interacted at least
// once. Idempotent.
func (r *Roster) RecordInteraction(p Participant) {
	r.EverSeen[p.ID] = true
	if p.Name != "" {
		r.Names[p.ID] = p.Name
	}
}

// CountByStatus returns the size of one status set.
func (r *Roster) CountByStatus(s Status) int {
	n := 0
	for _, have := range r.StatusOf {
		if have == s {
			n++
		}
	}
	return n
}

// Members returns the participants holding the given status. Order is
// unspecified; callers that render lists sort for stable output.
func (r *Roster) Members(s Status) []Participant {
	var out []Participant
	for id, have := range r.StatusOf {
		if have == s {
			out = append(out, Participant{ID: id, Name: r.Names[id]})
		}
	}
	return out
}

// Reset re-initializes every field to its empty/zero value, the state of
// a brand-new roster.
func (r *Roster) Reset() {
	r.StatusOf = make(map[ParticipantID]Status)
	r.EverSeen = make(map[ParticipantID]bool)
	r.Names = make(map[ParticipantID]string)
	r.LastNotifiedThreshold = 0
}
