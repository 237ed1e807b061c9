package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyParticipant = "participant"
	KeyStatus      = "status"
	KeyThreshold   = "threshold"
	KeyPlaying     = "playing"
	KeySubject     = "subject"
	KeyScheduleID  = "schedule_id"
	KeyDurationMS  = "duration_ms"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Participant(id int64) slog.Attr  { return slog.Int64(KeyParticipant, id) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func Threshold(t int) slog.Attr       { return slog.Int(KeyThreshold, t) }
func Playing(n int) slog.Attr         { return slog.Int(KeyPlaying, n) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func ScheduleID(id string) slog.Attr  { return slog.String(KeyScheduleID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
