package metrics

import "time"

// Recorder defines observability hooks for roster metrics. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for
// the NoopRecorder (allowing optional injection).
type Recorder interface {
	SetRosterCounts(playing, notPlaying, maybe, ignored int)
	IncStatusChange(status string)
	IncMilestone(threshold int)
	IncBroadcastResult(success bool)
	ObserveSaveDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) SetRosterCounts(int, int, int, int) {}
func (NoopRecorder) IncStatusChange(string)             {}
func (NoopRecorder) IncMilestone(int)                   {}
func (NoopRecorder) IncBroadcastResult(bool)            {}
func (NoopRecorder) ObserveSaveDuration(time.Duration)  {}
