package metrics

import (
	"testing"
	"time"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.SetRosterCounts(0, 0, 0, 0)
	r.IncStatusChange("maybe")
	r.IncMilestone(15)
	r.IncBroadcastResult(false)
	r.ObserveSaveDuration(time.Second)
}
