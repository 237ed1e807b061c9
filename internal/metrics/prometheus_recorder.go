package metrics

import (
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	rosterCounts     *prom.GaugeVec
	statusChanges    *prom.CounterVec
	milestones       *prom.CounterVec
	broadcastResults *prom.CounterVec
	saveDuration     prom.Histogram
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.rosterCounts = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "rosterd",
			Name:      "participants",
			Help:      "Current participant counts by attendance status",
		}, []string{"status"})
		pr.statusChanges = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rosterd",
			Name:      "status_changes_total",
			Help:      "Status change operations by new status",
		}, []string{"status"})
		pr.milestones = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rosterd",
			Name:      "milestones_fired_total",
			Help:      "Capacity milestone notifications emitted, by threshold",
		}, []string{"threshold"})
		pr.broadcastResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rosterd",
			Name:      "broadcast_results_total",
			Help:      "Broadcast delivery attempts by success/failure",
		}, []string{"result"})
		pr.saveDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "rosterd",
			Name:      "snapshot_save_duration_seconds",
			Help:      "Duration of roster snapshot writes",
			Buckets:   prom.DefBuckets,
		})
		reg.MustRegister(pr.rosterCounts, pr.statusChanges, pr.milestones, pr.broadcastResults, pr.saveDuration)
	})
	return pr
}

func (p *PrometheusRecorder) SetRosterCounts(playing, notPlaying, maybe, ignored int) {
	if p == nil || p.rosterCounts == nil {
		return
	}
	p.rosterCounts.WithLabelValues("playing").Set(float64(playing))
	p.rosterCounts.WithLabelValues("not_playing").Set(float64(notPlaying))
	p.rosterCounts.WithLabelValues("maybe").Set(float64(maybe))
	p.rosterCounts.WithLabelValues("ignored").Set(float64(ignored))
}

func (p *PrometheusRecorder) IncStatusChange(status string) {
	if p == nil || p.statusChanges == nil {
		return
	}
	p.statusChanges.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) IncMilestone(threshold int) {
	if p == nil || p.milestones == nil {
		return
	}
	p.milestones.WithLabelValues(strconv.Itoa(threshold)).Inc()
}

func (p *PrometheusRecorder) IncBroadcastResult(success bool) {
	if p == nil || p.broadcastResults == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.broadcastResults.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveSaveDuration(d time.Duration) {
	if p == nil || p.saveDuration == nil {
		return
	}
	p.saveDuration.Observe(d.Seconds())
}
