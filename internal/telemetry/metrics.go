package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const pushJobName = "upcoming_events"

// runMetrics are the gauges describing one run. They live in a private registry because a run pushes its metrics
// once on exit instead of being scraped
type runMetrics struct {
	registry *prometheus.Registry

	issuesFetched   prometheus.Gauge
	eventsPublished prometheus.Gauge
	stageDuration   *prometheus.GaugeVec
	lastSuccess     prometheus.Gauge
}

func newRunMetrics() *runMetrics {
	m := &runMetrics{
		registry: prometheus.NewRegistry(),
	}
	m.issuesFetched = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "upcoming_events",
		Name:      "issues_fetched",
		Help:      "Number of open event issues fetched",
	})
	m.eventsPublished = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "upcoming_events",
		Name:      "events_published",
		Help:      "Number of events rendered and published",
	})
	m.stageDuration = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "upcoming_events",
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each pipeline stage",
	}, []string{"stage"})
	m.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "upcoming_events",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful run",
	})

	m.registry.MustRegister(m.issuesFetched, m.eventsPublished, m.stageDuration, m.lastSuccess)
	return m
}

func (m *runMetrics) push(ctx context.Context, url string, runID string) error {
	err := push.New(url, pushJobName).
		Gatherer(m.registry).
		Grouping("run_id", runID).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
