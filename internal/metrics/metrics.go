package metrics

import (
	"context"
	"fmt"

	"RSIMonitor/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// RunMetrics holds the gauges describing a single monitoring pass.
type RunMetrics struct {
	registry *prometheus.Registry

	RSIValue       prometheus.Gauge
	RSIAvailable   prometheus.Gauge
	AlertTriggered prometheus.Gauge
	AlertSent      prometheus.Gauge
	LastRun        prometheus.Gauge
	RunDuration    prometheus.Gauge
}

// New creates the run gauges on a private registry.
func New() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		RSIValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsi_monitor_rsi_value",
			Help: "Latest computed RSI value",
		}),
		RSIAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsi_monitor_rsi_available",
			Help: "1 if the RSI could be computed on the last run",
		}),
		AlertTriggered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsi_monitor_alert_triggered",
			Help: "1 if the last run decided to notify",
		}),
		AlertSent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsi_monitor_alert_sent",
			Help: "1 if the last run delivered an alert",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsi_monitor_last_run_timestamp_seconds",
			Help: "Unix time the last run started",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsi_monitor_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
	}
	m.registry.MustRegister(m.RSIValue, m.RSIAvailable, m.AlertTriggered, m.AlertSent, m.LastRun, m.RunDuration)
	return m
}

// Registry exposes the underlying registry.
func (m *RunMetrics) Registry() *prometheus.Registry { return m.registry }

// Observe records a run report. An unavailable RSI leaves RSIValue untouched.
func (m *RunMetrics) Observe(r model.RunReport) {
	if v, ok := r.RSI.Value(); ok {
		m.RSIValue.Set(v)
		m.RSIAvailable.Set(1)
	} else {
		m.RSIAvailable.Set(0)
	}
	m.AlertTriggered.Set(boolFloat(r.Decision.ShouldNotify()))
	m.AlertSent.Set(boolFloat(r.Notification.Sent))
	m.LastRun.Set(float64(r.StartedAt.Unix()))
	m.RunDuration.Set(r.Duration.Seconds())
}

// Push sends the gauges to a Pushgateway, grouped by symbol.
func (m *RunMetrics) Push(ctx context.Context, url, job, symbol string) error {
	err := push.New(url, job).
		Gatherer(m.registry).
		Grouping("symbol", symbol).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
