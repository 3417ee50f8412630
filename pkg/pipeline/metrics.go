/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// registry is private so a one-shot CLI run only ever pushes its own
// series to the gateway.
var registry = prometheus.NewRegistry()

var (
	stepDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deployctl_step_duration_seconds",
			Help:    "Duration of pipeline steps in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"step", "outcome"},
	)

	runDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deployctl_run_duration_seconds",
			Help:    "Duration of whole pipeline runs in seconds",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"outcome"},
	)

	runsTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "deployctl_runs_total",
			Help: "Total pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	imageVulnerabilities = promauto.With(registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "deployctl_image_vulnerabilities",
			Help: "Vulnerabilities found in the built image by severity",
		},
		[]string{"image", "severity"},
	)
)

// RecordVulnerabilities exports one image scan's severity counts so they
// reach the Pushgateway with the rest of the run's series.
func RecordVulnerabilities(s *VulnerabilitySummary) {
	if s == nil {
		return
	}
	for severity, count := range s.Severities {
		imageVulnerabilities.WithLabelValues(s.Image, severity).Set(float64(count))
	}
}

func observeStep(step string, d time.Duration, err error) {
	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
	}
	stepDuration.WithLabelValues(step, outcome).Observe(d.Seconds())
}

func observeRun(outcome string, d time.Duration) {
	runDuration.WithLabelValues(outcome).Observe(d.Seconds())
	runsTotal.WithLabelValues(outcome).Inc()
}

// pushMetrics delivers this run's series to a Pushgateway. A one-shot
// CLI cannot be scraped, so push is the only delivery path.
func pushMetrics(url, runID string) error {
	return push.New(url, "deployctl").
		Grouping("run_id", runID).
		Gatherer(registry).
		Push()
}
