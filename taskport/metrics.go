// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package taskport

import (
	"github.com/jongio/taskport/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	acquisitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskport_acquisitions_total",
			Help: "Task handle acquisitions by strategy and outcome",
		},
		[]string{"strategy", "outcome", "kind"},
	)

	acquisitionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskport_acquisition_duration_seconds",
			Help:    "Duration of task handle acquisitions in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"strategy"},
	)

	groupFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskport_group_failures_total",
			Help: "Processor sets skipped during enumeration",
		},
		[]string{"kind"},
	)

	kernelResourcesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskport_kernel_resources_total",
			Help: "Kernel handles and arrays by kind and lifecycle operation",
		},
		[]string{"kind", "op"},
	)
)

// strategyLabel keeps unknown selectors from creating unbounded label values.
func strategyLabel(s Strategy) string {
	if c, ok := s.Canonical(); ok {
		return string(c)
	}
	return "invalid"
}

// recordResult records metrics for one acquisition result.
func recordResult(res Result) {
	strategy := strategyLabel(res.Strategy)

	acquisitionsTotal.With(prometheus.Labels{
		"strategy": strategy,
		"outcome":  string(res.Outcome),
		"kind":     string(res.Kind()),
	}).Inc()
	acquisitionDuration.WithLabelValues(strategy).Observe(res.Duration.Seconds())

	for _, f := range res.Skipped {
		groupFailuresTotal.WithLabelValues(string(f.Kind)).Inc()
	}

	addResources(res.Handles.Acquired, "acquired")
	addResources(res.Handles.Released, "released")
	addResources(res.Handles.Transferred, "transferred")
}

func addResources(counts map[registry.Kind]int, op string) {
	for kind, n := range counts {
		kernelResourcesTotal.WithLabelValues(string(kind), op).Add(float64(n))
	}
}

// recordRelease counts the dispatcher's release of a transferred task handle.
func recordRelease() {
	kernelResourcesTotal.WithLabelValues(string(registry.KindTask), "released").Inc()
}

// WriteMetrics writes the current metrics to path in the Prometheus text
// format, for collection by a node_exporter textfile collector.
func WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
