package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"appdeployer/pkg/agents/summary"
)

var (
	registerOnce sync.Once

	reconcilesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "appdeployer_reconciles_total",
		Help: "Total number of AppDeployment reconciliations grouped by result.",
	}, []string{"result"})

	resourcesGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "appdeployer_resources_gauge",
		Help: "Number of managed resources observed during the last reconciliation grouped by outcome.",
	}, []string{"outcome"})

	reconcileHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "appdeployer_reconcile_seconds",
		Help:    "Histogram of reconciliation duration in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	errorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "appdeployer_errors_total",
		Help: "Total number of reconciliation errors.",
	})

	readyReplicasGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "appdeployer_ready_replicas_gauge",
		Help: "Ready replicas observed for the workload after the last rollout watch.",
	})
)

func ensureRegistered() {
	registerOnce.Do(func() {
		ctrlmetrics.Registry.MustRegister(reconcilesTotal, resourcesGauge, reconcileHistogram, errorsTotal, readyReplicasGauge)
	})
}

// RecordReconcile updates the metrics from the report of one reconciliation.
func RecordReconcile(report summary.DeploymentReport, duration time.Duration, reconcileErr error) {
	ensureRegistered()

	outcome := "success"
	if reconcileErr != nil || !report.Succeeded {
		outcome = "error"
	}
	if reconcileErr != nil {
		errorsTotal.Inc()
	}

	reconcilesTotal.WithLabelValues(outcome).Inc()
	reconcileHistogram.Observe(duration.Seconds())

	resourcesGauge.WithLabelValues("created").Set(float64(report.Counters.Created))
	resourcesGauge.WithLabelValues("updated").Set(float64(report.Counters.Updated))
	resourcesGauge.WithLabelValues("unchanged").Set(float64(report.Counters.Unchanged))
	resourcesGauge.WithLabelValues("failed").Set(float64(report.Counters.Failed))

	if report.Rollout != nil {
		readyReplicasGauge.Set(float64(report.Rollout.ReadyReplicas))
	}
}
