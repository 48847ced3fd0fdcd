package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"appdeployer/pkg/agents/summary"
	"appdeployer/pkg/core"
)

func TestRecordReconcileMetrics(t *testing.T) {
	ensureRegistered()
	reconcilesTotal.Reset()
	resourcesGauge.Reset()
	readyReplicasGauge.Set(0)

	baselineErrors := testutil.ToFloat64(errorsTotal)

	report := summary.Summarize([]core.ApplyResult{
		{Kind: core.KindConfigMap, Name: "db-config", Outcome: core.OutcomeCreated},
		{Kind: core.KindSecret, Name: "mysql-secrets", Outcome: core.OutcomeUnchanged},
		{Kind: core.KindDeployment, Name: "app", Outcome: core.OutcomeUpdated},
	}, &core.RolloutStatus{DesiredReplicas: 2, ReadyReplicas: 2, State: core.RolloutHealthy})
	RecordReconcile(report, 2*time.Second, nil)

	if got := testutil.ToFloat64(reconcilesTotal.WithLabelValues("success")); got != 1 {
		t.Fatalf("expected success counter 1, got %v", got)
	}
	if got := testutil.ToFloat64(resourcesGauge.WithLabelValues("created")); got != 1 {
		t.Fatalf("expected created gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(resourcesGauge.WithLabelValues("updated")); got != 1 {
		t.Fatalf("expected updated gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(readyReplicasGauge); got != 2 {
		t.Fatalf("expected ready replicas gauge 2, got %v", got)
	}

	RecordReconcile(summary.DeploymentReport{}, time.Second, assertErr{})

	if got := testutil.ToFloat64(reconcilesTotal.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected error counter 1, got %v", got)
	}
	if got := testutil.ToFloat64(errorsTotal); got != baselineErrors+1 {
		t.Fatalf("expected errors total increment, got %v", got)
	}
}

func TestRecordReconcileFailedReportCountsError(t *testing.T) {
	ensureRegistered()
	reconcilesTotal.Reset()

	report := summary.Summarize([]core.ApplyResult{
		{Kind: core.KindConfigMap, Name: "db-config", Outcome: core.OutcomeFailed, Reason: "create db-config: forbidden"},
	}, nil)
	RecordReconcile(report, time.Second, nil)

	if got := testutil.ToFloat64(reconcilesTotal.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected failed report counted as error, got %v", got)
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
