package status

import (
	"errors"
	"testing"
	"time"

	"appdeployer/pkg/agents/summary"
	"appdeployer/pkg/core"
)

func TestComputeReady(t *testing.T) {
	prev := core.AppDeploymentStatus{}
	report := summary.Summarize([]core.ApplyResult{
		{Kind: core.KindConfigMap, Name: "db-config", Outcome: core.OutcomeCreated},
		{Kind: core.KindDeployment, Name: "app", Outcome: core.OutcomeCreated},
	}, &core.RolloutStatus{DesiredReplicas: 2, ReadyReplicas: 2, State: core.RolloutHealthy})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	status := Compute(prev, &report, nil, now)

	if status.DesiredReplicas != 2 || status.ReadyReplicas != 2 {
		t.Fatalf("unexpected replica counts: %+v", status)
	}
	if len(status.Resources) != 2 {
		t.Fatalf("expected 2 resource outcomes, got %d", len(status.Resources))
	}
	ready := findCondition(status.Conditions, core.CondReady)
	if ready.Status != "True" || ready.Reason != "Reconciled" {
		t.Fatalf("ready condition unexpected: %+v", ready)
	}
	if ready.LastTransitionTime != now.Format(time.RFC3339) {
		t.Fatalf("ready transition time incorrect: %s", ready.LastTransitionTime)
	}
	progressing := findCondition(status.Conditions, core.CondProgressing)
	if progressing.Status != "False" {
		t.Fatalf("progressing condition unexpected: %+v", progressing)
	}
	degraded := findCondition(status.Conditions, core.CondDegraded)
	if degraded.Status != "False" {
		t.Fatalf("degraded condition unexpected: %+v", degraded)
	}
}

func TestComputeApplyFailure(t *testing.T) {
	prev := core.AppDeploymentStatus{}
	report := summary.Summarize([]core.ApplyResult{
		{Kind: core.KindConfigMap, Name: "db-config", Outcome: core.OutcomeFailed, Reason: "create db-config: forbidden"},
		{Kind: core.KindDeployment, Name: "app", Outcome: core.OutcomeFailed, Reason: "dependency failed: db-config"},
	}, nil)
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	status := Compute(prev, &report, nil, now)

	ready := findCondition(status.Conditions, core.CondReady)
	if ready.Status != "False" || ready.Reason != "ApplyFailed" {
		t.Fatalf("expected ready false, got %+v", ready)
	}
	degraded := findCondition(status.Conditions, core.CondDegraded)
	if degraded.Status != "True" {
		t.Fatalf("expected degraded true, got %+v", degraded)
	}
	progressing := findCondition(status.Conditions, core.CondProgressing)
	if progressing.Status != "True" || progressing.Reason != "Retrying" {
		t.Fatalf("expected progressing retrying, got %+v", progressing)
	}
}

func TestComputeErrorPreservesPreviousResources(t *testing.T) {
	prev := core.AppDeploymentStatus{Resources: []core.ResourceOutcome{{Kind: "ConfigMap", Name: "db-config", Outcome: "created"}}}
	err := errors.New("boom")
	now := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)

	status := Compute(prev, nil, err, now)

	if len(status.Resources) != 1 {
		t.Fatalf("expected previous resources retained: %+v", status.Resources)
	}
	ready := findCondition(status.Conditions, core.CondReady)
	if ready.Status != "False" || ready.Reason != "Error" {
		t.Fatalf("expected ready false error, got %+v", ready)
	}
	degraded := findCondition(status.Conditions, core.CondDegraded)
	if degraded.Status != "True" {
		t.Fatalf("expected degraded true, got %+v", degraded)
	}
}

func TestComputeRetainsTransitionWhenUnchanged(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	report := summary.Summarize([]core.ApplyResult{
		{Kind: core.KindDeployment, Name: "app", Outcome: core.OutcomeUnchanged},
	}, nil)

	prev := Compute(core.AppDeploymentStatus{}, &report, nil, first)
	later := Compute(prev, &report, nil, first.Add(time.Hour))

	ready := findCondition(later.Conditions, core.CondReady)
	if ready.LastTransitionTime != first.Format(time.RFC3339) {
		t.Fatalf("expected transition time preserved, got %s", ready.LastTransitionTime)
	}
	if later.LastReconcileTime != first.Add(time.Hour).Format(time.RFC3339) {
		t.Fatalf("expected reconcile time advanced, got %s", later.LastReconcileTime)
	}
}

func TestComputeRolloutProgressing(t *testing.T) {
	report := summary.DeploymentReport{
		Succeeded: true,
		Results:   []core.ApplyResult{{Kind: core.KindDeployment, Name: "app", Outcome: core.OutcomeCreated}},
		Rollout:   &core.RolloutStatus{DesiredReplicas: 3, ReadyReplicas: 1, State: core.RolloutHealthy},
	}
	now := time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC)

	status := Compute(core.AppDeploymentStatus{}, &report, nil, now)

	progressing := findCondition(status.Conditions, core.CondProgressing)
	if progressing.Status != "True" || progressing.Reason != "RolloutProgressing" {
		t.Fatalf("expected progressing rollout, got %+v", progressing)
	}
}

func findCondition(conditions []core.Condition, condType string) core.Condition {
	for _, cond := range conditions {
		if cond.Type == condType {
			return cond
		}
	}
	return core.Condition{}
}
