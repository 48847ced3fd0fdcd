package status

import (
	"fmt"
	"time"

	"appdeployer/pkg/agents/summary"
	"appdeployer/pkg/core"
)

// Compute builds an AppDeploymentStatus from the previous status, the report
// of the pass that just finished, and any reconcile-level error. Condition
// transition times are preserved when a condition is unchanged.
func Compute(previous core.AppDeploymentStatus, report *summary.DeploymentReport, reconcileErr error, now time.Time) core.AppDeploymentStatus {
	status := previous
	timestamp := now.UTC().Format(time.RFC3339)
	status.LastReconcileTime = timestamp
	if report != nil {
		status.Resources = report.ResourceOutcomes()
		if report.Rollout != nil {
			status.DesiredReplicas = report.Rollout.DesiredReplicas
			status.ReadyReplicas = report.Rollout.ReadyReplicas
		}
	}
	status.Conditions = mergeConditions(previous.Conditions, desiredConditions(report, reconcileErr, timestamp))
	return status
}

func desiredConditions(report *summary.DeploymentReport, reconcileErr error, timestamp string) []core.Condition {
	ready := core.Condition{Type: core.CondReady, Status: "False", Reason: "Reconciling", Message: "waiting for reconciliation", LastTransitionTime: timestamp}
	progressing := core.Condition{Type: core.CondProgressing, Status: "False", Reason: "Idle", Message: "no pending work", LastTransitionTime: timestamp}
	degraded := core.Condition{Type: core.CondDegraded, Status: "False", Reason: "Healthy", Message: "no errors", LastTransitionTime: timestamp}

	switch {
	case reconcileErr != nil:
		ready.Reason = "Error"
		ready.Message = fmt.Sprintf("reconciliation failed: %v", reconcileErr)
		degraded.Status = "True"
		degraded.Reason = "Error"
		degraded.Message = fmt.Sprintf("reconciliation failed: %v", reconcileErr)
		progressing.Reason = "Error"
		progressing.Message = "paused due to error"
	case report != nil && !report.Succeeded:
		ready.Reason = "ApplyFailed"
		ready.Message = fmt.Sprintf("resource %s: %s", report.FailedResource, report.FailureReason)
		degraded.Status = "True"
		degraded.Reason = "ApplyFailed"
		degraded.Message = fmt.Sprintf("resource %s: %s", report.FailedResource, report.FailureReason)
		progressing.Status = "True"
		progressing.Reason = "Retrying"
		progressing.Message = "reconciliation will be retried"
	case report != nil && report.Rollout != nil && report.Rollout.ReadyReplicas < report.Rollout.DesiredReplicas:
		ready.Reason = "RolloutProgressing"
		ready.Message = fmt.Sprintf("%d/%d replicas ready", report.Rollout.ReadyReplicas, report.Rollout.DesiredReplicas)
		progressing.Status = "True"
		progressing.Reason = "RolloutProgressing"
		progressing.Message = fmt.Sprintf("waiting for %d replicas", report.Rollout.DesiredReplicas)
	default:
		ready.Status = "True"
		ready.Reason = "Reconciled"
		if report != nil {
			ready.Message = fmt.Sprintf("%d resources applied", len(report.Results))
		} else {
			ready.Message = "deployment succeeded"
		}
		progressing.Reason = "Reconciled"
		progressing.Message = "all resources in sync"
	}

	return []core.Condition{ready, progressing, degraded}
}

func mergeConditions(previous []core.Condition, desired []core.Condition) []core.Condition {
	byType := map[string]core.Condition{}
	for _, cond := range previous {
		byType[cond.Type] = cond
	}
	result := make([]core.Condition, 0, len(desired))
	for _, cond := range desired {
		if prev, ok := byType[cond.Type]; ok {
			if prev.Status == cond.Status && prev.Reason == cond.Reason && prev.Message == cond.Message {
				cond.LastTransitionTime = prev.LastTransitionTime
			}
		}
		result = append(result, cond)
	}
	return result
}
