package summary

import (
	"appdeployer/pkg/core"
)

// Counters aggregates per-outcome totals for metrics and events.
type Counters struct {
	Created   int
	Updated   int
	Unchanged int
	Failed    int
}

// DeploymentReport is the aggregated outcome of one reconciliation pass.
// Overall success requires every resource to have applied cleanly and, when a
// rollout was watched, a healthy terminal state.
type DeploymentReport struct {
	Succeeded      bool
	FailedResource string
	FailureReason  string
	Results        []core.ApplyResult
	Rollout        *core.RolloutStatus
	Counters       Counters
}

// Summarize folds the per-resource apply results and the optional rollout
// status into a single report. rollout is nil when the submitted set carried
// no Deployment or the rollout watch never started.
func Summarize(results []core.ApplyResult, rollout *core.RolloutStatus) DeploymentReport {
	report := DeploymentReport{
		Succeeded: true,
		Results:   append([]core.ApplyResult(nil), results...),
		Rollout:   rollout,
	}

	for _, result := range results {
		switch result.Outcome {
		case core.OutcomeCreated:
			report.Counters.Created++
		case core.OutcomeUpdated:
			report.Counters.Updated++
		case core.OutcomeUnchanged:
			report.Counters.Unchanged++
		case core.OutcomeFailed:
			report.Counters.Failed++

			if report.Succeeded {
				report.Succeeded = false
				report.FailedResource = result.Name
				report.FailureReason = result.Reason
			}
		}
	}

	if rollout != nil && !rollout.Healthy() && report.Succeeded {
		report.Succeeded = false
		report.FailedResource = deploymentName(results)
		report.FailureReason = rolloutReason(*rollout)
	}

	return report
}

// ResourceOutcomes projects the results into the status representation.
func (report DeploymentReport) ResourceOutcomes() []core.ResourceOutcome {
	if len(report.Results) == 0 {
		return nil
	}

	outcomes := make([]core.ResourceOutcome, 0, len(report.Results))
	for _, result := range report.Results {
		outcomes = append(outcomes, core.ResourceOutcome{
			Kind:    string(result.Kind),
			Name:    result.Name,
			Outcome: string(result.Outcome),
			Reason:  result.Reason,
		})
	}

	return outcomes
}

func deploymentName(results []core.ApplyResult) string {
	for _, result := range results {
		if result.Kind == core.KindDeployment {
			return result.Name
		}
	}
	return ""
}

func rolloutReason(rollout core.RolloutStatus) string {
	if rollout.Reason != "" {
		return "rollout " + string(rollout.State) + ": " + rollout.Reason
	}
	return "rollout " + string(rollout.State)
}
