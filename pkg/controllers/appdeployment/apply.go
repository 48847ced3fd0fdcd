package appdeployment

import (
	"context"
	"fmt"

	"appdeployer/pkg/adapters"
	"appdeployer/pkg/core"
)

// applyPlan walks the plan in order and applies each resource against the
// cluster. A failing resource does not stop the walk: resources that do not
// depend on it are still applied, while its dependents (direct and
// transitive) are marked failed without touching the cluster. Cancellation
// marks every remaining resource failed.
func applyPlan(ctx context.Context, cluster adapters.ClusterClient, backoff core.BackoffStrategy, plan core.ReconciliationPlan) []core.ApplyResult {
	results := make([]core.ApplyResult, 0, len(plan.Resources))
	failed := map[core.ResourceID]bool{}

	for index, spec := range plan.Resources {
		if ctx.Err() != nil {
			for _, remaining := range plan.Resources[index:] {
				results = append(results, core.ApplyResult{
					Kind:    remaining.Kind,
					Name:    remaining.Name,
					Outcome: core.OutcomeFailed,
					Reason:  "cancelled",
				})
			}
			break
		}

		if blocked, blocker := failedDependency(spec, failed); blocked {
			failed[spec.ID()] = true
			results = append(results, core.ApplyResult{
				Kind:    spec.Kind,
				Name:    spec.Name,
				Outcome: core.OutcomeFailed,
				Reason:  fmt.Sprintf("dependency failed: %s", blocker.Name),
			})
			continue
		}

		outcome, err := applyResource(ctx, cluster, backoff, spec)
		if err != nil {
			failed[spec.ID()] = true
			results = append(results, core.ApplyResult{
				Kind:    spec.Kind,
				Name:    spec.Name,
				Outcome: core.OutcomeFailed,
				Reason:  err.Error(),
			})
			continue
		}

		results = append(results, core.ApplyResult{Kind: spec.Kind, Name: spec.Name, Outcome: outcome})
	}

	return results
}

// applyResource decides create vs update vs unchanged from the structural
// hash and executes the step, retrying transient failures with backoff.
func applyResource(ctx context.Context, cluster adapters.ClusterClient, backoff core.BackoffStrategy, spec core.ResourceSpec) (core.ApplyOutcome, error) {
	desiredHash := core.HashResource(spec)

	var outcome core.ApplyOutcome

	step := func() error {
		state, err := cluster.GetResourceState(ctx, spec.Kind, spec.Namespace, spec.Name)
		if err != nil {
			return fmt.Errorf("get %s/%s: %w", spec.Kind, spec.Name, err)
		}

		if !state.Found {
			if err := cluster.CreateResource(ctx, spec); err != nil {
				return fmt.Errorf("create %s/%s: %w", spec.Kind, spec.Name, err)
			}
			outcome = core.OutcomeCreated
			return nil
		}

		if state.Hash != desiredHash {
			if err := cluster.UpdateResource(ctx, spec); err != nil {
				return fmt.Errorf("update %s/%s: %w", spec.Kind, spec.Name, err)
			}
			outcome = core.OutcomeUpdated
			return nil
		}

		outcome = core.OutcomeUnchanged
		return nil
	}

	if _, err := backoff.Retry(ctx, step, core.IsRetryable); err != nil {
		return core.OutcomeFailed, err
	}

	return outcome, nil
}

func failedDependency(spec core.ResourceSpec, failed map[core.ResourceID]bool) (bool, core.ResourceID) {
	for _, reference := range spec.References() {
		id := core.ResourceID{Kind: reference.Kind, Name: reference.Name}
		if failed[id] {
			return true, id
		}
	}
	return false, core.ResourceID{}
}
