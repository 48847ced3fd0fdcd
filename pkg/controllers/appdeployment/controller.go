package appdeployment

import (
	"context"
	"fmt"
	"time"

	"appdeployer/pkg/adapters"
	"appdeployer/pkg/agents/summary"
	"appdeployer/pkg/core"
)

// Key identifies an AppDeployment by namespace/name.
type Key struct {
	Namespace string
	Name      string
}

// Reconciler wires the cluster client, a simple work queue, and the rollout
// watcher.
type Reconciler struct {
	cluster   adapters.ClusterClient
	workQueue *core.WorkQueue[Key]
	watcher   *RolloutWatcher
	backoff   core.BackoffStrategy
}

func NewReconciler(cluster adapters.ClusterClient) *Reconciler {
	return &Reconciler{
		cluster:   cluster,
		workQueue: core.NewWorkQueue[Key](),
		watcher:   NewRolloutWatcher(cluster, DefaultPollInterval),
		backoff:   core.DefaultBackoff(),
	}
}

// OnCRChange enqueues a reconcile when the AppDeployment changes.
func (reconciler *Reconciler) OnCRChange(namespace, name string) {
	reconciler.workQueue.Add(Key{Namespace: namespace, Name: name})
}

// OnManagedResourceChange enqueues the owning AppDeployment when one of its
// managed resources drifts.
func (reconciler *Reconciler) OnManagedResourceChange(namespace, owner string) {
	reconciler.workQueue.Add(Key{Namespace: namespace, Name: owner})
}

// ProcessNext pops one key off the queue and runs process against it. It
// returns false when the queue is empty.
func (reconciler *Reconciler) ProcessNext(process func(Key)) bool {
	key, ok := reconciler.workQueue.Get()
	if !ok {
		return false
	}
	process(key)
	return true
}

// Reconcile performs one full pass for the given AppDeployment: default and
// validate the spec, lower it to resources, order them, apply the plan, and
// watch the workload rollout when the Deployment applied cleanly.
func (reconciler *Reconciler) Reconcile(ctx context.Context, key Key, spec *core.AppDeploymentSpec) (summary.DeploymentReport, error) {
	if spec == nil {
		return summary.DeploymentReport{}, fmt.Errorf("spec is nil")
	}

	core.DefaultSpec(spec)
	if err := core.ValidateSpec(spec); err != nil {
		return summary.DeploymentReport{}, err
	}

	resources := core.BuildResources(key.Namespace, spec)
	if err := core.ValidateResources(resources); err != nil {
		return summary.DeploymentReport{}, err
	}

	plan, err := core.Order(resources)
	if err != nil {
		return summary.DeploymentReport{}, err
	}

	results := applyPlan(ctx, reconciler.cluster, reconciler.backoff, plan)

	var rollout *core.RolloutStatus
	if deploymentApplied(results, spec.Workload.Name) {
		timeout := time.Duration(*spec.RolloutTimeoutSeconds) * time.Second
		status := reconciler.watcher.WaitForHealthy(ctx, key.Namespace, spec.Workload.Name, *spec.Workload.Replicas, timeout)
		rollout = &status
	}

	return summary.Summarize(results, rollout), nil
}

// Finalize deletes every managed resource for the AppDeployment in reverse
// dependency order, so dependents go before what they reference.
func (reconciler *Reconciler) Finalize(ctx context.Context, key Key, spec *core.AppDeploymentSpec) error {
	if spec == nil {
		return fmt.Errorf("spec is nil")
	}

	core.DefaultSpec(spec)
	if err := core.ValidateSpec(spec); err != nil {
		return err
	}

	resources := core.BuildResources(key.Namespace, spec)
	plan, err := core.Order(resources)
	if err != nil {
		return err
	}

	for index := len(plan.Resources) - 1; index >= 0; index-- {
		resource := plan.Resources[index]
		if err := reconciler.cluster.DeleteResource(ctx, resource.Kind, resource.Namespace, resource.Name); err != nil {
			return fmt.Errorf("delete %s/%s: %w", resource.Kind, resource.Name, err)
		}
	}
	return nil
}

// deploymentApplied reports whether the workload Deployment was applied
// cleanly, which is the precondition for watching its rollout.
func deploymentApplied(results []core.ApplyResult, name string) bool {
	for _, result := range results {
		if result.Kind == core.KindDeployment && result.Name == name {
			return !result.Failed()
		}
	}
	return false
}
