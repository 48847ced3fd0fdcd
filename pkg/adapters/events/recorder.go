package events

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/tools/record"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"appdeployer/pkg/core"
)

// Recorder wraps a controller-runtime EventRecorder with helper methods
// specific to AppDeployment reconciliation.
//
// The helper methods guard against nil receivers so tests can pass a nil
// recorder when event emission is not under test.
type Recorder struct {
	recorder record.EventRecorder
}

// NewRecorder constructs a Recorder from the provided controller-runtime EventRecorder.
func NewRecorder(rec record.EventRecorder) *Recorder {
	return &Recorder{recorder: rec}
}

// ResourceCreated records an event indicating a resource was created.
func (r *Recorder) ResourceCreated(obj client.Object, kind core.Kind, name string) {
	if r == nil || r.recorder == nil {
		return
	}
	r.recorder.Eventf(obj, corev1.EventTypeNormal, "ResourceCreated", "%s %s created", kind, name)
}

// ResourceUpdated records an event indicating a resource was updated.
func (r *Recorder) ResourceUpdated(obj client.Object, kind core.Kind, name string) {
	if r == nil || r.recorder == nil {
		return
	}
	r.recorder.Eventf(obj, corev1.EventTypeNormal, "ResourceUpdated", "%s %s updated", kind, name)
}

// ResourceFailed records an event indicating a resource failed to apply.
// The reason string never carries payload values, only resource identities.
func (r *Recorder) ResourceFailed(obj client.Object, kind core.Kind, name, reason string) {
	if r == nil || r.recorder == nil {
		return
	}
	r.recorder.Eventf(obj, corev1.EventTypeWarning, "ResourceFailed", "%s %s failed: %s", kind, name, reason)
}

// RolloutHealthy records an event indicating the workload rollout converged.
func (r *Recorder) RolloutHealthy(obj client.Object, ready, desired int32) {
	if r == nil || r.recorder == nil {
		return
	}
	r.recorder.Eventf(obj, corev1.EventTypeNormal, "RolloutHealthy", "rollout healthy: %d/%d replicas ready", ready, desired)
}

// RolloutNotHealthy records an event for a rollout that timed out, was
// cancelled, or ended degraded.
func (r *Recorder) RolloutNotHealthy(obj client.Object, status core.RolloutStatus) {
	if r == nil || r.recorder == nil {
		return
	}
	r.recorder.Eventf(obj, corev1.EventTypeWarning, "RolloutNotHealthy", "rollout %s (%s): %d/%d replicas ready",
		status.State, status.Reason, status.ReadyReplicas, status.DesiredReplicas)
}

// Error records an event indicating reconciliation failed outright.
func (r *Recorder) Error(obj client.Object, err error) {
	if r == nil || r.recorder == nil || err == nil {
		return
	}
	r.recorder.Eventf(obj, corev1.EventTypeWarning, "ReconcileError", "reconciliation error: %v", err)
}
