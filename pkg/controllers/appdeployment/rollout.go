package appdeployment

import (
	"context"
	"fmt"
	"time"

	"appdeployer/pkg/adapters"
	"appdeployer/pkg/core"
)

// DefaultPollInterval is how often the watcher samples pod readiness.
const DefaultPollInterval = 2 * time.Second

// RolloutWatcher polls pod readiness for a Deployment until the desired
// replica count is reached, the timeout elapses, or the context is cancelled.
type RolloutWatcher struct {
	cluster  adapters.ClusterClient
	interval time.Duration
}

func NewRolloutWatcher(cluster adapters.ClusterClient, interval time.Duration) *RolloutWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &RolloutWatcher{cluster: cluster, interval: interval}
}

// WaitForHealthy blocks until the Deployment's ready replicas reach desired
// (healthy), the timeout elapses (timed-out, reason timeout), or ctx is
// cancelled (timed-out, reason cancelled, returned within one poll interval).
// If readiness could never be observed because polling kept failing, the
// deadline produces degraded instead of timed-out.
func (watcher *RolloutWatcher) WaitForHealthy(ctx context.Context, namespace, name string, desired int32, timeout time.Duration) core.RolloutStatus {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(watcher.interval)
	defer ticker.Stop()

	var readyReplicas int32
	var pollErr error

	for {
		if ctx.Err() != nil {
			return core.RolloutStatus{
				DesiredReplicas: desired,
				ReadyReplicas:   readyReplicas,
				State:           core.RolloutTimedOut,
				Reason:          core.RolloutReasonCancelled,
			}
		}

		readyCount, err := watcher.countReady(ctx, namespace, name)
		pollErr = err
		if err == nil {
			readyReplicas = readyCount
			if readyReplicas >= desired {
				return core.RolloutStatus{DesiredReplicas: desired, ReadyReplicas: readyReplicas, State: core.RolloutHealthy}
			}
		}

		select {
		case <-ctx.Done():
			return core.RolloutStatus{
				DesiredReplicas: desired,
				ReadyReplicas:   readyReplicas,
				State:           core.RolloutTimedOut,
				Reason:          core.RolloutReasonCancelled,
			}
		case <-deadline.C:
			if pollErr != nil {
				return core.RolloutStatus{
					DesiredReplicas: desired,
					ReadyReplicas:   readyReplicas,
					State:           core.RolloutDegraded,
					Reason:          fmt.Sprintf("status polling failed: %v", pollErr),
				}
			}
			return core.RolloutStatus{
				DesiredReplicas: desired,
				ReadyReplicas:   readyReplicas,
				State:           core.RolloutTimedOut,
				Reason:          core.RolloutReasonTimeout,
			}
		case <-ticker.C:
		}
	}
}

func (watcher *RolloutWatcher) countReady(ctx context.Context, namespace, name string) (int32, error) {
	pods, err := watcher.cluster.ListPodsForDeployment(ctx, namespace, name)
	if err != nil {
		return 0, err
	}

	var readyCount int32
	for _, pod := range pods {
		if pod.Ready {
			readyCount++
		}
	}
	return readyCount, nil
}
