package appdeployment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"appdeployer/pkg/adapters"
	"appdeployer/pkg/core"
)

func TestWaitForHealthyImmediate(t *testing.T) {
	cluster := newFakeCluster()
	cluster.pods = []adapters.PodStatus{{Name: "app-1", Ready: true}, {Name: "app-2", Ready: true}}
	watcher := NewRolloutWatcher(cluster, time.Millisecond)

	status := watcher.WaitForHealthy(context.Background(), "prod", "app", 2, time.Second)

	if status.State != core.RolloutHealthy {
		t.Fatalf("expected healthy, got %+v", status)
	}
	if status.ReadyReplicas != 2 || status.DesiredReplicas != 2 {
		t.Fatalf("unexpected replica counts: %+v", status)
	}
}

func TestWaitForHealthyConverges(t *testing.T) {
	cluster := newFakeCluster()
	cluster.pods = []adapters.PodStatus{{Name: "app-1", Ready: true}, {Name: "app-2", Ready: false}}
	watcher := NewRolloutWatcher(cluster, time.Millisecond)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cluster.mu.Lock()
		cluster.pods = []adapters.PodStatus{{Name: "app-1", Ready: true}, {Name: "app-2", Ready: true}}
		cluster.mu.Unlock()
	}()

	status := watcher.WaitForHealthy(context.Background(), "prod", "app", 2, 5*time.Second)

	if status.State != core.RolloutHealthy {
		t.Fatalf("expected healthy after convergence, got %+v", status)
	}
}

func TestWaitForHealthyTimesOut(t *testing.T) {
	cluster := newFakeCluster()
	cluster.pods = []adapters.PodStatus{{Name: "app-1", Ready: true}}
	watcher := NewRolloutWatcher(cluster, time.Millisecond)

	status := watcher.WaitForHealthy(context.Background(), "prod", "app", 2, 20*time.Millisecond)

	if status.State != core.RolloutTimedOut || status.Reason != core.RolloutReasonTimeout {
		t.Fatalf("expected timed-out/timeout, got %+v", status)
	}
	if status.ReadyReplicas != 1 {
		t.Fatalf("expected last observed ready count reported, got %+v", status)
	}
}

func TestWaitForHealthyCancelledWithinOneInterval(t *testing.T) {
	cluster := newFakeCluster()
	cluster.pods = []adapters.PodStatus{{Name: "app-1", Ready: false}}
	watcher := NewRolloutWatcher(cluster, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	status := watcher.WaitForHealthy(ctx, "prod", "app", 1, time.Hour)
	elapsed := time.Since(start)

	if status.State != core.RolloutTimedOut || status.Reason != core.RolloutReasonCancelled {
		t.Fatalf("expected timed-out/cancelled, got %+v", status)
	}
	if elapsed > time.Second {
		t.Fatalf("cancellation took %v, expected well under one poll interval", elapsed)
	}
}

func TestWaitForHealthyCancelledBeforeFirstPoll(t *testing.T) {
	cluster := newFakeCluster()
	cluster.pods = []adapters.PodStatus{{Name: "app-1", Ready: true}}
	watcher := NewRolloutWatcher(cluster, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status := watcher.WaitForHealthy(ctx, "prod", "app", 1, time.Hour)

	if status.State != core.RolloutTimedOut || status.Reason != core.RolloutReasonCancelled {
		t.Fatalf("expected timed-out/cancelled, got %+v", status)
	}
	if len(cluster.callLog()) != 0 {
		t.Fatalf("cancelled watch must not poll the cluster: %v", cluster.callLog())
	}
}

func TestWaitForHealthyDegradedOnPersistentPollErrors(t *testing.T) {
	cluster := newFakeCluster()
	cluster.podErr = fmt.Errorf("pods forbidden")
	watcher := NewRolloutWatcher(cluster, time.Millisecond)

	status := watcher.WaitForHealthy(context.Background(), "prod", "app", 2, 20*time.Millisecond)

	if status.State != core.RolloutDegraded {
		t.Fatalf("expected degraded when polling never succeeds, got %+v", status)
	}
}
