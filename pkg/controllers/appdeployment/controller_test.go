package appdeployment

import (
	"context"
	"testing"
	"time"

	"appdeployer/pkg/adapters"
	"appdeployer/pkg/core"
)

func testReconciler(cluster *fakeCluster) *Reconciler {
	reconciler := NewReconciler(cluster)
	reconciler.backoff = fastBackoff()
	reconciler.watcher = NewRolloutWatcher(cluster, time.Millisecond)
	return reconciler
}

func testSpec() *core.AppDeploymentSpec {
	replicas := int32(2)
	return &core.AppDeploymentSpec{
		Workload: core.WorkloadConfig{
			Name:     "app",
			Image:    "registry.example.com/app:1.0",
			Replicas: &replicas,
			Env: []core.EnvBinding{
				{Name: "DB_HOST", ValueFrom: &core.Reference{Kind: core.KindConfigMap, Name: "db-config", Key: "host"}},
				{Name: "DB_PASSWORD", ValueFrom: &core.Reference{Kind: core.KindSecret, Name: "mysql-secrets", Key: "password"}},
			},
		},
		ConfigMaps: []core.KeyValueBundle{{Name: "db-config", Data: map[string]string{"host": "db"}}},
		Secrets:    []core.KeyValueBundle{{Name: "mysql-secrets", Data: map[string]string{"password": "hunter2"}}},
	}
}

func TestReconcileCreatesThenConverges(t *testing.T) {
	cluster := newFakeCluster()
	cluster.pods = []adapters.PodStatus{{Name: "app-1", Ready: true}, {Name: "app-2", Ready: true}}
	reconciler := testReconciler(cluster)
	key := Key{Namespace: "prod", Name: "app"}

	report, err := reconciler.Reconcile(context.Background(), key, testSpec())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if !report.Succeeded {
		t.Fatalf("expected success, got %+v", report)
	}
	if report.Counters.Created != 3 {
		t.Fatalf("expected 3 created, got %+v", report.Counters)
	}
	if report.Rollout == nil || report.Rollout.State != core.RolloutHealthy {
		t.Fatalf("expected healthy rollout, got %+v", report.Rollout)
	}

	report, err = reconciler.Reconcile(context.Background(), key, testSpec())
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if report.Counters.Unchanged != 3 || report.Counters.Created != 0 {
		t.Fatalf("expected second pass unchanged, got %+v", report.Counters)
	}
}

func TestReconcileRejectsUnresolvedReference(t *testing.T) {
	cluster := newFakeCluster()
	reconciler := testReconciler(cluster)
	spec := testSpec()
	spec.ConfigMaps = nil

	_, err := reconciler.Reconcile(context.Background(), Key{Namespace: "prod", Name: "app"}, spec)

	if err == nil {
		t.Fatal("expected unresolved reference error")
	}
	if !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(cluster.callLog()) != 0 {
		t.Fatalf("validation failure must not touch the cluster: %v", cluster.callLog())
	}
}

func TestReconcileSkipsRolloutWhenDeploymentFailed(t *testing.T) {
	cluster := newFakeCluster()
	cluster.failOn["create "+stateKey(core.KindConfigMap, "prod", "db-config")] = errPermanent("forbidden")
	reconciler := testReconciler(cluster)

	report, err := reconciler.Reconcile(context.Background(), Key{Namespace: "prod", Name: "app"}, testSpec())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if report.Succeeded {
		t.Fatalf("expected failed report, got %+v", report)
	}
	if report.FailedResource != "db-config" {
		t.Fatalf("expected first failure carried, got %q", report.FailedResource)
	}
	if report.Rollout != nil {
		t.Fatalf("expected no rollout watch after deployment skip, got %+v", report.Rollout)
	}
	for _, call := range cluster.callLog() {
		if call == "pods prod/app" {
			t.Fatal("rollout watch must not run when the deployment was not applied")
		}
	}
}

func TestReconcileReportsRolloutTimeout(t *testing.T) {
	cluster := newFakeCluster()
	cluster.pods = []adapters.PodStatus{{Name: "app-1", Ready: true}}
	reconciler := testReconciler(cluster)
	spec := testSpec()
	timeout := int32(1)
	spec.RolloutTimeoutSeconds = &timeout

	report, err := reconciler.Reconcile(context.Background(), Key{Namespace: "prod", Name: "app"}, spec)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if report.Succeeded {
		t.Fatalf("expected failure on rollout timeout, got %+v", report)
	}
	if report.Rollout == nil || report.Rollout.Reason != core.RolloutReasonTimeout {
		t.Fatalf("expected timeout reason, got %+v", report.Rollout)
	}
	if report.FailedResource != "app" {
		t.Fatalf("expected deployment named as failing resource, got %q", report.FailedResource)
	}
}

func TestFinalizeDeletesInReverseOrder(t *testing.T) {
	cluster := newFakeCluster()
	cluster.pods = []adapters.PodStatus{{Name: "app-1", Ready: true}, {Name: "app-2", Ready: true}}
	reconciler := testReconciler(cluster)
	key := Key{Namespace: "prod", Name: "app"}

	if _, err := reconciler.Reconcile(context.Background(), key, testSpec()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if err := reconciler.Finalize(context.Background(), key, testSpec()); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	var deletes []string
	for _, call := range cluster.callLog() {
		if len(call) > 7 && call[:7] == "delete " {
			deletes = append(deletes, call[7:])
		}
	}
	if len(deletes) != 3 {
		t.Fatalf("expected 3 deletes, got %v", deletes)
	}
	if deletes[0] != stateKey(core.KindDeployment, "prod", "app") {
		t.Fatalf("expected deployment deleted before its dependencies, got %v", deletes)
	}
	if len(cluster.hashes) != 0 {
		t.Fatalf("expected all managed resources removed, got %v", cluster.hashes)
	}
}

func TestQueueHooksDeduplicate(t *testing.T) {
	reconciler := testReconciler(newFakeCluster())

	reconciler.OnCRChange("prod", "app")
	reconciler.OnManagedResourceChange("prod", "app")
	reconciler.OnCRChange("prod", "other")

	var processed []Key
	for reconciler.ProcessNext(func(key Key) { processed = append(processed, key) }) {
	}

	if len(processed) != 2 {
		t.Fatalf("expected deduplicated queue, got %v", processed)
	}
	if processed[0] != (Key{Namespace: "prod", Name: "app"}) || processed[1] != (Key{Namespace: "prod", Name: "other"}) {
		t.Fatalf("unexpected processing order: %v", processed)
	}
}

type errPermanent string

func (e errPermanent) Error() string { return string(e) }
