package descriptor

import (
	"os"
	"path/filepath"
	"testing"

	"appdeployer/pkg/core"
)

const sampleDescriptor = `
name: app
namespace: prod
workload:
  name: app
  image: registry.example.com/app:1.0
  replicas: 2
  env:
    - name: DB_HOST
      valueFrom:
        kind: ConfigMap
        name: db-config
        key: host
    - name: LOG_LEVEL
      value: info
configMaps:
  - name: db-config
    data:
      host: db.prod.svc
service:
  port: 80
  targetPort: 8080
`

func TestParseDescriptor(t *testing.T) {
	namespace, name, spec, err := Parse([]byte(sampleDescriptor))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if namespace != "prod" || name != "app" {
		t.Fatalf("unexpected target: %s/%s", namespace, name)
	}
	if spec.Workload.Image != "registry.example.com/app:1.0" {
		t.Fatalf("unexpected image: %s", spec.Workload.Image)
	}
	if spec.Workload.Replicas == nil || *spec.Workload.Replicas != 2 {
		t.Fatalf("unexpected replicas: %+v", spec.Workload.Replicas)
	}
	if len(spec.Workload.Env) != 2 || spec.Workload.Env[0].ValueFrom == nil {
		t.Fatalf("env bindings not converted: %+v", spec.Workload.Env)
	}
	if spec.Workload.Env[0].ValueFrom.Kind != core.KindConfigMap {
		t.Fatalf("unexpected reference kind: %+v", spec.Workload.Env[0].ValueFrom)
	}
	if spec.RolloutTimeoutSeconds == nil || *spec.RolloutTimeoutSeconds != 120 {
		t.Fatalf("expected rollout timeout defaulted, got %+v", spec.RolloutTimeoutSeconds)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	doc := `
namespace: prod
workload:
  name: app
  image: registry.example.com/app:1.0
replicaCount: 3
`
	if _, _, _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected unknown field rejected")
	}
}

func TestParseRequiresNamespace(t *testing.T) {
	doc := `
workload:
  name: app
  image: registry.example.com/app:1.0
`
	if _, _, _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected missing namespace rejected")
	}
}

func TestParseValidatesSpec(t *testing.T) {
	doc := `
namespace: prod
workload:
  name: app
  image: registry.example.com/app:1.0
  env:
    - name: DB_HOST
      valueFrom:
        kind: ConfigMap
        name: missing
        key: host
`
	// Reference resolution happens at build time; spec-level validation
	// still rejects malformed bindings.
	malformed := `
namespace: prod
workload:
  name: app
  image: registry.example.com/app:1.0
  env:
    - name: DB_HOST
      value: literal
      valueFrom:
        kind: ConfigMap
        name: db-config
        key: host
`
	if _, _, _, err := Parse([]byte(doc)); err != nil {
		t.Fatalf("unresolved reference should pass spec validation: %v", err)
	}
	if _, _, _, err := Parse([]byte(malformed)); err == nil {
		t.Fatal("expected value and valueFrom together rejected")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvImageOverride, "registry.example.com/app:2.0")
	t.Setenv(EnvReplicasOverride, "5")

	_, _, spec, err := Parse([]byte(sampleDescriptor))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if spec.Workload.Image != "registry.example.com/app:2.0" {
		t.Fatalf("expected image override applied, got %s", spec.Workload.Image)
	}
	if spec.Workload.Replicas == nil || *spec.Workload.Replicas != 5 {
		t.Fatalf("expected replicas override applied, got %+v", spec.Workload.Replicas)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte(sampleDescriptor), 0o600); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}

	namespace, name, spec, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if namespace != "prod" || name != "app" || spec == nil {
		t.Fatalf("unexpected load result: %s/%s %+v", namespace, name, spec)
	}

	if _, _, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
