package core

import (
	"fmt"
	"os"
	"strconv"
)

// ValidateSpec enforces basic guardrails that match the CRD schema.
func ValidateSpec(spec *AppDeploymentSpec) error {
	if spec == nil {
		return fmt.Errorf("spec is required")
	}

	if spec.Workload.Name == "" || spec.Workload.Image == "" {
		return fmt.Errorf("workload.name and workload.image are required")
	}

	if spec.Workload.Replicas != nil && *spec.Workload.Replicas < 0 {
		return fmt.Errorf("workload.replicas must be >= 0")
	}

	for _, binding := range spec.Workload.Env {
		if binding.Name == "" {
			return fmt.Errorf("env binding name is required")
		}

		if binding.ValueFrom != nil {
			if binding.Value != "" {
				return fmt.Errorf("env binding %s sets both value and valueFrom", binding.Name)
			}

			if binding.ValueFrom.Kind != KindConfigMap && binding.ValueFrom.Kind != KindSecret {
				return fmt.Errorf("env binding %s references unsupported kind %s", binding.Name, binding.ValueFrom.Kind)
			}

			if binding.ValueFrom.Name == "" || binding.ValueFrom.Key == "" {
				return fmt.Errorf("env binding %s requires valueFrom.name and valueFrom.key", binding.Name)
			}
		}
	}

	for _, bundle := range spec.ConfigMaps {
		if bundle.Name == "" {
			return fmt.Errorf("configMap bundle name is required")
		}

		if check := CheckPayloadSize(bundle.Data); check.Block {
			return fmt.Errorf("configMap %s payload exceeds %d bytes", bundle.Name, PayloadSizeLimitBytes)
		}
	}

	for _, bundle := range spec.Secrets {
		if bundle.Name == "" {
			return fmt.Errorf("secret bundle name is required")
		}

		if check := CheckPayloadSize(bundle.Data); check.Block {
			return fmt.Errorf("secret %s payload exceeds %d bytes", bundle.Name, PayloadSizeLimitBytes)
		}
	}

	if spec.Storage != nil && spec.Storage.VolumeName == "" {
		return fmt.Errorf("storage.volumeName is required")
	}

	if spec.Service != nil && spec.Service.Port < 1 {
		return fmt.Errorf("service.port must be >= 1")
	}

	if spec.Service != nil && spec.Service.Type != "" && spec.Service.Type != ServiceClusterIP && spec.Service.Type != ServiceNodePort {
		return fmt.Errorf("invalid service.type: %s", spec.Service.Type)
	}

	if spec.RolloutTimeoutSeconds != nil && *spec.RolloutTimeoutSeconds < 1 {
		return fmt.Errorf("rolloutTimeoutSeconds must be >= 1")
	}

	return nil
}

// DefaultSpec applies safe defaults consistent with CRD defaults.
func DefaultSpec(spec *AppDeploymentSpec) {
	if spec.Workload.Replicas == nil {
		defaultValue := defaultReplicas()
		spec.Workload.Replicas = &defaultValue
	}

	if spec.Service != nil {
		if spec.Service.TargetPort == 0 {
			spec.Service.TargetPort = spec.Service.Port
		}

		if spec.Service.Type == "" {
			spec.Service.Type = ServiceClusterIP
		}
	}

	if spec.Storage != nil {
		if spec.Storage.Capacity == "" {
			spec.Storage.Capacity = DefaultCapacity
		}

		if spec.Storage.Request == "" {
			spec.Storage.Request = spec.Storage.Capacity
		}

		if spec.Storage.StorageClass == "" {
			spec.Storage.StorageClass = DefaultStorageClass
		}

		if spec.Storage.ClaimName == "" {
			spec.Storage.ClaimName = spec.Workload.Name + "-data"
		}

		if spec.Workload.MountPath == "" {
			spec.Workload.MountPath = "/data"
		}
	}

	if spec.RolloutTimeoutSeconds == nil {
		timeout := int32(120)
		spec.RolloutTimeoutSeconds = &timeout
	}
}

// ValidateResources checks a submitted resource set before any apply call:
// identities must be unique per (kind, namespace) and every Reference must
// resolve within the set, including the referenced key for ConfigMap/Secret
// bindings.
func ValidateResources(specs []ResourceSpec) error {
	type identity struct {
		kind      Kind
		namespace string
		name      string
	}

	seen := map[identity]struct{}{}
	byID := map[ResourceID]ResourceSpec{}

	for _, spec := range specs {
		id := identity{kind: spec.Kind, namespace: spec.Namespace, name: spec.Name}
		if _, exists := seen[id]; exists {
			return &DuplicateResourceError{Kind: spec.Kind, Namespace: spec.Namespace, Name: spec.Name}
		}

		seen[id] = struct{}{}
		byID[spec.ID()] = spec
	}

	for _, spec := range specs {
		for _, ref := range spec.References() {
			target, exists := byID[ResourceID{Kind: ref.Kind, Name: ref.Name}]
			if !exists {
				return &UnresolvedReferenceError{Referrer: spec.ID(), Ref: ref}
			}

			if ref.Key == "" {
				continue
			}

			if _, hasKey := target.Data[ref.Key]; !hasKey {
				return &UnresolvedReferenceError{Referrer: spec.ID(), Ref: ref}
			}
		}
	}

	return nil
}

// defaultReplicas determines the workload replica default from environment defaults.
func defaultReplicas() int32 {
	if environmentValue := os.Getenv("DEFAULT_REPLICAS"); environmentValue != "" {
		if parsed, err := strconv.Atoi(environmentValue); err == nil && parsed >= 0 {
			return int32(parsed)
		}
	}

	return 1
}
