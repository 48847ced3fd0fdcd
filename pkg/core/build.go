package core

// BuildResources lowers an application descriptor into the resource set for
// one reconciliation pass. DefaultSpec must have run first so that replica
// counts, claim names, and service ports are populated.
func BuildResources(namespace string, spec *AppDeploymentSpec) []ResourceSpec {
	if spec == nil {
		return nil
	}

	selector := map[string]string{AppLabel: spec.Workload.Name}

	var resources []ResourceSpec

	if spec.Storage != nil {
		resources = append(resources, ResourceSpec{
			Kind: KindPersistentVolume,
			Name: spec.Storage.VolumeName,
			Storage: &StorageAttrs{
				Capacity:     spec.Storage.Capacity,
				StorageClass: spec.Storage.StorageClass,
				AccessMode:   DefaultAccessMode,
				HostPath:     spec.Storage.HostPath,
			},
		})

		resources = append(resources, ResourceSpec{
			Kind:      KindPersistentVolumeClaim,
			Name:      spec.Storage.ClaimName,
			Namespace: namespace,
			Storage: &StorageAttrs{
				Capacity:     spec.Storage.Request,
				StorageClass: spec.Storage.StorageClass,
				AccessMode:   DefaultAccessMode,
				VolumeName:   spec.Storage.VolumeName,
			},
		})
	}

	for _, bundle := range spec.ConfigMaps {
		resources = append(resources, ResourceSpec{
			Kind:      KindConfigMap,
			Name:      bundle.Name,
			Namespace: namespace,
			Data:      copyData(bundle.Data),
		})
	}

	for _, bundle := range spec.Secrets {
		resources = append(resources, ResourceSpec{
			Kind:      KindSecret,
			Name:      bundle.Name,
			Namespace: namespace,
			Data:      copyData(bundle.Data),
		})
	}

	workload := &WorkloadAttrs{
		Image:     spec.Workload.Image,
		Env:       append([]EnvBinding(nil), spec.Workload.Env...),
		MountPath: spec.Workload.MountPath,
	}

	if spec.Workload.Replicas != nil {
		workload.Replicas = *spec.Workload.Replicas
	}

	if spec.Storage != nil {
		workload.ClaimName = spec.Storage.ClaimName
	}

	resources = append(resources, ResourceSpec{
		Kind:      KindDeployment,
		Name:      spec.Workload.Name,
		Namespace: namespace,
		Labels:    selector,
		Workload:  workload,
	})

	if spec.Service != nil {
		resources = append(resources, ResourceSpec{
			Kind:      KindService,
			Name:      spec.Workload.Name,
			Namespace: namespace,
			Service: &ServiceAttrs{
				Port:       spec.Service.Port,
				TargetPort: spec.Service.TargetPort,
				Type:       spec.Service.Type,
				Selector:   selector,
			},
		})
	}

	return resources
}

// copyData duplicates a payload map so the built ResourceSpec stays immutable
// even if the descriptor is mutated afterwards.
func copyData(source map[string]string) map[string]string {
	if len(source) == 0 {
		return nil
	}

	copied := make(map[string]string, len(source))
	for key, value := range source {
		copied[key] = value
	}

	return copied
}
