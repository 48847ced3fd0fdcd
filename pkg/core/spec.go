package core

// AppDeploymentSpec models the desired state of an application deployment: a
// single workload plus the config, secret, storage, and service resources it
// needs.
type AppDeploymentSpec struct {
	Workload              WorkloadConfig   `json:"workload"`
	ConfigMaps            []KeyValueBundle `json:"configMaps,omitempty"`
	Secrets               []KeyValueBundle `json:"secrets,omitempty"`
	Storage               *StorageConfig   `json:"storage,omitempty"`
	Service               *ServiceConfig   `json:"service,omitempty"`
	RolloutTimeoutSeconds *int32           `json:"rolloutTimeoutSeconds,omitempty"`
}

// WorkloadConfig describes the container workload to run.
type WorkloadConfig struct {
	Name      string       `json:"name"`
	Image     string       `json:"image"`
	Replicas  *int32       `json:"replicas,omitempty"`
	Env       []EnvBinding `json:"env,omitempty"`
	MountPath string       `json:"mountPath,omitempty"`
}

// KeyValueBundle is a named key-value payload lowered to a ConfigMap or
// Secret. Secret values are opaque: they are hashed for comparison and never
// logged.
type KeyValueBundle struct {
	Name string            `json:"name"`
	Data map[string]string `json:"data"`
}

// StorageConfig describes durable storage for the workload: a
// PersistentVolume definition and the claim the workload mounts.
type StorageConfig struct {
	VolumeName   string `json:"volumeName"`
	Capacity     string `json:"capacity,omitempty"`
	HostPath     string `json:"hostPath,omitempty"`
	StorageClass string `json:"storageClass,omitempty"`
	ClaimName    string `json:"claimName,omitempty"`
	Request      string `json:"request,omitempty"`
}

// ServiceConfig describes the Service fronting the workload replicas.
type ServiceConfig struct {
	Port       int32  `json:"port"`
	TargetPort int32  `json:"targetPort,omitempty"`
	Type       string `json:"type,omitempty"`
}

// AppDeploymentStatus reports the observed outcome of the last pass.
type AppDeploymentStatus struct {
	Conditions        []Condition       `json:"conditions,omitempty"`
	Resources         []ResourceOutcome `json:"resources,omitempty"`
	DesiredReplicas   int32             `json:"desiredReplicas,omitempty"`
	ReadyReplicas     int32             `json:"readyReplicas,omitempty"`
	LastReconcileTime string            `json:"lastReconcileTime,omitempty"` // RFC3339
}

// ResourceOutcome is the per-resource status projection of an ApplyResult.
type ResourceOutcome struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

// Condition is a standard status condition.
type Condition struct {
	Type               string `json:"type"`
	Status             string `json:"status"` // True|False|Unknown
	Reason             string `json:"reason,omitempty"`
	Message            string `json:"message,omitempty"`
	LastTransitionTime string `json:"lastTransitionTime,omitempty"`
}
