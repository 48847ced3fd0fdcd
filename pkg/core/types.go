package core

// Kind enumerates the resource kinds the reconciler manages.
type Kind string

const (
	KindPersistentVolume      Kind = "PersistentVolume"
	KindPersistentVolumeClaim Kind = "PersistentVolumeClaim"
	KindConfigMap             Kind = "ConfigMap"
	KindSecret                Kind = "Secret"
	KindDeployment            Kind = "Deployment"
	KindService               Kind = "Service"
)

// Reference points at another resource in the same submitted set. Key is only
// set for ConfigMap/Secret key references inside env bindings.
type Reference struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
	Key  string `json:"key,omitempty"`
}

// EnvBinding binds an environment variable either to a literal value or to a
// ConfigMap/Secret key via ValueFrom.
type EnvBinding struct {
	Name      string     `json:"name"`
	Value     string     `json:"value,omitempty"`
	ValueFrom *Reference `json:"valueFrom,omitempty"`
}

// WorkloadAttrs carries the Deployment-specific portion of a ResourceSpec.
type WorkloadAttrs struct {
	Image     string       `json:"image"`
	Replicas  int32        `json:"replicas"`
	Env       []EnvBinding `json:"env,omitempty"`
	ClaimName string       `json:"claimName,omitempty"`
	MountPath string       `json:"mountPath,omitempty"`
}

// StorageAttrs carries the PersistentVolume/Claim portion of a ResourceSpec.
type StorageAttrs struct {
	Capacity     string `json:"capacity"`
	StorageClass string `json:"storageClass,omitempty"`
	AccessMode   string `json:"accessMode,omitempty"`
	HostPath     string `json:"hostPath,omitempty"`   // PersistentVolume only
	VolumeName   string `json:"volumeName,omitempty"` // PersistentVolumeClaim binding to a PV
}

// ServiceAttrs carries the Service portion of a ResourceSpec.
type ServiceAttrs struct {
	Port       int32             `json:"port"`
	TargetPort int32             `json:"targetPort,omitempty"`
	Type       string            `json:"type,omitempty"`
	Selector   map[string]string `json:"selector,omitempty"`
}

// ResourceSpec is the in-memory desired state of a single manifest. It is
// constructed fresh per reconciliation pass and treated as immutable once
// submitted.
type ResourceSpec struct {
	Kind      Kind              `json:"kind"`
	Name      string            `json:"name"`
	Namespace string            `json:"namespace,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	Data      map[string]string `json:"data,omitempty"` // ConfigMap data or Secret stringData
	Workload  *WorkloadAttrs    `json:"workload,omitempty"`
	Storage   *StorageAttrs     `json:"storage,omitempty"`
	Service   *ServiceAttrs     `json:"service,omitempty"`
}

// References derives the set of resources this spec depends on. Deployments
// reference ConfigMap/Secret keys through env bindings and a
// PersistentVolumeClaim through the workload claim; claims reference a
// PersistentVolume when bound by name.
func (spec ResourceSpec) References() []Reference {
	var refs []Reference

	if spec.Workload != nil {
		for _, binding := range spec.Workload.Env {
			if binding.ValueFrom != nil {
				refs = append(refs, *binding.ValueFrom)
			}
		}

		if spec.Workload.ClaimName != "" {
			refs = append(refs, Reference{Kind: KindPersistentVolumeClaim, Name: spec.Workload.ClaimName})
		}
	}

	if spec.Kind == KindPersistentVolumeClaim && spec.Storage != nil && spec.Storage.VolumeName != "" {
		refs = append(refs, Reference{Kind: KindPersistentVolume, Name: spec.Storage.VolumeName})
	}

	return refs
}

// ID returns the kind/name identity used for plan bookkeeping.
func (spec ResourceSpec) ID() ResourceID {
	return ResourceID{Kind: spec.Kind, Name: spec.Name}
}

// ResourceID identifies a resource within one submitted set.
type ResourceID struct {
	Kind Kind
	Name string
}

func (id ResourceID) String() string { return string(id.Kind) + "/" + id.Name }

// ReconciliationPlan is a topologically ordered sequence of resources.
type ReconciliationPlan struct {
	Resources []ResourceSpec
}

// ApplyOutcome enumerates the per-resource result of one apply step.
type ApplyOutcome string

const (
	OutcomeCreated   ApplyOutcome = "created"
	OutcomeUpdated   ApplyOutcome = "updated"
	OutcomeUnchanged ApplyOutcome = "unchanged"
	OutcomeFailed    ApplyOutcome = "failed"
)

// ApplyResult records the outcome of applying a single resource.
type ApplyResult struct {
	Kind    Kind         `json:"kind"`
	Name    string       `json:"name"`
	Outcome ApplyOutcome `json:"outcome"`
	Reason  string       `json:"reason,omitempty"`
}

// Failed reports whether the result represents a failure.
func (r ApplyResult) Failed() bool { return r.Outcome == OutcomeFailed }

// RolloutState enumerates the terminal states of a rollout watch.
type RolloutState string

const (
	RolloutHealthy  RolloutState = "healthy"
	RolloutDegraded RolloutState = "degraded"
	RolloutTimedOut RolloutState = "timed-out"
)

// Rollout termination reasons distinguishing deadline expiry from caller
// cancellation.
const (
	RolloutReasonTimeout   = "timeout"
	RolloutReasonCancelled = "cancelled"
)

// RolloutStatus is the outcome of watching a Deployment converge.
type RolloutStatus struct {
	DesiredReplicas int32        `json:"desiredReplicas"`
	ReadyReplicas   int32        `json:"readyReplicas"`
	State           RolloutState `json:"state"`
	Reason          string       `json:"reason,omitempty"`
}

// Healthy reports whether the rollout reached the desired replica count.
func (s RolloutStatus) Healthy() bool { return s.State == RolloutHealthy }
