package adapters

import (
	"context"

	"appdeployer/pkg/core"
)

// ResourceState is the observed cluster-side state of a single resource.
// Only existence and the structural hash of the declared fields cross this
// boundary, so Secret payloads never leave the adapter unhashed.
type ResourceState struct {
	Found bool
	Hash  string
}

// PodStatus reports readiness for one pod backing a Deployment.
type PodStatus struct {
	Name  string
	Ready bool
}

// ClusterClient defines the minimal cluster API interactions the reconciler needs.
type ClusterClient interface {
	// GetResourceState returns existence and the structural hash for the
	// resource identified by (kind, namespace, name).
	GetResourceState(ctx context.Context, kind core.Kind, namespace, name string) (ResourceState, error)
	// CreateResource creates the resource described by spec.
	CreateResource(ctx context.Context, spec core.ResourceSpec) error
	// UpdateResource updates the resource described by spec in place.
	UpdateResource(ctx context.Context, spec core.ResourceSpec) error
	// ListPodsForDeployment returns readiness for the pods selected by the
	// named Deployment's app label.
	ListPodsForDeployment(ctx context.Context, namespace, name string) ([]PodStatus, error)
	// DeleteResource removes a managed resource, ignoring not found.
	DeleteResource(ctx context.Context, kind core.Kind, namespace, name string) error
}
