package webhooks

import (
	"appdeployer/pkg/core"
)

// DefaultAppDeployment applies server-side style defaults to the incoming
// AppDeployment spec. The webhook deals strictly with the spec portion of the
// resource because status is managed by the controller loop.
func DefaultAppDeployment(spec *core.AppDeploymentSpec) {
	if spec == nil {
		return
	}
	core.DefaultSpec(spec)
}
