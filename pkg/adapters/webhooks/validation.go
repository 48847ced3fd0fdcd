package webhooks

import (
	"appdeployer/pkg/core"
)

// ValidateAppDeployment runs admission-time validation against the spec. It
// mirrors what the controller would reject anyway so users get synchronous
// feedback on create/update.
func ValidateAppDeployment(spec *core.AppDeploymentSpec) error {
	return core.ValidateSpec(spec)
}
