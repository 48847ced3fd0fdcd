package v1alpha1

import (
	"time"

	"appdeployer/pkg/agents/status"
	"appdeployer/pkg/agents/summary"
)

// ApplyReport folds the report of a reconciliation pass into the status
// subresource, preserving condition transition times where nothing changed.
func (appDeployment *AppDeployment) ApplyReport(report *summary.DeploymentReport, reconcileErr error, now time.Time) {
	appDeployment.Status = status.Compute(appDeployment.Status, report, reconcileErr, now)
}
