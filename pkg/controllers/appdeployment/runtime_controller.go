package appdeployment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	"appdeployer/pkg/adapters"
	"appdeployer/pkg/adapters/events"
	appv1alpha1 "appdeployer/pkg/api/v1alpha1"
	"appdeployer/pkg/agents/summary"
	"appdeployer/pkg/core"
	observabilitymetrics "appdeployer/pkg/observability/metrics"
)

// AppDeploymentController reconciles AppDeployment resources with a
// controller-runtime manager.
type AppDeploymentController struct {
	client.Client
	logger     logr.Logger
	reconciler *Reconciler
	recorder   *events.Recorder
}

var _ reconcile.Reconciler = &AppDeploymentController{}

// NewController constructs an AppDeploymentController wired with the manager's client.
func NewController(manager ctrl.Manager) *AppDeploymentController {
	cluster := adapters.NewControllerRuntimeClient(manager.GetClient())

	return &AppDeploymentController{
		Client:     manager.GetClient(),
		logger:     ctrl.Log.WithName("controllers").WithName("AppDeployment"),
		reconciler: NewReconciler(cluster),
		recorder:   events.NewRecorder(manager.GetEventRecorderFor("appdeployment-controller")),
	}
}

// Reconcile runs the core reconciliation logic for an AppDeployment instance.
func (c *AppDeploymentController) Reconcile(requestContext context.Context, reconcileRequest ctrl.Request) (ctrl.Result, error) {
	requestLogger := c.logger.WithValues("appdeployment", reconcileRequest.NamespacedName)

	var appDeployment appv1alpha1.AppDeployment

	if err := c.Get(requestContext, reconcileRequest.NamespacedName, &appDeployment); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}

		return ctrl.Result{}, err
	}

	key := Key{Namespace: reconcileRequest.Namespace, Name: reconcileRequest.Name}

	if appDeployment.ObjectMeta.DeletionTimestamp.IsZero() {
		if !controllerutil.ContainsFinalizer(&appDeployment, core.Finalizer) {
			controllerutil.AddFinalizer(&appDeployment, core.Finalizer)

			if err := c.Update(requestContext, &appDeployment); err != nil {
				return ctrl.Result{}, err
			}
		}
	} else {
		if controllerutil.ContainsFinalizer(&appDeployment, core.Finalizer) {
			if err := c.reconciler.Finalize(requestContext, key, &appDeployment.Spec); err != nil {
				return ctrl.Result{}, err
			}

			controllerutil.RemoveFinalizer(&appDeployment, core.Finalizer)

			if err := c.Update(requestContext, &appDeployment); err != nil {
				return ctrl.Result{}, err
			}
		}

		return ctrl.Result{}, nil
	}

	start := time.Now()
	report, err := c.reconciler.Reconcile(requestContext, key, &appDeployment.Spec)
	duration := time.Since(start)

	observabilitymetrics.RecordReconcile(report, duration, err)
	if err != nil {
		requestLogger.Error(err, "reconciliation failed")
		c.recorder.Error(&appDeployment, err)

		if core.IsValidation(err) {
			// Invalid specs never become valid by requeueing.
			statusPatch := client.MergeFrom(appDeployment.DeepCopy())
			appDeployment.ApplyReport(nil, err, time.Now())
			if patchErr := c.Status().Patch(requestContext, &appDeployment, statusPatch); patchErr != nil {
				requestLogger.Error(patchErr, "update status after validation failure")
			}
			return ctrl.Result{}, nil
		}

		return ctrl.Result{}, err
	}

	c.emitEvents(&appDeployment, report)

	statusPatch := client.MergeFrom(appDeployment.DeepCopy())

	appDeployment.ApplyReport(&report, nil, time.Now())

	if err := c.Status().Patch(requestContext, &appDeployment, statusPatch); err != nil {
		if apierrors.IsConflict(err) {
			return ctrl.Result{Requeue: true}, nil
		}

		return ctrl.Result{}, fmt.Errorf("update status: %w", err)
	}

	if !report.Succeeded {
		return ctrl.Result{RequeueAfter: time.Minute}, nil
	}

	return ctrl.Result{}, nil
}

// SetupWithManager registers the controller with the provided manager.
func SetupWithManager(manager ctrl.Manager) error {
	reconciler := NewController(manager)
	return ctrl.NewControllerManagedBy(manager).
		WithOptions(controller.Options{MaxConcurrentReconciles: 1}).
		For(&appv1alpha1.AppDeployment{}).
		Complete(reconciler)
}

func (c *AppDeploymentController) emitEvents(appDeployment *appv1alpha1.AppDeployment, report summary.DeploymentReport) {
	for _, result := range report.Results {
		switch result.Outcome {
		case core.OutcomeCreated:
			c.recorder.ResourceCreated(appDeployment, result.Kind, result.Name)
		case core.OutcomeUpdated:
			c.recorder.ResourceUpdated(appDeployment, result.Kind, result.Name)
		case core.OutcomeFailed:
			c.recorder.ResourceFailed(appDeployment, result.Kind, result.Name, result.Reason)
		}
	}

	if report.Rollout == nil {
		return
	}

	if report.Rollout.Healthy() {
		c.recorder.RolloutHealthy(appDeployment, report.Rollout.ReadyReplicas, report.Rollout.DesiredReplicas)
		return
	}

	c.recorder.RolloutNotHealthy(appDeployment, *report.Rollout)
}
