package v1alpha1

import (
	"k8s.io/apimachinery/pkg/runtime"

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/webhook"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"

	"appdeployer/pkg/core"
)

var _ webhook.Defaulter = &AppDeployment{}
var _ webhook.Validator = &AppDeployment{}
var _ runtime.Object = &AppDeployment{}
var _ runtime.Object = &AppDeploymentList{}

// Default implements webhook.Defaulter.
func (appDeployment *AppDeployment) Default() { core.DefaultSpec(&appDeployment.Spec) }

// SetupWebhookWithManager registers the webhook with the provided manager.
func (appDeployment *AppDeployment) SetupWebhookWithManager(manager ctrl.Manager) error {
	return ctrl.NewWebhookManagedBy(manager).
		For(appDeployment).
		Complete()
}

// ValidateCreate implements webhook.Validator.
func (appDeployment *AppDeployment) ValidateCreate() (admission.Warnings, error) {
	if err := core.ValidateSpec(&appDeployment.Spec); err != nil {
		return nil, err
	}

	return nil, nil
}

// ValidateUpdate implements webhook.Validator.
func (appDeployment *AppDeployment) ValidateUpdate(runtime.Object) (admission.Warnings, error) {
	if err := core.ValidateSpec(&appDeployment.Spec); err != nil {
		return nil, err
	}

	return nil, nil
}

// ValidateDelete implements webhook.Validator.
func (appDeployment *AppDeployment) ValidateDelete() (admission.Warnings, error) {
	return nil, nil
}

// DeepCopyInto copies the receiver into out.
func (appDeployment *AppDeployment) DeepCopyInto(out *AppDeployment) {
	if appDeployment == nil || out == nil {
		return
	}
	*out = *appDeployment
	appDeployment.ObjectMeta.DeepCopyInto(&out.ObjectMeta)

	out.Spec = deepCopySpec((*core.AppDeploymentSpec)(&appDeployment.Spec))
	out.Status = deepCopyStatus((*core.AppDeploymentStatus)(&appDeployment.Status))
}

// DeepCopy creates a new deep copy of the receiver.
func (appDeployment *AppDeployment) DeepCopy() *AppDeployment {
	if appDeployment == nil {
		return nil
	}

	out := new(AppDeployment)

	appDeployment.DeepCopyInto(out)
	return out
}

// DeepCopyObject returns a deep copy as a runtime.Object.
func (appDeployment *AppDeployment) DeepCopyObject() runtime.Object {
	if appDeployment == nil {
		return nil
	}

	return appDeployment.DeepCopy()
}

// DeepCopyInto copies the receiver into out.
func (appDeploymentList *AppDeploymentList) DeepCopyInto(out *AppDeploymentList) {
	if appDeploymentList == nil || out == nil {
		return
	}
	*out = *appDeploymentList
	appDeploymentList.ListMeta.DeepCopyInto(&out.ListMeta)

	if appDeploymentList.Items != nil {
		out.Items = make([]AppDeployment, len(appDeploymentList.Items))

		for index := range appDeploymentList.Items {
			appDeploymentList.Items[index].DeepCopyInto(&out.Items[index])
		}
	}
}

// DeepCopy creates a new deep copy of the list.
func (appDeploymentList *AppDeploymentList) DeepCopy() *AppDeploymentList {
	if appDeploymentList == nil {
		return nil
	}

	out := new(AppDeploymentList)

	appDeploymentList.DeepCopyInto(out)
	return out
}

// DeepCopyObject returns a deep copy of the list as a runtime.Object.
func (appDeploymentList *AppDeploymentList) DeepCopyObject() runtime.Object {
	if appDeploymentList == nil {
		return nil
	}

	return appDeploymentList.DeepCopy()
}

func deepCopySpec(source *core.AppDeploymentSpec) core.AppDeploymentSpec {
	if source == nil {
		return core.AppDeploymentSpec{}
	}
	copiedSpec := *source

	copiedSpec.Workload = deepCopyWorkload(source.Workload)
	copiedSpec.ConfigMaps = deepCopyBundles(source.ConfigMaps)
	copiedSpec.Secrets = deepCopyBundles(source.Secrets)

	if source.Storage != nil {
		storageCopy := *source.Storage
		copiedSpec.Storage = &storageCopy
	} else {
		copiedSpec.Storage = nil
	}

	if source.Service != nil {
		serviceCopy := *source.Service
		copiedSpec.Service = &serviceCopy
	} else {
		copiedSpec.Service = nil
	}

	if source.RolloutTimeoutSeconds != nil {
		timeoutCopy := *source.RolloutTimeoutSeconds
		copiedSpec.RolloutTimeoutSeconds = &timeoutCopy
	} else {
		copiedSpec.RolloutTimeoutSeconds = nil
	}

	return copiedSpec
}

func deepCopyWorkload(source core.WorkloadConfig) core.WorkloadConfig {
	copiedWorkload := source

	if source.Replicas != nil {
		replicasCopy := *source.Replicas
		copiedWorkload.Replicas = &replicasCopy
	}

	if source.Env != nil {
		copiedWorkload.Env = make([]core.EnvBinding, len(source.Env))

		for index, binding := range source.Env {
			bindingCopy := binding

			if binding.ValueFrom != nil {
				referenceCopy := *binding.ValueFrom
				bindingCopy.ValueFrom = &referenceCopy
			}

			copiedWorkload.Env[index] = bindingCopy
		}
	}

	return copiedWorkload
}

func deepCopyBundles(source []core.KeyValueBundle) []core.KeyValueBundle {
	if source == nil {
		return nil
	}

	copiedBundles := make([]core.KeyValueBundle, len(source))

	for index, bundle := range source {
		bundleCopy := bundle

		if bundle.Data != nil {
			bundleCopy.Data = make(map[string]string, len(bundle.Data))

			for dataKey, dataValue := range bundle.Data {
				bundleCopy.Data[dataKey] = dataValue
			}
		}

		copiedBundles[index] = bundleCopy
	}

	return copiedBundles
}

func deepCopyStatus(source *core.AppDeploymentStatus) core.AppDeploymentStatus {
	if source == nil {
		return core.AppDeploymentStatus{}
	}
	copiedStatus := *source

	if source.Conditions != nil {
		copiedStatus.Conditions = append([]core.Condition(nil), source.Conditions...)
	}

	if source.Resources != nil {
		copiedStatus.Resources = append([]core.ResourceOutcome(nil), source.Resources...)
	}

	return copiedStatus
}
