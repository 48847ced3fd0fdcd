package adapters

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"appdeployer/pkg/core"
)

type controllerRuntimeClient struct {
	client client.Client
}

// NewControllerRuntimeClient returns a ClusterClient backed by a controller-runtime client.Client.
func NewControllerRuntimeClient(kubeClient client.Client) ClusterClient {
	return &controllerRuntimeClient{client: kubeClient}
}

// GetResourceState fetches the live object and reduces it to existence plus
// the structural hash of its declared fields. Server-populated metadata never
// contributes to the hash.
func (clientAdapter *controllerRuntimeClient) GetResourceState(ctx context.Context, kind core.Kind, namespace, name string) (ResourceState, error) {
	observed, err := newTypedObject(kind)
	if err != nil {
		return ResourceState{}, err
	}

	key := types.NamespacedName{Namespace: namespaceFor(kind, namespace), Name: name}

	if err := clientAdapter.client.Get(ctx, key, observed); err != nil {
		if apierrors.IsNotFound(err) {
			return ResourceState{}, nil
		}

		return ResourceState{}, fmt.Errorf("get %s %s: %w", kind, name, err)
	}

	extracted, err := extractSpec(kind, observed)
	if err != nil {
		return ResourceState{}, err
	}

	return ResourceState{Found: true, Hash: core.HashResource(extracted)}, nil
}

// CreateResource builds the typed manifest for spec and creates it.
func (clientAdapter *controllerRuntimeClient) CreateResource(ctx context.Context, spec core.ResourceSpec) error {
	object, err := buildObject(spec)
	if err != nil {
		return err
	}

	if err := clientAdapter.client.Create(ctx, object); err != nil {
		return fmt.Errorf("create %s %s: %w", spec.Kind, spec.Name, err)
	}

	return nil
}

// UpdateResource rewrites the declared fields of the live object while
// preserving server-populated metadata (resourceVersion, uid).
func (clientAdapter *controllerRuntimeClient) UpdateResource(ctx context.Context, spec core.ResourceSpec) error {
	observed, err := newTypedObject(spec.Kind)
	if err != nil {
		return err
	}

	key := types.NamespacedName{Namespace: namespaceFor(spec.Kind, spec.Namespace), Name: spec.Name}

	if err := clientAdapter.client.Get(ctx, key, observed); err != nil {
		return fmt.Errorf("get %s %s for update: %w", spec.Kind, spec.Name, err)
	}

	desired, err := buildObject(spec)
	if err != nil {
		return err
	}

	copyDeclaredFields(observed, desired)

	if err := clientAdapter.client.Update(ctx, observed); err != nil {
		return fmt.Errorf("update %s %s: %w", spec.Kind, spec.Name, err)
	}

	return nil
}

// ListPodsForDeployment lists pods carrying the deployment's app label and
// reports which ones pass their readiness condition.
func (clientAdapter *controllerRuntimeClient) ListPodsForDeployment(ctx context.Context, namespace, name string) ([]PodStatus, error) {
	var podList corev1.PodList

	if err := clientAdapter.client.List(ctx, &podList,
		client.InNamespace(namespace),
		client.MatchingLabels{core.AppLabel: name},
	); err != nil {
		return nil, fmt.Errorf("list pods for %s/%s: %w", namespace, name, err)
	}

	statuses := make([]PodStatus, 0, len(podList.Items))

	for _, pod := range podList.Items {
		statuses = append(statuses, PodStatus{Name: pod.Name, Ready: podReady(&pod)})
	}

	return statuses, nil
}

// DeleteResource removes the resource, ignoring not found errors.
func (clientAdapter *controllerRuntimeClient) DeleteResource(ctx context.Context, kind core.Kind, namespace, name string) error {
	object, err := newTypedObject(kind)
	if err != nil {
		return err
	}

	object.SetNamespace(namespaceFor(kind, namespace))
	object.SetName(name)

	if err := client.IgnoreNotFound(clientAdapter.client.Delete(ctx, object)); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, name, err)
	}

	return nil
}

// namespaceFor strips the namespace for cluster-scoped kinds.
func namespaceFor(kind core.Kind, namespace string) string {
	if kind == core.KindPersistentVolume {
		return ""
	}

	return namespace
}

func podReady(pod *corev1.Pod) bool {
	if pod.Status.Phase != corev1.PodRunning {
		return false
	}

	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodReady {
			return condition.Status == corev1.ConditionTrue
		}
	}

	return false
}

func newTypedObject(kind core.Kind) (client.Object, error) {
	switch kind {
	case core.KindConfigMap:
		return &corev1.ConfigMap{}, nil
	case core.KindSecret:
		return &corev1.Secret{}, nil
	case core.KindPersistentVolume:
		return &corev1.PersistentVolume{}, nil
	case core.KindPersistentVolumeClaim:
		return &corev1.PersistentVolumeClaim{}, nil
	case core.KindDeployment:
		return &appsv1.Deployment{}, nil
	case core.KindService:
		return &corev1.Service{}, nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
}

// managedMeta returns the labels and annotations stamped on every managed object.
func managedMeta(spec core.ResourceSpec) (map[string]string, map[string]string) {
	labels := map[string]string{core.ManagedLabel: "true"}
	for key, value := range spec.Labels {
		labels[key] = value
	}

	annotations := map[string]string{core.HashAnnotation: core.HashResource(spec)}

	return labels, annotations
}

// buildObject lowers a ResourceSpec into the typed Kubernetes manifest.
func buildObject(spec core.ResourceSpec) (client.Object, error) {
	labels, annotations := managedMeta(spec)

	meta := metav1.ObjectMeta{
		Name:        spec.Name,
		Namespace:   namespaceFor(spec.Kind, spec.Namespace),
		Labels:      labels,
		Annotations: annotations,
	}

	switch spec.Kind {
	case core.KindConfigMap:
		return &corev1.ConfigMap{ObjectMeta: meta, Data: spec.Data}, nil

	case core.KindSecret:
		return &corev1.Secret{ObjectMeta: meta, Type: corev1.SecretTypeOpaque, StringData: spec.Data}, nil

	case core.KindPersistentVolume:
		return buildPersistentVolume(spec, meta)

	case core.KindPersistentVolumeClaim:
		return buildPersistentVolumeClaim(spec, meta)

	case core.KindDeployment:
		return buildDeployment(spec, meta)

	case core.KindService:
		return buildService(spec, meta)

	default:
		return nil, fmt.Errorf("unsupported kind %s", spec.Kind)
	}
}

func buildPersistentVolume(spec core.ResourceSpec, meta metav1.ObjectMeta) (client.Object, error) {
	if spec.Storage == nil {
		return nil, fmt.Errorf("PersistentVolume %s has no storage attributes", spec.Name)
	}

	capacity, err := resource.ParseQuantity(spec.Storage.Capacity)
	if err != nil {
		return nil, fmt.Errorf("PersistentVolume %s capacity: %w", spec.Name, err)
	}

	volume := &corev1.PersistentVolume{
		ObjectMeta: meta,
		Spec: corev1.PersistentVolumeSpec{
			Capacity:         corev1.ResourceList{corev1.ResourceStorage: capacity},
			AccessModes:      []corev1.PersistentVolumeAccessMode{corev1.PersistentVolumeAccessMode(spec.Storage.AccessMode)},
			StorageClassName: spec.Storage.StorageClass,
		},
	}

	if spec.Storage.HostPath != "" {
		volume.Spec.PersistentVolumeSource = corev1.PersistentVolumeSource{
			HostPath: &corev1.HostPathVolumeSource{Path: spec.Storage.HostPath},
		}
	}

	return volume, nil
}

func buildPersistentVolumeClaim(spec core.ResourceSpec, meta metav1.ObjectMeta) (client.Object, error) {
	if spec.Storage == nil {
		return nil, fmt.Errorf("PersistentVolumeClaim %s has no storage attributes", spec.Name)
	}

	request, err := resource.ParseQuantity(spec.Storage.Capacity)
	if err != nil {
		return nil, fmt.Errorf("PersistentVolumeClaim %s request: %w", spec.Name, err)
	}

	storageClass := spec.Storage.StorageClass

	claim := &corev1.PersistentVolumeClaim{
		ObjectMeta: meta,
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{corev1.PersistentVolumeAccessMode(spec.Storage.AccessMode)},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{corev1.ResourceStorage: request},
			},
			VolumeName: spec.Storage.VolumeName,
		},
	}

	if storageClass != "" {
		claim.Spec.StorageClassName = &storageClass
	}

	return claim, nil
}

func buildDeployment(spec core.ResourceSpec, meta metav1.ObjectMeta) (client.Object, error) {
	if spec.Workload == nil {
		return nil, fmt.Errorf("Deployment %s has no workload attributes", spec.Name)
	}

	replicas := spec.Workload.Replicas
	selector := map[string]string{core.AppLabel: spec.Name}

	container := corev1.Container{
		Name:  spec.Name,
		Image: spec.Workload.Image,
		Env:   buildEnv(spec.Workload.Env),
	}

	var volumes []corev1.Volume

	if spec.Workload.ClaimName != "" {
		volumes = append(volumes, corev1.Volume{
			Name: "data",
			VolumeSource: corev1.VolumeSource{
				PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{ClaimName: spec.Workload.ClaimName},
			},
		})

		container.VolumeMounts = []corev1.VolumeMount{{Name: "data", MountPath: spec.Workload.MountPath}}
	}

	deployment := &appsv1.Deployment{
		ObjectMeta: meta,
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: selector},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{container},
					Volumes:    volumes,
				},
			},
		},
	}

	return deployment, nil
}

func buildService(spec core.ResourceSpec, meta metav1.ObjectMeta) (client.Object, error) {
	if spec.Service == nil {
		return nil, fmt.Errorf("Service %s has no service attributes", spec.Name)
	}

	service := &corev1.Service{
		ObjectMeta: meta,
		Spec: corev1.ServiceSpec{
			Selector: spec.Service.Selector,
			Type:     corev1.ServiceType(spec.Service.Type),
			Ports: []corev1.ServicePort{{
				Port:       spec.Service.Port,
				TargetPort: intstr.FromInt32(spec.Service.TargetPort),
			}},
		},
	}

	return service, nil
}

func buildEnv(bindings []core.EnvBinding) []corev1.EnvVar {
	if len(bindings) == 0 {
		return nil
	}

	env := make([]corev1.EnvVar, 0, len(bindings))

	for _, binding := range bindings {
		envVar := corev1.EnvVar{Name: binding.Name}

		switch {
		case binding.ValueFrom == nil:
			envVar.Value = binding.Value
		case binding.ValueFrom.Kind == core.KindSecret:
			envVar.ValueFrom = &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: binding.ValueFrom.Name},
					Key:                  binding.ValueFrom.Key,
				},
			}
		default:
			envVar.ValueFrom = &corev1.EnvVarSource{
				ConfigMapKeyRef: &corev1.ConfigMapKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: binding.ValueFrom.Name},
					Key:                  binding.ValueFrom.Key,
				},
			}
		}

		env = append(env, envVar)
	}

	return env
}

// copyDeclaredFields rewrites the declared portion of the observed object
// from the freshly built desired object.
func copyDeclaredFields(observed, desired client.Object) {
	observed.SetLabels(desired.GetLabels())
	observed.SetAnnotations(desired.GetAnnotations())

	switch live := observed.(type) {
	case *corev1.ConfigMap:
		live.Data = desired.(*corev1.ConfigMap).Data
	case *corev1.Secret:
		fresh := desired.(*corev1.Secret)
		live.Type = fresh.Type
		live.Data = nil
		live.StringData = fresh.StringData
	case *corev1.PersistentVolume:
		live.Spec = desired.(*corev1.PersistentVolume).Spec
	case *corev1.PersistentVolumeClaim:
		fresh := desired.(*corev1.PersistentVolumeClaim)
		live.Spec.Resources = fresh.Spec.Resources
	case *appsv1.Deployment:
		live.Spec = desired.(*appsv1.Deployment).Spec
	case *corev1.Service:
		fresh := desired.(*corev1.Service)
		live.Spec.Selector = fresh.Spec.Selector
		live.Spec.Type = fresh.Spec.Type
		live.Spec.Ports = fresh.Spec.Ports
	}
}

// extractSpec is the inverse of buildObject for the declared fields: it
// reduces a live object back to a ResourceSpec so observed and desired state
// hash identically when nothing drifted.
func extractSpec(kind core.Kind, object client.Object) (core.ResourceSpec, error) {
	switch live := object.(type) {
	case *corev1.ConfigMap:
		return core.ResourceSpec{Kind: kind, Name: live.Name, Data: live.Data}, nil

	case *corev1.Secret:
		data := make(map[string]string, len(live.Data))
		for key, value := range live.Data {
			data[key] = string(value)
		}
		return core.ResourceSpec{Kind: kind, Name: live.Name, Data: data}, nil

	case *corev1.PersistentVolume:
		attrs := &core.StorageAttrs{StorageClass: live.Spec.StorageClassName}
		if capacity, ok := live.Spec.Capacity[corev1.ResourceStorage]; ok {
			attrs.Capacity = capacity.String()
		}
		if len(live.Spec.AccessModes) > 0 {
			attrs.AccessMode = string(live.Spec.AccessModes[0])
		}
		if live.Spec.HostPath != nil {
			attrs.HostPath = live.Spec.HostPath.Path
		}
		return core.ResourceSpec{Kind: kind, Name: live.Name, Storage: attrs}, nil

	case *corev1.PersistentVolumeClaim:
		attrs := &core.StorageAttrs{VolumeName: live.Spec.VolumeName}
		if live.Spec.StorageClassName != nil {
			attrs.StorageClass = *live.Spec.StorageClassName
		}
		if len(live.Spec.AccessModes) > 0 {
			attrs.AccessMode = string(live.Spec.AccessModes[0])
		}
		if request, ok := live.Spec.Resources.Requests[corev1.ResourceStorage]; ok {
			attrs.Capacity = request.String()
		}
		return core.ResourceSpec{Kind: kind, Name: live.Name, Storage: attrs}, nil

	case *appsv1.Deployment:
		return extractDeployment(live), nil

	case *corev1.Service:
		attrs := &core.ServiceAttrs{
			Type:     string(live.Spec.Type),
			Selector: live.Spec.Selector,
		}
		if len(live.Spec.Ports) > 0 {
			attrs.Port = live.Spec.Ports[0].Port
			attrs.TargetPort = int32(live.Spec.Ports[0].TargetPort.IntValue())
		}
		return core.ResourceSpec{Kind: kind, Name: live.Name, Service: attrs}, nil

	default:
		return core.ResourceSpec{}, fmt.Errorf("unsupported kind %s", kind)
	}
}

func extractDeployment(live *appsv1.Deployment) core.ResourceSpec {
	workload := &core.WorkloadAttrs{}

	if live.Spec.Replicas != nil {
		workload.Replicas = *live.Spec.Replicas
	}

	if len(live.Spec.Template.Spec.Containers) > 0 {
		container := live.Spec.Template.Spec.Containers[0]
		workload.Image = container.Image
		workload.Env = extractEnv(container.Env)

		if len(container.VolumeMounts) > 0 {
			workload.MountPath = container.VolumeMounts[0].MountPath
		}
	}

	for _, volume := range live.Spec.Template.Spec.Volumes {
		if volume.PersistentVolumeClaim != nil {
			workload.ClaimName = volume.PersistentVolumeClaim.ClaimName
			break
		}
	}

	var labels map[string]string
	if live.Spec.Selector != nil {
		labels = live.Spec.Selector.MatchLabels
	}

	return core.ResourceSpec{Kind: core.KindDeployment, Name: live.Name, Labels: labels, Workload: workload}
}

func extractEnv(env []corev1.EnvVar) []core.EnvBinding {
	if len(env) == 0 {
		return nil
	}

	bindings := make([]core.EnvBinding, 0, len(env))

	for _, envVar := range env {
		binding := core.EnvBinding{Name: envVar.Name}

		switch {
		case envVar.ValueFrom == nil:
			binding.Value = envVar.Value
		case envVar.ValueFrom.SecretKeyRef != nil:
			binding.ValueFrom = &core.Reference{
				Kind: core.KindSecret,
				Name: envVar.ValueFrom.SecretKeyRef.Name,
				Key:  envVar.ValueFrom.SecretKeyRef.Key,
			}
		case envVar.ValueFrom.ConfigMapKeyRef != nil:
			binding.ValueFrom = &core.Reference{
				Kind: core.KindConfigMap,
				Name: envVar.ValueFrom.ConfigMapKeyRef.Name,
				Key:  envVar.ValueFrom.ConfigMapKeyRef.Key,
			}
		}

		bindings = append(bindings, binding)
	}

	return bindings
}
