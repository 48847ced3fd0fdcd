package descriptor

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"appdeployer/pkg/core"
)

// Descriptor is the YAML document accepted by the one-shot deploy mode. It
// mirrors the AppDeployment spec plus the target namespace and name.
type Descriptor struct {
	Name                  string      `yaml:"name"`
	Namespace             string      `yaml:"namespace"`
	Workload              WorkloadDoc `yaml:"workload"`
	ConfigMaps            []BundleDoc `yaml:"configMaps"`
	Secrets               []BundleDoc `yaml:"secrets"`
	Storage               *StorageDoc `yaml:"storage"`
	Service               *ServiceDoc `yaml:"service"`
	RolloutTimeoutSeconds *int32      `yaml:"rolloutTimeoutSeconds"`
}

type WorkloadDoc struct {
	Name      string   `yaml:"name"`
	Image     string   `yaml:"image"`
	Replicas  *int32   `yaml:"replicas"`
	Env       []EnvDoc `yaml:"env"`
	MountPath string   `yaml:"mountPath"`
}

type EnvDoc struct {
	Name      string        `yaml:"name"`
	Value     string        `yaml:"value"`
	ValueFrom *ReferenceDoc `yaml:"valueFrom"`
}

type ReferenceDoc struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
	Key  string `yaml:"key"`
}

type BundleDoc struct {
	Name string            `yaml:"name"`
	Data map[string]string `yaml:"data"`
}

type StorageDoc struct {
	VolumeName   string `yaml:"volumeName"`
	Capacity     string `yaml:"capacity"`
	HostPath     string `yaml:"hostPath"`
	StorageClass string `yaml:"storageClass"`
	ClaimName    string `yaml:"claimName"`
	Request      string `yaml:"request"`
}

type ServiceDoc struct {
	Port       int32  `yaml:"port"`
	TargetPort int32  `yaml:"targetPort"`
	Type       string `yaml:"type"`
}

// Environment variables that override descriptor fields, so a pipeline can
// retarget an image without editing the file.
const (
	EnvImageOverride    = "APPDEPLOYER_IMAGE"
	EnvReplicasOverride = "APPDEPLOYER_REPLICAS"
)

// Load reads a descriptor file, applies environment overrides, and returns
// the defaulted, validated spec plus the target namespace and name.
func Load(path string) (string, string, *core.AppDeploymentSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", nil, fmt.Errorf("read descriptor: %w", err)
	}
	return Parse(raw)
}

// Parse decodes descriptor bytes. Unknown fields are rejected so typos fail
// loudly instead of silently deploying defaults.
func Parse(raw []byte) (string, string, *core.AppDeploymentSpec, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)

	var doc Descriptor
	if err := decoder.Decode(&doc); err != nil {
		return "", "", nil, fmt.Errorf("parse descriptor: %w", err)
	}

	if doc.Namespace == "" {
		return "", "", nil, fmt.Errorf("descriptor namespace is required")
	}
	if doc.Name == "" {
		doc.Name = doc.Workload.Name
	}

	applyEnvironmentOverrides(&doc)

	spec := toSpec(&doc)
	core.DefaultSpec(spec)
	if err := core.ValidateSpec(spec); err != nil {
		return "", "", nil, err
	}

	return doc.Namespace, doc.Name, spec, nil
}

func applyEnvironmentOverrides(doc *Descriptor) {
	if image := os.Getenv(EnvImageOverride); image != "" {
		doc.Workload.Image = image
	}
	if raw := os.Getenv(EnvReplicasOverride); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 32); err == nil && parsed > 0 {
			replicas := int32(parsed)
			doc.Workload.Replicas = &replicas
		}
	}
}

func toSpec(doc *Descriptor) *core.AppDeploymentSpec {
	spec := &core.AppDeploymentSpec{
		Workload: core.WorkloadConfig{
			Name:      doc.Workload.Name,
			Image:     doc.Workload.Image,
			Replicas:  doc.Workload.Replicas,
			MountPath: doc.Workload.MountPath,
		},
		RolloutTimeoutSeconds: doc.RolloutTimeoutSeconds,
	}

	for _, env := range doc.Workload.Env {
		binding := core.EnvBinding{Name: env.Name, Value: env.Value}
		if env.ValueFrom != nil {
			binding.ValueFrom = &core.Reference{
				Kind: core.Kind(env.ValueFrom.Kind),
				Name: env.ValueFrom.Name,
				Key:  env.ValueFrom.Key,
			}
		}
		spec.Workload.Env = append(spec.Workload.Env, binding)
	}

	for _, bundle := range doc.ConfigMaps {
		spec.ConfigMaps = append(spec.ConfigMaps, core.KeyValueBundle{Name: bundle.Name, Data: bundle.Data})
	}
	for _, bundle := range doc.Secrets {
		spec.Secrets = append(spec.Secrets, core.KeyValueBundle{Name: bundle.Name, Data: bundle.Data})
	}

	if doc.Storage != nil {
		spec.Storage = &core.StorageConfig{
			VolumeName:   doc.Storage.VolumeName,
			Capacity:     doc.Storage.Capacity,
			HostPath:     doc.Storage.HostPath,
			StorageClass: doc.Storage.StorageClass,
			ClaimName:    doc.Storage.ClaimName,
			Request:      doc.Storage.Request,
		}
	}

	if doc.Service != nil {
		spec.Service = &core.ServiceConfig{
			Port:       doc.Service.Port,
			TargetPort: doc.Service.TargetPort,
			Type:       doc.Service.Type,
		}
	}

	return spec
}
