package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// HashData computes a stable sha256 hash of the string data map.
// Keys are sorted and joined as key\u0000value pairs to avoid JSON map nondeterminism.
func HashData(data map[string]string) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b := strings.Builder{}
	for _, k := range keys {
		b.WriteString(k)
		b.WriteRune('\u0000')
		b.WriteString(data[k])
		b.WriteRune('\n')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// HashResource computes the structural hash used to decide created vs updated
// vs unchanged. Only declared spec fields contribute; server-populated
// metadata never does. Secret values participate through the hash only, so a
// diff never surfaces them verbatim.
func HashResource(spec ResourceSpec) string {
	fields := map[string]string{
		"kind": string(spec.Kind),
		"name": spec.Name,
	}

	for key, value := range spec.Data {
		fields["data."+key] = value
	}

	for key, value := range spec.Labels {
		fields["labels."+key] = value
	}

	if w := spec.Workload; w != nil {
		fields["workload.image"] = w.Image
		fields["workload.replicas"] = fmt.Sprintf("%d", w.Replicas)
		fields["workload.claim"] = w.ClaimName
		fields["workload.mountPath"] = w.MountPath
		for _, binding := range w.Env {
			if binding.ValueFrom != nil {
				fields["env."+binding.Name] = fmt.Sprintf("ref:%s/%s/%s", binding.ValueFrom.Kind, binding.ValueFrom.Name, binding.ValueFrom.Key)
				continue
			}
			fields["env."+binding.Name] = "literal:" + binding.Value
		}
	}

	if s := spec.Storage; s != nil {
		fields["storage.capacity"] = s.Capacity
		fields["storage.class"] = s.StorageClass
		fields["storage.accessMode"] = s.AccessMode
		fields["storage.hostPath"] = s.HostPath
		fields["storage.volumeName"] = s.VolumeName
	}

	if s := spec.Service; s != nil {
		fields["service.port"] = fmt.Sprintf("%d", s.Port)
		fields["service.targetPort"] = fmt.Sprintf("%d", s.TargetPort)
		fields["service.type"] = s.Type
		for key, value := range s.Selector {
			fields["service.selector."+key] = value
		}
	}

	return HashData(fields)
}
