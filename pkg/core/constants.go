package core

// Managed metadata keys and finalizer
const (
	ManagedLabel    = "appdeployer.platform.example.com/managed"
	OwnerAnnotation = "appdeployer.platform.example.com/owner"
	HashAnnotation  = "appdeployer.platform.example.com/hash"
	AppLabel        = "app"

	Finalizer = "appdeployer.platform.example.com/finalizer"
)

// Condition types
const (
	CondReady       = "Ready"
	CondProgressing = "Progressing"
	CondDegraded    = "Degraded"
)

// Service type enums
const (
	ServiceClusterIP = "ClusterIP"
	ServiceNodePort  = "NodePort"
)

// Storage defaults
const (
	DefaultAccessMode   = "ReadWriteOnce"
	DefaultCapacity     = "1Gi"
	DefaultStorageClass = "standard"
)

// kindRank fixes the tie-break order among resources with no ordering
// constraint so plans are deterministic.
var kindRank = map[Kind]int{
	KindPersistentVolume:      0,
	KindPersistentVolumeClaim: 1,
	KindConfigMap:             2,
	KindSecret:                3,
	KindDeployment:            4,
	KindService:               5,
}

// KindRank returns the tie-break rank for a kind. Unknown kinds sort last.
func KindRank(kind Kind) int {
	if rank, ok := kindRank[kind]; ok {
		return rank
	}
	return len(kindRank)
}
