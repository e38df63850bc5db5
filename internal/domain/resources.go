package domain

// ResourceRequirements quantities are opaque strings ("0.5", "500Mi") and are
// never parsed here.
type ResourceRequirements struct {
	CPURequest    string `json:"cpu_request,omitempty"`
	CPULimit      string `json:"cpu_limit,omitempty"`
	MemoryRequest string `json:"memory_request,omitempty"`
	MemoryLimit   string `json:"memory_limit,omitempty"`
}

func (r *ResourceRequirements) Clone() *ResourceRequirements {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

type JobType string

const (
	JobTypeGetSpec         JobType = "get_spec"
	JobTypeCheckConnection JobType = "check_connection"
	JobTypeDiscoverSchema  JobType = "discover_schema"
	JobTypeSync            JobType = "sync"
	JobTypeResetConnection JobType = "reset_connection"
)

type JobTypeResourceLimit struct {
	JobType              JobType              `json:"jobType"`
	ResourceRequirements ResourceRequirements `json:"resourceRequirements"`
}

type ActorDefinitionResourceRequirements struct {
	Default     *ResourceRequirements  `json:"default,omitempty"`
	JobSpecific []JobTypeResourceLimit `json:"jobSpecific,omitempty"`
}
