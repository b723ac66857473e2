package types

// Categories produced by model-based requirements extraction.
const (
	CategoryCore       = "core"
	CategoryTools      = "tools"
	CategorySoftSkills = "soft_skills"
)

// JobRequirements is the structured hiring requirements a model extracted from a job description.
type JobRequirements struct {
	CoreSkills      []string `json:"core_skills"`
	Tools           []string `json:"tools"`
	SoftSkills      []string `json:"soft_skills"`
	ExperienceLevel string   `json:"experience_level"`
}

// ByCategory returns the requirement lists keyed by scoring category name.
func (r *JobRequirements) ByCategory() map[string][]string {
	if r == nil {
		return map[string][]string{}
	}
	return map[string][]string{
		CategoryCore:       r.CoreSkills,
		CategoryTools:      r.Tools,
		CategorySoftSkills: r.SoftSkills,
	}
}

// IsEmpty reports whether no skill list holds anything.
func (r *JobRequirements) IsEmpty() bool {
	return r == nil || (len(r.CoreSkills) == 0 && len(r.Tools) == 0 && len(r.SoftSkills) == 0)
}
