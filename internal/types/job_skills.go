package types

// CategorySkills holds the job-side skills of one scoring category.
type CategorySkills struct {
	Name   string   `json:"name"`
	Skills SkillSet `json:"skills"`
}

// JobSkills is the job-side input to scoring, partitioned into ordered categories.
type JobSkills struct {
	Categories []CategorySkills `json:"categories"`
}

// Uncategorized wraps a single SkillSet as the default "core" category.
func Uncategorized(set SkillSet) JobSkills {
	return JobSkills{Categories: []CategorySkills{{Name: DefaultCategory, Skills: set}}}
}

// Category returns the skills for name and whether the category exists.
func (j JobSkills) Category(name string) (SkillSet, bool) {
	for _, c := range j.Categories {
		if c.Name == name {
			return c.Skills, true
		}
	}
	return SkillSet{}, false
}

// Names returns category names in order.
func (j JobSkills) Names() []string {
	names := make([]string, len(j.Categories))
	for i, c := range j.Categories {
		names[i] = c.Name
	}
	return names
}

// All returns the union of all categories in category order.
func (j JobSkills) All() SkillSet {
	b := NewSkillSetBuilder()
	for _, c := range j.Categories {
		for _, t := range c.Skills.Tokens() {
			b.Add(t, c.Skills.Count(t))
		}
	}
	return b.Build()
}

// IsEmpty reports whether no category holds any skill.
func (j JobSkills) IsEmpty() bool {
	for _, c := range j.Categories {
		if !c.Skills.IsEmpty() {
			return false
		}
	}
	return true
}
