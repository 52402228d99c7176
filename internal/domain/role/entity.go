package role

import (
	"skill-readiness/internal/domain/proficiency"
	"skill-readiness/internal/domain/skill"
)

type Requirement struct {
	SkillID        skill.ID          `json:"skill_id"`
	SkillName      string            `json:"skill_name"`
	MinProficiency proficiency.Level `json:"min_proficiency"`
}

// JobRole is catalog reference data and is never mutated by the engine.
type JobRole struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Category       string        `json:"category"`
	RequiredSkills []Requirement `json:"required_skills"`
	AvgSalary      int           `json:"avg_salary"`
	Demand         string        `json:"demand"`
}

func (r JobRole) Requirement(id skill.ID) (Requirement, bool) {
	for _, req := range r.RequiredSkills {
		if req.SkillID == id {
			return req, true
		}
	}
	return Requirement{}, false
}
