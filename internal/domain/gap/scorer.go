// Package gap compares a learner's skill inventory against a role's
// requirement list.
//
// Two scores exist and they are not interchangeable. Score is the strict
// readiness used once a role is selected: only requirements met at or above
// the minimum proficiency count. QuickMatchPercentage is the softer metric
// shown while browsing roles, where a held-but-below-requirement skill earns
// half credit.
package gap

import (
	"errors"
	"fmt"
	"math"

	"skill-readiness/internal/domain/proficiency"
	"skill-readiness/internal/domain/role"
	"skill-readiness/internal/domain/skill"
)

var ErrNoRoleSelected = errors.New("no role selected")

const partialCredit = 0.5

type SkillResult struct {
	SkillID  skill.ID          `json:"skill_id"`
	Name     string            `json:"name"`
	Required proficiency.Level `json:"required"`
	Current  proficiency.Level `json:"current,omitempty"`
}

type Analysis struct {
	RoleID         string        `json:"role_id"`
	ReadinessScore int           `json:"readiness_score"`
	MatchedSkills  []SkillResult `json:"matched_skills"`
	PartialSkills  []SkillResult `json:"partial_skills"`
	MissingSkills  []SkillResult `json:"missing_skills"`
	// Degenerate is set when the role lists no requirements; the score is 0.
	Degenerate bool `json:"degenerate"`
}

func (a Analysis) Total() int {
	return len(a.MatchedSkills) + len(a.PartialSkills) + len(a.MissingSkills)
}

type classification struct {
	matched []SkillResult
	partial []SkillResult
	missing []SkillResult
}

func classify(inv skill.Inventory, r *role.JobRole) (classification, error) {
	if r == nil {
		return classification{}, ErrNoRoleSelected
	}

	bySkillID := make(map[skill.ID]skill.UserSkill, len(inv))
	for _, us := range inv {
		bySkillID[us.ID] = us
	}

	c := classification{
		matched: make([]SkillResult, 0, len(r.RequiredSkills)),
		partial: make([]SkillResult, 0),
		missing: make([]SkillResult, 0),
	}
	for _, req := range r.RequiredSkills {
		res := SkillResult{SkillID: req.SkillID, Name: req.SkillName, Required: req.MinProficiency}

		us, ok := bySkillID[req.SkillID]
		if !ok {
			if _, err := proficiency.Rank(req.MinProficiency); err != nil {
				return classification{}, fmt.Errorf("requirement %s: %w", req.SkillID, err)
			}
			c.missing = append(c.missing, res)
			continue
		}

		res.Current = us.Proficiency
		if res.Name == "" {
			res.Name = us.Name
		}
		meets, err := proficiency.Meets(us.Proficiency, req.MinProficiency)
		if err != nil {
			return classification{}, fmt.Errorf("skill %s: %w", req.SkillID, err)
		}
		if meets {
			c.matched = append(c.matched, res)
		} else {
			c.partial = append(c.partial, res)
		}
	}
	return c, nil
}

// Score is the strict readiness analysis: round(100 * matched / total).
func Score(inv skill.Inventory, r *role.JobRole) (Analysis, error) {
	c, err := classify(inv, r)
	if err != nil {
		return Analysis{}, err
	}

	a := Analysis{
		RoleID:        r.ID,
		MatchedSkills: c.matched,
		PartialSkills: c.partial,
		MissingSkills: c.missing,
	}

	total := len(r.RequiredSkills)
	if total == 0 {
		a.Degenerate = true
		return a, nil
	}
	a.ReadinessScore = clampScore(int(math.Round(100 * float64(len(c.matched)) / float64(total))))
	return a, nil
}

// QuickMatchPercentage is round(100 * (matched + 0.5*partial) / total) to
// one decimal place. A role without requirements yields 0.
func QuickMatchPercentage(inv skill.Inventory, r *role.JobRole) (float64, error) {
	c, err := classify(inv, r)
	if err != nil {
		return 0, err
	}

	total := len(r.RequiredSkills)
	if total == 0 {
		return 0, nil
	}
	weighted := float64(len(c.matched)) + partialCredit*float64(len(c.partial))
	return math.Round(1000*weighted/float64(total)) / 10, nil
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
