package roadmap

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"skill-readiness/internal/domain/proficiency"
	"skill-readiness/internal/domain/skill"
)

var (
	ErrItemNotFound  = errors.New("roadmap item not found")
	ErrDuplicateItem = errors.New("duplicate roadmap item")
)

type Item struct {
	ID            string   `json:"id"`
	SkillID       skill.ID `json:"skill_id"`
	SkillName     string   `json:"skill_name"`
	Difficulty    string   `json:"difficulty"`
	EstimatedTime string   `json:"estimated_time,omitempty"`
	Completed     bool     `json:"completed"`
}

// Summary is the RoadmapProgress aggregate. It is always derived from the
// item list and never stored on its own.
type Summary struct {
	TotalItems     int `json:"total_items"`
	CompletedItems int `json:"completed_items"`
	Progress       int `json:"progress"`
}

func Summarize(items []Item) Summary {
	s := Summary{TotalItems: len(items)}
	for _, it := range items {
		if it.Completed {
			s.CompletedItems++
		}
	}
	if s.TotalItems > 0 {
		s.Progress = int(math.Round(100 * float64(s.CompletedItems) / float64(s.TotalItems)))
	}
	return s
}

// TargetLevel maps an item's difficulty to the proficiency its completion
// grants. Anything other than beginner or advanced means intermediate.
func TargetLevel(difficulty string) proficiency.Level {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case string(proficiency.Advanced):
		return proficiency.Advanced
	case string(proficiency.Beginner):
		return proficiency.Beginner
	default:
		return proficiency.Intermediate
	}
}

func Validate(items []Item) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.ID) == "" || strings.TrimSpace(string(it.SkillID)) == "" {
			return fmt.Errorf("%w: item id and skill id are required", skill.ErrInvalidSkill)
		}
		if _, ok := seen[it.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

func indexOf(items []Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
