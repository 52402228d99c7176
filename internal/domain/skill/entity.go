package skill

import (
	"errors"
	"fmt"
	"strings"

	"skill-readiness/internal/domain/proficiency"
)

var (
	ErrSkillAlreadyExists = errors.New("skill already exists")
	ErrSkillNotFound      = errors.New("skill not found")
	ErrInvalidSkill       = errors.New("invalid skill")
)

type ID string

type Skill struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

type UserSkill struct {
	Skill
	Proficiency proficiency.Level `json:"proficiency"`
}

// Inventory is one learner's skill list, unique by skill id. Every mutating
// method returns a new slice and leaves the receiver untouched.
type Inventory []UserSkill

func (inv Inventory) Clone() Inventory {
	if inv == nil {
		return nil
	}
	out := make(Inventory, len(inv))
	copy(out, inv)
	return out
}

func (inv Inventory) Find(id ID) (UserSkill, bool) {
	i := inv.indexOf(id)
	if i < 0 {
		return UserSkill{}, false
	}
	return inv[i], true
}

func (inv Inventory) indexOf(id ID) int {
	for i := range inv {
		if inv[i].ID == id {
			return i
		}
	}
	return -1
}

func (inv Inventory) Validate() error {
	seen := make(map[ID]struct{}, len(inv))
	for _, us := range inv {
		if strings.TrimSpace(string(us.ID)) == "" {
			return fmt.Errorf("%w: empty id", ErrInvalidSkill)
		}
		if _, ok := seen[us.ID]; ok {
			return fmt.Errorf("%w: %s", ErrSkillAlreadyExists, us.ID)
		}
		seen[us.ID] = struct{}{}
		if _, err := proficiency.Rank(us.Proficiency); err != nil {
			return fmt.Errorf("skill %s: %w", us.ID, err)
		}
	}
	return nil
}

func (inv Inventory) Add(us UserSkill) (Inventory, error) {
	if strings.TrimSpace(string(us.ID)) == "" {
		return inv, fmt.Errorf("%w: empty id", ErrInvalidSkill)
	}
	if _, err := proficiency.Rank(us.Proficiency); err != nil {
		return inv, err
	}
	if inv.indexOf(us.ID) >= 0 {
		return inv, fmt.Errorf("%w: %s", ErrSkillAlreadyExists, us.ID)
	}
	out := make(Inventory, 0, len(inv)+1)
	out = append(out, inv...)
	return append(out, us), nil
}

func (inv Inventory) Update(id ID, level proficiency.Level) (Inventory, error) {
	if _, err := proficiency.Rank(level); err != nil {
		return inv, err
	}
	i := inv.indexOf(id)
	if i < 0 {
		return inv, fmt.Errorf("%w: %s", ErrSkillNotFound, id)
	}
	out := inv.Clone()
	out[i].Proficiency = level
	return out, nil
}

func (inv Inventory) Remove(id ID) (Inventory, error) {
	i := inv.indexOf(id)
	if i < 0 {
		return inv, fmt.Errorf("%w: %s", ErrSkillNotFound, id)
	}
	out := make(Inventory, 0, len(inv)-1)
	out = append(out, inv[:i]...)
	return append(out, inv[i+1:]...), nil
}

// Raise adds s at level when absent and upgrades it when held at a lower
// rank. A skill already at or above level is left as is.
func (inv Inventory) Raise(s Skill, level proficiency.Level) (Inventory, bool, error) {
	i := inv.indexOf(s.ID)
	if i < 0 {
		out, err := inv.Add(UserSkill{Skill: s, Proficiency: level})
		if err != nil {
			return inv, false, err
		}
		return out, true, nil
	}

	ok, err := proficiency.Meets(inv[i].Proficiency, level)
	if err != nil {
		return inv, false, fmt.Errorf("skill %s: %w", s.ID, err)
	}
	if ok {
		return inv, false, nil
	}
	out := inv.Clone()
	out[i].Proficiency = level
	return out, true, nil
}

func (inv Inventory) Names() []string {
	out := make([]string, 0, len(inv))
	for _, us := range inv {
		out = append(out, us.Name)
	}
	return out
}
