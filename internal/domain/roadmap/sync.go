package roadmap

import (
	"fmt"

	"skill-readiness/internal/domain/gap"
	"skill-readiness/internal/domain/progress"
	"skill-readiness/internal/domain/role"
	"skill-readiness/internal/domain/skill"
)

// State is one learner's snapshot as seen by the roadmap state machine.
// Toggle never mutates a State it is given; it returns a new one.
type State struct {
	Role      *role.JobRole              `json:"role,omitempty"`
	Inventory skill.Inventory            `json:"inventory"`
	Items     []Item                     `json:"items"`
	Summary   Summary                    `json:"summary"`
	Analysis  *gap.Analysis              `json:"analysis,omitempty"`
	Progress  *progress.AnalysisProgress `json:"progress,omitempty"`
}

func (s State) clone() State {
	out := s
	out.Inventory = s.Inventory.Clone()
	out.Items = cloneItems(s.Items)
	return out
}

// Transition describes what a successful toggle changed.
type Transition struct {
	ItemID       string
	SkillID      skill.ID
	Completed    bool
	SkillChanged bool
}

type Syncer struct {
	tracker *progress.Tracker
}

func NewSyncer(tracker *progress.Tracker) *Syncer {
	if tracker == nil {
		tracker = progress.NewTracker()
	}
	return &Syncer{tracker: tracker}
}

// Toggle flips one item's completion.
//
// Completing an item raises the linked skill to the item's target level
// (never lowering it), re-scores against the selected role and appends a
// roadmap_completion history entry. Un-completing only flips the flag.
//
// On any error the input state is returned unchanged along with the error.
func (s *Syncer) Toggle(st State, itemID string) (State, Transition, error) {
	i := indexOf(st.Items, itemID)
	if i < 0 {
		return st, Transition{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	next := st.clone()
	item := &next.Items[i]
	item.Completed = !item.Completed
	next.Summary = Summarize(next.Items)

	tr := Transition{ItemID: item.ID, SkillID: item.SkillID, Completed: item.Completed}
	if !item.Completed {
		return next, tr, nil
	}

	if err := s.complete(&next, *item, &tr); err != nil {
		return st, Transition{}, err
	}
	return next, tr, nil
}

func (s *Syncer) complete(next *State, item Item, tr *Transition) error {
	if next.Role == nil {
		return gap.ErrNoRoleSelected
	}

	if next.Progress == nil {
		before, err := gap.Score(next.Inventory, next.Role)
		if err != nil {
			return err
		}
		p := s.tracker.Init(before)
		next.Progress = &p
	}

	sk := skill.Skill{ID: item.SkillID, Name: item.SkillName}
	if req, ok := next.Role.Requirement(item.SkillID); ok && sk.Name == "" {
		sk.Name = req.SkillName
	}
	inv, changed, err := next.Inventory.Raise(sk, TargetLevel(item.Difficulty))
	if err != nil {
		return err
	}
	next.Inventory = inv
	tr.SkillChanged = changed

	a, err := gap.Score(next.Inventory, next.Role)
	if err != nil {
		return err
	}
	p, err := s.tracker.Record(*next.Progress, a, progress.EventRoadmapCompletion, item.SkillID)
	if err != nil {
		return err
	}
	next.Analysis = &a
	next.Progress = &p
	return nil
}
