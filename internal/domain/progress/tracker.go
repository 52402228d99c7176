// Package progress turns successive readiness analyses for one
// (learner, role) pair into a time series.
package progress

import (
	"errors"
	"fmt"
	"time"

	"skill-readiness/internal/domain/gap"
	"skill-readiness/internal/domain/skill"
)

type Event string

const (
	EventRoadmapCompletion Event = "roadmap_completion"
	EventSkillAdded        Event = "skill_added"
	EventSkillUpdated      Event = "skill_updated"
	EventSkillRemoved      Event = "skill_removed"
)

var ErrRoleMismatch = errors.New("analysis belongs to a different role")

type HistoryEntry struct {
	Timestamp       time.Time `json:"timestamp"`
	ReadinessScore  int       `json:"readiness_score"`
	CompletedSkills int       `json:"completed_skills"`
	Event           Event     `json:"event"`
	SkillID         skill.ID  `json:"skill_id,omitempty"`
}

// AnalysisProgress is the initial-vs-current view of a learner's readiness.
// The Initial* fields are captured once and never change afterwards.
type AnalysisProgress struct {
	RoleID                string         `json:"role_id"`
	InitialScore          int            `json:"initial_score"`
	CurrentScore          int            `json:"current_score"`
	ScoreImprovement      int            `json:"score_improvement"`
	InitialMatchedSkills  int            `json:"initial_matched_skills"`
	CurrentMatchedSkills  int            `json:"current_matched_skills"`
	SkillsImprovement     int            `json:"skills_improvement"`
	CompletedRoadmapItems int            `json:"completed_roadmap_items"`
	ProgressHistory       []HistoryEntry `json:"progress_history"`
}

type Tracker struct {
	now func() time.Time
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{now: time.Now}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Init starts a fresh progress from the first successful analysis of a role.
func (t *Tracker) Init(a gap.Analysis) AnalysisProgress {
	matched := len(a.MatchedSkills)
	return AnalysisProgress{
		RoleID:               a.RoleID,
		InitialScore:         a.ReadinessScore,
		CurrentScore:         a.ReadinessScore,
		InitialMatchedSkills: matched,
		CurrentMatchedSkills: matched,
		ProgressHistory:      []HistoryEntry{},
	}
}

// Record appends one history entry and re-derives the current fields. The
// log is append-only: recording the same event twice yields two entries.
func (t *Tracker) Record(p AnalysisProgress, a gap.Analysis, ev Event, skillID skill.ID) (AnalysisProgress, error) {
	if p.RoleID != a.RoleID {
		return p, fmt.Errorf("%w: progress=%s analysis=%s", ErrRoleMismatch, p.RoleID, a.RoleID)
	}

	matched := len(a.MatchedSkills)
	out := p
	out.ProgressHistory = make([]HistoryEntry, 0, len(p.ProgressHistory)+1)
	out.ProgressHistory = append(out.ProgressHistory, p.ProgressHistory...)
	out.ProgressHistory = append(out.ProgressHistory, HistoryEntry{
		Timestamp:       t.now().UTC(),
		ReadinessScore:  a.ReadinessScore,
		CompletedSkills: matched,
		Event:           ev,
		SkillID:         skillID,
	})

	out.CurrentScore = a.ReadinessScore
	out.CurrentMatchedSkills = matched
	out.ScoreImprovement = out.CurrentScore - out.InitialScore
	out.SkillsImprovement = out.CurrentMatchedSkills - out.InitialMatchedSkills
	if ev == EventRoadmapCompletion {
		out.CompletedRoadmapItems++
	}
	return out, nil
}
