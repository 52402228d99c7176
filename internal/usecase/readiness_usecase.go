package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"skill-readiness/internal/domain/gap"
	"skill-readiness/internal/domain/proficiency"
	"skill-readiness/internal/domain/progress"
	"skill-readiness/internal/domain/roadmap"
	"skill-readiness/internal/domain/role"
	"skill-readiness/internal/domain/skill"
	"skill-readiness/internal/infrastructure/persist"
	"skill-readiness/internal/pkg/logger"
	"skill-readiness/internal/pkg/metrics"
	"skill-readiness/internal/repository"

	"github.com/google/uuid"
)

const saveTaskName = "save_learner_state"

// PersistenceQueue accepts fire-and-forget save tasks.
type PersistenceQueue interface {
	Submit(t persist.Task) error
}

type ProgressNotifier interface {
	ProgressUpdated(learnerID uuid.UUID, data any)
}

// ReadinessView is what a learner sees of their own session.
type ReadinessView struct {
	Role      *role.JobRole              `json:"role"`
	Inventory skill.Inventory            `json:"inventory"`
	Roadmap   []roadmap.Item             `json:"roadmap"`
	Summary   roadmap.Summary            `json:"roadmap_progress"`
	Analysis  *gap.Analysis              `json:"analysis"`
	Progress  *progress.AnalysisProgress `json:"progress"`
}

type ToggleResult struct {
	ReadinessView
	ItemID       string   `json:"item_id"`
	SkillID      skill.ID `json:"skill_id"`
	Completed    bool     `json:"completed"`
	SkillChanged bool     `json:"skill_changed"`
}

type RoleMatch struct {
	Role            role.JobRole `json:"role"`
	MatchPercentage float64      `json:"match_percentage"`
}

type ReadinessUsecase interface {
	Current(ctx context.Context, learnerID uuid.UUID) (ReadinessView, error)
	SelectRole(ctx context.Context, learnerID uuid.UUID, roleID string) (ReadinessView, error)
	AddSkill(ctx context.Context, learnerID uuid.UUID, s skill.Skill, level string) (ReadinessView, error)
	UpdateSkill(ctx context.Context, learnerID uuid.UUID, skillID skill.ID, level string) (ReadinessView, error)
	RemoveSkill(ctx context.Context, learnerID uuid.UUID, skillID skill.ID) (ReadinessView, error)
	ReplaceRoadmap(ctx context.Context, learnerID uuid.UUID, items []roadmap.Item) (ReadinessView, error)
	ToggleRoadmapItem(ctx context.Context, learnerID uuid.UUID, itemID string) (ToggleResult, error)
	BrowseRoles(ctx context.Context, learnerID uuid.UUID) ([]RoleMatch, error)
	Inventory(ctx context.Context, learnerID uuid.UUID) (skill.Inventory, error)
}

type session struct {
	mu      sync.Mutex
	loaded  bool
	version int64
	state   roadmap.State
}

// Readiness owns the live learner sessions. Every transition for one learner
// runs under that learner's lock; saves are handed to the queue after the
// in-memory state has been committed and never feed back into it.
type Readiness struct {
	states   repository.LearnerStateRepository
	roles    repository.RoleRepository
	queue    PersistenceQueue
	notifier ProgressNotifier
	syncer   *roadmap.Syncer
	tracker  *progress.Tracker
	metrics  *metrics.Manager
	log      *logger.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

func NewReadinessUsecase(
	states repository.LearnerStateRepository,
	roles repository.RoleRepository,
	queue PersistenceQueue,
	notifier ProgressNotifier,
	tracker *progress.Tracker,
	m *metrics.Manager,
	log *logger.Logger,
) *Readiness {
	if tracker == nil {
		tracker = progress.NewTracker()
	}
	return &Readiness{
		states:   states,
		roles:    roles,
		queue:    queue,
		notifier: notifier,
		syncer:   roadmap.NewSyncer(tracker),
		tracker:  tracker,
		metrics:  m,
		log:      log,
		sessions: make(map[uuid.UUID]*session),
	}
}

// acquire returns the learner's session locked and hydrated. The caller must
// unlock it.
func (u *Readiness) acquire(ctx context.Context, learnerID uuid.UUID) (*session, error) {
	if learnerID == uuid.Nil {
		return nil, ErrInvalidInput
	}

	u.mu.Lock()
	sess, ok := u.sessions[learnerID]
	if !ok {
		sess = &session{}
		u.sessions[learnerID] = sess
	}
	active := len(u.sessions)
	u.mu.Unlock()
	if !ok {
		u.metrics.SetActiveLearnerStates(active)
	}

	sess.mu.Lock()
	if sess.loaded {
		return sess, nil
	}
	if err := u.hydrate(ctx, learnerID, sess); err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	sess.loaded = true
	return sess, nil
}

func (u *Readiness) hydrate(ctx context.Context, learnerID uuid.UUID, sess *session) error {
	stored, err := u.states.Load(ctx, learnerID)
	if err != nil {
		if errors.Is(err, repository.ErrLearnerStateNotFound) {
			sess.state = roadmap.State{Inventory: skill.Inventory{}, Items: []roadmap.Item{}}
			return nil
		}
		u.log.Error("load learner state failed", "learner_id", learnerID, "error", err)
		return ErrInternal
	}

	st := roadmap.State{
		Inventory: stored.Inventory,
		Items:     stored.Roadmap,
		Summary:   roadmap.Summarize(stored.Roadmap),
		Progress:  stored.Progress,
	}
	if st.Inventory == nil {
		st.Inventory = skill.Inventory{}
	}
	if st.Items == nil {
		st.Items = []roadmap.Item{}
	}

	if stored.RoleID != "" {
		r, err := u.roles.FindByID(ctx, stored.RoleID)
		switch {
		case err == nil:
			st.Role = &r
			a, err := gap.Score(st.Inventory, st.Role)
			if err != nil {
				u.log.Warn("stored inventory could not be scored", "learner_id", learnerID, "error", err)
				break
			}
			st.Analysis = &a
			if st.Progress != nil && st.Progress.RoleID != r.ID {
				st.Progress = nil
			}
		case errors.Is(err, repository.ErrRoleNotFound):
			u.log.Warn("stored role no longer in catalog", "learner_id", learnerID, "role_id", stored.RoleID)
			st.Progress = nil
		default:
			u.log.Error("load role failed", "learner_id", learnerID, "role_id", stored.RoleID, "error", err)
			return ErrInternal
		}
	} else {
		st.Progress = nil
	}

	sess.version = stored.Version
	sess.state = st
	return nil
}

func (u *Readiness) Current(ctx context.Context, learnerID uuid.UUID) (ReadinessView, error) {
	sess, err := u.acquire(ctx, learnerID)
	if err != nil {
		return ReadinessView{}, err
	}
	defer sess.mu.Unlock()

	if sess.state.Role != nil && sess.state.Progress == nil {
		next := sess.state
		if err := u.rescore(&next, "", ""); err != nil {
			return ReadinessView{}, err
		}
		u.commit(learnerID, sess, next)
	}
	return viewOf(sess.state), nil
}

func (u *Readiness) Inventory(ctx context.Context, learnerID uuid.UUID) (skill.Inventory, error) {
	sess, err := u.acquire(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	return sess.state.Inventory.Clone(), nil
}

// SelectRole sets the learner's target role. Changing role discards the
// progress history and the roadmap; the first analysis of the new role
// becomes its baseline.
func (u *Readiness) SelectRole(ctx context.Context, learnerID uuid.UUID, roleID string) (ReadinessView, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return ReadinessView{}, ErrInvalidInput
	}

	sess, err := u.acquire(ctx, learnerID)
	if err != nil {
		return ReadinessView{}, err
	}
	defer sess.mu.Unlock()

	if sess.state.Role != nil && sess.state.Role.ID == roleID && sess.state.Progress != nil {
		return viewOf(sess.state), nil
	}

	r, err := u.roles.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return ReadinessView{}, ErrRoleNotFound
		}
		u.log.Error("load role failed", "role_id", roleID, "error", err)
		return ReadinessView{}, ErrInternal
	}

	next := sess.state
	if next.Role == nil || next.Role.ID != r.ID {
		next.Items = []roadmap.Item{}
		next.Summary = roadmap.Summarize(next.Items)
	}
	next.Role = &r
	next.Progress = nil
	if err := u.rescore(&next, "", ""); err != nil {
		return ReadinessView{}, err
	}

	u.commit(learnerID, sess, next)
	u.log.Info("role selected", "learner_id", learnerID, "role_id", r.ID, "readiness_score", next.Analysis.ReadinessScore)
	return viewOf(sess.state), nil
}

func (u *Readiness) AddSkill(ctx context.Context, learnerID uuid.UUID, s skill.Skill, level string) (ReadinessView, error) {
	lvl, err := proficiency.Parse(level)
	if err != nil {
		return ReadinessView{}, err
	}

	return u.mutate(ctx, learnerID, func(st *roadmap.State) error {
		inv, err := st.Inventory.Add(skill.UserSkill{Skill: s, Proficiency: lvl})
		if err != nil {
			return err
		}
		st.Inventory = inv
		return u.rescore(st, progress.EventSkillAdded, s.ID)
	})
}

func (u *Readiness) UpdateSkill(ctx context.Context, learnerID uuid.UUID, skillID skill.ID, level string) (ReadinessView, error) {
	lvl, err := proficiency.Parse(level)
	if err != nil {
		return ReadinessView{}, err
	}

	return u.mutate(ctx, learnerID, func(st *roadmap.State) error {
		inv, err := st.Inventory.Update(skillID, lvl)
		if err != nil {
			return err
		}
		st.Inventory = inv
		return u.rescore(st, progress.EventSkillUpdated, skillID)
	})
}

func (u *Readiness) RemoveSkill(ctx context.Context, learnerID uuid.UUID, skillID skill.ID) (ReadinessView, error) {
	return u.mutate(ctx, learnerID, func(st *roadmap.State) error {
		inv, err := st.Inventory.Remove(skillID)
		if err != nil {
			return err
		}
		st.Inventory = inv
		return u.rescore(st, progress.EventSkillRemoved, skillID)
	})
}

// ReplaceRoadmap swaps the whole roadmap. Completion flags are taken as given
// and do not touch the inventory.
func (u *Readiness) ReplaceRoadmap(ctx context.Context, learnerID uuid.UUID, items []roadmap.Item) (ReadinessView, error) {
	if err := roadmap.Validate(items); err != nil {
		return ReadinessView{}, err
	}

	cp := make([]roadmap.Item, len(items))
	copy(cp, items)

	return u.mutate(ctx, learnerID, func(st *roadmap.State) error {
		st.Items = cp
		st.Summary = roadmap.Summarize(cp)
		return nil
	})
}

func (u *Readiness) ToggleRoadmapItem(ctx context.Context, learnerID uuid.UUID, itemID string) (ToggleResult, error) {
	sess, err := u.acquire(ctx, learnerID)
	if err != nil {
		return ToggleResult{}, err
	}
	defer sess.mu.Unlock()

	next, tr, err := u.syncer.Toggle(sess.state, itemID)
	if err != nil {
		if errors.Is(err, roadmap.ErrItemNotFound) {
			u.metrics.RoadmapToggle(metrics.ResultNotFound)
		} else {
			u.metrics.RoadmapToggle(metrics.ResultRolledBack)
			u.log.Warn("roadmap toggle rolled back", "learner_id", learnerID, "item_id", itemID, "error", err)
		}
		return ToggleResult{}, err
	}

	u.commit(learnerID, sess, next)

	res := ToggleResult{
		ReadinessView: viewOf(sess.state),
		ItemID:        tr.ItemID,
		SkillID:       tr.SkillID,
		Completed:     tr.Completed,
		SkillChanged:  tr.SkillChanged,
	}
	if tr.Completed {
		u.metrics.RoadmapToggle(metrics.ResultCompleted)
		if next.Analysis != nil {
			u.metrics.ObserveReadiness(next.Analysis.ReadinessScore)
		}
	} else {
		u.metrics.RoadmapToggle(metrics.ResultUncompleted)
	}
	if u.notifier != nil {
		u.notifier.ProgressUpdated(learnerID, res)
	}
	return res, nil
}

// BrowseRoles scores every catalog role with the quick-match percentage,
// best first.
func (u *Readiness) BrowseRoles(ctx context.Context, learnerID uuid.UUID) ([]RoleMatch, error) {
	inv, err := u.Inventory(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	roles, err := u.roles.List(ctx)
	if err != nil {
		u.log.Error("list roles failed", "error", err)
		return nil, ErrInternal
	}

	out := make([]RoleMatch, 0, len(roles))
	for i := range roles {
		pct, err := gap.QuickMatchPercentage(inv, &roles[i])
		if err != nil {
			return nil, err
		}
		out = append(out, RoleMatch{Role: roles[i], MatchPercentage: pct})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchPercentage != out[j].MatchPercentage {
			return out[i].MatchPercentage > out[j].MatchPercentage
		}
		return out[i].Role.Title < out[j].Role.Title
	})
	return out, nil
}

// mutate applies fn to a copy of the learner's state and commits it only if
// fn succeeds.
func (u *Readiness) mutate(ctx context.Context, learnerID uuid.UUID, fn func(st *roadmap.State) error) (ReadinessView, error) {
	sess, err := u.acquire(ctx, learnerID)
	if err != nil {
		return ReadinessView{}, err
	}
	defer sess.mu.Unlock()

	next := sess.state
	if err := fn(&next); err != nil {
		return ReadinessView{}, err
	}
	u.commit(learnerID, sess, next)
	return viewOf(sess.state), nil
}

// rescore recomputes the analysis for the selected role. With a role and no
// progress yet, the analysis becomes the baseline; otherwise ev is recorded
// when non-empty.
func (u *Readiness) rescore(st *roadmap.State, ev progress.Event, skillID skill.ID) error {
	if st.Role == nil {
		st.Analysis = nil
		return nil
	}

	a, err := gap.Score(st.Inventory, st.Role)
	if err != nil {
		return err
	}

	switch {
	case st.Progress == nil:
		p := u.tracker.Init(a)
		st.Progress = &p
	case ev != "":
		p, err := u.tracker.Record(*st.Progress, a, ev, skillID)
		if err != nil {
			return err
		}
		st.Progress = &p
	}
	st.Analysis = &a
	u.metrics.ObserveReadiness(a.ReadinessScore)
	return nil
}

// commit installs next as the session state and queues a save of it.
func (u *Readiness) commit(learnerID uuid.UUID, sess *session, next roadmap.State) {
	sess.state = next
	sess.version++

	snap := snapshotOf(learnerID, sess.version, next)
	task := persist.Task{
		LearnerID: learnerID,
		Name:      saveTaskName,
		Run: func(ctx context.Context) error {
			err := u.states.Save(ctx, snap)
			if errors.Is(err, repository.ErrStaleSnapshot) {
				return nil
			}
			return err
		},
	}
	if u.queue == nil {
		return
	}
	if err := u.queue.Submit(task); err != nil {
		u.log.Debug("save not queued", "learner_id", learnerID, "version", snap.Version, "error", err)
	}
}

func snapshotOf(learnerID uuid.UUID, version int64, st roadmap.State) repository.LearnerState {
	snap := repository.LearnerState{
		LearnerID: learnerID,
		Version:   version,
		Inventory: st.Inventory.Clone(),
		Roadmap:   append([]roadmap.Item(nil), st.Items...),
	}
	if st.Role != nil {
		snap.RoleID = st.Role.ID
	}
	if st.Progress != nil {
		p := *st.Progress
		snap.Progress = &p
	}
	return snap
}

func viewOf(st roadmap.State) ReadinessView {
	v := ReadinessView{
		Role:      st.Role,
		Inventory: st.Inventory.Clone(),
		Roadmap:   append([]roadmap.Item{}, st.Items...),
		Summary:   st.Summary,
		Analysis:  st.Analysis,
		Progress:  st.Progress,
	}
	if v.Inventory == nil {
		v.Inventory = skill.Inventory{}
	}
	return v
}
