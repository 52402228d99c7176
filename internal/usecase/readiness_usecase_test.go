package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"skill-readiness/internal/config"
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
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeStates struct {
	mu      sync.Mutex
	stored  map[uuid.UUID]repository.LearnerState
	saves   []repository.LearnerState
	loadErr error
	saveErr error
}

func newFakeStates() *fakeStates {
	return &fakeStates{stored: map[uuid.UUID]repository.LearnerState{}}
}

func (f *fakeStates) Load(_ context.Context, id uuid.UUID) (repository.LearnerState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return repository.LearnerState{}, f.loadErr
	}
	st, ok := f.stored[id]
	if !ok {
		return repository.LearnerState{}, repository.ErrLearnerStateNotFound
	}
	return st, nil
}

func (f *fakeStates) Save(_ context.Context, st repository.LearnerState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, st)
	f.stored[st.LearnerID] = st
	return nil
}

func (f *fakeStates) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

type fakeRoles struct {
	roles []role.JobRole
	err   error
}

func (f fakeRoles) FindByID(_ context.Context, id string) (role.JobRole, error) {
	if f.err != nil {
		return role.JobRole{}, f.err
	}
	for _, r := range f.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return role.JobRole{}, repository.ErrRoleNotFound
}

func (f fakeRoles) List(context.Context) ([]role.JobRole, error) {
	return f.roles, f.err
}

// inlineQueue runs saves synchronously so tests can assert on them.
type inlineQueue struct {
	mu    sync.Mutex
	tasks []persist.Task
	errs  []error
}

func (q *inlineQueue) Submit(t persist.Task) error {
	err := t.Run(context.Background())
	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.errs = append(q.errs, err)
	q.mu.Unlock()
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []any
}

func (n *fakeNotifier) ProgressUpdated(_ uuid.UUID, data any) {
	n.mu.Lock()
	n.events = append(n.events, data)
	n.mu.Unlock()
}

func frontendRole() role.JobRole {
	return role.JobRole{
		ID:    "frontend",
		Title: "Frontend Developer",
		RequiredSkills: []role.Requirement{
			{SkillID: "js", SkillName: "JavaScript", MinProficiency: proficiency.Intermediate},
			{SkillID: "css", SkillName: "CSS", MinProficiency: proficiency.Beginner},
		},
	}
}

func backendRole() role.JobRole {
	return role.JobRole{
		ID:    "backend",
		Title: "Backend Developer",
		RequiredSkills: []role.Requirement{
			{SkillID: "go", SkillName: "Go", MinProficiency: proficiency.Intermediate},
			{SkillID: "sql", SkillName: "SQL", MinProficiency: proficiency.Intermediate},
			{SkillID: "js", SkillName: "JavaScript", MinProficiency: proficiency.Advanced},
		},
	}
}

type fixture struct {
	uc       *Readiness
	states   *fakeStates
	queue    *inlineQueue
	notifier *fakeNotifier
	metrics  *metrics.Manager
}

func newFixture() fixture {
	states := newFakeStates()
	queue := &inlineQueue{}
	notifier := &fakeNotifier{}
	m := metrics.New()
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	uc := NewReadinessUsecase(
		states,
		fakeRoles{roles: []role.JobRole{frontendRole(), backendRole()}},
		queue,
		notifier,
		progress.NewTracker(progress.WithClock(func() time.Time { return fixed })),
		m,
		logger.Nop(),
	)
	return fixture{uc: uc, states: states, queue: queue, notifier: notifier, metrics: m}
}

func TestReadiness_SelectRole_InitializesBaseline(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.New()

	if _, err := f.uc.AddSkill(ctx, id, skill.Skill{ID: "js", Name: "JavaScript"}, "advanced"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	v, err := f.uc.SelectRole(ctx, id, "frontend")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if v.Analysis == nil || v.Analysis.ReadinessScore != 50 {
		t.Fatalf("expected readiness 50, got %+v", v.Analysis)
	}
	if v.Progress == nil {
		t.Fatalf("expected progress to be initialized")
	}
	if v.Progress.InitialScore != 50 || v.Progress.CurrentScore != 50 || len(v.Progress.ProgressHistory) != 0 {
		t.Fatalf("unexpected progress %+v", v.Progress)
	}
}

func TestReadiness_SelectRole_UnknownRole(t *testing.T) {
	f := newFixture()
	_, err := f.uc.SelectRole(context.Background(), uuid.New(), "astronaut")
	if !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestReadiness_ChangingRoleResetsProgressAndRoadmap(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.New()

	if _, err := f.uc.SelectRole(ctx, id, "frontend"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := f.uc.ReplaceRoadmap(ctx, id, []roadmap.Item{{ID: "r1", SkillID: "css", Difficulty: "beginner"}}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := f.uc.ToggleRoadmapItem(ctx, id, "r1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	v, err := f.uc.SelectRole(ctx, id, "backend")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v.Roadmap) != 0 {
		t.Fatalf("expected roadmap to be cleared, got %d items", len(v.Roadmap))
	}
	if v.Progress == nil || v.Progress.RoleID != "backend" || len(v.Progress.ProgressHistory) != 0 {
		t.Fatalf("expected fresh progress for backend, got %+v", v.Progress)
	}
	if _, ok := v.Inventory.Find("css"); !ok {
		t.Fatalf("inventory must survive a role change")
	}
}

func TestReadiness_SkillEventsAreRecorded(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.New()

	if _, err := f.uc.SelectRole(ctx, id, "frontend"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := f.uc.AddSkill(ctx, id, skill.Skill{ID: "js", Name: "JavaScript"}, "beginner"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	v, err := f.uc.UpdateSkill(ctx, id, "js", "advanced")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	h := v.Progress.ProgressHistory
	if len(h) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(h))
	}
	if h[0].Event != progress.EventSkillAdded || h[1].Event != progress.EventSkillUpdated {
		t.Fatalf("unexpected events %s, %s", h[0].Event, h[1].Event)
	}
	if v.Progress.ScoreImprovement != 50 {
		t.Fatalf("expected improvement 50, got %d", v.Progress.ScoreImprovement)
	}
	if v.Progress.CompletedRoadmapItems != 0 {
		t.Fatalf("skill edits are not roadmap completions")
	}

	v, err = f.uc.RemoveSkill(ctx, id, "js")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v.Analysis.ReadinessScore != 0 || v.Progress.ProgressHistory[2].Event != progress.EventSkillRemoved {
		t.Fatalf("unexpected state after removal: %+v", v.Progress)
	}
}

func TestReadiness_SkillErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.New()

	if _, err := f.uc.AddSkill(ctx, id, skill.Skill{ID: "js"}, "expert"); !errors.Is(err, proficiency.ErrInvalidLevel) {
		t.Fatalf("expected ErrInvalidLevel, got %v", err)
	}
	if _, err := f.uc.AddSkill(ctx, id, skill.Skill{ID: "js"}, "beginner"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := f.uc.AddSkill(ctx, id, skill.Skill{ID: "js"}, "beginner"); !errors.Is(err, skill.ErrSkillAlreadyExists) {
		t.Fatalf("expected ErrSkillAlreadyExists, got %v", err)
	}
	if _, err := f.uc.UpdateSkill(ctx, id, "go", "beginner"); !errors.Is(err, skill.ErrSkillNotFound) {
		t.Fatalf("expected ErrSkillNotFound, got %v", err)
	}
	if _, err := f.uc.RemoveSkill(ctx, id, "go"); !errors.Is(err, skill.ErrSkillNotFound) {
		t.Fatalf("expected ErrSkillNotFound, got %v", err)
	}
}

func TestReadiness_ToggleCompletesAndPersists(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.New()

	if _, err := f.uc.AddSkill(ctx, id, skill.Skill{ID: "js", Name: "JavaScript"}, "advanced"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := f.uc.SelectRole(ctx, id, "frontend"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := f.uc.ReplaceRoadmap(ctx, id, []roadmap.Item{{ID: "r1", SkillID: "css", SkillName: "CSS", Difficulty: "beginner"}}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	before := f.states.saveCount()

	res, err := f.uc.ToggleRoadmapItem(ctx, id, "r1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.Completed || !res.SkillChanged {
		t.Fatalf("unexpected transition %+v", res)
	}
	us, ok := res.Inventory.Find("css")
	if !ok || us.Proficiency != proficiency.Beginner {
		t.Fatalf("expected css at beginner, got %+v ok=%v", us, ok)
	}
	if res.Analysis.ReadinessScore != 100 {
		t.Fatalf("expected readiness 100, got %d", res.Analysis.ReadinessScore)
	}
	if res.Progress.CompletedRoadmapItems != 1 || res.Summary.Progress != 100 {
		t.Fatalf("unexpected progress %+v summary %+v", res.Progress, res.Summary)
	}

	if f.states.saveCount() != before+1 {
		t.Fatalf("expected one save after toggle")
	}
	last := f.states.saves[len(f.states.saves)-1]
	if last.Version != int64(len(f.states.saves)) {
		t.Fatalf("expected versions to increase by one per commit, got %d", last.Version)
	}
	if len(last.Roadmap) != 1 || !last.Roadmap[0].Completed {
		t.Fatalf("saved roadmap does not reflect the toggle: %+v", last.Roadmap)
	}
	if len(f.notifier.events) != 1 {
		t.Fatalf("expected one progress notification, got %d", len(f.notifier.events))
	}
}

func TestReadiness_ToggleRollbackKeepsStateAndSkipsSave(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.New()

	if _, err := f.uc.ReplaceRoadmap(ctx, id, []roadmap.Item{{ID: "r1", SkillID: "css", Difficulty: "beginner"}}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	before, err := f.uc.Current(ctx, id)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	saves := f.states.saveCount()

	if _, err := f.uc.ToggleRoadmapItem(ctx, id, "r1"); !errors.Is(err, gap.ErrNoRoleSelected) {
		t.Fatalf("expected ErrNoRoleSelected, got %v", err)
	}
	if _, err := f.uc.ToggleRoadmapItem(ctx, id, "missing"); !errors.Is(err, roadmap.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	after, err := f.uc.Current(ctx, id)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed after failed toggle:\nbefore=%+v\nafter=%+v", before, after)
	}
	if f.states.saveCount() != saves {
		t.Fatalf("failed toggle must not be persisted")
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("failed toggle must not notify")
	}

	expected := `
# HELP skill_readiness_roadmap_toggles_total Roadmap item toggles by outcome.
# TYPE skill_readiness_roadmap_toggles_total counter
skill_readiness_roadmap_toggles_total{result="not_found"} 1
skill_readiness_roadmap_toggles_total{result="rolled_back"} 1
`
	if err := testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "skill_readiness_roadmap_toggles_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestReadiness_PersistenceFailureKeepsLocalState(t *testing.T) {
	states := newFakeStates()
	states.saveErr = errors.New("connection refused")

	var (
		mu       sync.Mutex
		failures []persist.Failure
	)
	d := persist.NewDispatcher(config.PersistenceConfig{
		Workers:      1,
		QueueSize:    16,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
		Timeout:      time.Second,
	}, logger.Nop(), persist.WithOnFailure(func(fl persist.Failure) {
		mu.Lock()
		failures = append(failures, fl)
		mu.Unlock()
	}))
	d.Start(context.Background())

	uc := NewReadinessUsecase(states, fakeRoles{roles: []role.JobRole{frontendRole()}}, d, nil, nil, nil, logger.Nop())
	ctx := context.Background()
	id := uuid.New()

	if _, err := uc.SelectRole(ctx, id, "frontend"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := uc.ReplaceRoadmap(ctx, id, []roadmap.Item{{ID: "r1", SkillID: "css", Difficulty: "beginner"}}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	res, err := uc.ToggleRoadmapItem(ctx, id, "r1")
	if err != nil {
		t.Fatalf("persistence failure must not fail the toggle: %v", err)
	}
	d.Close()

	if !res.Completed {
		t.Fatalf("expected completed toggle")
	}
	v, err := uc.Current(ctx, id)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !v.Roadmap[0].Completed {
		t.Fatalf("local state must stay authoritative after a failed save")
	}
	if _, ok := v.Inventory.Find("css"); !ok {
		t.Fatalf("upgraded skill must survive a failed save")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(failures) != 3 {
		t.Fatalf("expected 3 failed saves, got %d", len(failures))
	}
	for _, fl := range failures {
		if !errors.Is(fl.Err, persist.ErrPersistenceFailure) || fl.LearnerID != id {
			t.Fatalf("unexpected failure %+v", fl)
		}
	}
}

func TestReadiness_HydratesFromStore(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.states.stored[id] = repository.LearnerState{
		LearnerID: id,
		Version:   7,
		RoleID:    "frontend",
		Inventory: skill.Inventory{{Skill: skill.Skill{ID: "js", Name: "JavaScript"}, Proficiency: proficiency.Advanced}},
		Roadmap:   []roadmap.Item{{ID: "r1", SkillID: "css", Difficulty: "beginner", Completed: true}},
		Progress:  &progress.AnalysisProgress{RoleID: "frontend", InitialScore: 0, CurrentScore: 50, ProgressHistory: []progress.HistoryEntry{}},
	}

	v, err := f.uc.Current(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v.Role == nil || v.Role.ID != "frontend" {
		t.Fatalf("expected role to be restored, got %+v", v.Role)
	}
	if v.Analysis == nil || v.Analysis.ReadinessScore != 50 {
		t.Fatalf("expected analysis to be recomputed, got %+v", v.Analysis)
	}
	if v.Summary.CompletedItems != 1 || v.Progress.CurrentScore != 50 {
		t.Fatalf("unexpected hydrated view %+v", v)
	}

	if _, err := f.uc.AddSkill(context.Background(), id, skill.Skill{ID: "go", Name: "Go"}, "beginner"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := f.states.saves[len(f.states.saves)-1].Version; got != 8 {
		t.Fatalf("expected version to continue from the stored one, got %d", got)
	}
}

func TestReadiness_LoadFailure(t *testing.T) {
	f := newFixture()
	f.states.loadErr = errors.New("db down")
	if _, err := f.uc.Current(context.Background(), uuid.New()); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestReadiness_BrowseRolesSortsByQuickMatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.New()

	if _, err := f.uc.AddSkill(ctx, id, skill.Skill{ID: "js", Name: "JavaScript"}, "beginner"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := f.uc.AddSkill(ctx, id, skill.Skill{ID: "css", Name: "CSS"}, "beginner"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	out, err := f.uc.BrowseRoles(ctx, id)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(out))
	}
	if out[0].Role.ID != "frontend" || out[0].MatchPercentage != 75 {
		t.Fatalf("unexpected first match %+v", out[0])
	}
	if out[1].Role.ID != "backend" || out[1].MatchPercentage != 16.7 {
		t.Fatalf("unexpected second match %+v", out[1])
	}
}

func TestReadiness_ConcurrentTogglesAreSerialized(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.New()

	if _, err := f.uc.SelectRole(ctx, id, "backend"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	items := []roadmap.Item{
		{ID: "a", SkillID: "go", Difficulty: "intermediate"},
		{ID: "b", SkillID: "sql", Difficulty: "advanced"},
		{ID: "c", SkillID: "js", Difficulty: "advanced"},
	}
	if _, err := f.uc.ReplaceRoadmap(ctx, id, items); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var wg sync.WaitGroup
	for _, it := range items {
		wg.Add(1)
		go func(itemID string) {
			defer wg.Done()
			if _, err := f.uc.ToggleRoadmapItem(ctx, id, itemID); err != nil {
				t.Errorf("unexpected err: %v", err)
			}
		}(it.ID)
	}
	wg.Wait()

	v, err := f.uc.Current(ctx, id)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v.Inventory) != 3 {
		t.Fatalf("expected 3 skills, got %d", len(v.Inventory))
	}
	if v.Progress.CompletedRoadmapItems != 3 || len(v.Progress.ProgressHistory) != 3 {
		t.Fatalf("expected 3 completions, got %+v", v.Progress)
	}
	if v.Analysis.ReadinessScore != 100 {
		t.Fatalf("expected readiness 100, got %d", v.Analysis.ReadinessScore)
	}
}
