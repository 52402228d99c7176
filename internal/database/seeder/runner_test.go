package seeder

import (
	"context"
	"errors"
	"testing"

	"skill-readiness/internal/database"
	"skill-readiness/internal/pkg/logger"
)

type stubDB struct {
	database.DB
}

type recordingSeeder struct {
	name  string
	err   error
	calls *[]string
}

func (s recordingSeeder) Name() string { return s.name }

func (s recordingSeeder) Run(context.Context, database.DB) error {
	*s.calls = append(*s.calls, s.name)
	return s.err
}

func TestRunner_RunsInOrderAndStopsOnError(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	r := Runner{
		Seeders: []Seeder{
			recordingSeeder{name: "a", calls: &calls},
			nil,
			recordingSeeder{name: "b", err: boom, calls: &calls},
			recordingSeeder{name: "c", calls: &calls},
		},
		Log: logger.Nop(),
	}

	err := r.Run(context.Background(), stubDB{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(calls) != 2 || calls[0] != "a" || calls[1] != "b" {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestRunner_NilDB(t *testing.T) {
	if err := (Runner{}).Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}

func TestDefaults_RoleRequirementsReferenceSeededSkills(t *testing.T) {
	known := map[string]struct{}{}
	for _, s := range defaultSkills {
		known[s.ID] = struct{}{}
	}
	for _, r := range defaultRoles {
		for _, req := range r.Requirements {
			if _, ok := known[req.SkillID]; !ok {
				t.Fatalf("role %s requires unknown skill %s", r.ID, req.SkillID)
			}
			switch req.Level {
			case "beginner", "intermediate", "advanced":
			default:
				t.Fatalf("role %s has invalid level %q", r.ID, req.Level)
			}
		}
	}
}
