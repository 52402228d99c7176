package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"skill-readiness/internal/database"
	"skill-readiness/internal/domain/proficiency"
	"skill-readiness/internal/domain/progress"
	"skill-readiness/internal/domain/roadmap"
	"skill-readiness/internal/domain/skill"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeDB struct {
	database.DB

	affected int64
	execErr  error
	lastArgs []any
	row      database.Row
}

func (f *fakeDB) Exec(_ context.Context, _ string, args ...any) (int64, error) {
	f.lastArgs = args
	return f.affected, f.execErr
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) database.Row {
	return f.row
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *uuid.UUID:
			*p = r.values[i].(uuid.UUID)
		case *int64:
			*p = r.values[i].(int64)
		case *string:
			*p = r.values[i].(string)
		case *[]byte:
			if r.values[i] != nil {
				*p = r.values[i].([]byte)
			}
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

func TestLearnerStateRepository_SaveStale(t *testing.T) {
	db := &fakeDB{affected: 0}
	repo := NewPostgresLearnerStateRepository(db)

	err := repo.Save(context.Background(), LearnerState{LearnerID: uuid.New(), Version: 3})
	if !errors.Is(err, ErrStaleSnapshot) {
		t.Fatalf("expected ErrStaleSnapshot, got %v", err)
	}
}

func TestLearnerStateRepository_SaveEncodesEmptyCollections(t *testing.T) {
	db := &fakeDB{affected: 1}
	repo := NewPostgresLearnerStateRepository(db)

	if err := repo.Save(context.Background(), LearnerState{LearnerID: uuid.New(), Version: 1}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := string(db.lastArgs[3].([]byte)); got != "[]" {
		t.Fatalf("expected empty inventory array, got %s", got)
	}
	if got := string(db.lastArgs[4].([]byte)); got != "[]" {
		t.Fatalf("expected empty roadmap array, got %s", got)
	}
	if db.lastArgs[2].(*string) != nil {
		t.Fatalf("expected NULL role id")
	}
	if db.lastArgs[5].([]byte) != nil {
		t.Fatalf("expected NULL progress")
	}
}

func TestLearnerStateRepository_SaveUnknownRole(t *testing.T) {
	db := &fakeDB{execErr: fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23503"})}
	repo := NewPostgresLearnerStateRepository(db)

	err := repo.Save(context.Background(), LearnerState{LearnerID: uuid.New(), Version: 2, RoleID: "retired"})
	if !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestLearnerStateRepository_SaveRejectsNilLearner(t *testing.T) {
	repo := NewPostgresLearnerStateRepository(&fakeDB{affected: 1})
	if err := repo.Save(context.Background(), LearnerState{}); err == nil {
		t.Fatalf("expected error for nil learner id")
	}
}

func TestLearnerStateRepository_LoadNotFound(t *testing.T) {
	repo := NewPostgresLearnerStateRepository(&fakeDB{row: fakeRow{err: pgx.ErrNoRows}})
	_, err := repo.Load(context.Background(), uuid.New())
	if !errors.Is(err, ErrLearnerStateNotFound) {
		t.Fatalf("expected ErrLearnerStateNotFound, got %v", err)
	}
}

func TestLearnerStateRepository_LoadDecodes(t *testing.T) {
	id := uuid.New()
	inv, _ := json.Marshal(skill.Inventory{{Skill: skill.Skill{ID: "go", Name: "Go"}, Proficiency: proficiency.Advanced}})
	items, _ := json.Marshal([]roadmap.Item{{ID: "r1", SkillID: "go", Completed: true}})
	prog, _ := json.Marshal(progress.AnalysisProgress{RoleID: "backend", InitialScore: 10, CurrentScore: 40})
	updated := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	repo := NewPostgresLearnerStateRepository(&fakeDB{row: fakeRow{values: []any{
		id, int64(9), "backend", inv, items, prog, updated,
	}}})

	st, err := repo.Load(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if st.Version != 9 || st.RoleID != "backend" || !st.UpdatedAt.Equal(updated) {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(st.Inventory) != 1 || st.Inventory[0].Proficiency != proficiency.Advanced {
		t.Fatalf("unexpected inventory %+v", st.Inventory)
	}
	if len(st.Roadmap) != 1 || !st.Roadmap[0].Completed {
		t.Fatalf("unexpected roadmap %+v", st.Roadmap)
	}
	if st.Progress == nil || st.Progress.CurrentScore != 40 {
		t.Fatalf("unexpected progress %+v", st.Progress)
	}
}

func TestLearnerStateRepository_LoadNullProgress(t *testing.T) {
	repo := NewPostgresLearnerStateRepository(&fakeDB{row: fakeRow{values: []any{
		uuid.New(), int64(1), "", []byte("[]"), []byte("[]"), nil, time.Now(),
	}}})

	st, err := repo.Load(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if st.Progress != nil {
		t.Fatalf("expected nil progress, got %+v", st.Progress)
	}
}
