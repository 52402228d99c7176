package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skill-readiness/internal/database"
	dbpostgres "skill-readiness/internal/database/postgres"
	"skill-readiness/internal/domain/progress"
	"skill-readiness/internal/domain/roadmap"
	"skill-readiness/internal/domain/skill"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrLearnerStateNotFound = errors.New("learner state not found")
	ErrStaleSnapshot        = errors.New("stale learner snapshot")
	ErrUnknownRole          = errors.New("learner state references unknown role")
)

// LearnerState is the persisted shape of one learner's session. The readiness
// analysis is derived and therefore not stored.
type LearnerState struct {
	LearnerID uuid.UUID
	Version   int64
	RoleID    string
	Inventory skill.Inventory
	Roadmap   []roadmap.Item
	Progress  *progress.AnalysisProgress
	UpdatedAt time.Time
}

type LearnerStateRepository interface {
	Load(ctx context.Context, learnerID uuid.UUID) (LearnerState, error)
	Save(ctx context.Context, st LearnerState) error
}

type PostgresLearnerStateRepository struct {
	db database.DB
}

func NewPostgresLearnerStateRepository(db database.DB) *PostgresLearnerStateRepository {
	return &PostgresLearnerStateRepository{db: db}
}

func (r *PostgresLearnerStateRepository) Load(ctx context.Context, learnerID uuid.UUID) (LearnerState, error) {
	row := r.db.QueryRow(ctx,
		`SELECT learner_id, version, COALESCE(role_id, ''), inventory, roadmap, progress, updated_at
		 FROM learner_states
		 WHERE learner_id = $1`,
		learnerID,
	)

	var (
		st           LearnerState
		inventoryRaw []byte
		roadmapRaw   []byte
		progressRaw  []byte
	)
	if err := row.Scan(&st.LearnerID, &st.Version, &st.RoleID, &inventoryRaw, &roadmapRaw, &progressRaw, &st.UpdatedAt); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return LearnerState{}, ErrLearnerStateNotFound
		}
		return LearnerState{}, err
	}

	if err := json.Unmarshal(inventoryRaw, &st.Inventory); err != nil {
		return LearnerState{}, fmt.Errorf("decode inventory: %w", err)
	}
	if err := json.Unmarshal(roadmapRaw, &st.Roadmap); err != nil {
		return LearnerState{}, fmt.Errorf("decode roadmap: %w", err)
	}
	if len(progressRaw) > 0 && string(progressRaw) != "null" {
		var p progress.AnalysisProgress
		if err := json.Unmarshal(progressRaw, &p); err != nil {
			return LearnerState{}, fmt.Errorf("decode progress: %w", err)
		}
		st.Progress = &p
	}
	return st, nil
}

// Save upserts the snapshot unless a newer version is already stored, in
// which case ErrStaleSnapshot is returned.
func (r *PostgresLearnerStateRepository) Save(ctx context.Context, st LearnerState) error {
	if st.LearnerID == uuid.Nil {
		return fmt.Errorf("save learner state: nil learner id")
	}

	inventory := st.Inventory
	if inventory == nil {
		inventory = skill.Inventory{}
	}
	items := st.Roadmap
	if items == nil {
		items = []roadmap.Item{}
	}

	inventoryRaw, err := json.Marshal(inventory)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	roadmapRaw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode roadmap: %w", err)
	}
	var progressRaw []byte
	if st.Progress != nil {
		progressRaw, err = json.Marshal(st.Progress)
		if err != nil {
			return fmt.Errorf("encode progress: %w", err)
		}
	}

	var roleID *string
	if st.RoleID != "" {
		roleID = &st.RoleID
	}

	affected, err := r.db.Exec(ctx,
		`INSERT INTO learner_states (learner_id, version, role_id, inventory, roadmap, progress, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (learner_id) DO UPDATE
		 SET version = EXCLUDED.version,
		     role_id = EXCLUDED.role_id,
		     inventory = EXCLUDED.inventory,
		     roadmap = EXCLUDED.roadmap,
		     progress = EXCLUDED.progress,
		     updated_at = now()
		 WHERE learner_states.version < EXCLUDED.version`,
		st.LearnerID, st.Version, roleID, inventoryRaw, roadmapRaw, progressRaw,
	)
	if err != nil {
		if dbpostgres.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", ErrUnknownRole, st.RoleID)
		}
		return err
	}
	if affected == 0 {
		return ErrStaleSnapshot
	}
	return nil
}
