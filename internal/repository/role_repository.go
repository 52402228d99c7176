package repository

import (
	"context"
	"errors"

	"skill-readiness/internal/database"
	"skill-readiness/internal/domain/proficiency"
	"skill-readiness/internal/domain/role"
	"skill-readiness/internal/domain/skill"
)

var ErrRoleNotFound = errors.New("role not found")

type RoleRepository interface {
	FindByID(ctx context.Context, id string) (role.JobRole, error)
	List(ctx context.Context) ([]role.JobRole, error)
}

type PostgresRoleRepository struct {
	db database.DB
}

func NewPostgresRoleRepository(db database.DB) *PostgresRoleRepository {
	return &PostgresRoleRepository{db: db}
}

const roleSelect = `SELECT r.id, r.title, r.category, r.avg_salary, r.demand,
	       COALESCE(rr.skill_id, ''), COALESCE(s.name, ''), COALESCE(rr.min_proficiency, '')
	FROM job_roles r
	LEFT JOIN role_requirements rr ON rr.role_id = r.id
	LEFT JOIN skills s ON s.id = rr.skill_id`

func (r *PostgresRoleRepository) FindByID(ctx context.Context, id string) (role.JobRole, error) {
	rows, err := r.db.Query(ctx, roleSelect+` WHERE r.id = $1 ORDER BY rr.position ASC, rr.skill_id ASC`, id)
	if err != nil {
		return role.JobRole{}, err
	}
	roles, err := scanRoles(rows)
	if err != nil {
		return role.JobRole{}, err
	}
	if len(roles) == 0 {
		return role.JobRole{}, ErrRoleNotFound
	}
	return roles[0], nil
}

func (r *PostgresRoleRepository) List(ctx context.Context) ([]role.JobRole, error) {
	rows, err := r.db.Query(ctx, roleSelect+` ORDER BY r.title ASC, r.id ASC, rr.position ASC, rr.skill_id ASC`)
	if err != nil {
		return nil, err
	}
	return scanRoles(rows)
}

// scanRoles folds the role x requirement join back into roles, keeping the
// row order of both.
func scanRoles(rows database.Rows) ([]role.JobRole, error) {
	defer rows.Close()

	out := make([]role.JobRole, 0)
	index := map[string]int{}
	for rows.Next() {
		var (
			jr        role.JobRole
			skillID   string
			skillName string
			minLevel  string
		)
		if err := rows.Scan(&jr.ID, &jr.Title, &jr.Category, &jr.AvgSalary, &jr.Demand, &skillID, &skillName, &minLevel); err != nil {
			return nil, err
		}

		i, ok := index[jr.ID]
		if !ok {
			jr.RequiredSkills = make([]role.Requirement, 0)
			out = append(out, jr)
			i = len(out) - 1
			index[jr.ID] = i
		}
		if skillID == "" {
			continue
		}
		out[i].RequiredSkills = append(out[i].RequiredSkills, role.Requirement{
			SkillID:        skill.ID(skillID),
			SkillName:      skillName,
			MinProficiency: proficiency.Level(minLevel),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
