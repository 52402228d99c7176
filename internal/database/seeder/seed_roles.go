package seeder

import (
	"context"

	"skill-readiness/internal/database"
)

type RolesSeeder struct{}

func (RolesSeeder) Name() string { return "job_roles" }

type seedRequirement struct {
	SkillID string
	Level   string
}

var defaultRoles = []struct {
	ID           string
	Title        string
	Category     string
	AvgSalary    int
	Demand       string
	Requirements []seedRequirement
}{
	{
		ID: "frontend-developer", Title: "Frontend Developer", Category: "Engineering", AvgSalary: 95000, Demand: "high",
		Requirements: []seedRequirement{
			{SkillID: "javascript", Level: "intermediate"},
			{SkillID: "css", Level: "beginner"},
			{SkillID: "html", Level: "beginner"},
			{SkillID: "react", Level: "intermediate"},
		},
	},
	{
		ID: "backend-developer", Title: "Backend Developer", Category: "Engineering", AvgSalary: 105000, Demand: "high",
		Requirements: []seedRequirement{
			{SkillID: "go", Level: "intermediate"},
			{SkillID: "postgresql", Level: "intermediate"},
			{SkillID: "redis", Level: "beginner"},
			{SkillID: "docker", Level: "beginner"},
		},
	},
	{
		ID: "devops-engineer", Title: "DevOps Engineer", Category: "Operations", AvgSalary: 115000, Demand: "medium",
		Requirements: []seedRequirement{
			{SkillID: "docker", Level: "advanced"},
			{SkillID: "kubernetes", Level: "intermediate"},
			{SkillID: "aws", Level: "intermediate"},
		},
	},
}

func (RolesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "job_roles", "id", "title", "category", "avg_salary", "demand"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "role_requirements", "role_id", "skill_id", "min_proficiency", "position"); err != nil {
		return err
	}

	return database.InTx(ctx, db, func(tx database.Tx) error {
		for _, r := range defaultRoles {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO job_roles (id, title, category, avg_salary, demand) VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (id) DO UPDATE
				 SET title = EXCLUDED.title, category = EXCLUDED.category,
				     avg_salary = EXCLUDED.avg_salary, demand = EXCLUDED.demand`,
				r.ID, r.Title, r.Category, r.AvgSalary, r.Demand,
			); err != nil {
				return err
			}

			if _, err := tx.Exec(ctx, `DELETE FROM role_requirements WHERE role_id = $1`, r.ID); err != nil {
				return err
			}
			for pos, req := range r.Requirements {
				if _, err := tx.Exec(
					ctx,
					`INSERT INTO role_requirements (role_id, skill_id, min_proficiency, position) VALUES ($1, $2, $3, $4)`,
					r.ID, req.SkillID, req.Level, pos,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
