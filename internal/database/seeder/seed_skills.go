package seeder

import (
	"context"

	"skill-readiness/internal/database"
)

type SkillsSeeder struct{}

func (SkillsSeeder) Name() string { return "skills" }

var defaultSkills = []struct {
	ID       string
	Name     string
	Category string
}{
	{ID: "go", Name: "Go", Category: "Programming Language"},
	{ID: "javascript", Name: "JavaScript", Category: "Programming Language"},
	{ID: "typescript", Name: "TypeScript", Category: "Programming Language"},
	{ID: "react", Name: "React", Category: "Frontend"},
	{ID: "css", Name: "CSS", Category: "Frontend"},
	{ID: "html", Name: "HTML", Category: "Frontend"},
	{ID: "postgresql", Name: "PostgreSQL", Category: "Database"},
	{ID: "redis", Name: "Redis", Category: "Database"},
	{ID: "docker", Name: "Docker", Category: "DevOps"},
	{ID: "kubernetes", Name: "Kubernetes", Category: "DevOps"},
	{ID: "aws", Name: "AWS", Category: "Cloud"},
}

func (SkillsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "skills", "id", "name", "category"); err != nil {
		return err
	}

	return database.InTx(ctx, db, func(tx database.Tx) error {
		for _, it := range defaultSkills {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO skills (id, name, category) VALUES ($1, $2, $3)
				 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category`,
				it.ID, it.Name, it.Category,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
