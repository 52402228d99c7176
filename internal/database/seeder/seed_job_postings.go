package seeder

import (
	"context"
	"time"

	"skill-readiness/internal/database"
)

type JobPostingsSeeder struct{}

func (JobPostingsSeeder) Name() string { return "job_postings" }

var defaultPostings = []struct {
	ID       string
	Title    string
	Company  string
	Location string
	Skills   []string
	AgeDays  int
}{
	{ID: "demo-1", Title: "Frontend Engineer", Company: "Acme", Location: "Remote", Skills: []string{"React", "TypeScript", "CSS"}, AgeDays: 1},
	{ID: "demo-2", Title: "Backend Engineer", Company: "Globex", Location: "Jakarta", Skills: []string{"Go", "PostgreSQL", "Redis"}, AgeDays: 2},
	{ID: "demo-3", Title: "Full Stack Developer", Company: "Initech", Location: "Remote", Skills: []string{"JavaScript", "Node.js", "React", "SQL"}, AgeDays: 3},
	{ID: "demo-4", Title: "Platform Engineer", Company: "Umbrella", Location: "Singapore", Skills: []string{"Kubernetes", "Docker", "AWS", "Go"}, AgeDays: 5},
	{ID: "demo-5", Title: "Graduate Developer", Company: "Hooli", Location: "Remote", Skills: []string{}, AgeDays: 7},
}

func (JobPostingsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "job_postings", "id", "title", "company", "location", "skills", "posted_at"); err != nil {
		return err
	}

	now := time.Now().UTC()
	return database.InTx(ctx, db, func(tx database.Tx) error {
		for _, p := range defaultPostings {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO job_postings (id, title, company, location, skills, posted_at) VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (id) DO UPDATE
				 SET title = EXCLUDED.title, company = EXCLUDED.company, location = EXCLUDED.location,
				     skills = EXCLUDED.skills, posted_at = EXCLUDED.posted_at`,
				p.ID, p.Title, p.Company, p.Location, p.Skills, now.AddDate(0, 0, -p.AgeDays),
			); err != nil {
				return err
			}
		}
		return nil
	})
}
