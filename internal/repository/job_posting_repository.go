package repository

import (
	"context"

	"skill-readiness/internal/database"
	"skill-readiness/internal/domain/jobmatch"
)

type JobPostingRepository interface {
	ListRecent(ctx context.Context, limit, offset int) ([]jobmatch.Job, error)
}

type PostgresJobPostingRepository struct {
	db database.DB
}

func NewPostgresJobPostingRepository(db database.DB) *PostgresJobPostingRepository {
	return &PostgresJobPostingRepository{db: db}
}

func (r *PostgresJobPostingRepository) ListRecent(ctx context.Context, limit, offset int) ([]jobmatch.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, title, company, location, url, skills, posted_at
		 FROM job_postings
		 ORDER BY posted_at DESC, id ASC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]jobmatch.Job, 0, limit)
	for rows.Next() {
		var j jobmatch.Job
		if err := rows.Scan(&j.JobID, &j.Title, &j.Company, &j.Location, &j.URL, &j.Skills, &j.PostedDate); err != nil {
			return nil, err
		}
		if j.Skills == nil {
			j.Skills = []string{}
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
