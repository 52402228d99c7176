package seeder

import (
	"context"

	"skill-readiness/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
