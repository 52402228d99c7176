package usecase

import (
	"context"

	"skill-readiness/internal/domain/jobmatch"
	"skill-readiness/internal/domain/skill"
	"skill-readiness/internal/pkg/logger"
	"skill-readiness/internal/pkg/metrics"
	"skill-readiness/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	defaultRankLimit = 20
	maxRankLimit     = 100
)

type InventorySource interface {
	Inventory(ctx context.Context, learnerID uuid.UUID) (skill.Inventory, error)
}

type RankedJobsParams struct {
	Limit  int
	Offset int
}

type JobMatchUsecase interface {
	RankedJobs(ctx context.Context, learnerID uuid.UUID, p RankedJobsParams) ([]jobmatch.RankedJob, error)
	InvalidateRankings(ctx context.Context) error
}

// JobMatch ranks a page of recent postings against the learner's skills.
// Ranking is done within the page; postings are paged newest first.
type JobMatch struct {
	jobs      repository.JobPostingRepository
	inventory InventorySource
	cache     RankCache
	metrics   *metrics.Manager
	log       *logger.Logger

	group singleflight.Group
}

func NewJobMatchUsecase(
	jobs repository.JobPostingRepository,
	inventory InventorySource,
	cache RankCache,
	m *metrics.Manager,
	log *logger.Logger,
) *JobMatch {
	return &JobMatch{jobs: jobs, inventory: inventory, cache: cache, metrics: m, log: log}
}

func (u *JobMatch) RankedJobs(ctx context.Context, learnerID uuid.UUID, p RankedJobsParams) ([]jobmatch.RankedJob, error) {
	if p.Limit == 0 {
		p.Limit = defaultRankLimit
	}
	if p.Limit < 0 || p.Limit > maxRankLimit || p.Offset < 0 {
		return nil, ErrInvalidInput
	}

	inv, err := u.inventory.Inventory(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	key := RankedJobsCacheKey(inv, p.Limit, p.Offset)
	if u.cache != nil {
		var cached []jobmatch.RankedJob
		ok, err := u.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			u.log.Debug("rank cache read failed", "key", key, "error", err)
		}
		if ok {
			u.metrics.RankCache(true)
			return cached, nil
		}
		u.metrics.RankCache(false)
	}

	v, err, _ := u.group.Do(key, func() (any, error) {
		jobs, err := u.jobs.ListRecent(ctx, p.Limit, p.Offset)
		if err != nil {
			u.log.Error("list job postings failed", "error", err)
			return nil, ErrInternal
		}
		ranked := jobmatch.Rank(jobs, inv)
		if u.cache != nil {
			if err := u.cache.SetJSON(ctx, key, ranked, 0); err != nil {
				u.log.Debug("rank cache write failed", "key", key, "error", err)
			}
		}
		return ranked, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]jobmatch.RankedJob), nil
}

// InvalidateRankings drops every cached page, e.g. after postings were
// imported.
func (u *JobMatch) InvalidateRankings(ctx context.Context) error {
	if u.cache == nil {
		return nil
	}
	return u.cache.DeleteByPattern(ctx, rankCachePrefix+"*")
}
