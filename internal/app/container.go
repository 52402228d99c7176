package app

import (
	"context"
	"errors"
	"time"

	"skill-readiness/internal/config"
	"skill-readiness/internal/database"
	dbpostgres "skill-readiness/internal/database/postgres"
	"skill-readiness/internal/domain/progress"
	"skill-readiness/internal/infrastructure/cache"
	"skill-readiness/internal/infrastructure/persist"
	"skill-readiness/internal/pkg/jwt"
	"skill-readiness/internal/pkg/logger"
	"skill-readiness/internal/pkg/metrics"
	"skill-readiness/internal/repository"
	"skill-readiness/internal/usecase"
	"skill-readiness/internal/ws"
)

// Container holds the long-lived dependencies of the server process.
type Container struct {
	Config  config.Config
	Log     *logger.Logger
	Metrics *metrics.Manager
	DB      database.DB
	Cache   *cache.Redis
	JWT     jwt.Service

	Hub        *ws.Hub
	Notifier   *ws.Notifier
	Dispatcher *persist.Dispatcher

	Readiness *usecase.Readiness
	JobMatch  *usecase.JobMatch
}

func NewContainer(cfg config.Config, log *logger.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.New(metrics.WithGoCollectors()),
		DB:      db,
		Cache:   cache.NewRedis(ctx, cfg.Redis, log),
		JWT:     jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn),
	}

	c.Hub = ws.NewHub(log)
	c.Notifier = ws.NewNotifier(c.Hub)
	c.Dispatcher = persist.NewDispatcher(cfg.Persistence, log,
		persist.WithMetrics(c.Metrics),
		persist.WithPermanent(func(err error) bool {
			return errors.Is(err, context.Canceled) || errors.Is(err, repository.ErrUnknownRole)
		}),
		persist.WithOnFailure(func(f persist.Failure) {
			c.Notifier.PersistenceWarning(f.LearnerID, "latest changes are not saved yet")
		}),
	)

	stateRepo := repository.NewPostgresLearnerStateRepository(db)
	roleRepo := repository.NewPostgresRoleRepository(db)
	jobRepo := repository.NewPostgresJobPostingRepository(db)

	c.Readiness = usecase.NewReadinessUsecase(
		stateRepo,
		roleRepo,
		c.Dispatcher,
		c.Notifier,
		progress.NewTracker(),
		c.Metrics,
		log.With("component", "readiness"),
	)
	c.JobMatch = usecase.NewJobMatchUsecase(jobRepo, c.Readiness, c.Cache, c.Metrics, log.With("component", "job_match"))

	return c, nil
}

// Start launches background workers. They stop when ctx is cancelled or
// Close is called.
func (c *Container) Start(ctx context.Context) {
	go c.Hub.Run()
	c.Dispatcher.Start(ctx)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	c.Dispatcher.Close()
	c.Hub.Stop()
	_ = c.Cache.Close()
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
