package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/senyabanana/creator-marketplace/internal/auth"
	"github.com/senyabanana/creator-marketplace/internal/db"
	"github.com/senyabanana/creator-marketplace/internal/gate"
	"github.com/senyabanana/creator-marketplace/internal/handlers"
	"github.com/senyabanana/creator-marketplace/internal/repository"
	"github.com/senyabanana/creator-marketplace/internal/router"
	"github.com/senyabanana/creator-marketplace/internal/router/config"
	"github.com/senyabanana/creator-marketplace/internal/services"
	"github.com/senyabanana/creator-marketplace/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

// application собирает репозитории и сервисы по конфигурации.
type application struct {
	cfg    config.Config
	logger *log.Logger
	pool   *pgxpool.Pool

	users        repository.UserRepository
	profiles     repository.ProfileRepository
	jobs         repository.JobRepository
	proposals    repository.ProposalRepository
	deliverables repository.DeliverableRepository

	auth     *auth.Service
	workflow *services.Workflow
}

func newApplication(ctx context.Context, cfg config.Config, logger *log.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger}

	switch cfg.StorageDriver {
	case config.MemoryDriver:
		store := repository.NewMemoryStore()
		app.users, app.profiles, app.jobs, app.proposals, app.deliverables = store, store, store, store, store
	case config.PostgresDriver:
		pool, err := db.InitDb(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("error initializing database: %w", err)
		}
		app.pool = pool
		app.users = repository.NewPostgresUserRepository(pool)
		app.profiles = repository.NewPostgresProfileRepository(pool)
		app.jobs = repository.NewPostgresJobRepository(pool)
		app.proposals = repository.NewPostgresProposalRepository(pool)
		app.deliverables = repository.NewPostgresDeliverableRepository(pool)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	app.auth = auth.NewService(app.users, app.profiles, logger, cfg.JWTSecret, cfg.TokenTTL)
	app.workflow = services.NewWorkflow(
		app.jobs,
		app.proposals,
		app.deliverables,
		storage.NewFSBlobStore(cfg.BlobDir),
		logger,
		cfg.MaxUploadBytes,
	)
	return app, nil
}

func (a *application) handler() http.Handler {
	timeout := a.cfg.RequestTimeout
	resolver := gate.NewCachedResolver(gate.ProfileRoleResolver{Profiles: a.profiles}, a.cfg.ProfileCacheTTL)
	roleGate := gate.NewGate(resolver, a.logger)

	return router.InitRoutes(router.Handlers{
		Auth:         handlers.NewAuthHandler(a.auth, a.logger, timeout),
		Profile:      handlers.NewProfileHandler(services.NewProfileService(a.profiles), a.auth, a.logger, timeout),
		Dashboard:    handlers.NewDashboardHandler(a.workflow, a.auth, a.logger, timeout),
		Jobs:         handlers.NewJobHandler(a.workflow, a.auth, a.logger, timeout),
		Proposals:    handlers.NewProposalHandler(a.workflow, a.auth, a.logger, timeout),
		Deliverables: handlers.NewDeliverableHandler(a.workflow, a.auth, a.logger, timeout),
	}, a.auth, roleGate)
}

func (a *application) close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
