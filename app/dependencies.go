package app

import (
	"context"
	"fmt"

	"github.com/ead/authuser/config"
	"github.com/ead/authuser/handlers"
	"github.com/ead/authuser/middleware"
	"github.com/ead/authuser/repositories"
	"github.com/ead/authuser/repositories/postgres"
	"github.com/ead/authuser/security"
	"github.com/ead/authuser/services"
	"github.com/ead/authuser/services/events"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users       repositories.UserRepository
	Roles       repositories.RoleRepository
	UserCourses repositories.UserCourseRepository
	TxManager   repositories.TransactionManager

	// Authentication core
	Codec     *security.Codec
	Validator *security.Validator
	Resolver  *security.Resolver

	// Services
	Publisher         *events.Publisher
	AuthService       *services.AuthService
	UserService       *services.UserService
	UserCourseService *services.UserCourseService

	// HTTP
	AuthFilter        *middleware.AuthenticationFilter
	Authorization     *middleware.Authorization
	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	UserCourseHandler *handlers.UserCourseHandler
	HealthHandler     *handlers.HealthHandler
}

// NewDependencies opens the database and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesWithFactory(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesWithFactory wires dependencies over an existing repository factory
func NewDependenciesWithFactory(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	if cfg.Database.InitSchema {
		if err := factory.InitSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		logger.Info("database schema initialized")
	}

	deps.initRepositories()

	if err := deps.initSecurity(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize security: %w", err)
	}

	deps.initServices(cfg)
	deps.initHTTP()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.Roles = repos.Roles
	d.UserCourses = repos.UserCourses
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initSecurity builds the token codec, validator and principal resolver
func (d *Dependencies) initSecurity(cfg *config.Config) error {
	codec, err := security.NewCodec(security.SigningConfig{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Validity: cfg.Auth.TokenValidity(),
	})
	if err != nil {
		return err
	}

	d.Codec = codec
	d.Validator = security.NewValidator(codec, d.Logger)
	d.Resolver = security.NewResolver(postgres.NewUserStore(d.Users))

	d.Logger.Info("authentication initialized",
		zap.Duration("token_validity", codec.Validity()))
	return nil
}

// initServices initializes the event publisher and account services
func (d *Dependencies) initServices(cfg *config.Config) {
	d.Publisher = events.NewPublisher(events.NewLogSink(d.Logger), d.Logger, events.Config{
		BufferSize:      cfg.Events.BufferSize,
		WorkerCount:     cfg.Events.WorkerCount,
		DeliveryTimeout: events.DefaultConfig().DeliveryTimeout,
	})

	d.AuthService = services.NewAuthService(d.Users, d.Roles, d.TxManager, d.Resolver, d.Codec, d.Publisher, cfg.Auth.BcryptCost, d.Logger)
	d.UserService = services.NewUserService(d.Users, d.Roles, d.TxManager, d.Publisher, cfg.Auth.BcryptCost, d.Logger)
	d.UserCourseService = services.NewUserCourseService(d.Users, d.UserCourses, d.Logger)
}

// initHTTP initializes handlers and middleware
func (d *Dependencies) initHTTP() {
	d.AuthFilter = middleware.NewAuthenticationFilter(d.Validator, d.Codec, d.Resolver, d.Logger)
	d.Authorization = middleware.NewAuthorization(d.Logger)

	d.AuthHandler = handlers.NewAuthHandler(d.AuthService, d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.UserService, d.Logger)
	d.UserCourseHandler = handlers.NewUserCourseHandler(d.UserCourseService, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(map[string]handlers.HealthChecker{
		"database": d.DB,
		"events":   d.Publisher,
	}, d.Logger)
}

// Start launches background workers
func (d *Dependencies) Start() error {
	if err := d.Publisher.Start(); err != nil {
		return fmt.Errorf("failed to start event publisher: %w", err)
	}
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Publisher != nil && d.Publisher.GetStats().Started {
		if err := d.Publisher.Stop(d.Config.Events.DrainTimeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to drain events: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
		d.RepoFactory = nil
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
