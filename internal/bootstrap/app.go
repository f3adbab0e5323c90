package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/auth"
	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/llm/gemini"
	"resume-analyzer/internal/llm/openai"
	"resume-analyzer/internal/reports"
	"resume-analyzer/internal/services/health"
	sharedauth "resume-analyzer/internal/shared/auth"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/shared/server"
	"resume-analyzer/internal/shared/storage/db"
	"resume-analyzer/internal/shared/storage/object"
	localstore "resume-analyzer/internal/shared/storage/object/local"
	s3store "resume-analyzer/internal/shared/storage/object/s3"
	"resume-analyzer/internal/shared/telemetry"
	"resume-analyzer/internal/uploads"
	"resume-analyzer/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     object.ObjectStore
	Completer llm.Completer
	Signer    *sharedauth.Signer

	UsersRepo   users.Repo
	ReportsRepo reports.Repo

	UsersService   *users.Service
	AuthService    *auth.Service
	ReportsService *reports.Service
	HealthService  *health.Service

	AuthHandler   *auth.Handler
	GoogleAuth    *auth.GoogleService
	UsersHandler  *users.Handler
	UploadHandler *uploads.Handler
	ReportHandler *reports.Handler
}

// Options overrides dependencies, mostly for tests.
type Options struct {
	Completer llm.Completer
	Verifier  auth.IdentityVerifier
}

// Build prepares every dependency and the router.
func Build(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	completer := opts.Completer
	if completer == nil {
		completer, err = NewCompleter(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	signer, err := sharedauth.NewSigner(cfg.JWTSecret, cfg.SessionTTL, cfg.IsProduction())
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Completer: completer,
		Signer:    signer,
	}
	buildServices(app, opts)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		Tokens:        signer,
		Health:        app.HealthService,
		AuthHandler:   app.AuthHandler,
		GoogleAuth:    app.GoogleAuth,
		UserHandler:   app.UsersHandler,
		UploadHandler: app.UploadHandler,
		ReportHandler: app.ReportHandler,
	})
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database unavailable", "err": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, nil
	}
}

// NewCompleter selects the provider named in cfg.LLM. Outside production a
// misconfigured provider degrades to llm.PlaceholderCompleter.
func NewCompleter(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	var (
		completer llm.Completer
		err       error
	)
	switch cfg.LLM.Provider {
	case "openai":
		completer, err = openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.OpenAIAPIKey,
			Model:       cfg.LLM.Model,
			BaseURL:     cfg.LLM.OpenAIURL,
			Timeout:     cfg.LLM.Timeout,
			Temperature: float32(cfg.LLM.Temperature),
		})
	case "gemini":
		completer, err = gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.LLM.GeminiAPIKey,
			Model:       cfg.LLM.Model,
			Timeout:     cfg.LLM.Timeout,
			Temperature: float32(cfg.LLM.Temperature),
		})
	default:
		return llm.PlaceholderCompleter{}, nil
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"provider": cfg.LLM.Provider, "err": err})
			return llm.PlaceholderCompleter{}, nil
		}
		return nil, err
	}
	return completer, nil
}

func buildServices(app *App, opts Options) {
	cfg := app.Config

	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.ReportsRepo = &reports.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ReportsRepo = reports.NewMemoryRepo()
	}

	breaker := llm.NewBreaker("llm-"+cfg.LLM.Provider, llm.BreakerSettings{
		Enabled:      cfg.LLM.Breaker.Enabled,
		MaxRequests:  cfg.LLM.Breaker.MaxRequests,
		Interval:     cfg.LLM.Breaker.Interval,
		Timeout:      cfg.LLM.Breaker.Timeout,
		MinRequests:  cfg.LLM.Breaker.MinRequests,
		FailureRatio: cfg.LLM.Breaker.FailureRatio,
	})
	generator := llm.NewClient(app.Completer, llm.WithBreaker(breaker))

	verifier := opts.Verifier
	if verifier == nil {
		verifier = auth.NewGoogleVerifier(cfg.GoogleClientID)
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.AuthService = &auth.Service{Verifier: verifier, Users: app.UsersService, Signer: app.Signer}
	app.ReportsService = reports.NewService(app.ReportsRepo, generator, cfg.LLM.Provider, cfg.LLM.Model)

	var ping health.PingFunc
	if app.DB != nil {
		ping = func(ctx context.Context) error { return db.Ping(ctx, app.DB, 2*time.Second) }
	}
	app.HealthService = health.NewService(ping, cfg.ObjectStoreType, cfg.LLM.Provider)

	app.AuthHandler = auth.NewHandler(app.AuthService)
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		app.GoogleAuth = auth.NewGoogleService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			cfg.UIRedirectURL,
			app.AuthService,
		)
	}
	app.UsersHandler = users.NewHandler(app.UsersService)
	app.UploadHandler = uploads.NewHandler(extract.New("", cfg.MaxUploadBytes), app.Store)
	app.ReportHandler = reports.NewHandler(app.ReportsService)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
