package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/xlsxsplit/internal/config"
	"github.com/locvowork/xlsxsplit/internal/database"
	"github.com/locvowork/xlsxsplit/internal/domain"
	"github.com/locvowork/xlsxsplit/internal/handler"
	"github.com/locvowork/xlsxsplit/internal/logger"
	"github.com/locvowork/xlsxsplit/internal/repository"
	"github.com/locvowork/xlsxsplit/internal/service"
)

type App struct {
	Echo *echo.Echo
	// DB is nil when split history is disabled.
	DB *sql.DB
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	splitFile, err := cfg.LoadSplitFile()
	if err != nil {
		return fmt.Errorf("failed to load split profiles: %w", err)
	}

	var jobs domain.SplitJobRepository
	if cfg.HistoryEnabled() {
		db, err := database.NewPostgresDB(ctx, database.Config{
			Host:            cfg.DB_HOST,
			Port:            cfg.DB_PORT,
			User:            cfg.DB_USER,
			Password:        cfg.DB_PASSWORD,
			DBName:          cfg.DB_NAME,
			SSLMode:         cfg.DB_SSL_MODE,
			MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db

		repo := repository.NewJobRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		jobs = repo
	} else {
		logger.WarnLog(ctx, "DB_HOST is empty, split history disabled")
	}

	svc := service.NewSplitService(jobs, splitFile, cfg.SplitOptions()...)
	if jobs != nil && cfg.JOB_RETENTION > 0 {
		if _, err := svc.PruneJobs(ctx, cfg.JOB_RETENTION); err != nil {
			logger.WarnLog(ctx, "failed to prune split jobs: %v", err)
		}
	}

	a.RegisterMiddlewares(cfg.MAX_UPLOAD_SIZE)
	a.RegisterRoutes(handler.NewSplitHandler(svc))

	return nil
}

func (a *App) RegisterMiddlewares(maxUpload int64) {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
	if maxUpload > 0 {
		// multipart framing on top of the file itself
		a.Echo.Use(middleware.BodyLimit(strconv.FormatInt(maxUpload+1<<20, 10) + "B"))
	}
}

func (a *App) RegisterRoutes(h *handler.SplitHandler) {
	api := a.Echo.Group("/api/v1")
	api.POST("/split", h.SplitHandler)
	api.POST("/inspect", h.InspectHandler)
	api.GET("/jobs", h.JobsHandler)
	api.GET("/profiles", h.ProfilesHandler)
}

func (a *App) Run() error {
	if a.DB != nil {
		defer a.DB.Close()
	}
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}
