package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"todoapi/backend/internal/auth"
	"todoapi/backend/internal/database"
	"todoapi/backend/internal/notifications"
	"todoapi/backend/internal/repository"
	"todoapi/backend/internal/router"
	"todoapi/backend/internal/services"
	"todoapi/backend/pkg/config"
	applog "todoapi/backend/pkg/log"
	"todoapi/backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		if applog.L != nil {
			applog.L.Error("server exited with error", zap.Error(err))
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type stores struct {
	users     repository.UserRepository
	todos     repository.TodoRepository
	errorLogs repository.ErrorLogRepository
	db        *gorm.DB
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	applog.Init(cfg.LogLevel, cfg.Environment)
	defer applog.Sync()
	log := applog.L

	metrics.SetAppVersion(cfg.AppVersion)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(st.db); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	tokens, err := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT: %w", err)
	}
	hasher := auth.NewPasswordHasher(cfg.Reset.BcryptCost)
	notifier := notifications.New(ctx, cfg, log)

	authSvc := services.NewAuthService(st.users, hasher, tokens, notifier, services.AuthServiceConfig{
		ResetTTL:  cfg.Reset.TokenTTL,
		ClientURL: cfg.Reset.ClientURL,
	}, log)
	todoSvc := services.NewTodoService(st.todos, log)

	engine := router.SetupRouter(router.Deps{
		Logger:     log,
		Production: cfg.IsProduction(),
		Tokens:     tokens,
		Users:      st.users,
		ErrorLogs:  st.errorLogs,
		AuthSvc:    authSvc,
		TodoSvc:    todoSvc,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.WithCORS(engine, cfg.CORS.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStores escolhe o armazenamento pelo DB_DRIVER.
func openStores(cfg *config.AppConfig, log *zap.Logger) (*stores, error) {
	if cfg.Database.Driver == "memory" {
		log.Warn("Using in-memory store; data is lost on restart")
		mem := repository.NewMemoryStore()
		return &stores{users: mem.Users(), todos: mem.Todos(), errorLogs: mem.ErrorLogs()}, nil
	}

	db, err := database.Open(cfg.Database, cfg.Environment == config.EnvDevelopment)
	if err != nil {
		return nil, err
	}
	log.Info("Database connection established")

	if cfg.Database.RunMigrations {
		if err := database.Migrate(db, log); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}
	return &stores{
		users:     repository.NewGormUserRepository(db),
		todos:     repository.NewGormTodoRepository(db),
		errorLogs: repository.NewGormErrorLogRepository(db),
		db:        db,
	}, nil
}
