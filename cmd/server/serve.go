package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/auth"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/database"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/handlers"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/repository"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/service"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/uploads"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// app holds the wired storage and service layer shared by every command.
type app struct {
	db     *database.DB
	garden *service.Garden
	images *uploads.Store
}

func openApp(ctx context.Context) (*app, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	images, err := uploads.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		db.Close()
		return nil, err
	}

	garden := service.NewGarden(repository.NewSQLStore(db.DB), logger,
		service.WithDemoMode(cfg.DemoMode),
		service.WithImageRemover(images),
	)
	return &app{db: db, garden: garden, images: images}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.db.Close()

	logger.Info("✅ Database ready", zap.String("driver", a.db.Driver()))

	if _, err := a.garden.EnsureDemoPlant(ctx); err != nil {
		return fmt.Errorf("seeding demo plant: %w", err)
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	routerCfg := handlers.RouterConfig{
		Garden:  a.garden,
		Images:  a.images,
		DB:      a.db,
		Logger:  logger,
		Version: Version,
	}
	if cfg.Auth.Enabled {
		routerCfg.JWT = auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		routerCfg.Authenticator = auth.NewAuthenticator(cfg.Auth.Username, cfg.Auth.PasswordHash)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: handlers.NewRouter(routerCfg),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("🚀 Server starting",
			zap.String("port", cfg.Server.Port),
			zap.Bool("demo_mode", cfg.DemoMode),
			zap.Bool("auth", cfg.Auth.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("🛑 Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("✅ Server exited")
	return nil
}
