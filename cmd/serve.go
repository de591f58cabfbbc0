package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aapokoiv/nutrition-tracker/cache"
	"github.com/aapokoiv/nutrition-tracker/config"
	"github.com/aapokoiv/nutrition-tracker/routes"
	"github.com/aapokoiv/nutrition-tracker/services"
	"github.com/aapokoiv/nutrition-tracker/utils"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

// bootstrap loads configuration, the logger and the migrated database.
func bootstrap() (*config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log := config.NewLogger(cfg)
	slog.SetDefault(log)

	db, err := config.OpenDB(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := config.Migrate(db); err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func pictureStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (services.PictureStore, error) {
	if cfg.PictureStore != "s3" {
		return services.NewDBPictureStore(db), nil
	}
	client, err := utils.NewS3Client(ctx, cfg.S3Region)
	if err != nil {
		return nil, err
	}
	return services.NewS3PictureStore(client, cfg.S3Bucket), nil
}

func serve(ctx context.Context) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	pictures, err := pictureStore(ctx, cfg, db)
	if err != nil {
		return err
	}

	rdb := cache.Connect(ctx, cfg.RedisAddr, log)
	if rdb != nil {
		defer rdb.Close()
	}

	router := routes.SetupRouter(routes.Deps{
		Cfg:      cfg,
		DB:       db,
		Log:      log,
		Loc:      loc,
		Revoked:  cache.NewRevocations(rdb),
		Pictures: pictures,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.WithCORS(router, cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", server.Addr, "env", cfg.Env, "db", cfg.DBDriver, "pictures", cfg.PictureStore)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
