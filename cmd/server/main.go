package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/kdimtricp/videocatalog/internal/api"
	"github.com/kdimtricp/videocatalog/internal/catalog"
	"github.com/kdimtricp/videocatalog/internal/config"
	"github.com/kdimtricp/videocatalog/internal/database"
	"github.com/kdimtricp/videocatalog/internal/logger"
	"github.com/kdimtricp/videocatalog/internal/metrics"
	"github.com/kdimtricp/videocatalog/internal/storage"
	"github.com/kdimtricp/videocatalog/migrations"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Run the video catalog HTTP server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (defaults to $CONFIG_PATH)")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logr := logger.New(os.Stdout, logger.Config{
		Service: "videocatalog",
		Version: version,
		Env:     cfg.Env,
		Level:   cfg.Log.Level,
	})
	helper := log.NewHelper(log.With(logr, "component", "main"))

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(migrationSource(cfg.MigrationsPath), logr); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	service := catalog.NewService(
		database.NewVideoRepository(db),
		database.NewEngagementRepository(db),
		storage.NewPlaceholderSource(),
		logr,
	)
	app := api.NewApp(service, metrics.New(), logr)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: api.NewRouter(app),
	}

	helper.Infof("server starting on port %s", cfg.Server.Port)
	helper.Infof("database type: %s", db.Type())
	if db.Type() == database.TypePostgres {
		helper.Infof("database connection: %s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	} else {
		helper.Infof("database path: %s", cfg.Database.SQLitePath)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	helper.Infof("shutting down, waiting up to %s for in-flight requests", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	helper.Info("server stopped")
	return nil
}

// migrationSource prefers an on-disk directory when one is configured, falling back to the
// migrations compiled into the binary.
func migrationSource(path string) fs.FS {
	if path != "" {
		return os.DirFS(path)
	}
	return migrations.FS
}
