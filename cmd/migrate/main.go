package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/kdimtricp/videocatalog/internal/config"
	"github.com/kdimtricp/videocatalog/internal/database"
	"github.com/kdimtricp/videocatalog/internal/logger"
	"github.com/kdimtricp/videocatalog/migrations"
	"github.com/spf13/cobra"
)

type options struct {
	configPath     string
	dbType         string
	host           string
	port           int
	user           string
	password       string
	name           string
	migrationsPath string
}

func main() {
	opts := &options{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply the video catalog database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return up(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file (defaults to $CONFIG_PATH)")
	flags.StringVar(&opts.dbType, "db", "", "database type (postgres or sqlite)")
	flags.StringVar(&opts.host, "host", "", "database host")
	flags.IntVar(&opts.port, "port", 0, "database port")
	flags.StringVar(&opts.user, "user", "", "database user")
	flags.StringVar(&opts.password, "password", "", "database password")
	flags.StringVar(&opts.name, "name", "", "database name")
	flags.StringVar(&opts.migrationsPath, "migrations", "", "directory of *.sql migrations (defaults to the embedded set)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return up(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which migrations have been applied",
			RunE: func(cmd *cobra.Command, args []string) error {
				return status(cmd, opts)
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func up(cmd *cobra.Command, opts *options) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	logr := logger.New(cmd.ErrOrStderr(), logger.Config{Service: "videocatalog-migrate", Env: cfg.Env, Level: cfg.Log.Level})

	fmt.Fprintf(cmd.OutOrStdout(), "Running migrations against %s...\n", cfg.Database.Type)
	if err := db.RunMigrations(opts.source(cfg), logr); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed successfully!")
	return nil
}

func status(cmd *cobra.Command, opts *options) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	logr := logger.New(cmd.ErrOrStderr(), logger.Config{Service: "videocatalog-migrate", Env: cfg.Env, Level: cfg.Log.Level})
	statuses, err := database.NewMigrator(db.Conn(), db.Type(), logr).Status(opts.source(cfg))
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Migration Status:")
	fmt.Fprintln(out, "=================")
	if db.Type() != database.TypePostgres {
		fmt.Fprintln(out, "(sqlite schema is created on startup; migrations are not tracked)")
	}
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Fprintf(out, "%s - %s [%s]\n", s.Version, s.Name, state)
	}
	return nil
}

// load reads the shared service config, then lets explicit flags win.
func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if o.dbType != "" {
		cfg.Database.Type = o.dbType
	}
	if o.host != "" {
		cfg.Database.Host = o.host
	}
	if o.port != 0 {
		cfg.Database.Port = o.port
	}
	if o.user != "" {
		cfg.Database.User = o.user
	}
	if o.password != "" {
		cfg.Database.Password = o.password
	}
	if o.name != "" {
		cfg.Database.Name = o.name
	}
	if o.migrationsPath != "" {
		cfg.MigrationsPath = o.migrationsPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *options) source(cfg *config.Config) fs.FS {
	if cfg.MigrationsPath != "" {
		return os.DirFS(cfg.MigrationsPath)
	}
	return migrations.FS
}
