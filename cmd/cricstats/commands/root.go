package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cricstats/internal/components/chrono"
	"cricstats/internal/components/telemetry"
	"cricstats/internal/config"
	"cricstats/internal/db"
	"cricstats/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dbPath     string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "cricstats",
	Short: "cricstats scrapes batting innings into a local database and inspects them.",
	// errors are printed once by ExecuteContext, after the command's
	// deferred cleanup has run
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file, searched for from the working directory by default.")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "The sqlite database to use, overrides the config.")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug reports.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every command runs with.
type env struct {
	cfg   config.Config
	time  chrono.API
	tel   telemetry.API
	db    *sqlx.DB
	store *store.Store
	otel  telemetry.Telemetry
}

func (e env) Close() {
	e.db.Close()
	err := e.otel.Shutdown(context.Background())
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
}

func setup(ctx context.Context) (env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return env{}, err
	}
	if dbPath != "" {
		cfg.Database = config.Database{File: dbPath}
	}
	telemetry.InitSlog(debug || cfg.Debug)

	clock, err := chrono.NewStandardImpl(cfg.Timezone)
	if err != nil {
		return env{}, fmt.Errorf("load timezone: %w", err)
	}

	otel, err := telemetry.Setup(ctx, "cricstats", cfg.Telemetry)
	if err != nil {
		return env{}, fmt.Errorf("set up telemetry: %w", err)
	}

	database, err := db.Open(cfg.Database)
	if err != nil {
		otel.Shutdown(ctx)
		return env{}, fmt.Errorf("open database: %w", err)
	}

	tel := telemetry.SlogAPI{}
	s, err := store.New(ctx, database, clock, tel)
	if err != nil {
		database.Close()
		otel.Shutdown(ctx)
		return env{}, err
	}

	return env{
		cfg:   cfg,
		time:  clock,
		tel:   tel,
		db:    database,
		store: s,
		otel:  otel,
	}, nil
}
