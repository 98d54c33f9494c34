package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"cricstats/internal/components/chrono"
	"cricstats/internal/components/telemetry"
	"cricstats/internal/config"
	"cricstats/internal/dashboard"
	"cricstats/internal/dashboard/server"
	"cricstats/internal/db"
	"cricstats/internal/store"
	"cricstats/pkg/serviceutil"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file, searched for from the working directory by default.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to load config", err)
	}
	telemetry.InitSlog(cfg.Debug)

	ctx, cancel := serviceutil.SignalContext()
	err = run(ctx, cfg)
	cancel()
	if err != nil {
		serviceutil.Fatal("dashboard stopped", err)
	}
}

// run serves the dashboard until ctx is cancelled, everything it opens is
// closed before it returns.
func run(ctx context.Context, cfg config.Config) error {
	otel, err := telemetry.Setup(ctx, "cricstats-dashboard", cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("set up telemetry: %w", err)
	}
	defer func() {
		err := otel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}()
	if otel.MetricsEnabled() {
		telemetry.InstrumentPerfStats(ctx)
	}

	clock, err := chrono.NewStandardImpl(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	database, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	tel := telemetry.SlogAPI{}
	s, err := store.New(ctx, database, clock, tel)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	srv := server.New(s, server.Options{
		AllowedOrigins: cfg.Dashboard.AllowedOrigins,
		Defaults:       dashboard.DefaultState(cfg.Dashboard.DefaultPlayer1, cfg.Dashboard.DefaultPlayer2),
		Location:       clock.Location(),
	}, tel)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Dashboard.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		if err != nil {
			slog.Warn("failed to shut down gracefully", "err", err)
		}
	}()

	slog.Info("serving dashboard", "addr", httpServer.Addr)
	err = httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
