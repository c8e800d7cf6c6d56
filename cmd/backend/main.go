package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	configloader "github.com/warlocks1507/checkin/external/config"
	"github.com/warlocks1507/checkin/external/httpserver"
	repositoryimpl "github.com/warlocks1507/checkin/external/repository"
	webhookimpl "github.com/warlocks1507/checkin/external/webhook"
	"github.com/warlocks1507/checkin/internal/access"
	"github.com/warlocks1507/checkin/internal/config"
	"github.com/warlocks1507/checkin/internal/correction"
	"github.com/warlocks1507/checkin/internal/meetingday"
	"github.com/warlocks1507/checkin/internal/report"
	"github.com/warlocks1507/checkin/internal/roster"
	"github.com/warlocks1507/checkin/internal/session"
	"github.com/warlocks1507/checkin/internal/taskboard"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "checkin",
		Short:         "Team attendance and task tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the database schema and exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate()
			},
		},
		&cobra.Command{
			Use:   "seed-students [file.csv]",
			Short: "Import students from a CSV of full_name,subteam rows",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSeed(cmd.Context(), args[0])
			},
		},
	)
	return root
}

func bootstrap() (*config.Config, do.Injector, error) {
	slog.Info("startup: loading configuration")
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		return nil, nil, err
	}
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "team_timezone", cfg.TeamTimezone)

	slog.Info("startup: building dependency graph")
	return cfg, setupDI(cfg), nil
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	meetingday.RegisterDI(injector)
	access.RegisterDI(injector)
	repositoryimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	session.RegisterDI(injector)
	roster.RegisterDI(injector)
	taskboard.RegisterDI(injector)
	report.RegisterDI(injector)
	correction.RegisterDI(injector)
	httpserver.RegisterDI(injector)

	return injector
}

func closePool(injector do.Injector) {
	if p, err := do.Invoke[*pgxpool.Pool](injector); err == nil {
		p.Close()
	}
}

func runServe(ctx context.Context) error {
	_, injector, err := bootstrap()
	if err != nil {
		return err
	}
	defer closePool(injector)

	srv, err := do.Invoke[*httpserver.Server](injector)
	if err != nil {
		slog.Error("failed to resolve http server", "error", err)
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			return err
		}
		return nil
	case <-sigCtx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", "error", err)
		return err
	}
	return nil
}

func runMigrate() error {
	_, injector, err := bootstrap()
	if err != nil {
		return err
	}
	defer closePool(injector)

	// Resolving the pool applies the schema.
	if _, err := do.Invoke[*pgxpool.Pool](injector); err != nil {
		slog.Error("migration failed", "error", err)
		return err
	}
	slog.Info("migration complete")
	return nil
}

func runSeed(ctx context.Context, path string) error {
	_, injector, err := bootstrap()
	if err != nil {
		return err
	}
	defer closePool(injector)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open roster file: %w", err)
	}
	defer f.Close()

	rows, err := readRoster(f)
	if err != nil {
		slog.Error("failed to read roster file", "error", err, "path", path)
		return err
	}
	svc, err := do.Invoke[*roster.Service](injector)
	if err != nil {
		slog.Error("failed to resolve roster service", "error", err)
		return err
	}
	n, err := seedRoster(ctx, svc, rows)
	if err != nil {
		slog.Error("seed aborted", "error", err, "imported", n)
		return err
	}
	slog.Info("seed complete", "imported", n)
	return nil
}
