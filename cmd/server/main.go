package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"edu-dashboard-api/internal/auth"
	"edu-dashboard-api/internal/cache"
	"edu-dashboard-api/internal/clock"
	"edu-dashboard-api/internal/config"
	"edu-dashboard-api/internal/database"
	"edu-dashboard-api/internal/logging"
	"edu-dashboard-api/internal/metrics"
	"edu-dashboard-api/internal/query"
	"edu-dashboard-api/internal/routes"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath  string
		addr     string
		dbPath   string
		logLevel string
	)
	cmd := &cobra.Command{
		Use:          "edu-server",
		Short:        "Education dashboard API and live dashboard server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if dbPath != "" {
				cfg.Database.Path = dbPath
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}

			log, closer, err := logging.Open(cfg.Log)
			if err != nil {
				return fmt.Errorf("open log: %w", err)
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, log)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides database.path)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides log.level)")
	return cmd
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	auth.Configure(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)
	if err := database.InitDB(cfg.Database.Path, logging.Component(log, "database")); err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	m := metrics.New(reg)
	store := cache.NewStore[any](cache.WithMetrics(m))
	queries := query.NewClient(store,
		query.WithContext(ctx),
		query.WithLogger(logging.Component(log, "query")),
		query.WithMetrics(m),
		query.WithCommitPolicy(cfg.Query.Policy()),
		query.WithDefaultOptions(cfg.Query.Options()...),
	)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: routes.SetupRoutes(routes.Deps{
			Queries:  queries,
			Gatherer: reg,
			Logger:   logging.Component(log, "http"),
		}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		janitor := cache.StartJanitor(store, clock.Real(), cfg.Query.SweepInterval, logging.Component(log, "janitor"))
		<-gctx.Done()
		janitor.Stop()
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Str("commit_policy", cfg.Query.Policy().String()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
