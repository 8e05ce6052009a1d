package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"edu-dashboard-api/internal/apiclient"
	"edu-dashboard-api/internal/cache"
	"edu-dashboard-api/internal/clock"
	"edu-dashboard-api/internal/config"
	"edu-dashboard-api/internal/dashboard"
	"edu-dashboard-api/internal/focus"
	"edu-dashboard-api/internal/logging"
	"edu-dashboard-api/internal/query"
	"edu-dashboard-api/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath  string
		apiURL   string
		username string
		password string
	)
	cmd := &cobra.Command{
		Use:          "edu-dashboard",
		Short:        "Terminal dashboard for the education platform",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if apiURL != "" {
				cfg.Dashboard.APIURL = apiURL
			}
			if username != "" {
				cfg.Dashboard.Username = username
			}
			if password != "" {
				cfg.Dashboard.Password = password
			}
			if cfg.Dashboard.Username == "" {
				return fmt.Errorf("%w: dashboard.username is required", config.ErrInvalidConfig)
			}

			// the terminal is owned by the UI; logs only go to a file
			log := zerolog.Nop()
			if cfg.Log.File != "" {
				l, closer, err := logging.Open(cfg.Log)
				if err != nil {
					return err
				}
				defer closer.Close()
				log = l
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, cfg, log)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&apiURL, "api", "", "API base URL (overrides dashboard.api_url)")
	cmd.Flags().StringVarP(&username, "user", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return cmd
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	api, err := apiclient.New(cfg.Dashboard.APIURL, nil)
	if err != nil {
		return err
	}
	if err := api.Login(ctx, cfg.Dashboard.Username, cfg.Dashboard.Password); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	emitter := focus.NewEmitter()
	store := cache.NewStore[any]()
	queries := query.NewClient(store,
		query.WithContext(ctx),
		query.WithFocusSource(emitter),
		query.WithLogger(logging.Component(log, "query")),
		query.WithCommitPolicy(cfg.Query.Policy()),
		query.WithDefaultOptions(cfg.Query.Options()...),
	)
	janitor := cache.StartJanitor(store, clock.Real(), cfg.Query.SweepInterval, logging.Component(log, "janitor"))
	defer janitor.Stop()

	updates := tui.NewUpdates()
	defer updates.Close()
	board, err := dashboard.NewBoard(queries, tui.Widgets(api, cfg.Query.RefetchInterval), updates.Push)
	if err != nil {
		return err
	}
	defer board.Close()

	p := tea.NewProgram(tui.New(board, emitter, updates),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	)
	_, err = p.Run()
	return err
}
