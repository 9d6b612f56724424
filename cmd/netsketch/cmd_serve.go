package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"netsketch/internal/config"
	"netsketch/internal/handler"
	"netsketch/internal/hub"
	"netsketch/internal/logging"
	"netsketch/internal/metrics"
	"netsketch/internal/repository/sqlite"
	"netsketch/internal/service"
	"netsketch/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var (
		addr   string
		dbPath string
		watch  string
		tick   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the editor API server",
		Long: `Start the HTTP API, the SSE event stream and the simulation ticker.

With --watch, the topology file is loaded at startup and reloaded whenever
it changes on disk. --db "" disables the snapshot library.

  netsketch serve --addr :3000 --watch ./lab.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch.Path = watch
			}
			if cmd.Flags().Changed("tick") {
				cfg.Simulation.Tick = config.Duration(tick)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "HTTP listen address")
	cmd.Flags().StringVar(&dbPath, "db", config.DefaultDatabasePath, "SQLite snapshot database path")
	cmd.Flags().StringVar(&watch, "watch", "", "topology file to load and reload on change")
	cmd.Flags().DurationVar(&tick, "tick", config.DefaultTick, "simulation tick interval")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logging.WithOperation("serve")
	log.Info("starting netsketch")
	log.Debug(cfg.Summary())

	collector, err := metrics.NewEditorCollector(nil)
	if err != nil {
		return err
	}

	bus := service.NewEventBus()
	opts := []service.Option{service.WithMetrics(collector)}

	if cfg.Database.Path != "" {
		repo, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer repo.Close()
		opts = append(opts, service.WithRepository(repo))
		log.WithField("path", cfg.Database.Path).Info("snapshot library opened")
	}

	svc := service.NewEditorService(bus, opts...)

	sseHub := hub.New()
	go sseHub.Run(ctx)
	go sseHub.Forward(ctx, bus)
	go svc.RunSimulation(ctx, cfg.Simulation.Tick.Duration())

	if path := cfg.Watch.Path; path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := svc.LoadFile(path); err != nil {
				log.WithError(err).Warn("initial load failed, starting empty")
			}
		}
		w := watcher.New(path, svc.LoadFile).WithDebounce(cfg.Watch.Debounce.Duration())
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("file watcher stopped")
			}
		}()
	}

	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     handler.NewServerHandler(handler.NewEditorHandler(svc), sseHub, collector),
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: SSE responses stay open
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown error")
	}

	log.Info("server stopped")
	return nil
}
