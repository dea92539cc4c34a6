package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/talgya/mini-kitchen/internal/api"
	"github.com/talgya/mini-kitchen/internal/config"
	"github.com/talgya/mini-kitchen/internal/engine"
	"github.com/talgya/mini-kitchen/internal/metrics"
	"github.com/talgya/mini-kitchen/internal/persistence"
)

// NewRunCommand creates the command that runs the simulation.
func NewRunCommand() *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, fresh)
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "Ignore any saved state and start a new run")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, fresh bool) error {
	slog.Info("kitchen simulation starting", "stage", cfg.Sim.Stage, "tick_rate_hz", cfg.Sim.TickRateHz)

	cat, err := config.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	// ── Metrics ───────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector()
	if err := collector.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := persistence.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Database.Path)

	// ── Load or create the restaurant ────────────────────────────────
	opts := cfg.SimOptions(cat)
	opts.Recorder = collector

	var sim *engine.Simulation
	save, found, err := db.LoadState()
	if err != nil {
		return err
	}
	if found && !fresh {
		slog.Info("found saved state, restoring...")
		sim, err = engine.Restore(opts, save)
	} else {
		slog.Info("no saved state used, opening a new restaurant...")
		sim, err = engine.NewSimulation(opts)
	}
	if err != nil {
		return err
	}

	// ── Events: stream live, persist on save ─────────────────────────
	var journal *persistence.Journal
	if cfg.Database.JournalDir != "" {
		journal = persistence.NewJournal(cfg.Database.JournalDir, "events")
		defer journal.Close()
	}
	hub := api.NewHub()

	// pending is only touched with the simulation locked.
	var pending []engine.Event
	sim.OnEvent = func(e engine.Event) {
		pending = append(pending, e)
		hub.Publish(e)
	}
	persist := func(s *engine.Simulation) {
		if err := db.SaveState(s.Snapshot()); err != nil {
			slog.Error("save failed", "error", err)
			return
		}
		if len(pending) == 0 {
			return
		}
		if err := db.SaveEvents(s.RunID, pending); err != nil {
			slog.Error("event save failed", "error", err, "events", len(pending))
			return
		}
		if journal != nil {
			if err := journal.Append(s.RunID.String(), pending); err != nil {
				slog.Error("journal append failed", "error", err)
			}
		}
		pending = pending[:0]
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine(sim, cfg.Sim.TickRateHz)
	eng.AutosaveEvery = cfg.Sim.AutosaveEvery
	eng.OnAutosave = func(tick uint64) {
		persist(sim)
		slog.Debug("autosaved", "tick", tick)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	var apiServer *api.Server
	if cfg.API.Enabled {
		if cfg.API.AdminKey == "" {
			slog.Warn("KITCHEN_API_ADMIN_KEY not set, admin POST endpoints will be disabled")
		}
		apiServer = &api.Server{
			Eng:       eng,
			DB:        db,
			Hub:       hub,
			Gatherer:  reg,
			Port:      cfg.API.Port,
			AdminKey:  cfg.API.AdminKey,
			RateLimit: cfg.API.RateLimit,
			Burst:     cfg.API.Burst,
		}
		apiServer.Start()
	}

	// ── Start ─────────────────────────────────────────────────────────
	fmt.Printf("\nKitchen is open: stage %s, %d cooks, %d waiters, %d customers, %s coins.\n",
		sim.Stage, sim.BackWorkers, sim.FrontWorkers, sim.Customers, sim.Ledger.String())
	if apiServer != nil {
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	}
	if sim.LastTick > 0 {
		fmt.Printf("Resuming run %s from tick %d\n", sim.RunID, sim.LastTick)
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	if apiServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("API shutdown", "error", err)
		}
		cancel()
	}

	// Final save on shutdown.
	slog.Info("final save...")
	eng.View(persist)
	fmt.Println("Simulation stopped. Progress saved.")
	return nil
}
