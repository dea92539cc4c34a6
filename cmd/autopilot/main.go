// Command autopilot plays the restaurant through the admin API: it observes
// the floor, picks the purchase that best relieves the current bottleneck
// and buys it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/mini-kitchen/internal/autopilot"
	"github.com/talgya/mini-kitchen/internal/config"
)

func main() {
	cfg, err := config.Load(os.Getenv("KITCHEN_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// The admin key and port come from the shared config; the rest from
	// the environment.
	apiURL := envOrDefault("AUTOPILOT_API_URL", fmt.Sprintf("http://localhost:%d", cfg.API.Port))
	intervalSec := envIntOrDefault("AUTOPILOT_INTERVAL", 30)
	memoryPath := envOrDefault("AUTOPILOT_MEMORY", "data/autopilot_memory.json")
	policy := autopilot.DefaultPolicy()
	if v, err := strconv.ParseFloat(os.Getenv("AUTOPILOT_SPEND_FRACTION"), 64); err == nil && v > 0 && v <= 1 {
		policy.SpendFraction = v
	}

	if cfg.API.AdminKey == "" {
		slog.Error("KITCHEN_API_ADMIN_KEY is required")
		os.Exit(1)
	}

	interval := time.Duration(intervalSec) * time.Second
	slog.Info("kitchen autopilot starting",
		"api_url", apiURL,
		"interval", interval,
		"spend_fraction", policy.SpendFraction,
	)

	pilot := &autopilot.Pilot{
		Observer: autopilot.NewObserver(apiURL),
		Actor:    autopilot.NewActor(apiURL, cfg.API.AdminKey),
		Memory:   autopilot.LoadMemory(memoryPath),
		Policy:   policy,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The simulation may still be starting up.
	slog.Info("waiting for kitchen API...")
	if err := pilot.WaitReady(ctx); err != nil {
		slog.Info("stopped before the API came up", "error", err)
		return
	}

	pilot.Run(ctx, interval)
	fmt.Println("Autopilot stopped.")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
