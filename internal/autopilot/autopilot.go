package autopilot

import (
	"context"
	"log/slog"
	"time"
)

// stallCycles is how many idle cycles in a row get a warning.
const stallCycles = 10

// Pilot runs observe, decide and act cycles.
type Pilot struct {
	Observer *Observer
	Actor    *Actor
	Memory   *CycleMemory
	Policy   Policy
}

// Cycle executes one observe → decide → act cycle.
func (p *Pilot) Cycle(ctx context.Context) (Decision, error) {
	snap, err := p.Observer.Observe(ctx)
	if err != nil {
		return Decision{}, err
	}
	health := Triage(snap)
	decision := Decide(snap, health, p.Policy)

	slog.Info("autopilot decision",
		"tick", snap.Status.Tick,
		"coins", snap.Status.Coins.String(),
		"bottleneck", health.Bottleneck,
		"action", decision.Action,
		"rationale", decision.Rationale,
	)

	rec := CycleRecord{
		Tick:       snap.Status.Tick,
		Coins:      snap.Status.Coins.String(),
		Bottleneck: health.Bottleneck,
		Action:     decision.Action,
		Rationale:  decision.Rationale,
	}

	if decision.Action != ActionNone {
		res, err := p.Actor.Act(ctx, decision)
		if err != nil {
			return decision, err
		}
		rec.Done = res.Done
		if !res.Done {
			slog.Info("purchase declined", "action", decision.Action, "status", res.Status)
		}
	}

	if p.Memory != nil {
		p.Memory.Record(rec)
		p.Memory.Save()
		if p.Memory.Stalled(stallCycles) {
			slog.Warn("autopilot idle", "cycles", stallCycles, "bottleneck", health.Bottleneck)
		}
	}
	return decision, nil
}

// Run cycles every interval until ctx is done. A failed cycle is logged
// and retried on the next tick.
func (p *Pilot) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.Cycle(ctx); err != nil && ctx.Err() == nil {
			slog.Error("autopilot cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// WaitReady polls the API with exponential backoff until it responds or
// ctx is done.
func (p *Pilot) WaitReady(ctx context.Context) error {
	backoff := 500 * time.Millisecond
	const maxBackoff = 15 * time.Second

	for {
		if p.Observer.Ready(ctx) {
			slog.Info("kitchen API is ready")
			return nil
		}
		slog.Info("kitchen API not ready, retrying...", "backoff", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
