package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/talgya/mini-kitchen/internal/queue"
)

// maxFrame caps one frame's elapsed time after a stall so walkers do not
// teleport across the floor.
const maxFrame = 250 * time.Millisecond

// Engine drives a Simulation in real time. All mutation happens on the Run
// goroutine: outside callers hand work in through Do.
type Engine struct {
	Sim      *Simulation
	Interval time.Duration // Wall time between frames

	// AutosaveEvery triggers OnAutosave every N ticks; 0 disables it.
	AutosaveEvery uint64

	// Callbacks, invoked on the Run goroutine with the simulation locked.
	OnTick     func(tick uint64)
	OnAutosave func(tick uint64)

	mu    sync.Mutex // Guards Sim and speed
	speed float64    // Multiplier: 1.0 = real-time, 0 = paused

	cmdMu    sync.Mutex
	commands *queue.Queue[command]

	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
}

type command struct {
	name  string
	fn    func(*Simulation) error
	done  chan error
	state *atomic.Int32
}

// Command states. A command runs only if drain claims it before its caller
// gives up.
const (
	cmdPending int32 = iota
	cmdClaimed
	cmdAbandoned
)

// NewEngine creates an engine running sim at hz frames per second.
func NewEngine(sim *Simulation, hz int) *Engine {
	if hz <= 0 {
		hz = 60
	}
	return &Engine{
		Sim:      sim,
		Interval: time.Second / time.Duration(hz),
		speed:    1.0,
		commands: queue.New[command](),
		stop:     make(chan struct{}),
	}
}

// Run starts the frame loop. Blocks until ctx is done or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("simulation engine started", "tick", e.Sim.LastTick, "speed", e.Speed(), "interval", e.Interval)

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation engine stopped", "tick", e.Sim.LastTick, "reason", ctx.Err())
			return
		case <-e.stop:
			slog.Info("simulation engine stopped", "tick", e.Sim.LastTick)
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			e.Step(min(elapsed, maxFrame))
		}
	}
}

// Stop halts the frame loop.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Step applies pending commands and, unless paused, advances the simulation
// by elapsed wall time scaled by the speed multiplier.
func (e *Engine) Step(elapsed time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.drain()
	if e.speed <= 0 {
		return
	}

	e.Sim.Tick(FrameOf(time.Duration(float64(elapsed) * e.speed)))
	tick := e.Sim.LastTick

	if e.OnTick != nil {
		e.OnTick(tick)
	}
	if e.AutosaveEvery > 0 && tick%e.AutosaveEvery == 0 && e.OnAutosave != nil {
		e.OnAutosave(tick)
	}
}

// Do queues fn to run on the frame goroutine before the next frame and waits
// for its result. Commands run even while paused. If ctx ends before the
// command starts, it is dropped and never runs; once started, Do waits for
// it to finish.
func (e *Engine) Do(ctx context.Context, name string, fn func(*Simulation) error) error {
	c := command{name: name, fn: fn, done: make(chan error, 1), state: new(atomic.Int32)}

	e.cmdMu.Lock()
	e.commands.Push(c)
	e.cmdMu.Unlock()

	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		if c.state.CompareAndSwap(cmdPending, cmdAbandoned) {
			return ctx.Err()
		}
		return <-c.done
	}
}

// View runs fn with the simulation locked, for read-only access.
func (e *Engine) View(fn func(*Simulation)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.Sim)
}

// Speed returns the speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed sets the speed multiplier; 0 pauses.
func (e *Engine) SetSpeed(v float64) {
	if v < 0 {
		v = 0
	}
	e.mu.Lock()
	e.speed = v
	e.mu.Unlock()
	slog.Info("speed changed", "speed", v)
}

// drain runs queued commands. Caller holds e.mu.
func (e *Engine) drain() {
	e.cmdMu.Lock()
	var pending []command
	for !e.commands.IsEmpty() {
		c, err := e.commands.Pop()
		if err != nil {
			break
		}
		pending = append(pending, c)
	}
	e.cmdMu.Unlock()

	for _, c := range pending {
		if !c.state.CompareAndSwap(cmdPending, cmdClaimed) {
			slog.Debug("command abandoned by caller", "command", c.name)
			continue
		}
		start := time.Now()
		err := e.apply(c)
		e.Sim.rec.Command(c.name, time.Since(start), err == nil)
		c.done <- err
	}
}

func (e *Engine) apply(c command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %s panicked: %v", c.name, r)
			slog.Error("command panicked", "command", c.name, "panic", r)
		}
	}()
	return c.fn(e.Sim)
}
