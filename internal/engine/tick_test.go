package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-kitchen/internal/economy"
)

func startEngine(t *testing.T, s *Simulation) *Engine {
	t.Helper()
	e := NewEngine(s, 200)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return e
}

func TestEngine_DoRunsCommand(t *testing.T) {
	s := newSim(t, func(o *Options) { o.StartingCoins = economy.FromFloat(10) })
	e := startEngine(t, s)

	err := e.Do(context.Background(), "upgrade", func(s *Simulation) error {
		_, err := s.UpgradeStation(0)
		return err
	})
	require.NoError(t, err)

	e.View(func(s *Simulation) {
		assert.Equal(t, 1, s.Stations[0].Level)
	})
}

func TestEngine_CommandsRunWhilePaused(t *testing.T) {
	s := newSim(t, nil)
	e := startEngine(t, s)
	e.SetSpeed(0)

	var tick uint64
	err := e.Do(context.Background(), "peek", func(s *Simulation) error {
		tick = s.LastTick
		return nil
	})
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	e.View(func(s *Simulation) {
		assert.Equal(t, tick, s.LastTick, "paused engine does not tick")
	})
}

func TestEngine_CommandErrorsAndPanics(t *testing.T) {
	s := newSim(t, nil)
	e := startEngine(t, s)
	boom := errors.New("boom")

	err := e.Do(context.Background(), "fail", func(*Simulation) error { return boom })
	assert.ErrorIs(t, err, boom)

	err = e.Do(context.Background(), "panic", func(*Simulation) error { panic("bad") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestEngine_DoHonorsContext(t *testing.T) {
	e := NewEngine(newSim(t, nil), 60)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := e.Do(ctx, "never", func(*Simulation) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEngine_StepScalesBySpeed(t *testing.T) {
	s := newSim(t, nil)
	e := NewEngine(s, 60)
	e.SetSpeed(2)

	e.Step(100 * time.Millisecond)

	assert.Equal(t, 200*time.Millisecond, s.Now())
	assert.Equal(t, uint64(1), s.LastTick)
}

func TestEngine_Autosave(t *testing.T) {
	s := newSim(t, nil)
	e := NewEngine(s, 60)
	e.AutosaveEvery = 3
	var saves, ticks int
	e.OnAutosave = func(uint64) { saves++ }
	e.OnTick = func(uint64) { ticks++ }

	for range 6 {
		e.Step(testFrame)
	}

	assert.Equal(t, 6, ticks)
	assert.Equal(t, 2, saves)
}

func TestEngine_Stop(t *testing.T) {
	e := NewEngine(newSim(t, nil), 200)
	done := make(chan struct{})
	go func() {
		e.Run(context.Background())
		close(done)
	}()
	require.Eventually(t, e.Running, time.Second, 5*time.Millisecond)

	e.Stop()
	e.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
	assert.False(t, e.Running())
}

func TestEngine_AbandonedCommandNeverRuns(t *testing.T) {
	s := newSim(t, func(o *Options) { o.StartingCoins = economy.FromFloat(10) })
	e := NewEngine(s, 60)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ran := false
	err := e.Do(ctx, "upgrade", func(s *Simulation) error {
		ran = true
		_, err := s.UpgradeStation(0)
		return err
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	e.Step(testFrame)

	assert.False(t, ran)
	assert.Equal(t, 0, s.Stations[0].Level)
	assert.Equal(t, 10.0, s.Ledger.Balance().Float64())
}
