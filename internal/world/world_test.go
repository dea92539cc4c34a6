package world

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntity_CenterAndDockingPoints(t *testing.T) {
	e := NewEntity(10, 20, 8, 4)

	assert.Equal(t, Point{X: 14, Y: 22}, e.Center())
	assert.Equal(t, Point{X: 14, Y: 20}, e.DockingPoint(DockTop))
	assert.Equal(t, Point{X: 14, Y: 24}, e.DockingPoint(DockBottom))
	assert.Equal(t, Point{X: 10, Y: 22}, e.DockingPoint(DockLeft))
	assert.Equal(t, Point{X: 18, Y: 22}, e.DockingPoint(DockRight))

	assert.True(t, e.Contains(Point{X: 12, Y: 21}))
	assert.False(t, e.Contains(Point{X: 19, Y: 21}))
}

func TestPoint_Dist(t *testing.T) {
	assert.InDelta(t, 5.0, Point{}.Dist(Point{X: 3, Y: 4}), 1e-9)
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 42

	a := Generate(cfg)
	b := Generate(cfg)
	assert.Equal(t, a, b)
}

func TestGenerate_Counts(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 3
	cfg.Stations = 8

	l := Generate(cfg)
	require.Len(t, l.Stations, 8)
	assert.Len(t, l.DeliveryTables, cfg.DeliveryTables)
	assert.Len(t, l.WaitingAreas, cfg.WaitingAreas)
	assert.Len(t, l.SpawnPoints, 3)
	assert.Equal(t, GrowBottom, l.Stations[0].Grow)
	assert.Equal(t, GrowRight, l.Stations[7].Grow)

	// Front-of-house furniture stays on screen despite jitter.
	for _, p := range append(l.DeliveryTables, l.WaitingAreas...) {
		assert.GreaterOrEqual(t, p.X, 0.0)
		assert.LessOrEqual(t, p.X, l.Width)
	}
	assert.InDelta(t, l.Width*0.08, l.StationSize, 1e-9)
}

func TestTraffic_IntensityBounds(t *testing.T) {
	tr := NewTraffic(1)
	for s := 0; s < 600; s += 7 {
		at := time.Duration(s) * time.Second
		v := tr.Intensity(at)
		assert.GreaterOrEqual(t, v, 0.5)
		assert.Less(t, v, 1.5)
		assert.Greater(t, tr.Delay(time.Second, at), time.Duration(0))
	}

	var none *Traffic
	assert.Equal(t, 1.0, none.Intensity(time.Minute))
}
