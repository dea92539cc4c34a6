// Floor-plan generation. Stations sit in a row across the kitchen, tables
// along the pass, waiting areas along the front. A low-amplitude simplex
// field nudges the front-of-house furniture so floors differ by seed.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds layout generation parameters.
type GenConfig struct {
	Width          float64 // Screen width (9:16 portrait by default)
	Height         float64 // Screen height
	Seed           int64   // Random seed (0 = random)
	Stations       int     // Number of back-of-house stations
	DeliveryTables int     // Number of pass tables
	WaitingAreas   int     // Number of customer waiting areas
	Jitter         float64 // Max furniture displacement as a fraction of station size
}

// DefaultGenConfig returns the standard portrait floor.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:          360,
		Height:         640,
		Seed:           0,
		Stations:       4,
		DeliveryTables: 2,
		WaitingAreas:   3,
		Jitter:         0.25,
	}
}

// Generate lays out a floor plan.
func Generate(cfg GenConfig) *Layout {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	noise := opensimplex.NewNormalized(seed)

	l := &Layout{
		Width:  cfg.Width,
		Height: cfg.Height,
	}
	l.StationSize = l.X(8)
	size := l.StationSize

	// Kitchen row: stations grow their slots downward. Whatever does not fit
	// in the row stacks down the left wall and grows to the right.
	perRow := int(l.X(90) / (size * 2))
	if perRow < 1 {
		perRow = 1
	}
	for i := 0; i < cfg.Stations; i++ {
		if i < perRow {
			l.Stations = append(l.Stations, StationSite{
				Pos:  Point{X: l.X(5) + float64(i)*size*2, Y: l.Y(6)},
				Grow: GrowBottom,
			})
			continue
		}
		row := i - perRow
		l.Stations = append(l.Stations, StationSite{
			Pos:  Point{X: l.X(5), Y: l.Y(32) + float64(row)*size*1.5},
			Grow: GrowRight,
		})
	}

	l.DeliveryTables = spread(cfg.DeliveryTables, l.Y(45), l, noise, 0, cfg.Jitter)
	l.WaitingAreas = spread(cfg.WaitingAreas, l.Y(75), l, noise, 10, cfg.Jitter)

	l.SpawnPoints = []Point{
		{X: -100, Y: 20},
		{X: l.Width / 2, Y: -100},
		{X: l.Width + 100, Y: 100},
	}
	l.Exit = Point{X: l.Width + 100, Y: 50}

	l.BackHome = Point{X: l.X(50), Y: l.Y(38)}
	l.FrontHome = Point{X: l.X(50), Y: l.Y(58)}

	return l
}

// spread places n items evenly across the width at height y, each displaced
// by the simplex field sampled at its slot.
func spread(n int, y float64, l *Layout, noise opensimplex.Noise, row float64, jitter float64) []Point {
	if n <= 0 {
		return nil
	}
	size := l.StationSize
	step := l.Width / float64(n+1)
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		fx := float64(i) * 0.9
		dx := (noise.Eval2(fx, row) - 0.5) * 2 * jitter * size
		dy := (noise.Eval2(fx, row+5) - 0.5) * 2 * jitter * size
		pts = append(pts, Point{
			X: step*float64(i+1) - size/2 + dx,
			Y: y + dy,
		})
	}
	return pts
}
