package world

import (
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Traffic paces customer arrivals with a slow simplex wave so the floor sees
// quiet spells and rushes instead of a metronome.
type Traffic struct {
	noise  opensimplex.Noise
	Period time.Duration // Rough length of one rush cycle
}

// NewTraffic creates a traffic model for the given seed.
func NewTraffic(seed int64) *Traffic {
	return &Traffic{
		noise:  opensimplex.NewNormalized(seed + 7),
		Period: 2 * time.Minute,
	}
}

// Intensity returns the arrival-rate multiplier at sim time at, in [0.5, 1.5).
func (t *Traffic) Intensity(at time.Duration) float64 {
	if t == nil || t.Period <= 0 {
		return 1
	}
	phase := at.Seconds() / t.Period.Seconds()
	return 0.5 + t.noise.Eval2(phase, 0)
}

// Delay scales base by the inverse of the current intensity.
func (t *Traffic) Delay(base, at time.Duration) time.Duration {
	return time.Duration(float64(base) / t.Intensity(at))
}
