package engine

import "time"

// FrameDuration is the reference frame. A Frame with Delta 1 lasts this long.
const FrameDuration = time.Second / 60

// Frame is one tick's worth of elapsed time.
type Frame struct {
	Delta   float64       // Elapsed time in reference frames; scales movement
	Elapsed time.Duration // Elapsed simulated time; drives dwell timers
}

// FrameOf builds the frame for elapsed simulated time.
func FrameOf(elapsed time.Duration) Frame {
	return Frame{
		Delta:   float64(elapsed) / float64(FrameDuration),
		Elapsed: elapsed,
	}
}
