package agents

import (
	"math"

	"github.com/talgya/mini-kitchen/internal/world"
)

// MoveTo steps the worker toward target by at most speed and reports whether
// it has arrived. Each axis is clamped onto the target coordinate when the
// step would overshoot, so the worker never passes its destination regardless
// of how large a tick's speed is.
func (w *Worker) MoveTo(target world.Point, speed float64) bool {
	dx := target.X - w.Pos.X
	dy := target.Y - w.Pos.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return true
	}
	if speed <= 0 {
		return false
	}
	if dist <= speed {
		w.setPos(target)
		return true
	}

	moveX := dx / dist * speed
	moveY := dy / dist * speed

	next := w.Pos
	if math.Abs(moveX) >= math.Abs(dx) {
		next.X = target.X
	} else {
		next.X += moveX
	}
	if math.Abs(moveY) >= math.Abs(dy) {
		next.Y = target.Y
	} else {
		next.Y += moveY
	}
	w.setPos(next)

	return next == target
}

// setPos moves the worker and anything it carries.
func (w *Worker) setPos(p world.Point) {
	w.Pos = p
	if w.Hold != nil {
		w.Hold.SetPos(p)
	}
}
