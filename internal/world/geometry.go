// Package world provides the 2D screen geometry shared by every entity:
// points, sized entities, docking points, and the generated floor layout.
package world

import (
	"fmt"
	"math"
)

// Point is a position in screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p offset by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Dist returns the straight-line distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.1f, %.1f)", p.X, p.Y)
}

// DockSide names one of the four docking points on an entity's boundary.
type DockSide uint8

const (
	DockTop DockSide = iota
	DockBottom
	DockLeft
	DockRight
)

// String returns the side name.
func (d DockSide) String() string {
	switch d {
	case DockTop:
		return "top"
	case DockBottom:
		return "bottom"
	case DockLeft:
		return "left"
	case DockRight:
		return "right"
	default:
		return "unknown"
	}
}

// Entity is anything with a position and a size. Pos is the top-left corner
// for rectangular things; movable agents treat it as their own location.
type Entity struct {
	Pos Point   `json:"pos"`
	W   float64 `json:"w"`
	H   float64 `json:"h"`
}

// NewEntity creates an entity at (x, y) with the given size.
func NewEntity(x, y, w, h float64) Entity {
	return Entity{Pos: Point{X: x, Y: y}, W: w, H: h}
}

// Center returns position + half size.
func (e Entity) Center() Point {
	return e.Pos.Add(e.W/2, e.H/2)
}

// DockingPoint returns the midpoint of the given side.
func (e Entity) DockingPoint(side DockSide) Point {
	switch side {
	case DockTop:
		return e.Pos.Add(e.W/2, 0)
	case DockBottom:
		return e.Pos.Add(e.W/2, e.H)
	case DockLeft:
		return e.Pos.Add(0, e.H/2)
	case DockRight:
		return e.Pos.Add(e.W, e.H/2)
	default:
		return e.Center()
	}
}

// Contains reports whether p lies inside the entity's bounds.
func (e Entity) Contains(p Point) bool {
	return p.X >= e.Pos.X && p.X <= e.Pos.X+e.W &&
		p.Y >= e.Pos.Y && p.Y <= e.Pos.Y+e.H
}
