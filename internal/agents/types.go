// Package agents provides the movable entities of the floor: kitchen staff,
// waiters, customers, and the products they carry.
package agents

import (
	"errors"

	"github.com/talgya/mini-kitchen/internal/world"
)

// Invariant violations. These indicate a bug in the caller, not contention.
var (
	ErrAlreadyHolding  = errors.New("take product called while already holding one")
	ErrNothingHeld     = errors.New("leave product called but no product held")
	ErrTypeMismatch    = errors.New("receive called with type mismatch")
	ErrOrderFilled     = errors.New("receive called but quantity needed is zero")
	ErrNoProductChosen = errors.New("product type not chosen yet but making order")
)

// WorkerID is a unique, monotonically issued identifier.
type WorkerID uint64

// Role says which idle pool a worker returns to.
type Role uint8

const (
	RoleBack     Role = iota // Kitchen staff
	RoleFront                // Waiters
	RoleCustomer             // Customers
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleBack:
		return "back"
	case RoleFront:
		return "front"
	case RoleCustomer:
		return "customer"
	default:
		return "unknown"
	}
}

// ProductSize is the side length of a product token.
const ProductSize = 6.0

// Product is a transient item made by a station. It is owned by exactly one
// of: the worker holding it, a station's holding table, or a pending timer.
type Product struct {
	world.Entity
	Category int     `json:"category"`
	Color    string  `json:"color"`
	Price    float64 `json:"price"`
}

// NewProduct creates a product at the origin.
func NewProduct(category int, color string, price float64) *Product {
	return &Product{
		Entity:   world.NewEntity(0, 0, ProductSize, ProductSize),
		Category: category,
		Color:    color,
		Price:    price,
	}
}

// SetPos moves the product.
func (p *Product) SetPos(pt world.Point) {
	p.Pos = pt
}

// Worker is an agent that travels the floor and carries at most one product.
type Worker struct {
	world.Entity
	ID    WorkerID `json:"id"`
	Role  Role     `json:"role"`
	Color string   `json:"color"`

	Hold     *Product `json:"hold,omitempty"`
	Progress float64  `json:"progress"` // Work progress indicator, 0.0–1.0
}

// NewWorker creates a worker at (x, y).
func NewWorker(id WorkerID, role Role, x, y, size float64, color string) *Worker {
	return &Worker{
		Entity: world.NewEntity(x, y, size, size),
		ID:     id,
		Role:   role,
		Color:  color,
	}
}

// Holding reports whether the worker carries a product.
func (w *Worker) Holding() bool {
	return w.Hold != nil
}

// TakeProduct attaches p as the held product at the worker's carry point.
func (w *Worker) TakeProduct(p *Product) error {
	if w.Hold != nil {
		return ErrAlreadyHolding
	}
	w.Hold = p
	p.SetPos(w.Pos)
	return nil
}

// LeaveProduct detaches the held product, places it at dest and returns it.
func (w *Worker) LeaveProduct(dest world.Point) (*Product, error) {
	if w.Hold == nil {
		return nil, ErrNothingHeld
	}
	p := w.Hold
	w.Hold = nil
	p.SetPos(dest)
	return p, nil
}

// Drop discards whatever the worker holds.
func (w *Worker) Drop() {
	w.Hold = nil
}
