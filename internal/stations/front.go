package stations

import (
	"errors"
	"slices"

	"github.com/talgya/mini-kitchen/internal/agents"
	"github.com/talgya/mini-kitchen/internal/world"
)

// ErrProductNotFound is returned when a holding table lacks the product asked for.
var ErrProductNotFound = errors.New("product not found on front station")

// FrontStation is a holding table: a delivery table where the kitchen leaves
// finished products, or a waiting area where customers collect them.
type FrontStation struct {
	world.Entity
	ID       int `json:"id"`
	Capacity int `json:"capacity"` // Max customers; 0 means unlimited

	hold      map[int][]*agents.Product
	occupants map[agents.WorkerID]struct{}
}

// NewFrontStation creates an empty holding table.
func NewFrontStation(id int, pos world.Point, size float64, capacity int) *FrontStation {
	return &FrontStation{
		Entity:    world.NewEntity(pos.X, pos.Y, size, size),
		ID:        id,
		Capacity:  capacity,
		hold:      make(map[int][]*agents.Product),
		occupants: make(map[agents.WorkerID]struct{}),
	}
}

// PutProduct places p on the table.
func (f *FrontStation) PutProduct(p *agents.Product) {
	p.SetPos(f.Center())
	f.hold[p.Category] = append(f.hold[p.Category], p)
}

// GetProduct takes the most recently placed product of category.
func (f *FrontStation) GetProduct(category int) (*agents.Product, error) {
	stack := f.hold[category]
	if len(stack) == 0 {
		return nil, ErrProductNotFound
	}
	p := stack[len(stack)-1]
	f.hold[category] = stack[:len(stack)-1]
	return p, nil
}

// RemoveProduct takes exactly p off the table.
func (f *FrontStation) RemoveProduct(p *agents.Product) error {
	stack := f.hold[p.Category]
	i := slices.Index(stack, p)
	if i < 0 {
		return ErrProductNotFound
	}
	f.hold[p.Category] = slices.Delete(stack, i, i+1)
	return nil
}

// Has reports whether a product of category is on the table.
func (f *FrontStation) Has(category int) bool {
	return len(f.hold[category]) > 0
}

// Held counts products on the table.
func (f *FrontStation) Held() int {
	n := 0
	for _, stack := range f.hold {
		n += len(stack)
	}
	return n
}

// Occupy registers a customer at the table.
func (f *FrontStation) Occupy(id agents.WorkerID) {
	f.occupants[id] = struct{}{}
}

// Vacate removes a customer from the table.
func (f *FrontStation) Vacate(id agents.WorkerID) {
	delete(f.occupants, id)
}

// Occupancy counts customers at the table.
func (f *FrontStation) Occupancy() int {
	return len(f.occupants)
}

// Full reports whether the table has no room for another customer.
func (f *FrontStation) Full() bool {
	return f.Capacity > 0 && len(f.occupants) >= f.Capacity
}

// LeastOccupied picks the non-full area with the fewest customers; ties go to
// the earliest area. Returns nil when every area is full.
func LeastOccupied(areas []*FrontStation) *FrontStation {
	var best *FrontStation
	for _, a := range areas {
		if a.Full() {
			continue
		}
		if best == nil || a.Occupancy() < best.Occupancy() {
			best = a
		}
	}
	return best
}
