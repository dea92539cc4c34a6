// Package stations implements the fixed points of the floor: back-of-house
// production stations with their slots, and front-of-house holding tables.
package stations

import (
	"math"
	"slices"
	"time"

	"github.com/talgya/mini-kitchen/internal/agents"
	"github.com/talgya/mini-kitchen/internal/world"
)

// MaxSlots is the most slots a back station can grow.
const MaxSlots = 3

const (
	priceGrowth   = 1.08
	upgradeGrowth = 1.2
)

var (
	doublesPriceAt = []int{10, 25, 50, 75, 100, 150, 200, 250, 300}
	addSlotsAt     = []int{1, 25, 75, 150}
)

// Wallet is what an upgrade is paid from.
type Wallet interface {
	CanAfford(price float64) bool
	Spend(price float64) error
}

// Config describes a back station before it is placed.
type Config struct {
	Category     int
	Name         string
	Color        string
	Price        float64
	UpgradePrice float64
	WorkDuration time.Duration
}

// BackStation produces one product category. It starts locked; the first
// upgrade unlocks it and adds its first slot.
type BackStation struct {
	world.Entity
	Category     int           `json:"category"`
	Name         string        `json:"name"`
	Color        string        `json:"color"`
	Level        int           `json:"level"`
	Price        float64       `json:"price"`
	UpgradePrice float64       `json:"upgrade_price"`
	WorkDuration time.Duration `json:"work_duration"`
	Unlocked     bool          `json:"unlocked"`

	grow  world.GrowDirection
	gap   float64
	slots []*Slot
}

// NewBackStation places a locked station at site.
func NewBackStation(site world.StationSite, size, gap float64, cfg Config) *BackStation {
	return &BackStation{
		Entity:       world.NewEntity(site.Pos.X, site.Pos.Y, size, size),
		Category:     cfg.Category,
		Name:         cfg.Name,
		Color:        cfg.Color,
		Price:        cfg.Price,
		UpgradePrice: cfg.UpgradePrice,
		WorkDuration: cfg.WorkDuration,
		grow:         site.Grow,
		gap:          gap,
	}
}

// GetSlot returns the first free slot, or nil if the station is locked or
// every slot is taken. The caller must Occupy it before yielding the tick.
func (s *BackStation) GetSlot() *Slot {
	if !s.Unlocked {
		return nil
	}
	for _, sl := range s.slots {
		if sl.Available() {
			return sl
		}
	}
	return nil
}

// AddSlot appends a slot next to the previous one along the growth axis.
// Returns nil once MaxSlots is reached.
func (s *BackStation) AddSlot() *Slot {
	n := len(s.slots)
	if n == MaxSlots {
		return nil
	}

	last := s.Pos
	if n > 0 {
		last = s.slots[n-1].Pos
	}

	step := s.W + s.gap
	var pos world.Point
	var dock world.DockSide
	if s.grow == world.GrowBottom {
		pos = last.Add(0, step)
		dock = world.DockRight
	} else {
		pos = last.Add(step, 0)
		dock = world.DockTop
	}

	sl := &Slot{
		Entity: world.NewEntity(pos.X, pos.Y, s.W, s.H),
		Index:  n,
		Side:   dock,
	}
	s.slots = append(s.slots, sl)
	return sl
}

// Slots returns the station's slots in creation order.
func (s *BackStation) Slots() []*Slot {
	return slices.Clone(s.slots)
}

// Occupied counts slots currently in use.
func (s *BackStation) Occupied() int {
	n := 0
	for _, sl := range s.slots {
		if !sl.Available() {
			n++
		}
	}
	return n
}

// CanUpgrade reports whether w can pay for the next level.
func (s *BackStation) CanUpgrade(w Wallet) bool {
	return w.CanAfford(s.UpgradePrice)
}

// Upgrade buys the next level from w. It reports false and changes nothing
// when w cannot afford it.
func (s *BackStation) Upgrade(w Wallet) bool {
	if !s.CanUpgrade(w) {
		return false
	}
	if err := w.Spend(s.UpgradePrice); err != nil {
		return false
	}

	s.Unlocked = true
	s.Level++

	s.Price = math.Ceil(s.Price * priceGrowth)
	if slices.Contains(doublesPriceAt, s.Level) {
		s.Price *= 2
	}
	s.UpgradePrice = math.Ceil(s.UpgradePrice * upgradeGrowth)

	if slices.Contains(addSlotsAt, s.Level) {
		s.AddSlot()
	}
	return true
}

// CreateProduct makes one product of this station's category at its price.
func (s *BackStation) CreateProduct() *agents.Product {
	p := agents.NewProduct(s.Category, s.Color, s.Price)
	p.SetPos(s.Center())
	return p
}

// SpeedUp divides the work duration by q.
func (s *BackStation) SpeedUp(q float64) {
	if q <= 0 {
		return
	}
	s.WorkDuration = time.Duration(float64(s.WorkDuration) / q)
}

// RaisePrice multiplies the product price by q.
func (s *BackStation) RaisePrice(q float64) {
	if q <= 0 {
		return
	}
	s.Price = math.Ceil(s.Price * q)
}

// Slot is a sub-position of a back station used by one worker at a time.
type Slot struct {
	world.Entity
	Index int            `json:"index"`
	Side  world.DockSide `json:"side"`

	occupied bool
}

// Occupy marks the slot taken.
func (s *Slot) Occupy() {
	s.occupied = true
}

// Vacate frees the slot.
func (s *Slot) Vacate() {
	s.occupied = false
}

// Available reports whether the slot is free.
func (s *Slot) Available() bool {
	return !s.occupied
}

// Dock is where a worker stands to use the slot.
func (s *Slot) Dock() world.Point {
	return s.DockingPoint(s.Side)
}
