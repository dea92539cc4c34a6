package agents

import (
	"fmt"
	"math/rand"

	"github.com/talgya/mini-kitchen/internal/world"
)

// Worker colors by role.
const (
	ColorBack  = "#4caf50"
	ColorFront = "#2196f3"
)

// Spawner creates workers and customers for the simulation.
type Spawner struct {
	rng    *rand.Rand
	nextID WorkerID
	layout *world.Layout
}

// NewSpawner creates a spawner with the given seed.
func NewSpawner(seed int64, layout *world.Layout) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed + 300)),
		nextID: 1,
		layout: layout,
	}
}

// SetNextID sets the next ID to be issued (used when restoring a save).
func (s *Spawner) SetNextID(id WorkerID) {
	s.nextID = id
}

// NextID returns the ID the next spawned agent will get.
func (s *Spawner) NextID() WorkerID {
	return s.nextID
}

// WorkerSize is the side length of a worker's bounding box.
func (s *Spawner) WorkerSize() float64 {
	return s.layout.X(8)
}

// Back creates a kitchen worker near the back idle spot.
func (s *Spawner) Back() *Worker {
	p := s.near(s.layout.BackHome)
	return NewWorker(s.issue(), RoleBack, p.X, p.Y, s.WorkerSize(), ColorBack)
}

// Front creates a waiter near the front idle spot.
func (s *Spawner) Front() *Worker {
	p := s.near(s.layout.FrontHome)
	return NewWorker(s.issue(), RoleFront, p.X, p.Y, s.WorkerSize(), ColorFront)
}

// Customer creates a customer at a random spawn point, off-screen.
func (s *Spawner) Customer() *Customer {
	p := s.layout.SpawnPoints[s.rng.Intn(len(s.layout.SpawnPoints))]
	return NewCustomer(s.issue(), p.X, p.Y, s.WorkerSize(), s.RandomColor())
}

// RandomColor returns a random hex color.
func (s *Spawner) RandomColor() string {
	return fmt.Sprintf("#%06x", s.rng.Intn(0x1000000))
}

// Intn exposes the spawner's random source for order quantities and picks.
func (s *Spawner) Intn(n int) int {
	return s.rng.Intn(n)
}

func (s *Spawner) issue() WorkerID {
	id := s.nextID
	s.nextID++
	return id
}

// near jitters p by up to 10% of the floor width.
func (s *Spawner) near(p world.Point) world.Point {
	r := s.layout.X(10)
	return world.Point{
		X: p.X + (s.rng.Float64()*2-1)*r,
		Y: p.Y + (s.rng.Float64()*2-1)*r/2,
	}
}
