// Package engine runs the kitchen: job queues, worker pools, per-job state
// machines and the frame loop that drives them.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/mini-kitchen/internal/agents"
	"github.com/talgya/mini-kitchen/internal/economy"
	"github.com/talgya/mini-kitchen/internal/metrics"
	"github.com/talgya/mini-kitchen/internal/queue"
	"github.com/talgya/mini-kitchen/internal/stations"
	"github.com/talgya/mini-kitchen/internal/world"
)

// DefaultStage names the first restaurant.
const DefaultStage = "1-1"

// reportEvery is the simulated interval between shift reports.
const reportEvery = time.Minute

// Options configures a new Simulation. Zero durations and speeds take
// defaults.
type Options struct {
	Seed     int64
	Layout   *world.Layout // Generated from Seed when nil
	Stations []stations.Config
	Offers   []Offer

	Speed               float64 // Movement per reference frame
	OrderTime           time.Duration
	PickupDelay         time.Duration
	CustomerSpawnDelay  time.Duration
	WaitingAreaCapacity int // Customers per area; 0 means unlimited

	BackWorkers   int
	FrontWorkers  int
	Customers     int
	StartingCoins economy.BigNum
	Stage         string

	Recorder metrics.Recorder
}

func (o Options) withDefaults() Options {
	if o.Layout == nil {
		cfg := world.DefaultGenConfig()
		cfg.Seed = o.Seed
		if len(o.Stations) > cfg.Stations {
			cfg.Stations = len(o.Stations)
		}
		o.Layout = world.Generate(cfg)
	}
	if o.Speed <= 0 {
		o.Speed = o.Layout.X(0.6)
	}
	if o.OrderTime <= 0 {
		o.OrderTime = agents.DefaultOrderTime
	}
	if o.PickupDelay <= 0 {
		o.PickupDelay = time.Second
	}
	if o.CustomerSpawnDelay <= 0 {
		o.CustomerSpawnDelay = 2 * time.Second
	}
	if o.Stage == "" {
		o.Stage = DefaultStage
	}
	if o.Recorder == nil {
		o.Recorder = metrics.Nop{}
	}
	return o
}

// Simulation owns every queue, registry and ledger of one restaurant. It is
// not safe for concurrent use; Engine serializes access.
type Simulation struct {
	Layout         *world.Layout
	Stations       []*stations.BackStation // Indexed by category
	DeliveryTables []*stations.FrontStation
	WaitingAreas   []*stations.FrontStation
	Offers         []*Offer
	Ledger         *economy.Ledger
	Spawner        *agents.Spawner
	Traffic        *world.Traffic

	Stage        string
	RunID        uuid.UUID
	LastTick     uint64
	BackWorkers  int
	FrontWorkers int
	Customers    int

	Events []Event
	Stats  SimStats

	// OnEvent, if set, receives every emitted event.
	OnEvent func(Event)

	idleBack      *queue.Queue[*agents.Worker]
	idleFront     *queue.Queue[*agents.Worker]
	idleCustomers *queue.Queue[*agents.Customer]
	backJobs      *queue.Queue[BackJob]
	takeOrderJobs *queue.Queue[TakeOrderJob]
	deliveryJobs  *queue.Queue[DeliveryJob]

	jobs    map[JobID]*Job
	order   []JobID
	nextJob JobID

	timers   []timer
	timerSeq uint64

	now        time.Duration
	nextReport time.Duration
	status     string
	statusSeq  uint64
	offerSeq   int

	opts Options
	rec  metrics.Recorder
}

// NewSimulation builds a restaurant: stations placed on the layout, holding
// tables, and the starting staff and customers.
func NewSimulation(opts Options) (*Simulation, error) {
	opts = opts.withDefaults()
	l := opts.Layout

	if len(opts.Stations) > len(l.Stations) {
		return nil, fmt.Errorf("layout has %d station sites, need %d", len(l.Stations), len(opts.Stations))
	}
	if len(l.DeliveryTables) == 0 || len(l.WaitingAreas) == 0 {
		return nil, errors.New("layout needs at least one delivery table and one waiting area")
	}

	s := &Simulation{
		Layout:        l,
		Ledger:        economy.NewLedger(opts.StartingCoins),
		Spawner:       agents.NewSpawner(opts.Seed, l),
		Traffic:       world.NewTraffic(opts.Seed),
		Stage:         opts.Stage,
		RunID:         uuid.New(),
		idleBack:      queue.New[*agents.Worker](),
		idleFront:     queue.New[*agents.Worker](),
		idleCustomers: queue.New[*agents.Customer](),
		backJobs:      queue.New[BackJob](),
		takeOrderJobs: queue.New[TakeOrderJob](),
		deliveryJobs:  queue.New[DeliveryJob](),
		jobs:          make(map[JobID]*Job),
		nextReport:    reportEvery,
		opts:          opts,
		rec:           opts.Recorder,
	}

	for i, cfg := range opts.Stations {
		if cfg.Category != i {
			return nil, fmt.Errorf("station %q has category %d at position %d", cfg.Name, cfg.Category, i)
		}
		s.Stations = append(s.Stations, stations.NewBackStation(l.Stations[i], l.StationSize, l.Gap(), cfg))
	}
	for i, p := range l.DeliveryTables {
		s.DeliveryTables = append(s.DeliveryTables, stations.NewFrontStation(i, p, l.StationSize, 0))
	}
	for i, p := range l.WaitingAreas {
		s.WaitingAreas = append(s.WaitingAreas, stations.NewFrontStation(i, p, l.StationSize, opts.WaitingAreaCapacity))
	}
	for _, o := range opts.Offers {
		o.Purchased = false
		s.Offers = append(s.Offers, &o)
	}

	s.hire(agents.RoleBack, opts.BackWorkers)
	s.hire(agents.RoleFront, opts.FrontWorkers)
	s.addCustomers(opts.Customers)

	slog.Info("simulation created",
		"run", s.RunID,
		"stage", s.Stage,
		"layout", l.String(),
		"stations", len(s.Stations),
		"back_workers", s.BackWorkers,
		"front_workers", s.FrontWorkers,
		"customers", s.Customers,
	)
	return s, nil
}

// Tick advances the simulation by one frame: fire due timers, run the
// dispatch loops, then step every in-flight job in registration order.
func (s *Simulation) Tick(f Frame) {
	s.LastTick++
	s.now += f.Elapsed

	s.runTimers()
	s.dispatchAll()
	s.stepJobs(f)

	s.rec.Tick()
	s.recordQueues()

	if s.now >= s.nextReport {
		s.report()
		s.nextReport += reportEvery
	}
}

// Now is the simulated time since the simulation was created.
func (s *Simulation) Now() time.Duration {
	return s.now
}

// QueueStats is a point-in-time view of the pools and job queues.
type QueueStats struct {
	IdleBack      int `json:"idle_back"`
	IdleFront     int `json:"idle_front"`
	IdleCustomers int `json:"idle_customers"`
	BackJobs      int `json:"back_jobs"`
	TakeOrderJobs int `json:"take_order_jobs"`
	DeliveryJobs  int `json:"delivery_jobs"`
	InFlight      int `json:"in_flight"`
	Timers        int `json:"timers"`
}

// Queues reports the current queue lengths.
func (s *Simulation) Queues() QueueStats {
	return QueueStats{
		IdleBack:      s.idleBack.Len(),
		IdleFront:     s.idleFront.Len(),
		IdleCustomers: s.idleCustomers.Len(),
		BackJobs:      s.backJobs.Len(),
		TakeOrderJobs: s.takeOrderJobs.Len(),
		DeliveryJobs:  s.deliveryJobs.Len(),
		InFlight:      len(s.jobs),
		Timers:        len(s.timers),
	}
}

func (s *Simulation) recordQueues() {
	q := s.Queues()
	s.rec.QueueLength("idle_back", q.IdleBack)
	s.rec.QueueLength("idle_front", q.IdleFront)
	s.rec.QueueLength("idle_customers", q.IdleCustomers)
	s.rec.QueueLength("back_jobs", q.BackJobs)
	s.rec.QueueLength("take_order_jobs", q.TakeOrderJobs)
	s.rec.QueueLength("delivery_jobs", q.DeliveryJobs)
	s.rec.QueueLength("in_flight", q.InFlight)
}

// report logs a periodic summary of the shift.
func (s *Simulation) report() {
	q := s.Queues()
	slog.Info("shift report",
		"tick", s.LastTick,
		"sim_time", s.now.Round(time.Second),
		"coins", s.Ledger.String(),
		"sales", s.Stats.Sales,
		"revenue", s.Stats.Revenue.String(),
		"orders", s.Stats.Orders,
		"served", s.Stats.CustomersServed,
		"deferred", s.Stats.Deferred,
		"faults", s.Stats.Faults,
		"in_flight", q.InFlight,
		"back_jobs", q.BackJobs,
		"delivery_jobs", q.DeliveryJobs,
	)
}
