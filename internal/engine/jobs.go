package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/talgya/mini-kitchen/internal/agents"
	"github.com/talgya/mini-kitchen/internal/stations"
)

// JobID identifies an in-flight job in the registry.
type JobID uint64

// Job kinds, used for metrics labels and events.
const (
	KindBack      = "back"
	KindTakeOrder = "take_order"
	KindDelivery  = "delivery"
	KindCustomer  = "customer"
)

// State is a job's position in its state machine.
type State uint8

const (
	StateStation   State = iota + 1 // Travel to a station slot
	StateWork                       // Dwell at the slot
	StateDeliver                    // Carry the product to its drop-off
	StateCustomer                   // Travel to a waiting customer
	StateTakeOrder                  // Dwell while the customer orders
	StatePick                       // Travel to a table to pick a product
	StateWaitArea                   // Customer walks to a waiting area
	StateWait                       // Customer waits for the order
	StateLeave                      // Customer walks off the floor
	StateDone                       // Return to pool and detach
)

var stateNames = map[State]string{
	StateStation:   "station",
	StateWork:      "work",
	StateDeliver:   "deliver",
	StateCustomer:  "customer",
	StateTakeOrder: "takeOrder",
	StatePick:      "pick",
	StateWaitArea:  "waitArea",
	StateWait:      "wait",
	StateLeave:     "leave",
	StateDone:      "done",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Task is the immutable payload of a job. The set of tasks is closed.
type Task interface {
	Kind() string
	initial() State
}

// BackJob asks the kitchen for one product of Category, to be delivered to
// the waiting area At where Customer sits.
type BackJob struct {
	Category int
	Customer *agents.Customer
	At       *stations.FrontStation
}

// TakeOrderJob asks a waiter to take Customer's order at waiting area From.
type TakeOrderJob struct {
	From     *stations.FrontStation
	Customer *agents.Customer
}

// DeliveryJob asks a waiter to carry Product from table From to area To.
type DeliveryJob struct {
	From     *stations.FrontStation
	To       *stations.FrontStation
	Product  *agents.Product
	Customer *agents.Customer
}

// CustomerVisit is a customer's stay at waiting area Area.
type CustomerVisit struct {
	Area *stations.FrontStation
}

func (BackJob) Kind() string { return KindBack }
func (TakeOrderJob) Kind() string { return KindTakeOrder }
func (DeliveryJob) Kind() string { return KindDelivery }
func (CustomerVisit) Kind() string { return KindCustomer }

func (BackJob) initial() State { return StateStation }
func (TakeOrderJob) initial() State { return StateCustomer }
func (DeliveryJob) initial() State { return StatePick }
func (CustomerVisit) initial() State { return StateWaitArea }

// Job is an in-flight task bound to the worker executing it.
type Job struct {
	ID        JobID           `json:"id"`
	Kind      string          `json:"kind"`
	State     State           `json:"state"`
	WorkerID  agents.WorkerID `json:"worker_id"`
	StartedAt time.Duration   `json:"started_at"`

	Task     Task             `json:"-"`
	Worker   *agents.Worker   `json:"-"`
	Customer *agents.Customer `json:"-"`

	slot  *stations.Slot
	table *stations.FrontStation
	since time.Duration // Sim clock when the current dwell began
}

// register adds a job to the registry. Jobs step in registration order.
func (s *Simulation) register(t Task, w *agents.Worker) *Job {
	s.nextJob++
	j := &Job{
		ID:        s.nextJob,
		Kind:      t.Kind(),
		State:     t.initial(),
		WorkerID:  w.ID,
		StartedAt: s.now,
		Task:      t,
		Worker:    w,
	}
	s.jobs[j.ID] = j
	s.order = append(s.order, j.ID)
	s.rec.JobStarted(j.Kind)
	return j
}

// detach removes a job from the registry so it is never stepped again.
func (s *Simulation) detach(id JobID) error {
	if _, ok := s.jobs[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownJob, id)
	}
	delete(s.jobs, id)
	return nil
}

// finish detaches a job that reached StateDone.
func (s *Simulation) finish(j *Job) error {
	if err := s.detach(j.ID); err != nil {
		return err
	}
	s.rec.JobFinished(j.Kind, s.now-j.StartedAt)
	return nil
}

// Job looks up an in-flight job.
func (s *Simulation) Job(id JobID) (*Job, bool) {
	j, ok := s.jobs[id]
	return j, ok
}

// Jobs returns in-flight jobs in registration order.
func (s *Simulation) Jobs() []*Job {
	out := make([]*Job, 0, len(s.jobs))
	for _, id := range s.order {
		if j, ok := s.jobs[id]; ok {
			out = append(out, j)
		}
	}
	return out
}

// stepJobs advances every registered job once.
func (s *Simulation) stepJobs(f Frame) {
	speed := s.opts.Speed * f.Delta

	n := len(s.order)
	for i := 0; i < n; i++ {
		j, ok := s.jobs[s.order[i]]
		if !ok {
			continue
		}
		if err := s.step(j, speed); err != nil {
			s.fail(j, err)
		}
	}

	s.order = slices.DeleteFunc(s.order, func(id JobID) bool {
		_, ok := s.jobs[id]
		return !ok
	})
}

// step runs one state transition inside a recover boundary so a broken job
// cannot halt the loop.
func (s *Simulation) step(j *Job, speed float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch t := j.Task.(type) {
	case BackJob:
		return s.stepBack(j, t, speed)
	case TakeOrderJob:
		return s.stepTakeOrder(j, t, speed)
	case DeliveryJob:
		return s.stepDelivery(j, t, speed)
	case CustomerVisit:
		return s.stepCustomer(j, t, speed)
	default:
		return fmt.Errorf("%w: task %T", ErrUnknownState, t)
	}
}

// fail logs and drops a job, releasing whatever it held. An unfinished order
// is re-queued so its customer is still served.
func (s *Simulation) fail(j *Job, err error) {
	slog.Error("job failed", "job", j.ID, "kind", j.Kind, "state", j.State, "worker", j.WorkerID, "error", err)

	if j.slot != nil {
		j.slot.Vacate()
		j.slot = nil
	}
	j.Worker.Drop()
	j.Worker.Progress = 0

	if v, ok := j.Task.(CustomerVisit); ok {
		v.Area.Vacate(j.WorkerID)
		s.respawnCustomer()
	} else {
		s.returnWorker(j.Worker)
	}
	requeued := s.reorder(j)

	_ = s.detach(j.ID)

	s.Stats.Faults++
	s.rec.JobFailed(j.Kind)
	s.EmitEvent(Event{
		Description: fmt.Sprintf("%s job %d failed in %s: %v", j.Kind, j.ID, j.State, err),
		Category:    CategoryFault,
		Meta:        map[string]any{"job": j.ID, "kind": j.Kind, "state": j.State.String(), "requeued": requeued},
	})
}

// reorder pushes a fresh kitchen job for the product a failed back or
// delivery job was making for a waiting customer. Jobs that already handed
// their product on are not repeated.
func (s *Simulation) reorder(j *Job) bool {
	if j.State == StateDone {
		return false
	}
	var next BackJob
	switch t := j.Task.(type) {
	case BackJob:
		next = t
	case DeliveryJob:
		if t.Product == nil {
			return false
		}
		if t.From != nil {
			_ = t.From.RemoveProduct(t.Product)
		}
		next = BackJob{Category: t.Product.Category, Customer: t.Customer, At: t.To}
	default:
		return false
	}
	if next.Customer == nil || next.At == nil || next.Customer.Remaining <= 0 {
		return false
	}
	s.backJobs.Push(next)
	return true
}

// returnWorker puts a worker back in its idle pool.
func (s *Simulation) returnWorker(w *agents.Worker) {
	switch w.Role {
	case agents.RoleBack:
		s.idleBack.Push(w)
	case agents.RoleFront:
		s.idleFront.Push(w)
	}
}
