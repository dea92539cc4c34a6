package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/mini-kitchen/internal/agents"
	"github.com/talgya/mini-kitchen/internal/queue"
	"github.com/talgya/mini-kitchen/internal/stations"
)

type dispatchResult struct {
	started  int
	deferred int
	rejected []error
}

// dispatch pairs idle workers with pending jobs. Every job pending when the
// loop starts gets at most one attempt this tick. A start that fails for lack
// of capacity puts both worker and job back at the tail; any other failure
// drops the job and keeps the worker.
func dispatch[W, J any](workers *queue.Queue[W], jobs *queue.Queue[J], start func(W, J) error) dispatchResult {
	var res dispatchResult
	for budget := jobs.Len(); budget > 0 && !workers.IsEmpty() && !jobs.IsEmpty(); budget-- {
		w, err := workers.Pop()
		if err != nil {
			break
		}
		j, err := jobs.Pop()
		if err != nil {
			workers.Push(w)
			break
		}

		err = start(w, j)
		switch {
		case err == nil:
			res.started++
		case errors.Is(err, errNoCapacity):
			workers.Push(w)
			jobs.Push(j)
			res.deferred++
		default:
			workers.Push(w)
			res.rejected = append(res.rejected, err)
		}
	}
	return res
}

// dispatchAll runs the assignment loops in their fixed order: kitchen, then
// waiters (orders before deliveries), then customers.
func (s *Simulation) dispatchAll() {
	s.note(KindBack, dispatch(s.idleBack, s.backJobs, s.startBack))
	s.note(KindTakeOrder, dispatch(s.idleFront, s.takeOrderJobs, s.startTakeOrder))
	s.note(KindDelivery, dispatch(s.idleFront, s.deliveryJobs, s.startDelivery))
	s.note(KindCustomer, s.dispatchCustomers())
}

func (s *Simulation) note(kind string, res dispatchResult) {
	for range res.deferred {
		s.rec.JobDeferred(kind)
	}
	s.Stats.Deferred += res.deferred
	if res.deferred > 0 {
		slog.Debug("dispatch deferred", "kind", kind, "started", res.started, "deferred", res.deferred, "tick", s.LastTick)
	}
	for _, err := range res.rejected {
		slog.Error("job rejected", "kind", kind, "error", err)
		s.Stats.Faults++
		s.rec.JobFailed(kind)
		s.EmitEvent(Event{
			Description: fmt.Sprintf("%s job rejected: %v", kind, err),
			Category:    CategoryFault,
		})
	}
}

// dispatchCustomers seats idle customers at the least occupied waiting area.
// A customer who finds every area full waits in line for the next tick.
func (s *Simulation) dispatchCustomers() dispatchResult {
	var res dispatchResult
	for budget := s.idleCustomers.Len(); budget > 0; budget-- {
		c, err := s.idleCustomers.Pop()
		if err != nil {
			break
		}
		if err := s.startVisit(c); err != nil {
			s.idleCustomers.Push(c)
			res.deferred++
			continue
		}
		res.started++
	}
	return res
}

// startBack claims a slot and occupies it in the same step, so no other
// dispatch in this pass can see it free.
func (s *Simulation) startBack(w *agents.Worker, t BackJob) error {
	st, err := s.station(t.Category)
	if err != nil {
		return err
	}
	slot := st.GetSlot()
	if slot == nil {
		return errNoCapacity
	}
	slot.Occupy()

	j := s.register(t, w)
	j.slot = slot
	return nil
}

func (s *Simulation) startTakeOrder(w *agents.Worker, t TakeOrderJob) error {
	j := s.register(t, w)
	j.Customer = t.Customer
	return nil
}

func (s *Simulation) startDelivery(w *agents.Worker, t DeliveryJob) error {
	j := s.register(t, w)
	j.Customer = t.Customer
	return nil
}

func (s *Simulation) startVisit(c *agents.Customer) error {
	area := stations.LeastOccupied(s.WaitingAreas)
	if area == nil {
		return errNoCapacity
	}
	area.Occupy(c.ID)

	j := s.register(CustomerVisit{Area: area}, &c.Worker)
	j.Customer = c
	return nil
}

// station returns the back station for category.
func (s *Simulation) station(category int) (*stations.BackStation, error) {
	if category < 0 || category >= len(s.Stations) {
		return nil, fmt.Errorf("%w: category %d", ErrUnknownStation, category)
	}
	return s.Stations[category], nil
}

// unlockedCategories lists categories customers can order.
func (s *Simulation) unlockedCategories() []int {
	var cats []int
	for _, st := range s.Stations {
		if st.Unlocked {
			cats = append(cats, st.Category)
		}
	}
	return cats
}
