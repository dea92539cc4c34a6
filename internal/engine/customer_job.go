package engine

import (
	"fmt"

	"github.com/talgya/mini-kitchen/internal/agents"
	"github.com/talgya/mini-kitchen/internal/world"
)

// stepCustomer drives a customer's visit: walk to the waiting area, ask for
// a waiter once something is on the menu, collect products as they land on
// the area's table, then leave. A replacement customer is scheduled when the
// visit ends.
func (s *Simulation) stepCustomer(j *Job, t CustomerVisit, speed float64) error {
	c, area := j.Customer, t.Area
	switch j.State {
	case StateWaitArea:
		if !c.MoveTo(area.DockingPoint(world.DockTop), speed) {
			return nil
		}
		if len(s.unlockedCategories()) == 0 {
			return nil
		}
		s.takeOrderJobs.Push(TakeOrderJob{From: area, Customer: c})
		j.State = StateWait

	case StateWait:
		if !c.ProductChosen() {
			return nil
		}
		if c.Remaining > 0 && area.Has(c.ChosenCategory) {
			p, err := area.GetProduct(c.ChosenCategory)
			if err != nil {
				return err
			}
			if err := c.ReceiveProduct(p); err != nil {
				return err
			}
		}
		if c.IsOrderCompleted() {
			area.Vacate(c.ID)
			s.Stats.CustomersServed++
			s.EmitEvent(Event{
				Description: fmt.Sprintf("customer %d served", c.ID),
				Category:    CategoryCustomer,
				Meta:        map[string]any{"customer": c.ID, "area": area.ID},
			})
			j.State = StateLeave
		}

	case StateLeave:
		if c.MoveTo(s.Layout.Exit, speed) {
			j.State = StateDone
		}

	case StateDone:
		if err := s.finish(j); err != nil {
			return err
		}
		s.respawnCustomer()

	default:
		return fmt.Errorf("%w: %s in %s job", ErrUnknownState, j.State, j.Kind)
	}
	return nil
}

// newCustomer spawns a customer with the configured order time.
func (s *Simulation) newCustomer() *agents.Customer {
	c := s.Spawner.Customer()
	c.OrderTime = s.opts.OrderTime
	return c
}

// respawnCustomer queues a fresh customer after a traffic-paced delay.
func (s *Simulation) respawnCustomer() {
	delay := s.Traffic.Delay(s.opts.CustomerSpawnDelay, s.now)
	s.After(delay, func() {
		s.idleCustomers.Push(s.newCustomer())
	})
}
