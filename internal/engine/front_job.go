package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/mini-kitchen/internal/economy"
	"github.com/talgya/mini-kitchen/internal/world"
)

// maxOrderQuantity bounds how many products one customer orders.
const maxOrderQuantity = 3

// stepTakeOrder drives a waiter taking a customer's order. Completing the
// order queues one kitchen job per product ordered.
func (s *Simulation) stepTakeOrder(j *Job, t TakeOrderJob, speed float64) error {
	w, c := j.Worker, t.Customer
	switch j.State {
	case StateCustomer:
		if !w.MoveTo(t.From.DockingPoint(world.DockBottom), speed) {
			return nil
		}
		cats := s.unlockedCategories()
		if len(cats) == 0 {
			return nil
		}
		c.ChooseProduct(cats[s.Spawner.Intn(len(cats))])
		j.State = StateTakeOrder
		j.since = s.now

	case StateTakeOrder:
		progress := c.OrderProgress(s.now - j.since)
		w.Progress = progress
		if progress < 1 {
			return nil
		}
		w.Progress = 0

		st, err := s.station(c.ChosenCategory)
		if err != nil {
			return err
		}
		quantity := 1 + s.Spawner.Intn(maxOrderQuantity)
		orders, err := c.PlaceOrder(quantity, st.CreateProduct())
		if err != nil {
			return err
		}
		for _, category := range orders {
			s.backJobs.Push(BackJob{Category: category, Customer: c, At: t.From})
		}

		s.Stats.Orders++
		s.EmitEvent(Event{
			Description: fmt.Sprintf("customer %d ordered %d × %s", c.ID, quantity, st.Name),
			Category:    CategoryOrder,
			Meta:        map[string]any{"customer": c.ID, "category": st.Category, "quantity": quantity},
		})
		j.State = StateDone

	case StateDone:
		if err := s.finish(j); err != nil {
			return err
		}
		s.idleFront.Push(w)

	default:
		return fmt.Errorf("%w: %s in %s job", ErrUnknownState, j.State, j.Kind)
	}
	return nil
}

// stepDelivery drives a waiter carrying a finished product from its delivery
// table to the customer's waiting area. The sale is booked on drop-off; the
// product appears on the area's table after the pickup delay.
func (s *Simulation) stepDelivery(j *Job, t DeliveryJob, speed float64) error {
	w := j.Worker
	switch j.State {
	case StatePick:
		if !w.MoveTo(t.From.DockingPoint(world.DockTop), speed) {
			return nil
		}
		if err := t.From.RemoveProduct(t.Product); err != nil {
			return err
		}
		if err := w.TakeProduct(t.Product); err != nil {
			return err
		}
		j.State = StateDeliver

	case StateDeliver:
		to := t.To
		if !w.MoveTo(to.DockingPoint(world.DockBottom), speed) {
			return nil
		}
		p, err := w.LeaveProduct(to.Center())
		if err != nil {
			return err
		}

		s.Ledger.Credit(p.Price)
		s.Stats.Sales++
		s.Stats.Revenue = s.Stats.Revenue.Add(economy.FromFloat(p.Price))
		s.rec.Sale(p.Price)
		slog.Debug("sale", "category", p.Category, "price", p.Price, "balance", s.Ledger.String())
		s.EmitEvent(Event{
			Description: fmt.Sprintf("sold product %d for %g", p.Category, p.Price),
			Category:    CategorySale,
			Meta:        map[string]any{"category": p.Category, "price": p.Price},
		})

		s.After(s.opts.PickupDelay, func() { to.PutProduct(p) })
		j.State = StateDone

	case StateDone:
		if err := s.finish(j); err != nil {
			return err
		}
		s.idleFront.Push(w)

	default:
		return fmt.Errorf("%w: %s in %s job", ErrUnknownState, j.State, j.Kind)
	}
	return nil
}
