package engine

import (
	"fmt"

	"github.com/talgya/mini-kitchen/internal/world"
)

// stepBack drives a kitchen worker: walk to the claimed slot, work for the
// station's duration, carry the product to a random delivery table and hand
// it on to the waiters.
func (s *Simulation) stepBack(j *Job, t BackJob, speed float64) error {
	w := j.Worker
	switch j.State {
	case StateStation:
		if w.MoveTo(j.slot.Dock(), speed) {
			j.State = StateWork
			j.since = s.now
		}

	case StateWork:
		st := s.Stations[t.Category]
		elapsed := s.now - j.since
		if elapsed < st.WorkDuration {
			w.Progress = float64(elapsed) / float64(st.WorkDuration)
			return nil
		}
		w.Progress = 0
		j.slot.Vacate()
		j.slot = nil

		if err := w.TakeProduct(st.CreateProduct()); err != nil {
			return err
		}
		j.table = s.DeliveryTables[s.Spawner.Intn(len(s.DeliveryTables))]
		j.State = StateDeliver

	case StateDeliver:
		if !w.MoveTo(j.table.DockingPoint(world.DockBottom), speed) {
			return nil
		}
		p, err := w.LeaveProduct(j.table.Center())
		if err != nil {
			return err
		}
		j.table.PutProduct(p)
		s.deliveryJobs.Push(DeliveryJob{
			From:     j.table,
			To:       t.At,
			Product:  p,
			Customer: t.Customer,
		})
		j.State = StateDone

	case StateDone:
		if err := s.finish(j); err != nil {
			return err
		}
		s.idleBack.Push(w)

	default:
		return fmt.Errorf("%w: %s in %s job", ErrUnknownState, j.State, j.Kind)
	}
	return nil
}
