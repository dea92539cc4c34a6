package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/mini-kitchen/internal/agents"
	"github.com/talgya/mini-kitchen/internal/economy"
)

// OfferKind says what buying an offer does.
type OfferKind string

const (
	OfferStationSpeed OfferKind = "station_speed" // Divide a station's work duration by Quantity
	OfferStationPrice OfferKind = "station_price" // Multiply a station's product price by Quantity
	OfferHireBack     OfferKind = "hire_back"     // Add Quantity kitchen workers
	OfferHireFront    OfferKind = "hire_front"    // Add Quantity waiters
	OfferAddCustomer  OfferKind = "add_customer"  // Add Quantity concurrent customers
)

// Offer is a one-shot upgrade.
type Offer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Kind      OfferKind `json:"kind"`
	Category  int       `json:"category"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Purchased bool      `json:"purchased"`

	seq      int // Purchase order, 1-based
	boughtAt int // Target station level at purchase
}

func (o *Offer) targetsStation() bool {
	return o.Kind == OfferStationSpeed || o.Kind == OfferStationPrice
}

func (s *Simulation) offer(id int) *Offer {
	for _, o := range s.Offers {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// BuyOffer purchases an offer. It reports false without error when the offer
// is already owned or the ledger cannot afford it.
func (s *Simulation) BuyOffer(id int) (bool, error) {
	o := s.offer(id)
	if o == nil {
		return false, fmt.Errorf("%w: %d", ErrUnknownOffer, id)
	}
	if o.Purchased {
		return false, nil
	}
	if o.targetsStation() {
		if _, err := s.station(o.Category); err != nil {
			return false, err
		}
	}

	if err := s.Ledger.Spend(o.Price); err != nil {
		var insufficient *economy.ErrInsufficientFunds
		if errors.As(err, &insufficient) {
			s.flash(fmt.Sprintf("%s: need %s", o.Name, insufficient.Price))
			return false, nil
		}
		return false, err
	}

	s.applyOffer(o)
	o.Purchased = true
	s.offerSeq++
	o.seq = s.offerSeq
	if o.targetsStation() {
		o.boughtAt = s.Stations[o.Category].Level
	}

	slog.Info("offer purchased", "offer", o.Name, "kind", o.Kind, "price", o.Price)
	s.EmitEvent(Event{
		Description: fmt.Sprintf("bought %s", o.Name),
		Category:    CategoryOffer,
		Meta:        map[string]any{"offer": o.ID, "kind": string(o.Kind)},
	})
	return true, nil
}

func (s *Simulation) applyOffer(o *Offer) {
	n := int(o.Quantity)
	switch o.Kind {
	case OfferStationSpeed:
		s.Stations[o.Category].SpeedUp(o.Quantity)
	case OfferStationPrice:
		s.Stations[o.Category].RaisePrice(o.Quantity)
	case OfferHireBack:
		s.hire(agents.RoleBack, n)
	case OfferHireFront:
		s.hire(agents.RoleFront, n)
	case OfferAddCustomer:
		s.addCustomers(n)
	default:
		slog.Warn("offer has unknown kind", "offer", o.ID, "kind", o.Kind)
	}
}

// hire adds n idle workers of role.
func (s *Simulation) hire(role agents.Role, n int) {
	for range n {
		switch role {
		case agents.RoleBack:
			s.idleBack.Push(s.Spawner.Back())
			s.BackWorkers++
		case agents.RoleFront:
			s.idleFront.Push(s.Spawner.Front())
			s.FrontWorkers++
		}
	}
}

// addCustomers raises the number of customers on the floor by n.
func (s *Simulation) addCustomers(n int) {
	for range n {
		s.idleCustomers.Push(s.newCustomer())
		s.Customers++
	}
}
