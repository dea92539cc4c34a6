package engine

import (
	"github.com/talgya/mini-kitchen/internal/economy"
)

const maxEvents = 1000

// Event categories.
const (
	CategorySale     = "sale"
	CategoryOrder    = "order"
	CategoryUpgrade  = "upgrade"
	CategoryOffer    = "offer"
	CategoryCustomer = "customer"
	CategoryFault    = "fault"
)

// Event is a notable occurrence on the floor.
type Event struct {
	Tick        uint64         `json:"tick"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// SimStats tracks running totals since the simulation was created.
type SimStats struct {
	Sales           int            `json:"sales"`
	Revenue         economy.BigNum `json:"revenue"`
	Orders          int            `json:"orders"`
	CustomersServed int            `json:"customers_served"`
	Upgrades        int            `json:"upgrades"`
	Deferred        int            `json:"deferred"`
	Faults          int            `json:"faults"`
}

// EmitEvent records e and hands it to OnEvent.
func (s *Simulation) EmitEvent(e Event) {
	if e.Tick == 0 {
		e.Tick = s.LastTick
	}
	s.Events = append(s.Events, e)
	if len(s.Events) > 2*maxEvents {
		s.Events = append([]Event(nil), s.Events[len(s.Events)-maxEvents:]...)
	}
	if s.OnEvent != nil {
		s.OnEvent(e)
	}
}

// RecentEvents returns up to n of the latest events, oldest first.
func (s *Simulation) RecentEvents(n int) []Event {
	start := 0
	if len(s.Events) > n {
		start = len(s.Events) - n
	}
	return append([]Event(nil), s.Events[start:]...)
}
