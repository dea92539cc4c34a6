package engine

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/talgya/mini-kitchen/internal/economy"
)

// SaveState is the persisted progress of a restaurant. Station levels are
// stored as counts and rebuilt by replaying upgrades, never deserialized.
type SaveState struct {
	Stage        string         `json:"stage"`
	BackWorkers  int            `json:"backWorkers"`
	FrontWorkers int            `json:"frontWorkers"`
	Customers    int            `json:"customerWorkers"`
	Stations     []int          `json:"stations"` // Level per category
	Coins        economy.BigNum `json:"bcoins"`
	Offers       []int          `json:"offers"`       // Purchased offer IDs, in purchase order
	OfferLevels  []int          `json:"offer_levels"` // Target station level when each offer was bought
	RunID        uuid.UUID      `json:"run_id"`
	LastTick     uint64         `json:"last_tick"`
}

// Snapshot captures the current progress.
func (s *Simulation) Snapshot() SaveState {
	st := SaveState{
		Stage:        s.Stage,
		BackWorkers:  s.BackWorkers,
		FrontWorkers: s.FrontWorkers,
		Customers:    s.Customers,
		Stations:     make([]int, len(s.Stations)),
		Coins:        s.Ledger.Balance(),
		Offers:       []int{},
		OfferLevels:  []int{},
		RunID:        s.RunID,
		LastTick:     s.LastTick,
	}
	for i, bs := range s.Stations {
		st.Stations[i] = bs.Level
	}
	var bought []*Offer
	for _, o := range s.Offers {
		if o.Purchased {
			bought = append(bought, o)
		}
	}
	slices.SortStableFunc(bought, func(a, b *Offer) int { return cmp.Compare(a.seq, b.seq) })
	for _, o := range bought {
		st.Offers = append(st.Offers, o.ID)
		st.OfferLevels = append(st.OfferLevels, o.boughtAt)
	}
	return st
}

// Restore builds a simulation from opts and a save. Worker and customer
// counts come from the save. Each station's level is reached by calling
// Upgrade once per saved level against a scratch wallet, so prices and slots
// follow the same path they did in play. Purchased station offers are
// re-applied at the level they were bought, since price rounding makes
// upgrades and price offers order dependent. Offers without a recorded level
// are applied after the replay. Hire offers only count as owned since their
// effect is already in the saved counts.
func Restore(opts Options, save SaveState) (*Simulation, error) {
	opts.BackWorkers = save.BackWorkers
	opts.FrontWorkers = save.FrontWorkers
	opts.Customers = save.Customers
	if save.Stage != "" {
		opts.Stage = save.Stage
	}

	s, err := NewSimulation(opts)
	if err != nil {
		return nil, err
	}
	if len(save.Stations) > len(s.Stations) {
		return nil, fmt.Errorf("save has %d stations, catalog has %d", len(save.Stations), len(s.Stations))
	}

	byStation := make(map[int][]*Offer)
	for i, id := range save.Offers {
		o := s.offer(id)
		if o == nil {
			slog.Warn("save references unknown offer", "offer", id)
			continue
		}
		o.Purchased = true
		o.seq = i + 1
		o.boughtAt = -1
		if i < len(save.OfferLevels) {
			o.boughtAt = save.OfferLevels[i]
		}
		if o.targetsStation() {
			if _, err := s.station(o.Category); err != nil {
				return nil, fmt.Errorf("offer %d: %w", id, err)
			}
			byStation[o.Category] = append(byStation[o.Category], o)
		} else if o.boughtAt < 0 {
			o.boughtAt = 0
		}
	}
	s.offerSeq = len(save.Offers)

	wallet := economy.NewLedger(economy.BigNum{})
	for category, st := range s.Stations {
		level := 0
		if category < len(save.Stations) {
			level = save.Stations[category]
		}
		if level < 0 {
			return nil, fmt.Errorf("station %d has negative level %d", category, level)
		}
		offers := byStation[category]
		for range level {
			for _, o := range offers {
				if o.boughtAt == st.Level {
					s.applyOffer(o)
				}
			}
			wallet.Credit(st.UpgradePrice)
			if !st.Upgrade(wallet) {
				return nil, fmt.Errorf("replaying upgrade %d of station %d", st.Level+1, category)
			}
		}
		for _, o := range offers {
			if o.boughtAt < 0 || o.boughtAt >= level {
				o.boughtAt = max(o.boughtAt, level)
				s.applyOffer(o)
			}
		}
	}

	s.Ledger.Set(save.Coins)
	if save.RunID != uuid.Nil {
		s.RunID = save.RunID
	}
	s.LastTick = save.LastTick

	slog.Info("simulation restored", "run", s.RunID, "tick", s.LastTick, "coins", s.Ledger.String(), "levels", save.Stations)
	return s, nil
}
