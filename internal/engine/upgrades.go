package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/mini-kitchen/internal/economy"
)

// statusHold is how long a transient status message stays up.
const statusHold = time.Second

// Status is the one-line status shown to the player.
func (s *Simulation) Status() string {
	if s.status != "" {
		return s.status
	}
	return "coins: " + s.Ledger.String()
}

// flash shows msg until statusHold of simulated time passes or another
// message replaces it.
func (s *Simulation) flash(msg string) {
	s.statusSeq++
	seq := s.statusSeq
	s.status = msg
	s.After(statusHold, func() {
		if s.statusSeq == seq {
			s.status = ""
		}
	})
}

// UpgradeStation buys the next level of a station. It reports false without
// error when the ledger cannot afford it.
func (s *Simulation) UpgradeStation(category int) (bool, error) {
	st, err := s.station(category)
	if err != nil {
		return false, err
	}

	price := st.UpgradePrice
	if !st.Upgrade(s.Ledger) {
		s.flash(fmt.Sprintf("%s: need %s", st.Name, economy.FromFloat(price)))
		slog.Debug("upgrade unaffordable", "station", st.Name, "price", price, "balance", s.Ledger.String())
		return false, nil
	}

	s.Stats.Upgrades++
	s.rec.Upgrade(category)
	slog.Info("station upgraded", "station", st.Name, "level", st.Level, "price", st.Price, "slots", len(st.Slots()))
	s.EmitEvent(Event{
		Description: fmt.Sprintf("%s upgraded to level %d", st.Name, st.Level),
		Category:    CategoryUpgrade,
		Meta:        map[string]any{"category": category, "level": st.Level, "cost": price},
	})
	return true, nil
}

// Upgradable lists categories the ledger can currently afford to upgrade.
func (s *Simulation) Upgradable() []int {
	var out []int
	for _, st := range s.Stations {
		if st.CanUpgrade(s.Ledger) {
			out = append(out, st.Category)
		}
	}
	return out
}
