package engine

import (
	"fmt"
	"time"

	"github.com/talgya/mini-kitchen/internal/agents"
	"github.com/talgya/mini-kitchen/internal/economy"
	"github.com/talgya/mini-kitchen/internal/stations"
)

const testFrame = 100 * time.Millisecond

func testOptions() Options {
	return Options{
		Seed: 7,
		Stations: []stations.Config{
			{Category: 0, Name: "grill", Color: "#e53935", Price: 5, UpgradePrice: 10, WorkDuration: 2 * time.Second},
			{Category: 1, Name: "fryer", Color: "#fdd835", Price: 8, UpgradePrice: 25, WorkDuration: 3 * time.Second},
		},
		Offers: []Offer{
			{ID: 1, Name: "sharp knives", Kind: OfferStationSpeed, Category: 0, Price: 50, Quantity: 2},
			{ID: 2, Name: "premium grill", Kind: OfferStationPrice, Category: 0, Price: 80, Quantity: 1.5},
			{ID: 3, Name: "second cook", Kind: OfferHireBack, Price: 30, Quantity: 1},
			{ID: 4, Name: "extra waiter", Kind: OfferHireFront, Price: 30, Quantity: 1},
			{ID: 5, Name: "busy night", Kind: OfferAddCustomer, Price: 40, Quantity: 2},
		},
		StartingCoins: economy.FromFloat(0),
	}
}

// openStation unlocks a station without touching its price.
func openStation(s *Simulation, category, slots int, work time.Duration, price float64) {
	st := s.Stations[category]
	st.Unlocked = true
	st.WorkDuration = work
	st.Price = price
	for range slots {
		st.AddSlot()
	}
}

func runFor(s *Simulation, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += testFrame {
		s.Tick(FrameOf(testFrame))
	}
}

func runTicks(s *Simulation, n int) {
	for range n {
		s.Tick(FrameOf(testFrame))
	}
}

// runUntil ticks until cond holds, giving up after limit ticks.
func runUntil(s *Simulation, limit int, cond func() bool) error {
	for i := 0; i < limit; i++ {
		if cond() {
			return nil
		}
		s.Tick(FrameOf(testFrame))
	}
	if cond() {
		return nil
	}
	return fmt.Errorf("condition not met after %d ticks", limit)
}

func jobsOfKind(s *Simulation, kind string) []*Job {
	var out []*Job
	for _, j := range s.Jobs() {
		if j.Kind == kind {
			out = append(out, j)
		}
	}
	return out
}

func firstJob(s *Simulation, kind string) *Job {
	if js := jobsOfKind(s, kind); len(js) > 0 {
		return js[0]
	}
	return nil
}

func productsOn(tables []*stations.FrontStation) int {
	n := 0
	for _, t := range tables {
		n += t.Held()
	}
	return n
}

func newProduct(category int) *agents.Product {
	return agents.NewProduct(category, "#000000", 5)
}
