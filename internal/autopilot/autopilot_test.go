package autopilot

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-kitchen/internal/api"
	"github.com/talgya/mini-kitchen/internal/economy"
	"github.com/talgya/mini-kitchen/internal/engine"
	"github.com/talgya/mini-kitchen/internal/stations"
)

func snapshot(coins float64) *Snapshot {
	s := &Snapshot{
		Stations: []StationInfo{
			{Category: 0, Name: "grill", Unlocked: true, Level: 1, Price: 5, UpgradePrice: 12, Slots: 1, Occupied: 1},
			{Category: 1, Name: "fryer", Price: 8, UpgradePrice: 60},
		},
		Offers: []OfferInfo{
			{ID: 1, Name: "second cook", Kind: "hire_back", Price: 30},
			{ID: 2, Name: "extra waiter", Kind: "hire_front", Price: 25},
			{ID: 3, Name: "word of mouth", Kind: "add_customer", Price: 20},
		},
	}
	s.Status.Coins = economy.FromFloat(coins)
	return s
}

func TestTriage(t *testing.T) {
	s := snapshot(0)
	s.Stations[0].Unlocked = false
	assert.Equal(t, BottleneckMenu, Triage(s).Bottleneck)

	s = snapshot(0)
	s.Queues = Queues{BackJobs: 3}
	h := Triage(s)
	assert.Equal(t, BottleneckKitchen, h.Bottleneck)
	assert.Equal(t, 3, h.KitchenLag)

	s.Queues = Queues{DeliveryJobs: 2, TakeOrderJobs: 1, IdleFront: 1}
	assert.Equal(t, BottleneckWaiters, Triage(s).Bottleneck)

	s.Queues = Queues{IdleBack: 1, IdleFront: 1}
	assert.Equal(t, BottleneckCustomer, Triage(s).Bottleneck)

	s.Queues = Queues{}
	assert.Equal(t, BottleneckNone, Triage(s).Bottleneck)
}

func TestDecide_PrefersRelief(t *testing.T) {
	s := snapshot(100)
	s.Queues = Queues{BackJobs: 4}
	d := Decide(s, Triage(s), DefaultPolicy())
	// The full grill upgrade (12) is cheaper than hiring (30) and both help.
	assert.Equal(t, ActionUpgrade, d.Action)
	assert.Equal(t, 0, d.Category)
	assert.Equal(t, BottleneckKitchen, d.Reason)

	s.Queues = Queues{DeliveryJobs: 3}
	d = Decide(s, Triage(s), DefaultPolicy())
	assert.Equal(t, ActionOffer, d.Action)
	assert.Equal(t, 2, d.OfferID)

	s.Queues = Queues{IdleBack: 1, IdleFront: 1}
	d = Decide(s, Triage(s), DefaultPolicy())
	assert.Equal(t, ActionOffer, d.Action)
	assert.Equal(t, 3, d.OfferID, "add customers beats unlocking the pricier fryer")
}

func TestDecide_FallsBackToCheapest(t *testing.T) {
	s := snapshot(26)
	s.Queues = Queues{IdleBack: 1, IdleFront: 1}
	s.Offers[2].Purchased = true
	// Nothing relieving is affordable (fryer 60), so take the cheapest: grill.
	d := Decide(s, Triage(s), DefaultPolicy())
	assert.Equal(t, ActionUpgrade, d.Action)
	assert.Equal(t, 0, d.Category)
}

func TestDecide_Budget(t *testing.T) {
	s := snapshot(10)
	d := Decide(s, Triage(s), DefaultPolicy())
	assert.Equal(t, ActionNone, d.Action)

	s = snapshot(20)
	d = Decide(s, Triage(s), Policy{SpendFraction: 0.5})
	assert.Equal(t, ActionNone, d.Action, "half of 20 buys nothing")
}

func TestMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.json")
	m := LoadMemory(path)
	for i := 0; i < maxRecords+5; i++ {
		m.Record(CycleRecord{Tick: uint64(i), Action: ActionNone})
	}
	assert.Len(t, m.Records, maxRecords)
	assert.True(t, m.Stalled(3))
	m.Save()

	again := LoadMemory(path)
	require.Len(t, again.Records, maxRecords)
	assert.Equal(t, uint64(5), again.Records[0].Tick)

	again.Record(CycleRecord{Action: ActionUpgrade})
	assert.False(t, again.Stalled(3))
}

func TestPilot_AgainstServer(t *testing.T) {
	sim, err := engine.NewSimulation(engine.Options{
		Seed: 11,
		Stations: []stations.Config{
			{Category: 0, Name: "grill", Color: "#e53935", Price: 5, UpgradePrice: 10, WorkDuration: time.Second},
		},
		BackWorkers:   1,
		FrontWorkers:  1,
		Customers:     1,
		StartingCoins: economy.FromFloat(15),
	})
	require.NoError(t, err)
	eng := engine.NewEngine(sim, 200)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	srv := httptest.NewServer((&api.Server{Eng: eng, AdminKey: "k"}).Handler())
	defer srv.Close()

	p := &Pilot{
		Observer: NewObserver(srv.URL),
		Actor:    NewActor(srv.URL, "k"),
		Memory:   LoadMemory(""),
		Policy:   DefaultPolicy(),
	}
	require.NoError(t, p.WaitReady(ctx))

	d, err := p.Cycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, ActionUpgrade, d.Action)
	assert.Equal(t, BottleneckMenu, d.Reason)
	require.Len(t, p.Memory.Records, 1)
	assert.True(t, p.Memory.Records[0].Done)

	var level int
	eng.View(func(s *engine.Simulation) { level = s.Stations[0].Level })
	assert.Equal(t, 1, level)
}

func TestActor_RejectsUnknownAction(t *testing.T) {
	_, err := NewActor("http://unused", "").Act(context.Background(), Decision{Action: "juggle"})
	assert.Error(t, err)
}
