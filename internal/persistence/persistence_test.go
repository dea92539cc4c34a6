package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-kitchen/internal/economy"
	"github.com/talgya/mini-kitchen/internal/engine"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "kitchen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestState_RoundTrip(t *testing.T) {
	db := openTemp(t)

	_, ok, err := db.LoadState()
	require.NoError(t, err)
	assert.False(t, ok, "fresh database has no save")

	want := engine.SaveState{
		Stage:        "1-2",
		BackWorkers:  3,
		FrontWorkers: 2,
		Customers:    5,
		Stations:     []int{12, 1, 0},
		Coins:        economy.New(1.5, 6),
		Offers:       []int{2, 4},
		OfferLevels:  []int{7, 0},
		RunID:        uuid.New(),
		LastTick:     9001,
	}
	require.NoError(t, db.SaveState(want))

	got, ok, err := db.LoadState()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	has, err := db.HasSave()
	require.NoError(t, err)
	assert.True(t, has)
}

func TestState_FlatKeys(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, db.SaveState(engine.SaveState{
		Stage:    "1-1",
		Stations: []int{1},
		Coins:    economy.FromFloat(20),
		RunID:    uuid.New(),
		LastTick: 7,
	}))

	for _, k := range []string{"stage", "backWorkers", "frontWorkers", "customerWorkers", "stations", "bcoins", "offers", "offer_levels", "run_id", "last_tick"} {
		_, err := db.GetMeta(k)
		assert.NoError(t, err, k)
	}
	v, err := db.GetMeta("stations")
	require.NoError(t, err)
	assert.Equal(t, "[1]", v)
	v, err = db.GetMeta("offers")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestReset(t *testing.T) {
	db := openTemp(t)
	run := uuid.New()
	require.NoError(t, db.SaveState(engine.SaveState{RunID: run, LastTick: 1}))
	require.NoError(t, db.SaveEvents(run, []engine.Event{{Tick: 1, Description: "x", Category: engine.CategorySale}}))

	require.NoError(t, db.Reset())

	_, ok, err := db.LoadState()
	require.NoError(t, err)
	assert.False(t, ok)
	evs, err := db.RecentEvents(10, "")
	require.NoError(t, err)
	assert.Empty(t, evs)
}

func TestEvents_RecentNewestFirst(t *testing.T) {
	db := openTemp(t)
	run := uuid.New()
	require.NoError(t, db.SaveEvents(run, nil))
	require.NoError(t, db.SaveEvents(run, []engine.Event{
		{Tick: 1, Description: "sold a burger", Category: engine.CategorySale, Meta: map[string]any{"price": 5.0}},
		{Tick: 2, Description: "order placed", Category: engine.CategoryOrder},
		{Tick: 3, Description: "sold fries", Category: engine.CategorySale},
	}))

	evs, err := db.RecentEvents(2, "")
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, uint64(3), evs[0].Tick)
	assert.Equal(t, uint64(2), evs[1].Tick)

	sales, err := db.RecentEvents(10, engine.CategorySale)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, 5.0, sales[1].Meta["price"])
	assert.Nil(t, sales[0].Meta)
}

func TestJournal_AppendAndRead(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal(dir, "events")
	hour := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)
	j.now = func() time.Time { return hour }

	require.NoError(t, j.Append("run-a", []engine.Event{
		{Tick: 1, Description: "first", Category: engine.CategoryOrder},
		{Tick: 2, Description: "second", Category: engine.CategorySale},
	}))
	hour = hour.Add(time.Hour)
	require.NoError(t, j.Append("run-a", []engine.Event{{Tick: 3, Description: "third", Category: engine.CategorySale}}))
	require.NoError(t, j.Close())

	files, err := JournalFiles(dir, "events")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "events-2026-03-01-10.jsonl.zst", filepath.Base(files[0]))

	var ticks []uint64
	for _, f := range files {
		require.NoError(t, ReadJournal(f, func(e JournalEntry) bool {
			assert.Equal(t, "run-a", e.RunID)
			ticks = append(ticks, e.Event.Tick)
			return true
		}))
	}
	assert.Equal(t, []uint64{1, 2, 3}, ticks)
}

func TestJournal_StopEarly(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal(dir, "events")
	require.NoError(t, j.Append("r", []engine.Event{{Tick: 1}, {Tick: 2}, {Tick: 3}}))
	require.NoError(t, j.Close())

	files, err := JournalFiles(dir, "events")
	require.NoError(t, err)
	require.Len(t, files, 1)

	n := 0
	require.NoError(t, ReadJournal(files[0], func(JournalEntry) bool {
		n++
		return n < 2
	}))
	assert.Equal(t, 2, n)
}

func TestJournalFiles_MissingDir(t *testing.T) {
	files, err := JournalFiles(filepath.Join(t.TempDir(), "nope"), "events")
	require.NoError(t, err)
	assert.Empty(t, files)
}
