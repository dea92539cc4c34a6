// Package persistence provides SQLite-based storage for restaurant progress
// and the event log.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mini-kitchen/internal/engine"
)

// Keys under which SaveState fields are stored in kitchen_meta. They match
// the JSON names of the save so a dump of the table reads like a save file.
const (
	keyStage        = "stage"
	keyBackWorkers  = "backWorkers"
	keyFrontWorkers = "frontWorkers"
	keyCustomers    = "customerWorkers"
	keyStations     = "stations"
	keyCoins        = "bcoins"
	keyOffers       = "offers"
	keyOfferLevels  = "offer_levels"
	keyRunID        = "run_id"
	keyLastTick     = "last_tick"
)

var saveKeys = []string{
	keyStage, keyBackWorkers, keyFrontWorkers, keyCustomers,
	keyStations, keyCoins, keyOffers, keyOfferLevels, keyRunID, keyLastTick,
}

// DB wraps a SQLite connection for restaurant persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL DEFAULT '',
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		meta_json TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS kitchen_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type eventRow struct {
	RunID       string `db:"run_id"`
	Tick        uint64 `db:"tick"`
	Description string `db:"description"`
	Category    string `db:"category"`
	MetaJSON    string `db:"meta_json"`
}

// SaveEvents appends events for a run to the database.
func (db *DB) SaveEvents(runID uuid.UUID, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		row := eventRow{
			RunID:       runID.String(),
			Tick:        e.Tick,
			Description: e.Description,
			Category:    e.Category,
		}
		if len(e.Meta) > 0 {
			b, err := json.Marshal(e.Meta)
			if err != nil {
				return fmt.Errorf("encode meta for tick %d: %w", e.Tick, err)
			}
			row.MetaJSON = string(b)
		}
		_, err := tx.NamedExec(`INSERT INTO events (run_id, tick, description, category, meta_json)
			VALUES (:run_id, :tick, :description, :category, :meta_json)`, row)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events, newest first. An empty
// category matches every event.
func (db *DB) RecentEvents(limit int, category string) ([]engine.Event, error) {
	var rows []eventRow
	var err error
	if category == "" {
		err = db.conn.Select(&rows,
			"SELECT run_id, tick, description, category, meta_json FROM events ORDER BY id DESC LIMIT ?",
			limit,
		)
	} else {
		err = db.conn.Select(&rows,
			"SELECT run_id, tick, description, category, meta_json FROM events WHERE category = ? ORDER BY id DESC LIMIT ?",
			category, limit,
		)
	}
	if err != nil {
		return nil, err
	}

	events := make([]engine.Event, 0, len(rows))
	for _, r := range rows {
		e := engine.Event{Tick: r.Tick, Description: r.Description, Category: r.Category}
		if r.MetaJSON != "" {
			if err := json.Unmarshal([]byte(r.MetaJSON), &e.Meta); err != nil {
				slog.Warn("skipping corrupt event meta", "tick", r.Tick, "error", err)
			}
		}
		events = append(events, e)
	}
	return events, nil
}

// SaveMeta stores a key-value pair in kitchen metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO kitchen_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM kitchen_meta WHERE key = ?", key)
	return value, err
}

// SaveState writes the save under flat keys in one transaction.
func (db *DB) SaveState(st engine.SaveState) error {
	stations, err := json.Marshal(st.Stations)
	if err != nil {
		return fmt.Errorf("encode stations: %w", err)
	}
	coins, err := json.Marshal(st.Coins)
	if err != nil {
		return fmt.Errorf("encode coins: %w", err)
	}
	offers := st.Offers
	if offers == nil {
		offers = []int{}
	}
	offersJSON, err := json.Marshal(offers)
	if err != nil {
		return fmt.Errorf("encode offers: %w", err)
	}
	levels := st.OfferLevels
	if levels == nil {
		levels = []int{}
	}
	levelsJSON, err := json.Marshal(levels)
	if err != nil {
		return fmt.Errorf("encode offer levels: %w", err)
	}

	values := map[string]string{
		keyStage:        st.Stage,
		keyBackWorkers:  strconv.Itoa(st.BackWorkers),
		keyFrontWorkers: strconv.Itoa(st.FrontWorkers),
		keyCustomers:    strconv.Itoa(st.Customers),
		keyStations:     string(stations),
		keyCoins:        string(coins),
		keyOffers:       string(offersJSON),
		keyOfferLevels:  string(levelsJSON),
		keyRunID:        st.RunID.String(),
		keyLastTick:     strconv.FormatUint(st.LastTick, 10),
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, k := range saveKeys {
		if _, err := tx.Exec("INSERT OR REPLACE INTO kitchen_meta (key, value) VALUES (?, ?)", k, values[k]); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Debug("kitchen state saved", "run", st.RunID, "tick", st.LastTick, "coins", st.Coins.String())
	return nil
}

// LoadState reads the save written by SaveState. The bool is false when no
// save exists.
func (db *DB) LoadState() (engine.SaveState, bool, error) {
	var st engine.SaveState

	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.conn.Select(&rows, "SELECT key, value FROM kitchen_meta"); err != nil {
		return st, false, err
	}
	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Key] = r.Value
	}
	if _, ok := values[keyLastTick]; !ok {
		return st, false, nil
	}

	var err error
	st.Stage = values[keyStage]
	if st.BackWorkers, err = atoi(values, keyBackWorkers); err != nil {
		return st, false, err
	}
	if st.FrontWorkers, err = atoi(values, keyFrontWorkers); err != nil {
		return st, false, err
	}
	if st.Customers, err = atoi(values, keyCustomers); err != nil {
		return st, false, err
	}
	if err := unmarshalKey(values, keyStations, &st.Stations); err != nil {
		return st, false, err
	}
	if err := unmarshalKey(values, keyCoins, &st.Coins); err != nil {
		return st, false, err
	}
	if err := unmarshalKey(values, keyOffers, &st.Offers); err != nil {
		return st, false, err
	}
	if err := unmarshalKey(values, keyOfferLevels, &st.OfferLevels); err != nil {
		return st, false, err
	}
	if v := values[keyRunID]; v != "" {
		if st.RunID, err = uuid.Parse(v); err != nil {
			return st, false, fmt.Errorf("parse %s: %w", keyRunID, err)
		}
	}
	if st.LastTick, err = strconv.ParseUint(values[keyLastTick], 10, 64); err != nil {
		return st, false, fmt.Errorf("parse %s: %w", keyLastTick, err)
	}

	return st, true, nil
}

// Reset removes the save and the event log.
func (db *DB) Reset() error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM kitchen_meta"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		return err
	}
	return tx.Commit()
}

// HasSave reports whether a save exists.
func (db *DB) HasSave() (bool, error) {
	_, err := db.GetMeta(keyLastTick)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func atoi(values map[string]string, key string) (int, error) {
	v, ok := values[key]
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func unmarshalKey(values map[string]string, key string, dst any) error {
	v, ok := values[key]
	if !ok || v == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	return nil
}
