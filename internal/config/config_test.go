package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-kitchen/internal/engine"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Sim.TickRateHz)
	assert.Equal(t, time.Second, cfg.Sim.OrderTime)
	assert.Equal(t, time.Second, cfg.Sim.PickupDelay)
	assert.Equal(t, engine.DefaultStage, cfg.Sim.Stage)
	assert.Equal(t, "data/kitchen.db", cfg.Database.Path)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, "kitchen.yaml", `
sim:
  seed: 99
  tick_rate_hz: 30
  order_time: 500ms
  back_workers: 4
api:
  port: 9090
`)
	t.Setenv("KITCHEN_API_PORT", "9191")
	t.Setenv("KITCHEN_SIM_CUSTOMERS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Sim.Seed)
	assert.Equal(t, 30, cfg.Sim.TickRateHz)
	assert.Equal(t, 500*time.Millisecond, cfg.Sim.OrderTime)
	assert.Equal(t, 4, cfg.Sim.BackWorkers)
	assert.Equal(t, 7, cfg.Sim.Customers, "env overrides defaults")
	assert.Equal(t, 9191, cfg.API.Port, "env overrides the file")
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, "bad.yaml", `
sim:
  tick_rate_hz: 0
logging:
  format: xml
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TickRateHz")
	assert.Contains(t, err.Error(), "Format")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := LoggingConfig{Level: "warn", Format: "json"}.newLogger(&buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = LoggingConfig{Level: "loud", Format: "text"}.newLogger(&buf)
	assert.Error(t, err)
}

func TestLoadCatalog_Default(t *testing.T) {
	cat, err := LoadCatalog("")
	require.NoError(t, err)
	require.NotEmpty(t, cat.Stations)
	assert.Equal(t, "Burgers", cat.Stations[0].Name)
	assert.Equal(t, 1500*time.Millisecond, cat.Stations[0].WorkDuration)

	cfgs := cat.StationConfigs()
	for i, c := range cfgs {
		assert.Equal(t, i, c.Category)
	}
	require.NotEmpty(t, cat.Offers)
	assert.Equal(t, engine.OfferStationSpeed, cat.Offers[0].Kind)
}

func TestParseCatalog_SchemaErrors(t *testing.T) {
	cases := map[string]string{
		"no stations": `offers: []`,
		"bad kind": `
stations:
  - {name: A, price: 1, upgrade_price: 1, work_duration: 1s}
offers:
  - {id: 1, name: X, kind: free_lunch, price: 1, quantity: 1}
`,
		"zero price": `
stations:
  - {name: A, price: 0, upgrade_price: 1, work_duration: 1s}
`,
		"unknown field": `
stations:
  - {name: A, price: 1, upgrade_price: 1, work_duration: 1s, flavor: salty}
`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "catalog schema")
		})
	}
}

func TestParseCatalog_OfferChecks(t *testing.T) {
	_, err := ParseCatalog([]byte(`
stations:
  - {name: A, price: 1, upgrade_price: 1, work_duration: 1s}
offers:
  - {id: 1, name: X, kind: station_speed, category: 3, price: 1, quantity: 2}
`))
	assert.ErrorContains(t, err, "targets station 3")

	_, err = ParseCatalog([]byte(`
stations:
  - {name: A, price: 1, upgrade_price: 1, work_duration: 1s}
offers:
  - {id: 1, name: X, kind: hire_back, price: 1, quantity: 1}
  - {id: 1, name: Y, kind: hire_front, price: 1, quantity: 1}
`))
	assert.ErrorContains(t, err, "listed twice")
}

func TestSimOptions(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	cat, err := LoadCatalog("")
	require.NoError(t, err)

	opts := cfg.SimOptions(cat)
	require.NotNil(t, opts.Layout)
	assert.GreaterOrEqual(t, len(opts.Layout.Stations), len(cat.Stations))
	assert.Len(t, opts.Stations, len(cat.Stations))

	sim, err := engine.NewSimulation(opts)
	require.NoError(t, err)
	assert.Equal(t, cfg.Sim.BackWorkers, sim.BackWorkers)
	assert.Equal(t, "10", sim.Ledger.String())
}
