// Package config loads runtime settings for the kitchen binaries.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/talgya/mini-kitchen/internal/economy"
	"github.com/talgya/mini-kitchen/internal/engine"
	"github.com/talgya/mini-kitchen/internal/world"
)

// Config combines all sections.
type Config struct {
	Sim      SimConfig      `mapstructure:"sim"`
	Database DatabaseConfig `mapstructure:"database"`
	API      APIConfig      `mapstructure:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
}

// SimConfig sizes the restaurant and paces the floor.
type SimConfig struct {
	Seed   int64   `mapstructure:"seed"`
	Width  float64 `mapstructure:"width" validate:"gt=0"`
	Height float64 `mapstructure:"height" validate:"gt=0"`

	// Movement per reference frame; 0 derives it from the width.
	Speed      float64 `mapstructure:"speed" validate:"min=0"`
	TickRateHz int     `mapstructure:"tick_rate_hz" validate:"min=1,max=240"`

	OrderTime           time.Duration `mapstructure:"order_time" validate:"gt=0"`
	PickupDelay         time.Duration `mapstructure:"pickup_delay" validate:"gt=0"`
	CustomerSpawnDelay  time.Duration `mapstructure:"customer_spawn_delay" validate:"gt=0"`
	WaitingAreaCapacity int           `mapstructure:"waiting_area_capacity" validate:"min=0"`

	DeliveryTables int `mapstructure:"delivery_tables" validate:"min=1"`
	WaitingAreas   int `mapstructure:"waiting_areas" validate:"min=1"`

	BackWorkers   int     `mapstructure:"back_workers" validate:"min=0"`
	FrontWorkers  int     `mapstructure:"front_workers" validate:"min=0"`
	Customers     int     `mapstructure:"customers" validate:"min=0"`
	StartingCoins float64 `mapstructure:"starting_coins" validate:"min=0"`
	Stage         string  `mapstructure:"stage" validate:"required"`

	// Ticks between saves; 0 disables autosave.
	AutosaveEvery uint64 `mapstructure:"autosave_every"`
}

// DatabaseConfig locates the SQLite file and the event journal.
type DatabaseConfig struct {
	Path       string `mapstructure:"path" validate:"required"`
	JournalDir string `mapstructure:"journal_dir"`
}

// APIConfig holds the HTTP server settings.
type APIConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	AdminKey string `mapstructure:"admin_key"`

	// Requests per second per client IP, and the bucket size.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gt=0"`
	Burst     int     `mapstructure:"burst" validate:"min=1"`
}

// CatalogConfig points at a station and offer catalog. Empty uses the
// built-in one.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	gen := world.DefaultGenConfig()

	v.SetDefault("sim.seed", 0)
	v.SetDefault("sim.width", gen.Width)
	v.SetDefault("sim.height", gen.Height)
	v.SetDefault("sim.speed", 0)
	v.SetDefault("sim.tick_rate_hz", 60)
	v.SetDefault("sim.order_time", "1s")
	v.SetDefault("sim.pickup_delay", "1s")
	v.SetDefault("sim.customer_spawn_delay", "2s")
	v.SetDefault("sim.waiting_area_capacity", 2)
	v.SetDefault("sim.delivery_tables", gen.DeliveryTables)
	v.SetDefault("sim.waiting_areas", gen.WaitingAreas)
	v.SetDefault("sim.back_workers", 1)
	v.SetDefault("sim.front_workers", 1)
	v.SetDefault("sim.customers", 2)
	v.SetDefault("sim.starting_coins", 10)
	v.SetDefault("sim.stage", engine.DefaultStage)
	v.SetDefault("sim.autosave_every", 600)

	v.SetDefault("database.path", "data/kitchen.db")
	v.SetDefault("database.journal_dir", "data/journal")

	v.SetDefault("api.enabled", true)
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.admin_key", "")
	v.SetDefault("api.rate_limit", 5)
	v.SetDefault("api.burst", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("catalog.path", "")
}

// Load reads configuration with the following priority:
//  1. KITCHEN_-prefixed environment variables (sim.tick_rate_hz is
//     KITCHEN_SIM_TICK_RATE_HZ)
//  2. the config file at path, or config.yaml in . or ./configs
//  3. defaults
//
// A .env file in the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("KITCHEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// SimOptions builds simulation options from the sim section and a catalog.
func (c *Config) SimOptions(cat *Catalog) engine.Options {
	gen := world.DefaultGenConfig()
	gen.Seed = c.Sim.Seed
	gen.Width = c.Sim.Width
	gen.Height = c.Sim.Height
	gen.DeliveryTables = c.Sim.DeliveryTables
	gen.WaitingAreas = c.Sim.WaitingAreas
	if n := len(cat.Stations); n > gen.Stations {
		gen.Stations = n
	}

	return engine.Options{
		Seed:                c.Sim.Seed,
		Layout:              world.Generate(gen),
		Stations:            cat.StationConfigs(),
		Offers:              cat.Offers,
		Speed:               c.Sim.Speed,
		OrderTime:           c.Sim.OrderTime,
		PickupDelay:         c.Sim.PickupDelay,
		CustomerSpawnDelay:  c.Sim.CustomerSpawnDelay,
		WaitingAreaCapacity: c.Sim.WaitingAreaCapacity,
		BackWorkers:         c.Sim.BackWorkers,
		FrontWorkers:        c.Sim.FrontWorkers,
		Customers:           c.Sim.Customers,
		StartingCoins:       economy.FromFloat(c.Sim.StartingCoins),
		Stage:               c.Sim.Stage,
	}
}
