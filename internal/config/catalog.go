package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/talgya/mini-kitchen/internal/engine"
	"github.com/talgya/mini-kitchen/internal/stations"
)

//go:embed catalog/default.yaml
var defaultCatalog []byte

//go:embed catalog/catalog.schema.json
var catalogSchemaSrc string

var catalogSchema = jsonschema.MustCompileString("catalog.schema.json", catalogSchemaSrc)

// Catalog lists the stations a restaurant can build, in category order, and
// the one-shot offers on sale.
type Catalog struct {
	Stations []StationEntry
	Offers   []engine.Offer
}

// StationEntry is one catalog station. Its category is its position.
type StationEntry struct {
	Name         string        `yaml:"name"`
	Color        string        `yaml:"color"`
	Price        float64       `yaml:"price"`
	UpgradePrice float64       `yaml:"upgrade_price"`
	WorkDuration time.Duration `yaml:"work_duration"`
}

type offerEntry struct {
	ID       int     `yaml:"id"`
	Name     string  `yaml:"name"`
	Kind     string  `yaml:"kind"`
	Category int     `yaml:"category"`
	Price    float64 `yaml:"price"`
	Quantity float64 `yaml:"quantity"`
}

type catalogFile struct {
	Stations []StationEntry `yaml:"stations"`
	Offers   []offerEntry   `yaml:"offers"`
}

// LoadCatalog reads the catalog at path, or the built-in one when path is
// empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	cat, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("catalog yaml: %w", err)
	}
	// The validator wants JSON values; YAML integers and maps differ.
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("catalog yaml: %w", err)
	}
	var generic any
	if err := json.Unmarshal(js, &generic); err != nil {
		return nil, err
	}
	if err := catalogSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("catalog schema: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog yaml: %w", err)
	}

	cat := &Catalog{Stations: f.Stations}
	seen := make(map[int]bool, len(f.Offers))
	for _, o := range f.Offers {
		if seen[o.ID] {
			return nil, fmt.Errorf("offer id %d listed twice", o.ID)
		}
		seen[o.ID] = true

		kind := engine.OfferKind(o.Kind)
		if (kind == engine.OfferStationSpeed || kind == engine.OfferStationPrice) && o.Category >= len(f.Stations) {
			return nil, fmt.Errorf("offer %d targets station %d, catalog has %d", o.ID, o.Category, len(f.Stations))
		}
		cat.Offers = append(cat.Offers, engine.Offer{
			ID:       o.ID,
			Name:     o.Name,
			Kind:     kind,
			Category: o.Category,
			Price:    o.Price,
			Quantity: o.Quantity,
		})
	}
	return cat, nil
}

// StationConfigs converts the entries to station configs, assigning
// categories by position.
func (c *Catalog) StationConfigs() []stations.Config {
	out := make([]stations.Config, len(c.Stations))
	for i, s := range c.Stations {
		out[i] = stations.Config{
			Category:     i,
			Name:         s.Name,
			Color:        s.Color,
			Price:        s.Price,
			UpgradePrice: s.UpgradePrice,
			WorkDuration: s.WorkDuration,
		}
	}
	return out
}
