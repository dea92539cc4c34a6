// Package autopilot plays a restaurant over its HTTP API. Each cycle it
// observes the floor, finds the bottleneck, and spends coins on the upgrade
// or offer that relieves it.
package autopilot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/mini-kitchen/internal/economy"
)

// Snapshot holds all data collected during an observation cycle.
type Snapshot struct {
	Status   Status        `json:"status"`
	Stations []StationInfo `json:"stations"`
	Offers   []OfferInfo   `json:"offers"`
	Queues   Queues        `json:"queues"`
}

// Status mirrors GET /api/v1/status.
type Status struct {
	Stage   string         `json:"stage"`
	RunID   string         `json:"run_id"`
	Tick    uint64         `json:"tick"`
	SimTime string         `json:"sim_time"`
	Speed   float64        `json:"speed"`
	Running bool           `json:"running"`
	Coins   economy.BigNum `json:"coins"`
	Workers struct {
		Back      int `json:"back"`
		Front     int `json:"front"`
		Customers int `json:"customers"`
	} `json:"workers"`
	Stats struct {
		Sales           int `json:"sales"`
		Orders          int `json:"orders"`
		CustomersServed int `json:"customers_served"`
		Faults          int `json:"faults"`
	} `json:"stats"`
}

// StationInfo mirrors items from GET /api/v1/stations.
type StationInfo struct {
	Category     int     `json:"category"`
	Name         string  `json:"name"`
	Level        int     `json:"level"`
	Unlocked     bool    `json:"unlocked"`
	Price        float64 `json:"price"`
	UpgradePrice float64 `json:"upgrade_price"`
	Slots        int     `json:"slots"`
	Occupied     int     `json:"occupied"`
}

// OfferInfo mirrors items from GET /api/v1/offers.
type OfferInfo struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Category  int     `json:"category"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	Purchased bool    `json:"purchased"`
}

// Queues mirrors GET /api/v1/queues.
type Queues struct {
	IdleBack      int `json:"idle_back"`
	IdleFront     int `json:"idle_front"`
	IdleCustomers int `json:"idle_customers"`
	BackJobs      int `json:"back_jobs"`
	TakeOrderJobs int `json:"take_order_jobs"`
	DeliveryJobs  int `json:"delivery_jobs"`
	InFlight      int `json:"in_flight"`
}

// Observer fetches restaurant state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Observe fetches all four endpoints and returns a Snapshot.
func (o *Observer) Observe(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := o.fetchJSON(ctx, "/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/stations", &snap.Stations); err != nil {
		return nil, fmt.Errorf("fetch stations: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/offers", &snap.Offers); err != nil {
		return nil, fmt.Errorf("fetch offers: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/queues", &snap.Queues); err != nil {
		return nil, fmt.Errorf("fetch queues: %w", err)
	}

	return snap, nil
}

// Ready reports whether the status endpoint answers 200.
func (o *Observer) Ready(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+"/api/v1/status", nil)
	if err != nil {
		return false
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
