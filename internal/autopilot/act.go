package autopilot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Result is what the admin endpoint reported for a purchase.
type Result struct {
	Done   bool   `json:"done"`
	Status string `json:"status"`
}

// Actor executes purchases via the admin API.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL with admin auth.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Act sends the purchase a decision names. ActionNone is a no-op.
func (a *Actor) Act(ctx context.Context, d Decision) (*Result, error) {
	var path string
	switch d.Action {
	case ActionNone:
		return &Result{}, nil
	case ActionUpgrade:
		path = fmt.Sprintf("/api/v1/stations/%d/upgrade", d.Category)
	case ActionOffer:
		path = fmt.Sprintf("/api/v1/offers/%d/buy", d.OfferID)
	default:
		return nil, fmt.Errorf("unknown action %q", d.Action)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.AdminKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s failed (%d): %s", d.Action, resp.StatusCode, string(body))
	}

	var raw struct {
		Upgraded *bool  `json:"upgraded"`
		Bought   *bool  `json:"bought"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	res := &Result{Status: raw.Status}
	switch {
	case raw.Upgraded != nil:
		res.Done = *raw.Upgraded
	case raw.Bought != nil:
		res.Done = *raw.Bought
	}
	return res, nil
}
