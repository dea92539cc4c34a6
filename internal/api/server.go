// Package api provides the HTTP API for watching and steering a restaurant.
// GET endpoints are public and rate limited per client.
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/mini-kitchen/internal/economy"
	"github.com/talgya/mini-kitchen/internal/engine"
	"github.com/talgya/mini-kitchen/internal/persistence"
)

const (
	maxStreamConns = 8
	commandTimeout = 5 * time.Second
	maxSpeed       = 100
)

// Server serves the restaurant over HTTP.
type Server struct {
	Eng      *engine.Engine
	DB       *persistence.DB // Optional; enables snapshots and stored events
	Hub      *Hub            // Optional; enables the stream
	Gatherer prometheus.Gatherer
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	RateLimit float64
	Burst     int

	limiter  *RateLimiter
	upgrader websocket.Upgrader
	streams  chan struct{}
	srv      *http.Server
	done     chan struct{}
}

// Handler builds the routed handler. It is safe to call once.
func (s *Server) Handler() http.Handler {
	if s.RateLimit <= 0 {
		s.RateLimit = 5
	}
	if s.Burst <= 0 {
		s.Burst = 20
	}
	s.limiter = NewRateLimiter(s.RateLimit, s.Burst)
	s.streams = make(chan struct{}, maxStreamConns)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4 * 1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	public := http.NewServeMux()
	public.HandleFunc("GET /api/v1/status", s.handleStatus)
	public.HandleFunc("GET /api/v1/stations", s.handleStations)
	public.HandleFunc("GET /api/v1/ledger", s.handleLedger)
	public.HandleFunc("GET /api/v1/queues", s.handleQueues)
	public.HandleFunc("GET /api/v1/jobs", s.handleJobs)
	public.HandleFunc("GET /api/v1/offers", s.handleOffers)
	public.HandleFunc("GET /api/v1/events", s.handleEvents)
	public.HandleFunc("GET /api/v1/stats", s.handleStats)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", RateLimitMiddleware(s.limiter, public))

	// Streaming and metrics are long-lived or scraped; not rate limited.
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)
	gatherer := s.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("POST /api/v1/stations/{category}/upgrade", s.adminOnly(s.handleUpgrade))
	mux.HandleFunc("POST /api/v1/offers/{id}/buy", s.adminOnly(s.handleBuyOffer))
	mux.HandleFunc("POST /api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("POST /api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "rate_limit", s.RateLimit)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	s.done = make(chan struct{})
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.limiter.Cleanup()
			case <-s.done:
				return
			}
		}
	}()
}

// Shutdown stops the server started by Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	close(s.done)
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no api.admin_key set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

type statusResponse struct {
	Stage      string          `json:"stage"`
	RunID      string          `json:"run_id"`
	Tick       uint64          `json:"tick"`
	SimTime    string          `json:"sim_time"`
	Speed      float64         `json:"speed"`
	Running    bool            `json:"running"`
	Coins      economy.BigNum  `json:"coins"`
	CoinsText  string          `json:"coins_text"`
	Status     string          `json:"status"`
	Workers    map[string]int  `json:"workers"`
	Upgradable []int           `json:"upgradable"`
	Stats      engine.SimStats `json:"stats"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var resp statusResponse
	s.Eng.View(func(sim *engine.Simulation) {
		resp = statusResponse{
			Stage:     sim.Stage,
			RunID:     sim.RunID.String(),
			Tick:      sim.LastTick,
			SimTime:   sim.Now().Round(time.Second).String(),
			Coins:     sim.Ledger.Balance(),
			CoinsText: sim.Ledger.String(),
			Status:    sim.Status(),
			Workers: map[string]int{
				"back":      sim.BackWorkers,
				"front":     sim.FrontWorkers,
				"customers": sim.Customers,
			},
			Upgradable: sim.Upgradable(),
			Stats:      sim.Stats,
		}
	})
	resp.Speed = s.Eng.Speed()
	resp.Running = s.Eng.Running()
	if resp.Upgradable == nil {
		resp.Upgradable = []int{}
	}
	writeJSON(w, resp)
}

type stationView struct {
	Category       int     `json:"category"`
	Name           string  `json:"name"`
	Color          string  `json:"color"`
	Level          int     `json:"level"`
	Unlocked       bool    `json:"unlocked"`
	Price          float64 `json:"price"`
	UpgradePrice   float64 `json:"upgrade_price"`
	WorkDurationMs int64   `json:"work_duration_ms"`
	Slots          int     `json:"slots"`
	Occupied       int     `json:"occupied"`
	CanUpgrade     bool    `json:"can_upgrade"`
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	var out []stationView
	s.Eng.View(func(sim *engine.Simulation) {
		for _, st := range sim.Stations {
			out = append(out, stationView{
				Category:       st.Category,
				Name:           st.Name,
				Color:          st.Color,
				Level:          st.Level,
				Unlocked:       st.Unlocked,
				Price:          st.Price,
				UpgradePrice:   st.UpgradePrice,
				WorkDurationMs: st.WorkDuration.Milliseconds(),
				Slots:          len(st.Slots()),
				Occupied:       st.Occupied(),
				CanUpgrade:     st.CanUpgrade(sim.Ledger),
			})
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	var balance economy.BigNum
	var revenue economy.BigNum
	s.Eng.View(func(sim *engine.Simulation) {
		balance = sim.Ledger.Balance()
		revenue = sim.Stats.Revenue
	})
	writeJSON(w, map[string]any{
		"balance":      balance,
		"balance_text": balance.String(),
		"revenue":      revenue,
		"revenue_text": revenue.String(),
	})
}

func (s *Server) handleQueues(w http.ResponseWriter, r *http.Request) {
	var q engine.QueueStats
	s.Eng.View(func(sim *engine.Simulation) { q = sim.Queues() })
	writeJSON(w, q)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	var out []engine.Job
	s.Eng.View(func(sim *engine.Simulation) {
		for _, j := range sim.Jobs() {
			out = append(out, *j)
		}
	})
	if out == nil {
		out = []engine.Job{}
	}
	writeJSON(w, out)
}

func (s *Server) handleOffers(w http.ResponseWriter, r *http.Request) {
	var out []engine.Offer
	s.Eng.View(func(sim *engine.Simulation) {
		for _, o := range sim.Offers {
			out = append(out, *o)
		}
	})
	if out == nil {
		out = []engine.Offer{}
	}
	writeJSON(w, out)
}

// handleEvents returns recent events, oldest first. ?source=db reads the
// stored log instead of the in-memory one.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	category := r.URL.Query().Get("category")

	if r.URL.Query().Get("source") == "db" {
		if s.DB == nil {
			http.Error(w, "database not available", http.StatusServiceUnavailable)
			return
		}
		events, err := s.DB.RecentEvents(limit, category)
		if err != nil {
			slog.Error("reading stored events failed", "error", err)
			http.Error(w, "reading events failed", http.StatusInternalServerError)
			return
		}
		for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
			events[i], events[j] = events[j], events[i]
		}
		writeJSON(w, events)
		return
	}

	var events []engine.Event
	s.Eng.View(func(sim *engine.Simulation) {
		if category == "" {
			events = sim.RecentEvents(limit)
			return
		}
		for _, e := range sim.Events {
			if e.Category == category {
				events = append(events, e)
			}
		}
	})
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	if events == nil {
		events = []engine.Event{}
	}
	writeJSON(w, events)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats engine.SimStats
	s.Eng.View(func(sim *engine.Simulation) { stats = sim.Stats })
	writeJSON(w, stats)
}

// do runs fn on the tick goroutine and maps its outcome to a status code.
func (s *Server) do(w http.ResponseWriter, r *http.Request, name string, fn func(*engine.Simulation) error) bool {
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	err := s.Eng.Do(ctx, name, fn)
	switch {
	case err == nil:
		return true
	case errors.Is(err, engine.ErrUnknownStation), errors.Is(err, engine.ErrUnknownOffer):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "simulation busy", http.StatusServiceUnavailable)
	default:
		slog.Error("command failed", "command", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
	return false
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	category, err := strconv.Atoi(r.PathValue("category"))
	if err != nil {
		http.Error(w, "invalid category", http.StatusBadRequest)
		return
	}

	var upgraded bool
	var level int
	var status string
	ok := s.do(w, r, "upgrade", func(sim *engine.Simulation) error {
		var err error
		upgraded, err = sim.UpgradeStation(category)
		if err != nil {
			return err
		}
		level = sim.Stations[category].Level
		status = sim.Status()
		return nil
	})
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"category": category,
		"upgraded": upgraded,
		"level":    level,
		"status":   status,
	})
}

func (s *Server) handleBuyOffer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid offer id", http.StatusBadRequest)
		return
	}

	var bought bool
	var status string
	ok := s.do(w, r, "buy_offer", func(sim *engine.Simulation) error {
		var err error
		bought, err = sim.BuyOffer(id)
		status = sim.Status()
		return err
	})
	if !ok {
		return
	}
	writeJSON(w, map[string]any{"id": id, "bought": bought, "status": status})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > maxSpeed {
		http.Error(w, fmt.Sprintf("speed must be 0-%d", maxSpeed), http.StatusBadRequest)
		return
	}
	s.Eng.SetSpeed(req.Speed)
	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	var save engine.SaveState
	if !s.do(w, r, "snapshot", func(sim *engine.Simulation) error {
		save = sim.Snapshot()
		return nil
	}) {
		return
	}
	if err := s.DB.SaveState(save); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"tick":    save.LastTick,
		"message": "snapshot saved",
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
