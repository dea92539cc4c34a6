package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/mini-kitchen/internal/engine"
)

const (
	streamCatchUp   = 50
	streamHeartbeat = 15 * time.Second
	writeWait       = 5 * time.Second
)

// StreamMessage is one websocket frame of /api/v1/stream.
type StreamMessage struct {
	Type  string        `json:"type"` // "event" or "tick"
	Event *engine.Event `json:"event,omitempty"`
	Tick  uint64        `json:"tick,omitempty"`
	Coins string        `json:"coins,omitempty"`
}

// handleStream upgrades to a websocket and pushes recent events, then every
// new event, with a tick heartbeat carrying the balance.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		http.Error(w, "streaming disabled", http.StatusServiceUnavailable)
		return
	}
	select {
	case s.streams <- struct{}{}:
		defer func() { <-s.streams }()
	default:
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	subID, ch := s.Hub.Subscribe()
	defer s.Hub.Unsubscribe(subID)

	var recent []engine.Event
	s.Eng.View(func(sim *engine.Simulation) { recent = sim.RecentEvents(streamCatchUp) })
	for i := range recent {
		if err := writeFrame(conn, StreamMessage{Type: "event", Event: &recent[i]}); err != nil {
			return
		}
	}
	slog.Info("stream client connected", "sub_id", subID, "remote", r.RemoteAddr)

	// Reader: notices the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := writeFrame(conn, StreamMessage{Type: "event", Event: &e}); err != nil {
				return
			}
		case <-heartbeat.C:
			var msg StreamMessage
			s.Eng.View(func(sim *engine.Simulation) {
				msg = StreamMessage{Type: "tick", Tick: sim.LastTick, Coins: sim.Ledger.String()}
			})
			if err := writeFrame(conn, msg); err != nil {
				return
			}
		case <-closed:
			slog.Info("stream client disconnected", "sub_id", subID)
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
