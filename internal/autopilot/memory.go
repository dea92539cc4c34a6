package autopilot

import (
	"encoding/json"
	"log/slog"
	"os"
)

const maxRecords = 20

// CycleRecord captures what happened in a single cycle.
type CycleRecord struct {
	Tick       uint64     `json:"tick"`
	Coins      string     `json:"coins"`
	Bottleneck Bottleneck `json:"bottleneck"`
	Action     string     `json:"action"`
	Rationale  string     `json:"rationale,omitempty"`
	Done       bool       `json:"done"`
}

// CycleMemory keeps recent cycle records, optionally persisted to Path.
type CycleMemory struct {
	Path    string        `json:"-"`
	Records []CycleRecord `json:"records"`
}

// LoadMemory reads the memory file. Returns empty memory if path is empty,
// missing or corrupt.
func LoadMemory(path string) *CycleMemory {
	mem := &CycleMemory{Path: path}
	if path == "" {
		return mem
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return mem
	}
	if err := json.Unmarshal(data, mem); err != nil {
		slog.Warn("autopilot memory corrupted, starting fresh", "error", err)
		return &CycleMemory{Path: path}
	}
	return mem
}

// Save writes the memory to disk.
func (m *CycleMemory) Save() {
	if m.Path == "" {
		return
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal autopilot memory", "error", err)
		return
	}
	if err := os.WriteFile(m.Path, data, 0o644); err != nil {
		slog.Error("failed to write autopilot memory", "error", err)
	}
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// Stalled reports whether the last n records all chose no action.
func (m *CycleMemory) Stalled(n int) bool {
	if n <= 0 || len(m.Records) < n {
		return false
	}
	for _, r := range m.Records[len(m.Records)-n:] {
		if r.Action != ActionNone {
			return false
		}
	}
	return true
}
