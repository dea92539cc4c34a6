package world

import "fmt"

// GrowDirection is the axis along which a station adds slots.
type GrowDirection string

const (
	GrowBottom GrowDirection = "bottom"
	GrowRight  GrowDirection = "right"
)

// Layout holds the generated floor plan: where every station, table and
// waiting area sits, and where agents enter and leave the screen.
type Layout struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StationSize float64 `json:"station_size"`

	Stations       []StationSite `json:"stations"`        // Back-of-house, indexed by category
	DeliveryTables []Point       `json:"delivery_tables"` // Hand-off from back to front staff
	WaitingAreas   []Point       `json:"waiting_areas"`   // Where customers sit

	SpawnPoints []Point `json:"spawn_points"` // Off-screen customer entry points
	Exit        Point   `json:"exit"`         // Off-screen customer exit

	BackHome  Point `json:"back_home"`  // Idle kitchen staff hang around here
	FrontHome Point `json:"front_home"` // Idle waiters hang around here
}

// StationSite is the placement of one back-of-house station.
type StationSite struct {
	Pos  Point         `json:"pos"`
	Grow GrowDirection `json:"grow"`
}

// X converts a percentage (0–100) of the layout width into a coordinate.
func (l *Layout) X(pct float64) float64 {
	return l.Width * pct / 100
}

// Y converts a percentage (0–100) of the layout height into a coordinate.
func (l *Layout) Y(pct float64) float64 {
	return l.Height * pct / 100
}

// Gap is the spacing between a station and its slots.
func (l *Layout) Gap() float64 {
	return l.X(1)
}

// String returns a summary of the layout.
func (l *Layout) String() string {
	return fmt.Sprintf("Layout(%.0fx%.0f, stations=%d, tables=%d, waiting=%d)",
		l.Width, l.Height, len(l.Stations), len(l.DeliveryTables), len(l.WaitingAreas))
}
