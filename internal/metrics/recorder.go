// Package metrics records simulation activity for Prometheus.
package metrics

import "time"

const (
	namespace = "kitchen"
	subsystem = "sim"
)

// Recorder receives simulation events. The engine calls it on the tick
// goroutine; implementations must not block.
type Recorder interface {
	JobStarted(kind string)
	JobDeferred(kind string)
	JobFinished(kind string, took time.Duration)
	JobFailed(kind string)
	Sale(price float64)
	Upgrade(category int)
	QueueLength(queue string, n int)
	Tick()
	Command(name string, took time.Duration, ok bool)
}

// Nop discards everything.
type Nop struct{}

func (Nop) JobStarted(string) {}
func (Nop) JobDeferred(string) {}
func (Nop) JobFinished(string, time.Duration) {}
func (Nop) JobFailed(string) {}
func (Nop) Sale(float64) {}
func (Nop) Upgrade(int) {}
func (Nop) QueueLength(string, int) {}
func (Nop) Tick() {}
func (Nop) Command(string, time.Duration, bool) {}
