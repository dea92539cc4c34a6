package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is a Recorder backed by Prometheus collectors.
type Collector struct {
	jobsTotal    *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	salesTotal   prometheus.Counter
	revenueTotal prometheus.Counter
	upgrades     *prometheus.CounterVec
	queueLength  *prometheus.GaugeVec
	ticksTotal   prometheus.Counter
	commands     *prometheus.HistogramVec
}

// NewCollector creates the collectors. Call Register before use.
func NewCollector() *Collector {
	return &Collector{
		jobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_total",
				Help:      "Job lifecycle events by job kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "job_duration_seconds",
				Help:      "Simulated time from job start to completion",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"kind"},
		),
		salesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sales_total",
			Help:      "Products delivered and paid for",
		}),
		revenueTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "revenue_coins_total",
			Help:      "Coins earned from sales",
		}),
		upgrades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "station_upgrades_total",
				Help:      "Station upgrades bought, by category",
			},
			[]string{"category"},
		),
		queueLength: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "queue_length",
				Help:      "Pending items per worker pool and job queue",
			},
			[]string{"queue"},
		),
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ticks_total",
			Help:      "Simulation ticks processed",
		}),
		commands: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_duration_seconds",
				Help:      "Time spent applying outside commands on the tick goroutine",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command", "success"},
		),
	}
}

// Register adds every collector to reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	metrics := []prometheus.Collector{
		c.jobsTotal,
		c.jobDuration,
		c.salesTotal,
		c.revenueTotal,
		c.upgrades,
		c.queueLength,
		c.ticksTotal,
		c.commands,
	}
	for _, m := range metrics {
		if err := reg.Register(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) JobStarted(kind string) {
	c.jobsTotal.WithLabelValues(kind, "started").Inc()
}

func (c *Collector) JobDeferred(kind string) {
	c.jobsTotal.WithLabelValues(kind, "deferred").Inc()
}

func (c *Collector) JobFinished(kind string, took time.Duration) {
	c.jobsTotal.WithLabelValues(kind, "finished").Inc()
	c.jobDuration.WithLabelValues(kind).Observe(took.Seconds())
}

func (c *Collector) JobFailed(kind string) {
	c.jobsTotal.WithLabelValues(kind, "failed").Inc()
}

func (c *Collector) Sale(price float64) {
	c.salesTotal.Inc()
	if price > 0 {
		c.revenueTotal.Add(price)
	}
}

func (c *Collector) Upgrade(category int) {
	c.upgrades.WithLabelValues(strconv.Itoa(category)).Inc()
}

func (c *Collector) QueueLength(queue string, n int) {
	c.queueLength.WithLabelValues(queue).Set(float64(n))
}

func (c *Collector) Tick() {
	c.ticksTotal.Inc()
}

func (c *Collector) Command(name string, took time.Duration, ok bool) {
	c.commands.WithLabelValues(name, strconv.FormatBool(ok)).Observe(took.Seconds())
}
