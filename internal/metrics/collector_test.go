package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordsJobsAndSales(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector()
	require.NoError(t, c.Register(reg))

	c.JobStarted("back")
	c.JobStarted("back")
	c.JobDeferred("back")
	c.JobFinished("back", 3*time.Second)
	c.JobFailed("delivery")
	c.Sale(5)
	c.Sale(7)
	c.QueueLength("back_jobs", 4)
	c.Tick()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.jobsTotal.WithLabelValues("back", "started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.jobsTotal.WithLabelValues("back", "deferred")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.jobsTotal.WithLabelValues("delivery", "failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.salesTotal))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.revenueTotal))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.queueLength.WithLabelValues("back_jobs")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ticksTotal))
}

func TestCollector_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, NewCollector().Register(reg))
	assert.Error(t, NewCollector().Register(reg))
}

func TestNop_SatisfiesRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.JobStarted("back")
	r.Command("upgrade", time.Millisecond, true)
}

var _ Recorder = (*Collector)(nil)
