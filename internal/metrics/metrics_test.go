package metrics

import (
	"testing"
	"time"

	"mc-bake/internal/meshing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBakeCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	b, err := NewBake(reg)
	require.NoError(t, err)

	b.ObserveLayer("terrain", meshing.BakeStats{Vertices: 36, Unresolved: 2})
	b.ObserveLayer("terrain", meshing.BakeStats{Vertices: 6})
	b.ObserveLayer("transparent", meshing.BakeStats{Vertices: 12, Unresolved: 1})
	b.ObserveChunk(3 * time.Millisecond)
	b.SetQueueLength(4)

	assert.Equal(t, float64(42), testutil.ToFloat64(b.vertices.WithLabelValues("terrain")))
	assert.Equal(t, float64(12), testutil.ToFloat64(b.vertices.WithLabelValues("transparent")))
	assert.Equal(t, float64(3), testutil.ToFloat64(b.unresolved))
	assert.Equal(t, float64(1), testutil.ToFloat64(b.chunks))
	assert.Equal(t, float64(4), testutil.ToFloat64(b.queue))

	n, err := testutil.GatherAndCount(reg, "bake_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewBake(reg)
	require.NoError(t, err)
	_, err = NewBake(reg)
	assert.Error(t, err)
	assert.Panics(t, func() { MustNewBake(reg) })
}

func TestNilBakeIgnoresObservations(t *testing.T) {
	var b *Bake
	assert.NotPanics(t, func() {
		b.ObserveLayer("terrain", meshing.BakeStats{Vertices: 1})
		b.ObserveChunk(time.Second)
		b.SetQueueLength(1)
	})
}

func TestProcessUsage(t *testing.T) {
	u, err := ProcessUsage()
	require.NoError(t, err)
	assert.NotZero(t, u.RSSBytes)
	assert.Greater(t, u.RSSMegabytes(), 0.0)
}
