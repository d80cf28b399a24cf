// Package metrics exports bake counters to Prometheus.
package metrics

import (
	"log"
	"net/http"
	"os"
	"time"

	"mc-bake/internal/meshing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var logger = log.New(os.Stderr, "[metrics] ", log.LstdFlags)

// Bake holds the bake collectors. A nil *Bake ignores every observation.
type Bake struct {
	chunks     prometheus.Counter
	vertices   *prometheus.CounterVec
	duration   prometheus.Histogram
	unresolved prometheus.Counter
	queue      prometheus.Gauge
}

// NewBake creates the collectors and registers them on reg.
func NewBake(reg prometheus.Registerer) (*Bake, error) {
	b := &Bake{
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bake",
			Name:      "chunks_total",
			Help:      "Chunks baked.",
		}),
		vertices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bake",
			Name:      "vertices_total",
			Help:      "Vertices emitted, by layer.",
		}, []string{"layer"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bake",
			Name:      "duration_seconds",
			Help:      "Time to bake every layer of one chunk.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		unresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bake",
			Name:      "unresolved_cells_total",
			Help:      "Cells whose state key the registry could not resolve.",
		}),
		queue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bake",
			Name:      "queue_length",
			Help:      "Bake jobs waiting for a worker.",
		}),
	}
	for _, c := range []prometheus.Collector{b.chunks, b.vertices, b.duration, b.unresolved, b.queue} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// MustNewBake is NewBake that panics on registration errors.
func MustNewBake(reg prometheus.Registerer) *Bake {
	b, err := NewBake(reg)
	if err != nil {
		panic(err)
	}
	return b
}

// ObserveLayer records the result of baking one layer.
func (b *Bake) ObserveLayer(layer string, stats meshing.BakeStats) {
	if b == nil {
		return
	}
	b.vertices.WithLabelValues(layer).Add(float64(stats.Vertices))
	b.unresolved.Add(float64(stats.Unresolved))
}

// ObserveChunk records one finished chunk bake.
func (b *Bake) ObserveChunk(d time.Duration) {
	if b == nil {
		return
	}
	b.chunks.Inc()
	b.duration.Observe(d.Seconds())
}

// SetQueueLength publishes the pending job count.
func (b *Bake) SetQueueLength(n int) {
	if b == nil {
		return
	}
	b.queue.Set(float64(n))
}

// Serve exposes gatherer on addr under /metrics. It does not block.
func Serve(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Printf("metrics available at %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("metrics server: %v", err)
		}
	}()
	return srv
}
