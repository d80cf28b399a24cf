package terrain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"mc-bake/internal/metrics"
	"mc-bake/internal/registry"
	"mc-bake/internal/world"
)

var logger = log.New(os.Stderr, "[terrain] ", log.LstdFlags)

var (
	ErrQueueFull  = errors.New("terrain: bake queue is full")
	ErrPoolClosed = errors.New("terrain: worker pool is closed")
)

// BakeJob asks the pool to bake Chunk from Provider.
type BakeJob struct {
	Chunk    *Chunk
	Provider world.BlockStateProvider
}

// JobResult is delivered on Results once a job finishes.
type JobResult struct {
	BakeResult
	Duration time.Duration
	Err      error
}

// WorkerPool bakes chunks on a fixed number of goroutines. Results must be
// drained, otherwise workers stall once the results buffer is full.
type WorkerPool struct {
	jobQueue chan BakeJob
	results  chan JobResult
	workers  int
	layers   []LayerDef
	registry registry.Resolver
	metrics  *metrics.Bake

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool starts workers goroutines baking layers against reg. m may be nil.
func NewWorkerPool(workers, queueSize int, layers []LayerDef, reg registry.Resolver, m *metrics.Bake) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		jobQueue: make(chan BakeJob, queueSize),
		results:  make(chan JobResult, queueSize),
		workers:  workers,
		layers:   layers,
		registry: reg,
		metrics:  m,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}
	logger.Printf("started %d bake workers (queue %d)", workers, queueSize)
	return pool
}

// Results delivers one JobResult per accepted job. It is closed after Close
// or Shutdown once all workers have exited.
func (p *WorkerPool) Results() <-chan JobResult {
	return p.results
}

// Submit queues a job without blocking.
func (p *WorkerPool) Submit(job BakeJob) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobQueue <- job:
		p.metrics.SetQueueLength(len(p.jobQueue))
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitWait queues a job, blocking until there is room, ctx is done or the
// pool shuts down.
func (p *WorkerPool) SubmitWait(ctx context.Context, job BakeJob) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobQueue <- job:
		p.metrics.SetQueueLength(len(p.jobQueue))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok || p.ctx.Err() != nil {
				return
			}
			p.metrics.SetQueueLength(len(p.jobQueue))
			res := p.run(job)
			if res.Err != nil {
				logger.Printf("worker %d: %v", id, res.Err)
			}

			select {
			case p.results <- res:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

func (p *WorkerPool) run(job BakeJob) (res JobResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = JobResult{BakeResult: BakeResult{Pos: job.Chunk.Pos}, Err: fmt.Errorf("bake chunk %v: panic: %v", job.Chunk.Pos, r)}
		}
		res.Duration = time.Since(start)
	}()

	baked := job.Chunk.Bake(p.layers, p.registry, job.Provider)
	for name, stats := range baked.Layers {
		p.metrics.ObserveLayer(name, stats)
	}
	p.metrics.ObserveChunk(time.Since(start))
	return JobResult{BakeResult: baked}
}

// Close stops accepting jobs, finishes the queued ones and waits for the
// workers.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
	close(p.results)
	logger.Printf("bake workers stopped")
}

// Shutdown drops queued jobs and stops the workers as soon as their current
// bake returns.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.Close()
}

// QueueLength returns the number of jobs waiting for a worker.
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}
