package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/doclink/internal/config"
	"github.com/dgallion1/doclink/internal/doctree"
	"github.com/dgallion1/doclink/internal/linkify"
	"github.com/dgallion1/doclink/internal/metrics"
	"github.com/dgallion1/doclink/internal/render"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// Orchestrator manages the linkify job pipeline.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	worker  *Worker
	stats   *LatencyStats
	log     *slog.Logger
	cfg     config.Config
	metrics *metrics.Metrics

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. m may be nil.
func NewOrchestrator(cfg config.Config, opts Options, m *metrics.Metrics, log *slog.Logger) *Orchestrator {
	stats := NewLatencyStats(time.Hour)
	o := &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		worker:  NewWorker(opts, stats, m, log),
		stats:   stats,
		log:     log,
		cfg:     cfg,
		metrics: m,
	}
	if m != nil {
		if err := m.GaugeFunc("job_queue_depth", "Jobs waiting for a worker.", func() float64 {
			return float64(o.QueueDepth())
		}); err != nil {
			log.Warn("register queue gauge", "error", err)
		}
	}
	return o
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.worker.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if n := o.jobs.Cleanup(); n > 0 {
					o.log.Info("jobs expired", "count", n)
				}
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		if o.metrics != nil {
			o.metrics.ObserveJob("queue_full", 0)
		}
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the rolling job latency aggregate.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}

// Linkify runs link and render synchronously on the caller's goroutine.
func (o *Orchestrator) Linkify(tree *doctree.Tree, f render.Format) ([]byte, []linkify.Event, error) {
	return o.worker.Linkify(tree, f)
}
