package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/doclink/internal/doctree"
	"github.com/dgallion1/doclink/internal/linkify"
	"github.com/dgallion1/doclink/internal/metrics"
	"github.com/dgallion1/doclink/internal/parser"
	"github.com/dgallion1/doclink/internal/render"
)

// Options configure every phase a worker runs.
type Options struct {
	Parser  parser.Options
	Linkify linkify.Options
	Render  render.Options
}

// Worker processes a single document job.
type Worker struct {
	opts    Options
	stats   *LatencyStats
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewWorker returns a worker. stats and m may be nil.
func NewWorker(opts Options, stats *LatencyStats, m *metrics.Metrics, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{opts: opts, stats: stats, metrics: m, log: log}
}

// Process runs parse, link and render for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	start := time.Now()
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	status := w.process(ctx, job, log)

	elapsed := time.Since(start)
	if w.stats != nil {
		w.stats.Record(elapsed)
	}
	if w.metrics != nil {
		w.metrics.ObserveJob(string(status), elapsed)
	}
	log.Info("job finished", "status", status, "duration_ms", elapsed.Milliseconds())
}

func (w *Worker) process(ctx context.Context, job *Job, log *slog.Logger) JobStatus {
	fail := func(phase string, err error) JobStatus {
		log.Error(phase+" failed", "error", err)
		job.AddError(fmt.Sprintf("%s: %s", phase, err))
		job.SetStatus(StatusFailed, phase)
		return StatusFailed
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.opts.Parser)
	if err != nil {
		return fail("parsing", err)
	}
	tree, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		return fail("parsing", err)
	}
	if job.Title != "" {
		tree.Title = job.Title
	}
	job.setContentHash(ContentHashHex([]byte(tree.TextContent(tree.Root()))))
	job.SetBlocks(tree.ChildCount(tree.Root()))
	if err := ctx.Err(); err != nil {
		return fail("parsing", err)
	}

	// Phase 2: Link
	job.SetStatus(StatusLinking, "linking")
	events, err := w.link(tree)
	if err != nil {
		return fail("linking", err)
	}
	job.AddEvents(events)
	log.Info("linked document", "events", len(events))
	if err := ctx.Err(); err != nil {
		return fail("linking", err)
	}

	// Phase 3: Render
	job.SetStatus(StatusRendering, "rendering")
	out, err := render.Render(tree, job.Format, w.opts.Render)
	if err != nil {
		return fail("rendering", err)
	}
	job.SetResult(out)
	job.SetStatus(StatusCompleted, "done")
	return StatusCompleted
}

// Linkify links tree in place and renders it in format f.
func (w *Worker) Linkify(tree *doctree.Tree, f render.Format) ([]byte, []linkify.Event, error) {
	events, err := w.link(tree)
	if err != nil {
		return nil, nil, err
	}
	out, err := render.Render(tree, f, w.opts.Render)
	if err != nil {
		return nil, nil, err
	}
	return out, events, nil
}

func (w *Worker) link(tree *doctree.Tree) ([]linkify.Event, error) {
	opts := w.opts.Linkify
	if opts.Logger == nil {
		opts.Logger = w.log
	}
	if w.metrics != nil {
		next := opts.Observe
		opts.Observe = func(ev linkify.Event) {
			w.metrics.ObserveLinkEvent(string(ev.Kind))
			if next != nil {
				next(ev)
			}
		}
	}
	doc, err := linkify.Attach(tree, opts)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return doc.Events(), nil
}
