package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/doclink/internal/config"
	"github.com/dgallion1/doclink/internal/editor"
	"github.com/dgallion1/doclink/internal/linkify"
	"github.com/dgallion1/doclink/internal/metrics"
	"github.com/dgallion1/doclink/internal/parser"
	"github.com/dgallion1/doclink/internal/render"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorker_ProcessText(t *testing.T) {
	m := metrics.New()
	stats := NewLatencyStats(time.Hour)
	w := NewWorker(Options{}, stats, m, quietLogger())

	job := NewJob("j1", "notes.txt", "", render.FormatHTML, []byte("see www.example.com today\n\nmail me@example.org"))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Blocks != 2 {
		t.Errorf("expected 2 blocks, got %d", snap.Progress.Blocks)
	}
	if snap.Progress.LinksCreated != 2 {
		t.Errorf("expected 2 links created, got %d", snap.Progress.LinksCreated)
	}
	if snap.ContentHash == "" {
		t.Error("expected content hash")
	}

	out, ok := job.Result()
	if !ok {
		t.Fatal("expected result")
	}
	for _, want := range []string{
		`<a href="https://www.example.com" data-autolink="true">www.example.com</a> today`,
		`<a href="mailto:me@example.org" data-autolink="true">me@example.org</a>`,
	} {
		if !strings.Contains(string(out), want) {
			t.Errorf("expected output to contain %q, got %s", want, out)
		}
	}

	if got := testutil.ToFloat64(m.LinkEvents.WithLabelValues("created")); got != 2 {
		t.Errorf("expected 2 created events counted, got %v", got)
	}
	if got := testutil.ToFloat64(m.Jobs.WithLabelValues("completed")); got != 1 {
		t.Errorf("expected 1 completed job counted, got %v", got)
	}
	if stats.Snapshot().Count != 1 {
		t.Error("expected latency sample")
	}
}

func TestWorker_ProcessMarkdownKeepsManualLinks(t *testing.T) {
	w := NewWorker(Options{}, nil, nil, quietLogger())
	job := NewJob("j2", "doc.md", "Custom", render.FormatJSON, []byte("# Hi\n\n[site](https://go.dev) and https://go.dev/doc\n"))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.LinksCreated != 1 {
		t.Errorf("expected only the bare URL to be linked, got %d", snap.Progress.LinksCreated)
	}
	out, _ := job.Result()
	if !strings.Contains(string(out), `"title":"Custom"`) {
		t.Errorf("expected job title in JSON, got %s", out)
	}
}

func TestWorker_ProcessFailures(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		phase    string
	}{
		{"unsupported", "image.png", "x", "parsing"},
		{"bad json", "doc.json", "{", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorker(Options{}, nil, nil, quietLogger())
			job := NewJob("f", tt.filename, "", render.FormatHTML, []byte(tt.data))
			w.Process(context.Background(), job)

			snap := job.Snapshot()
			if snap.Status != StatusFailed || snap.Phase != tt.phase {
				t.Errorf("expected failed in %q, got %q/%q", tt.phase, snap.Status, snap.Phase)
			}
			if len(snap.Progress.Errors) != 1 {
				t.Errorf("expected 1 error, got %v", snap.Progress.Errors)
			}
		})
	}
}

func TestWorker_ProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewWorker(Options{}, nil, nil, quietLogger())
	job := NewJob("c", "a.txt", "", render.FormatHTML, []byte("www.x.com"))
	w.Process(ctx, job)
	if snap := job.Snapshot(); snap.Status != StatusFailed {
		t.Errorf("expected failed job after cancel, got %q", snap.Status)
	}
}

func TestWorker_LinkifyPassLimit(t *testing.T) {
	w := NewWorker(Options{Linkify: linkify.Options{MaxPasses: 1}}, nil, nil, quietLogger())
	tree, err := parser.ParseText("t", "a www.x.com b www.y.com c www.z.com")
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = w.Linkify(tree, render.FormatHTML)
	if !errors.Is(err, editor.ErrTransformLoop) {
		t.Errorf("expected transform loop error, got %v", err)
	}
}

func TestOrchestrator_EndToEnd(t *testing.T) {
	cfg := config.Config{WorkerCount: 2, MaxQueueSize: 4, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, Options{}, metrics.New(), quietLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("e2e", "a.txt", "", render.FormatMarkdown, []byte("go to www.example.com"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !job.Snapshot().Status.Done() {
		if time.Now().After(deadline) {
			t.Fatal("job did not finish")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if o.GetJob("e2e") != job {
		t.Error("expected job to be retrievable")
	}
	out, ok := job.Result()
	if !ok {
		t.Fatalf("expected completed job, got %+v", job.Snapshot())
	}
	if want := "go to [www.example.com](https://www.example.com)\n"; string(out) != want {
		t.Errorf("expected %q, got %q", want, out)
	}
	if o.Stats().Count != 1 {
		t.Errorf("expected 1 latency sample, got %d", o.Stats().Count)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, Options{}, nil, quietLogger())

	// Not started: nothing drains the queue.
	if err := o.Submit(NewJob("a", "a.txt", "", render.FormatHTML, nil)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewJob("b", "b.txt", "", render.FormatHTML, nil)
	err := o.Submit(second)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected queue full, got %v", err)
	}
	if snap := second.Snapshot(); snap.Status != StatusFailed || snap.Phase != "queue_full" {
		t.Errorf("expected failed/queue_full, got %q/%q", snap.Status, snap.Phase)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected depth 1, got %d", o.QueueDepth())
	}
}
