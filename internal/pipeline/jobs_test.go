package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/doclink/internal/linkify"
	"github.com/dgallion1/doclink/internal/render"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h := ContentHashHex([]byte{}); h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("j1", "notes.md", "Notes", render.FormatMarkdown, []byte("x"))
	if job.Status != StatusQueued || job.Phase != "queued" {
		t.Errorf("expected queued job, got %q/%q", job.Status, job.Phase)
	}
	if string(job.FileData()) != "x" {
		t.Errorf("expected file data to be kept, got %q", job.FileData())
	}
	if _, ok := job.Result(); ok {
		t.Error("expected no result before completion")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("test-1", "a.txt", "", render.FormatHTML, nil)

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusLinking, "linking"},
		{StatusRendering, "rendering"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
	if !job.Status.Done() {
		t.Error("expected completed to be final")
	}
	if StatusLinking.Done() {
		t.Error("expected linking not to be final")
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("parsing: bad input")
	job.AddError("linking: loop")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "parsing: bad input" {
		t.Errorf("expected first error %q, got %q", "parsing: bad input", snap.Progress.Errors[0])
	}
}

func TestJob_AddEvents(t *testing.T) {
	job := &Job{ID: "events-test", UpdatedAt: time.Now()}
	job.AddEvents([]linkify.Event{
		{Kind: linkify.EventCreated, URL: "https://a.com"},
		{Kind: linkify.EventCreated, URL: "https://b.com"},
		{Kind: linkify.EventChanged, URL: "https://c.com", PrevURL: "https://b.com"},
	})
	job.AddEvents([]linkify.Event{{Kind: linkify.EventRemoved, PrevURL: "https://a.com"}})

	snap := job.Snapshot()
	if snap.Progress.LinksCreated != 2 || snap.Progress.LinksChanged != 1 || snap.Progress.LinksRemoved != 1 {
		t.Errorf("unexpected counts %+v", snap.Progress)
	}
	if n := len(job.Events()); n != 4 {
		t.Errorf("expected 4 events, got %d", n)
	}
}

func TestJob_SnapshotEmptyErrors(t *testing.T) {
	job := &Job{ID: "snap-test", Status: StatusQueued, UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJob_SetResultReleasesUpload(t *testing.T) {
	job := NewJob("r", "a.txt", "", render.FormatHTML, []byte("upload"))
	job.SetResult([]byte("<p>x</p>"))
	if job.FileData() != nil {
		t.Error("expected upload to be released")
	}
	if _, ok := job.Result(); ok {
		t.Error("expected result hidden until completed")
	}
	job.SetStatus(StatusCompleted, "done")
	out, ok := job.Result()
	if !ok || string(out) != "<p>x</p>" {
		t.Errorf("expected result, got %q (%v)", out, ok)
	}
}

func TestJobStore_PutGetCleanup(t *testing.T) {
	store := NewJobStore(time.Minute)
	fresh := &Job{ID: "fresh", UpdatedAt: time.Now()}
	stale := &Job{ID: "stale", UpdatedAt: time.Now().Add(-2 * time.Minute)}
	store.Put(fresh)
	store.Put(stale)

	if got := store.Get("fresh"); got != fresh {
		t.Error("expected to get the stored job back")
	}
	if got := store.Get("missing"); got != nil {
		t.Error("expected nil for unknown job")
	}
	if n := store.Cleanup(); n != 1 {
		t.Errorf("expected 1 expired job, got %d", n)
	}
	if store.Get("stale") != nil {
		t.Error("expected stale job to be removed")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job left, got %d", store.Len())
	}
}
