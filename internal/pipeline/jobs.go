package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/doclink/internal/linkify"
	"github.com/dgallion1/doclink/internal/render"
)

// JobStatus represents the state of a linkify job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusLinking   JobStatus = "linking"
	StatusRendering JobStatus = "rendering"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Done reports whether the status is final.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks one uploaded document through parse, link and render.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus     `json:"status"`
	Phase    string        `json:"phase"`
	Filename string        `json:"filename"`
	Title    string        `json:"title"`
	Format   render.Format `json:"format"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   []byte
	events   []linkify.Event
	errors   []string
}

// Progress counts what the job produced so far.
type Progress struct {
	Blocks       int      `json:"blocks"`
	LinksCreated int      `json:"links_created"`
	LinksRemoved int      `json:"links_removed"`
	LinksChanged int      `json:"links_changed"`
	Errors       []string `json:"errors"`
}

// NewJob returns a queued job owning data.
func NewJob(id, filename, title string, format render.Format, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     title,
		Format:    format,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs and returns how many went.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.ttl)
	n := 0
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.UpdatedAt.Before(cutoff)
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
			n++
		}
	}
	return n
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

func (j *Job) SetBlocks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Blocks = n
	j.UpdatedAt = time.Now()
}

// AddEvents appends link events and updates the per-kind counts.
func (j *Job) AddEvents(events []linkify.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, ev := range events {
		switch ev.Kind {
		case linkify.EventCreated:
			j.Progress.LinksCreated++
		case linkify.EventRemoved:
			j.Progress.LinksRemoved++
		case linkify.EventChanged:
			j.Progress.LinksChanged++
		}
	}
	j.events = append(j.events, events...)
	j.UpdatedAt = time.Now()
}

// Events returns a copy of the recorded link events.
func (j *Job) Events() []linkify.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]linkify.Event{}, j.events...)
}

// SetResult stores the rendered document and releases the upload.
func (j *Job) SetResult(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = data
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Result returns the rendered document once the job has completed.
func (j *Job) Result() ([]byte, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusCompleted {
		return nil, false
	}
	return j.result, true
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string        `json:"job_id"`
	Status      JobStatus     `json:"status"`
	Phase       string        `json:"phase"`
	Filename    string        `json:"filename"`
	Title       string        `json:"title"`
	Format      render.Format `json:"format"`
	ContentHash string        `json:"content_hash,omitempty"`
	Progress    Progress      `json:"progress"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	p := j.Progress
	p.Errors = append([]string{}, j.errors...)
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		Format:      j.Format,
		ContentHash: j.ContentHash,
		Progress:    p,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func (j *Job) setContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
