// Package jobs runs research requests on a small bounded worker pool so
// the HTTP request that triggers a scrape does not wait for it.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status is the lifecycle state of a submitted job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrQueueFull is returned by Submit when the queue has no capacity.
var ErrQueueFull = eris.New("jobs: queue full")

// ErrClosed is returned by Submit after Close.
var ErrClosed = eris.New("jobs: queue closed")

// Job is one unit of queued work and its visible state.
type Job struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
	StartedAt   time.Time `json:"startedAt,omitzero"`
	FinishedAt  time.Time `json:"finishedAt,omitzero"`
	Error       string    `json:"error,omitempty"`

	// Result holds whatever the runner produced, serialized by the
	// HTTP layer as-is.
	Result any `json:"result,omitempty"`
}

// Runner executes one job and returns its result.
type Runner func(ctx context.Context) (any, error)

type task struct {
	id  string
	run Runner
}

// Queue is an in-memory job queue with a fixed worker pool. Jobs are
// at-least-once from the caller's point of view: a crashed process
// loses queued jobs, which is acceptable because research runs are
// idempotent and re-submittable.
type Queue struct {
	tasks chan task
	group *errgroup.Group
	gctx  context.Context

	mu     sync.RWMutex
	jobs   map[string]*Job
	closed bool
}

// NewQueue creates a queue with the given worker count and capacity and
// starts the workers. ctx cancellation stops the workers after their
// current job.
func NewQueue(ctx context.Context, workers, capacity int) *Queue {
	if workers <= 0 {
		workers = 3
	}
	if capacity <= 0 {
		capacity = 256
	}

	q := &Queue{
		tasks: make(chan task, capacity),
		jobs:  make(map[string]*Job),
	}

	q.group, q.gctx = errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		q.group.Go(q.worker)
	}
	return q
}

// Submit enqueues a runner and returns the job ID for status polling.
func (q *Queue) Submit(run Runner) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return "", ErrClosed
	}

	id := uuid.NewString()
	select {
	case q.tasks <- task{id: id, run: run}:
	default:
		return "", ErrQueueFull
	}

	q.jobs[id] = &Job{
		ID:          id,
		Status:      StatusQueued,
		SubmittedAt: time.Now().UTC(),
	}
	return id, nil
}

// Get returns a snapshot of the job with the given ID.
func (q *Queue) Get(id string) (Job, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	j, ok := q.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Close stops accepting jobs, drains the queue, and waits for workers
// to finish.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	return q.group.Wait()
}

func (q *Queue) worker() error {
	for t := range q.tasks {
		if q.gctx.Err() != nil {
			q.update(t.id, func(j *Job) {
				j.Status = StatusFailed
				j.Error = "canceled before start"
				j.FinishedAt = time.Now().UTC()
			})
			continue
		}

		q.update(t.id, func(j *Job) {
			j.Status = StatusRunning
			j.StartedAt = time.Now().UTC()
		})

		result, err := t.run(q.gctx)

		q.update(t.id, func(j *Job) {
			j.FinishedAt = time.Now().UTC()
			if err != nil {
				j.Status = StatusFailed
				j.Error = err.Error()
				return
			}
			j.Status = StatusCompleted
			j.Result = result
		})

		if err != nil {
			zap.L().Warn("job failed",
				zap.String("job_id", t.id),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (q *Queue) update(id string, fn func(*Job)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if j, ok := q.jobs[id]; ok {
		fn(j)
	}
}
