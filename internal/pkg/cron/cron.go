package cron

import (
	"context"
	"sync"
	"time"
)

// JobStatus is the outcome of a job's most recent run.
type JobStatus string

const (
	StatusIdle    JobStatus = "idle"
	StatusRunning JobStatus = "running"
	StatusFulfill JobStatus = "fulfill"
	StatusReject  JobStatus = "reject"
)

// Job is a background task executed on a fixed interval.
type Job struct {
	Name        string
	Description string
	Interval    time.Duration
	Fn          func(ctx context.Context) error
}

type entry struct {
	job Job

	mu        sync.Mutex
	status    JobStatus
	message   string
	runs      uint64
	lastRunAt *time.Time
	nextRunAt time.Time
}

// ListItem is the serializable view of a job for the API.
type ListItem struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      JobStatus  `json:"status"`
	Runs        uint64     `json:"runs"`
	NextDate    time.Time  `json:"next_date"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	Message     string     `json:"message,omitempty"`
}

// Scheduler runs a fixed set of interval jobs, one goroutine each.
// Register everything before Start; the set is immutable afterwards.
type Scheduler struct {
	entries []*entry
	started bool
}

func New() *Scheduler { return &Scheduler{} }

// Register adds a job. Panics if called after Start, which would race
// with the running loops.
func (s *Scheduler) Register(job Job) {
	if s.started {
		panic("cron: Register after Start")
	}
	s.entries = append(s.entries, &entry{
		job:       job,
		status:    StatusIdle,
		nextRunAt: time.Now().Add(job.Interval),
	})
}

// Start launches every registered job. It returns immediately; the loops
// stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.started = true
	for _, e := range s.entries {
		go s.loop(ctx, e)
	}
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	timer := time.NewTimer(e.job.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.run(ctx, e)
			e.mu.Lock()
			e.nextRunAt = time.Now().Add(e.job.Interval)
			e.mu.Unlock()
			timer.Reset(e.job.Interval)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, e *entry) {
	e.mu.Lock()
	e.status = StatusRunning
	e.mu.Unlock()

	startedAt := time.Now()
	err := e.job.Fn(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.runs++
	e.lastRunAt = &startedAt
	if err != nil {
		e.status = StatusReject
		e.message = err.Error()
		return
	}
	e.status = StatusFulfill
	e.message = ""
}

// List reports the current state of every job.
func (s *Scheduler) List() []ListItem {
	items := make([]ListItem, 0, len(s.entries))
	for _, e := range s.entries {
		e.mu.Lock()
		items = append(items, ListItem{
			Name:        e.job.Name,
			Description: e.job.Description,
			Status:      e.status,
			Runs:        e.runs,
			NextDate:    e.nextRunAt,
			LastRunAt:   e.lastRunAt,
			Message:     e.message,
		})
		e.mu.Unlock()
	}
	return items
}
