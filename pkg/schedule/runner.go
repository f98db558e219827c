package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// JobFunc is the unit of periodic work. Errors are logged, not retried; the
// job runs again at its next scheduled time regardless.
type JobFunc func(ctx context.Context) error

// Runner executes registered jobs when they become due.
type Runner struct {
	mu       sync.RWMutex
	jobs     map[string]*registeredJob
	interval time.Duration
	logger   *slog.Logger
}

type registeredJob struct {
	name    string
	sched   Schedule
	fn      JobFunc
	nextRun time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCheckInterval sets how often the runner polls for due jobs.
func WithCheckInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a job runner with a 30 second default poll interval.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		jobs:     make(map[string]*registeredJob),
		interval: 30 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a periodic job. The first run happens at the schedule's next
// occurrence after Start, not immediately.
func (r *Runner) Add(name string, sched Schedule, fn JobFunc) error {
	if fn == nil || sched == nil {
		return ErrInvalidJob
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[name]; exists {
		return ErrJobAlreadyRegistered
	}

	r.jobs[name] = &registeredJob{name: name, sched: sched, fn: fn}

	r.logger.Info("registered periodic job",
		slog.String("job", name),
		slog.String("schedule", sched.String()))

	return nil
}

// Start blocks running jobs until the context is cancelled.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if len(r.jobs) == 0 {
		r.mu.Unlock()
		return ErrNoJobsRegistered
	}
	now := time.Now()
	for _, job := range r.jobs {
		job.nextRun = job.sched.Next(now)
	}
	r.mu.Unlock()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("job runner shutting down")
			return ctx.Err()
		case <-ticker.C:
			r.runDueJobs(ctx)
		}
	}
}

func (r *Runner) runDueJobs(ctx context.Context) {
	now := time.Now()

	r.mu.Lock()
	due := make([]*registeredJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		if !job.nextRun.After(now) {
			due = append(due, job)
			job.nextRun = job.sched.Next(now)
		}
	}
	r.mu.Unlock()

	for _, job := range due {
		start := time.Now()
		if err := job.fn(ctx); err != nil {
			r.logger.Error("periodic job failed",
				slog.String("job", job.name),
				slog.Duration("took", time.Since(start)),
				slog.String("error", err.Error()))
			continue
		}
		r.logger.Info("periodic job completed",
			slog.String("job", job.name),
			slog.Duration("took", time.Since(start)))
	}
}

// Jobs returns the names of all registered jobs.
func (r *Runner) Jobs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	return names
}
