// Package supervisor owns the single background worker slot.
package supervisor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spherical/pdf-composer/internal/domain"
	"github.com/spherical/pdf-composer/internal/observability"
)

// State of the worker slot
type State string

const (
	Idle      State = "idle"
	Running   State = "running"
	Completed State = "completed"
	Failed    State = "failed"
)

var (
	ErrNotFound   = errors.New("job not found")
	ErrNotRunning = errors.New("job is not running")
)

// Runner executes a job, sending its events to eventCh.
type Runner interface {
	Validate(job domain.Job) error
	Process(ctx context.Context, job domain.Job, eventCh chan<- domain.StreamEvent) (*domain.Result, error)
}

// Snapshot is the observable state of the current or last job
type Snapshot struct {
	JobID      string         `json:"job_id"`
	Kind       domain.JobKind `json:"kind"`
	State      State          `json:"state"`
	Done       int            `json:"done"`
	Total      int            `json:"total"`
	Message    string         `json:"message,omitempty"`
	Output     string         `json:"output"`
	Error      string         `json:"error,omitempty"`
	ErrorType  string         `json:"error_type,omitempty"`
	Result     *domain.Result `json:"result,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

// Run is the handle of a submitted job
type Run struct {
	ID     string
	events chan domain.StreamEvent
	done   chan struct{}
}

// Events delivers every event of the job in emission order and is closed
// after the terminal event. It is buffered for the whole job, so callers
// that only poll snapshots may ignore it.
func (r *Run) Events() <-chan domain.StreamEvent { return r.events }

// Done is closed when the job has finished.
func (r *Run) Done() <-chan struct{} { return r.done }

// Supervisor runs at most one job at a time
type Supervisor struct {
	runner Runner
	logger *observability.Logger

	base     context.Context
	shutdown context.CancelFunc

	mu     sync.Mutex
	snap   Snapshot
	hasJob bool
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an idle supervisor.
func New(runner Runner, logger *observability.Logger) *Supervisor {
	if logger == nil {
		logger = observability.Nop()
	}
	base, shutdown := context.WithCancel(context.Background())
	return &Supervisor{
		runner:   runner,
		logger:   logger.WithComponent("supervisor"),
		base:     base,
		shutdown: shutdown,
		snap:     Snapshot{State: Idle},
	}
}

// Submit validates job and starts it on the worker. While another job is
// running it fails with a busy error and leaves the running job untouched.
func (s *Supervisor) Submit(job domain.Job) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.State == Running {
		return nil, domain.BusyError("a job is already running: "+s.snap.JobID, nil)
	}
	if s.base.Err() != nil {
		return nil, domain.BusyError("supervisor is shut down", s.base.Err())
	}
	if strings.TrimSpace(job.Output) != "" {
		job.Output = domain.NormalizeOutputPath(job.Output)
	}
	if err := s.runner.Validate(job); err != nil {
		return nil, err
	}

	job.ID = uuid.NewString()
	size := job.Units() + 4

	ctx, cancel := context.WithCancel(s.base)
	run := &Run{
		ID:     job.ID,
		events: make(chan domain.StreamEvent, size),
		done:   make(chan struct{}),
	}
	workerCh := make(chan domain.StreamEvent, size)

	s.snap = Snapshot{
		JobID:     job.ID,
		Kind:      job.Kind,
		State:     Running,
		Total:     job.Units(),
		Output:    job.Output,
		StartedAt: time.Now(),
	}
	s.hasJob = true
	s.cancel = cancel
	s.done = run.done

	s.logger.Info().
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Int("units", job.Units()).
		Msg("job submitted")

	go func() {
		s.runner.Process(ctx, job, workerCh)
		close(workerCh)
	}()
	go s.pump(job.ID, cancel, workerCh, run)

	return run, nil
}

// pump applies worker events to the snapshot and forwards them.
func (s *Supervisor) pump(id string, cancel context.CancelFunc, in <-chan domain.StreamEvent, run *Run) {
	defer cancel()

	terminal := false
	for ev := range in {
		ev.JobID = id
		s.apply(ev)
		if ev.Type.Terminal() {
			terminal = true
		}
		run.events <- ev
	}

	// a runner that returns without a terminal event still ends the job
	if !terminal {
		ev := domain.ErrorEvent(domain.NewError(domain.ErrorTypeIO, "worker stopped without a result", nil))
		ev.JobID = id
		s.apply(ev)
		run.events <- ev
	}

	close(run.events)
	close(run.done)
}

func (s *Supervisor) apply(ev domain.StreamEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case domain.EventStart:
		s.snap.Total = ev.Total
	case domain.EventProgress:
		s.snap.Done = ev.Done
		s.snap.Total = ev.Total
	case domain.EventMessage:
		s.snap.Message = ev.Message
	case domain.EventComplete:
		now := time.Now()
		s.snap.State = Completed
		s.snap.Done = ev.Done
		s.snap.Message = ev.Message
		s.snap.Result = ev.Result
		s.snap.FinishedAt = &now
		s.cancel = nil
		s.logger.Info().Str("job_id", ev.JobID).Msg("job completed")
	case domain.EventError:
		now := time.Now()
		s.snap.State = Failed
		s.snap.Error = ev.Message
		s.snap.ErrorType = string(domain.TypeOf(ev.Err))
		s.snap.FinishedAt = &now
		s.cancel = nil
		s.logger.Warn().Str("job_id", ev.JobID).Str("error", ev.Message).Msg("job failed")
	}
}

// Snapshot returns the state of the current or last job. ok is false before
// the first submission.
func (s *Supervisor) Snapshot() (snap Snapshot, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap, s.hasJob
}

// Lookup returns the snapshot if id is the current or last job.
func (s *Supervisor) Lookup(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasJob || s.snap.JobID != id {
		return Snapshot{}, ErrNotFound
	}
	return s.snap, nil
}

// Cancel asks the running job to stop at its next page boundary.
func (s *Supervisor) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasJob || s.snap.JobID != id {
		return ErrNotFound
	}
	if s.snap.State != Running || s.cancel == nil {
		return ErrNotRunning
	}
	s.cancel()
	s.logger.Info().Str("job_id", id).Msg("cancellation requested")
	return nil
}

// Wait blocks until the current job has finished or ctx is done. It
// returns immediately when no job is running.
func (s *Supervisor) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any running job, waits for it to finish and rejects further
// submissions.
func (s *Supervisor) Close(ctx context.Context) error {
	s.shutdown()
	return s.Wait(ctx)
}
