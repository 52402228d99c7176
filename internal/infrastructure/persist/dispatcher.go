// Package persist runs learner-state saves off the request path. Saves are
// retried with exponential backoff; a save that still fails is reported as
// ErrPersistenceFailure and never rolls back in-memory state.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"skill-readiness/internal/config"
	"skill-readiness/internal/pkg/logger"
	"skill-readiness/internal/pkg/metrics"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

var (
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrQueueFull          = errors.New("persistence queue full")
	ErrClosed             = errors.New("dispatcher closed")
)

// Task saves one snapshot. Run must be safe to call more than once.
type Task struct {
	LearnerID uuid.UUID
	Name      string
	Run       func(ctx context.Context) error
}

// Failure is handed to the OnFailure callback once retries are exhausted or
// the task could not be queued.
type Failure struct {
	LearnerID uuid.UUID
	Task      string
	Err       error
}

type FailureFunc func(Failure)

type Dispatcher struct {
	workers     int
	maxTries    uint
	backoff     time.Duration
	timeout     time.Duration
	tasks       chan Task
	log         *logger.Logger
	metrics     *metrics.Manager
	onFailure   FailureFunc
	isPermanent func(error) bool

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

type Option func(*Dispatcher)

func WithMetrics(m *metrics.Manager) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithOnFailure(fn FailureFunc) Option {
	return func(d *Dispatcher) { d.onFailure = fn }
}

// WithPermanent marks errors that must not be retried.
func WithPermanent(fn func(error) bool) Option {
	return func(d *Dispatcher) { d.isPermanent = fn }
}

func NewDispatcher(cfg config.PersistenceConfig, log *logger.Logger, opts ...Option) *Dispatcher {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	queue := cfg.QueueSize
	if queue < 0 {
		queue = 0
	}
	tries := cfg.MaxRetries
	if tries <= 0 {
		tries = 1
	}
	wait := cfg.RetryBackoff
	if wait <= 0 {
		wait = 200 * time.Millisecond
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	d := &Dispatcher{
		workers:  workers,
		maxTries: uint(tries),
		backoff:  wait,
		timeout:  timeout,
		tasks:    make(chan Task, queue),
		log:      log,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Start launches the workers. They exit when ctx is cancelled or after Close
// once the queue is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(d.workers)
	for i := 0; i < d.workers; i++ {
		go func() {
			defer d.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-d.tasks:
					if !ok {
						return
					}
					d.execute(ctx, t)
				}
			}
		}()
	}
}

// Submit queues t without blocking. A full queue is reported like a failed
// save so the learner still gets a warning.
func (d *Dispatcher) Submit(t Task) error {
	if d == nil || t.Run == nil {
		return nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	select {
	case d.tasks <- t:
		return nil
	default:
		d.metrics.PersistenceDropped()
		d.fail(t, ErrQueueFull)
		return ErrQueueFull
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.tasks)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) execute(ctx context.Context, t Task) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = d.backoff
	eb.MaxInterval = 10 * d.backoff

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		runCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		err := t.Run(runCtx)
		if err == nil {
			return struct{}{}, nil
		}
		if d.isPermanent != nil && d.isPermanent(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		d.log.Debug("persistence attempt failed", "learner_id", t.LearnerID, "task", t.Name, "attempt", attempt, "error", err)
		return struct{}{}, err
	},
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(d.maxTries),
	)
	if err != nil {
		d.metrics.PersistenceFailed()
		d.fail(t, err)
		return
	}
	d.metrics.PersistenceSaved()
}

func (d *Dispatcher) fail(t Task, cause error) {
	err := fmt.Errorf("%w: %s: %v", ErrPersistenceFailure, t.Name, cause)
	d.log.Warn("learner state not persisted", "learner_id", t.LearnerID, "task", t.Name, "error", cause)
	if d.onFailure != nil {
		d.onFailure(Failure{LearnerID: t.LearnerID, Task: t.Name, Err: err})
	}
}
