package dispatch

import (
	"context"
	"sync"
	"time"
)

// Timer is a scheduled callback that can be stopped
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Runner drives a Dispatcher with real timers: every ticket schedules exactly
// one Resolve, and Close stops the outstanding timer.
type Runner struct {
	d     *Dispatcher
	sched Scheduler

	mu       sync.Mutex
	timer    Timer
	changed  chan struct{}
	onChange func()
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithScheduler replaces the wall-clock scheduler
func WithScheduler(s Scheduler) RunnerOption {
	return func(r *Runner) {
		if s != nil {
			r.sched = s
		}
	}
}

// WithOnChange registers a callback invoked after every conversation change
func WithOnChange(f func()) RunnerOption {
	return func(r *Runner) {
		r.onChange = f
	}
}

// NewRunner creates a runner for d
func NewRunner(d *Dispatcher, opts ...RunnerOption) *Runner {
	r := &Runner{
		d:       d,
		sched:   clockScheduler{},
		changed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dispatcher returns the wrapped dispatcher
func (r *Runner) Dispatcher() *Dispatcher {
	return r.d
}

// SubmitOption submits an option and schedules its response
func (r *Runner) SubmitOption(option string) error {
	t, err := r.d.SubmitOption(option)
	return r.after(t, err)
}

// SubmitText submits free text and schedules its response
func (r *Runner) SubmitText(text string) error {
	t, err := r.d.SubmitText(text)
	return r.after(t, err)
}

func (r *Runner) after(t Ticket, err error) error {
	if err != nil {
		return err
	}
	if !t.IsZero() {
		r.notify()
		r.schedule(t)
	}
	return nil
}

func (r *Runner) schedule(t Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timer = r.sched.AfterFunc(t.Delay, func() {
		r.fire(t.ID)
	})
}

func (r *Runner) fire(id uint64) {
	next, ok := r.d.Resolve(id)
	if !ok {
		return
	}
	r.notify()
	if !next.IsZero() {
		r.schedule(next)
	}
}

func (r *Runner) notify() {
	r.mu.Lock()
	close(r.changed)
	r.changed = make(chan struct{})
	cb := r.onChange
	r.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (r *Runner) changes() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changed
}

// Wait blocks until nothing is pending or queued, or ctx is done
func (r *Runner) Wait(ctx context.Context) error {
	for {
		ch := r.changes()
		if r.d.Settled() {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops the outstanding timer and closes the dispatcher
func (r *Runner) Close() {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.mu.Unlock()

	r.d.Close()
	r.notify()
}
