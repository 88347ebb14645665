// Package schedule runs a job immediately and then on a fixed interval.
package schedule

import (
	"context"
	"log"
	"sync"
	"time"
)

// Job is invoked with the wall-clock time of the firing.
type Job func(ctx context.Context, now time.Time)

// Recurring owns a ticker and the goroutine that drives it. Firings never
// overlap; there is no drift correction.
type Recurring struct {
	interval time.Duration
	job      Job
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a recurring job. It does nothing until Start or Run is called.
func New(interval time.Duration, job Job) *Recurring {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Recurring{interval: interval, job: job, now: time.Now}
}

// Interval returns the configured period.
func (r *Recurring) Interval() time.Duration {
	return r.interval
}

// Run fires the job once, then every interval until ctx is cancelled.
func (r *Recurring) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.fire(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.fire(ctx)
		}
	}
}

func (r *Recurring) fire(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Scheduled job panicked: %v", rec)
		}
	}()
	r.job(ctx, r.now())
}

// Start runs the job in a background goroutine owned by r. Calling Start on
// a running Recurring is a no-op.
func (r *Recurring) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		r.Run(ctx)
	}()
}

// Stop cancels the timer and waits for an in-flight firing to return.
func (r *Recurring) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
