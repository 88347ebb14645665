package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestRunFiresImmediately(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	fired := make(chan time.Time, 1)
	r := New(time.Hour, func(_ context.Context, now time.Time) {
		fired <- now
		cancel()
	})

	if err := r.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-fired:
	default:
		t.Fatal("expected job to fire before the first tick")
	}
}

func TestRunRepeats(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	var count atomic.Int32
	r := New(5*time.Millisecond, func(_ context.Context, _ time.Time) {
		if count.Add(1) == 3 {
			cancel()
		}
	})

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for three firings")
	}
	if got := count.Load(); got < 3 {
		t.Errorf("expected at least 3 firings, got %d", got)
	}
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{}, 1)
	r := New(time.Hour, func(_ context.Context, _ time.Time) {
		select {
		case started <- struct{}{}:
		default:
		}
	})

	r.Start(context.Background())
	r.Start(context.Background())

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not fire on start")
	}

	r.Stop()
	r.Stop()
}

func TestPanickingJobKeepsRunning(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	var count atomic.Int32
	r := New(5*time.Millisecond, func(_ context.Context, _ time.Time) {
		if count.Add(1) == 2 {
			cancel()
			return
		}
		panic("boom")
	})

	r.Run(ctx)
	if got := count.Load(); got < 2 {
		t.Errorf("expected job to fire again after panic, got %d firings", got)
	}
}

func TestDefaultInterval(t *testing.T) {
	r := New(0, func(context.Context, time.Time) {})
	if r.Interval() != time.Hour {
		t.Errorf("expected default interval of 1h, got %v", r.Interval())
	}
}
