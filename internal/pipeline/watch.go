package pipeline

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TobiSchelling/LibLoans/internal/schedule"
	"github.com/TobiSchelling/LibLoans/internal/watch"
)

// WatchOptions configures a long-running annotation loop.
type WatchOptions struct {
	Input    string
	Output   string
	Interval time.Duration

	// Render rebuilds the report from DataDir on every cycle instead of
	// re-annotating Input.
	Render  bool
	DataDir string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Watch annotates immediately, then on every interval, and also whenever the
// input changes (when input and output differ). It blocks until ctx is
// cancelled or the file watcher fails, and stops the timer before returning.
func (p *Pipeline) Watch(ctx context.Context, opts WatchOptions) error {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = p.cfg.Annotate.Interval
	}

	cycle := func() {
		if opts.Render {
			if err := p.RenderReport(opts.DataDir, opts.Output, now()).Err(); err != nil {
				log.Printf("Render cycle failed: %v", err)
			}
			return
		}
		if _, err := p.AnnotatePage(opts.Input, opts.Output, now()); err != nil {
			log.Printf("Annotation cycle failed: %v", err)
		}
	}

	timer := schedule.New(interval, func(context.Context, time.Time) { cycle() })
	log.Printf("Annotating every %s", timer.Interval())
	timer.Start(ctx)
	defer timer.Stop()

	g, gCtx := errgroup.WithContext(ctx)
	if !opts.Render && !samePath(opts.Input, opts.Output) {
		g.Go(func() error {
			return watch.File(gCtx, opts.Input, watch.DefaultDebounce, cycle)
		})
	}
	g.Go(func() error {
		<-gCtx.Done()
		return nil
	})

	return g.Wait()
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
