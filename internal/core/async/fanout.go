package async

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/pyq-analyzer/internal/common"
)

// Outcome is the result of one task, stored at the task's input index.
type Outcome[T any] struct {
	Index int
	Value T
	Err   error
}

// Fanout runs independent tasks concurrently with a bounded worker count,
// an optional per-task timeout and an optional shared request rate.
type Fanout struct {
	logger  *slog.Logger
	workers int
	timeout time.Duration
	limiter *rate.Limiter
}

type Option func(*Fanout)

func WithWorkers(n int) Option {
	return func(f *Fanout) {
		if n > 0 {
			f.workers = n
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(f *Fanout) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithRateLimit caps task starts to perMinute across all workers. Zero disables it.
func WithRateLimit(perMinute int) Option {
	return func(f *Fanout) {
		if perMinute > 0 {
			f.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

func NewFanout(logger *slog.Logger, opts ...Option) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fanout{
		logger:  logger,
		workers: 4,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Workers reports the configured concurrency.
func (f *Fanout) Workers() int {
	return f.workers
}

// Run calls fn once per index in [0, n). A failing task never cancels its
// siblings; its error is recorded in the matching Outcome. Run only returns
// an error when ctx itself is done before every task got a chance to start.
func Run[T any](ctx context.Context, f *Fanout, n int, fn func(ctx context.Context, i int) (T, error)) ([]Outcome[T], error) {
	out := make([]Outcome[T], n)
	if n == 0 {
		return out, nil
	}

	g := new(errgroup.Group)
	g.SetLimit(f.workers)
	runID := common.RunIDFromContext(ctx)

	for i := 0; i < n; i++ {
		out[i].Index = i
		if err := ctx.Err(); err != nil {
			out[i].Err = err
			continue
		}
		g.Go(func() error {
			if f.limiter != nil {
				if err := f.limiter.Wait(ctx); err != nil {
					out[i].Err = fmt.Errorf("rate limit wait: %w", err)
					return nil
				}
			}

			tctx, cancel := common.WithTimeout(ctx, f.timeout)
			defer cancel()

			start := time.Now()
			v, err := func() (v T, err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("task %d panicked: %v", i, r)
					}
				}()
				return fn(tctx, i)
			}()
			out[i].Value = v
			out[i].Err = err

			if err != nil {
				f.logger.Debug("async.task.failed", "run_id", runID, "index", i, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
			} else {
				f.logger.Debug("async.task.ok", "run_id", runID, "index", i, "elapsed_ms", time.Since(start).Milliseconds())
			}
			return nil
		})
	}
	_ = g.Wait()

	return out, ctx.Err()
}
