// Package sender runs outbound Bot API calls on a pool of ordered lanes.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/reviewbot/core/logger"
	"github.com/m3rciful/reviewbot/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned by enqueues after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned when the target lane has no free slot.
	ErrQueueFull = errors.New("telegram sender: queue full")

	errNilRun = errors.New("telegram sender: nil run function")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	// Name labels log lines of this dispatcher, e.g. "fanout".
	Name string
	// QueueSize is the total capacity, split evenly between lanes.
	QueueSize int
	// Workers is the number of lanes; each lane has one goroutine.
	Workers    int
	MaxRetries int
	// RetryBackoff grows linearly with the attempt number.
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = "tg.sender"
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	lane     int
	run      func() error
}

func (j job) attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("op", j.action),
		slog.Int("lane", j.lane),
		slog.String("endpoint", j.endpoint),
	}
	return slices.Clip(attrs)
}

// Dispatcher executes outbound calls asynchronously with retries. Jobs
// enqueued with the same key share a lane and run in enqueue order.
type Dispatcher struct {
	opts  Options
	lanes []chan job
	rr    atomic.Uint64
	errs  atomic.Uint64
	wg    sync.WaitGroup

	mu     sync.RWMutex // guards closed against sends on lanes
	closed bool
}

// NewDispatcher starts the lane workers. Zero options take defaults.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		opts:  opts,
		lanes: make([]chan job, opts.Workers),
	}
	depth := max(opts.QueueSize/opts.Workers, 1)
	d.wg.Add(len(d.lanes))
	for i := range d.lanes {
		d.lanes[i] = make(chan job, depth)
		go d.work(d.lanes[i])
	}
	return d
}

// Enqueue schedules run on the next lane in round-robin order. run may be
// called more than once when MaxRetries is set.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	lane := int(d.rr.Add(1) % uint64(len(d.lanes)))
	return d.push(ctx, lane, action, endpoint, run)
}

// EnqueueKeyed schedules run on the lane owned by key.
func (d *Dispatcher) EnqueueKeyed(ctx context.Context, key int64, action, endpoint string, run func() error) error {
	lane := int(uint64(key) % uint64(len(d.lanes)))
	return d.push(ctx, lane, action, endpoint, run)
}

// Lanes returns the number of independent lanes.
func (d *Dispatcher) Lanes() int {
	return len(d.lanes)
}

// ErrorCount returns the number of jobs that failed for good.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

func (d *Dispatcher) push(ctx context.Context, lane int, action, endpoint string, run func() error) error {
	if run == nil {
		return errNilRun
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.lanes[lane] <- job{ctx: ctx, action: action, endpoint: endpoint, lane: lane, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close rejects new jobs and waits until the queued ones have run.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, lane := range d.lanes {
		close(lane)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) work(lane <-chan job) {
	defer d.wg.Done()
	for j := range lane {
		d.process(j)
	}
}

func (d *Dispatcher) process(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	budget, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attrs := j.attrs()
	logger.Debug(ctx, d.opts.Name, "send.start", attrs...)

	var (
		err   error
		tries int
	)
	for tries < d.opts.MaxRetries+1 {
		tries++
		if err = j.run(); err == nil {
			logger.Debug(ctx, d.opts.Name, "send.success", append(attrs,
				slog.String("status", "ok"),
				slog.Int("attempts", tries),
				slog.Duration("elapsed", logger.Took(start)),
			)...)
			return
		}
		if tries > d.opts.MaxRetries || !netutil.ShouldRetry(err) {
			break
		}
		backoff := d.opts.RetryBackoff * time.Duration(tries)
		logger.Debug(ctx, d.opts.Name, "send.retry", append(attrs,
			slog.String("status", "retry"),
			slog.Int("attempts", tries),
			slog.Duration("backoff", backoff),
			slog.String("err", sanitizeErrorMessage(err)),
		)...)
		if sleep(budget, backoff) != nil {
			break
		}
	}

	d.errs.Add(1)
	logger.Error(ctx, d.opts.Name, "send.fail", append(attrs,
		slog.String("status", "fail"),
		slog.Int("attempts", tries),
		slog.Duration("elapsed", logger.Took(start)),
		slog.String("err", sanitizeErrorMessage(err)),
		slog.String("err_code", classifyError(err)),
	)...)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
