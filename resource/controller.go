// Package resource bounds the cost of loading split blobs: how many loads
// run at once, how many bytes they may buffer and how fast they read.
package resource

import (
	"context"
	"io"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds the loading limits. Zero values mean unlimited, except
// MaxConcurrentLoads which falls back to a single load.
type Config struct {
	MemoryLimitBytes   int64
	MaxConcurrentLoads int64
	IOLimitBytesPerSec int64
}

// Stats is a point-in-time view of a Controller.
type Stats struct {
	ActiveLoads   int64
	BufferedBytes int64
}

// Controller hands out leases for blob loads. A nil *Controller imposes no
// limits.
type Controller struct {
	cfg Config

	slots   *semaphore.Weighted
	buffer  *semaphore.Weighted // nil when unlimited
	limiter *rate.Limiter       // nil when unlimited

	active   atomic.Int64
	buffered atomic.Int64
}

// NewController creates a Controller enforcing cfg.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentLoads <= 0 {
		cfg.MaxConcurrentLoads = 1
	}

	c := &Controller{
		cfg:   cfg,
		slots: semaphore.NewWeighted(cfg.MaxConcurrentLoads),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.buffer = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// Config returns the effective limits.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// Stats reports the loads currently holding a lease and the bytes they
// have reserved.
func (c *Controller) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		ActiveLoads:   c.active.Load(),
		BufferedBytes: c.buffered.Load(),
	}
}

// Begin waits for a free load slot and returns the lease holding it.
func (c *Controller) Begin(ctx context.Context) (*Lease, error) {
	if c == nil {
		return &Lease{}, nil
	}
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	c.active.Add(1)
	return &Lease{c: c}, nil
}

// Lease is one in-flight load. Release it when the load is done.
type Lease struct {
	c        *Controller
	bytes    int64
	weight   int64
	released bool
}

// Reserve charges n buffered bytes to the lease, blocking while the memory
// budget is exhausted. A request above the whole budget waits for the
// budget to drain and then holds all of it.
func (l *Lease) Reserve(ctx context.Context, n int64) error {
	c := l.c
	if c == nil || n <= 0 {
		return nil
	}
	if c.buffer != nil {
		w := min(n, c.cfg.MemoryLimitBytes)
		if err := c.buffer.Acquire(ctx, w); err != nil {
			return err
		}
		l.weight += w
	}
	l.bytes += n
	c.buffered.Add(n)
	return nil
}

// Reader throttles r by the controller's IO limit.
func (l *Lease) Reader(ctx context.Context, r io.Reader) io.Reader {
	if l.c == nil || l.c.limiter == nil {
		return r
	}
	return &throttledReader{ctx: ctx, r: r, limiter: l.c.limiter}
}

// Release returns the slot and every reserved byte. Later calls are no-ops.
func (l *Lease) Release() {
	c := l.c
	if c == nil || l.released {
		return
	}
	l.released = true
	if l.weight > 0 {
		c.buffer.Release(l.weight)
	}
	c.buffered.Add(-l.bytes)
	c.active.Add(-1)
	c.slots.Release(1)
}

type throttledReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

// Read charges the bytes actually read, so short reads are not overbilled.
func (t *throttledReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		if werr := waitN(t.ctx, t.limiter, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

// waitN splits n into burst-sized waits; WaitN rejects anything larger.
func waitN(ctx context.Context, limiter *rate.Limiter, n int) error {
	burst := limiter.Burst()
	for n > 0 {
		step := min(n, burst)
		if err := limiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
