// Package throttle bounds transfer concurrency and throughput.
package throttle

import (
	"context"
	"io"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds transfer limits.
type Config struct {
	// BytesPerSec is the maximum transfer throughput. If 0, unlimited.
	BytesPerSec int64

	// MaxTransfers is the maximum number of concurrent transfers.
	// If 0, unlimited.
	MaxTransfers int64
}

// Throttle gates transfers on a concurrency slot and a byte budget.
// The zero value and nil are unlimited.
type Throttle struct {
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// New creates a Throttle from cfg.
func New(cfg Config) *Throttle {
	t := &Throttle{}

	if cfg.MaxTransfers > 0 {
		t.sem = semaphore.NewWeighted(cfg.MaxTransfers)
	}

	if cfg.BytesPerSec > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(cfg.BytesPerSec), int(cfg.BytesPerSec))
	}

	return t
}

// Acquire reserves a transfer slot, blocking until one is free or ctx
// is canceled.
func (t *Throttle) Acquire(ctx context.Context) error {
	if t == nil || t.sem == nil {
		return nil
	}

	return t.sem.Acquire(ctx, 1)
}

// Release returns a transfer slot.
func (t *Throttle) Release() {
	if t == nil || t.sem == nil {
		return
	}

	t.sem.Release(1)
}

// WaitBytes blocks until the throughput budget admits n bytes. Requests
// larger than the bucket are drawn in bucket-sized chunks.
func (t *Throttle) WaitBytes(ctx context.Context, n int) error {
	if t == nil || t.limiter == nil || n <= 0 {
		return nil
	}

	burst := t.limiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}

		if err := t.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}

		n -= chunk
	}

	return nil
}

// WriterAt wraps w so every write draws from the throughput budget.
func (t *Throttle) WriterAt(ctx context.Context, w io.WriterAt) io.WriterAt {
	if t == nil || t.limiter == nil {
		return w
	}

	return &limitedWriterAt{t: t, ctx: ctx, w: w}
}

type limitedWriterAt struct {
	t   *Throttle
	ctx context.Context
	w   io.WriterAt
}

func (w *limitedWriterAt) WriteAt(p []byte, off int64) (int, error) {
	if err := w.t.WaitBytes(w.ctx, len(p)); err != nil {
		return 0, err
	}

	return w.w.WriteAt(p, off)
}
