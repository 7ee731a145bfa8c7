package compositor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/user/dpframe/pkg/ports"
)

// FrameStatus is the frame loading state.
type FrameStatus int

const (
	FrameUnloaded FrameStatus = iota
	FrameLoading
	FrameLoaded
	FrameFailed
)

func (s FrameStatus) String() string {
	switch s {
	case FrameUnloaded:
		return "unloaded"
	case FrameLoading:
		return "loading"
	case FrameLoaded:
		return "loaded"
	case FrameFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RetryPolicy bounds frame loading for a whole session. Zero fields
// select the defaults; a negative Delay retries immediately.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// NoRetryDelay as a RetryPolicy.Delay retries without waiting.
const NoRetryDelay time.Duration = -1

// DefaultRetryPolicy allows three attempts one second apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: time.Second}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	switch {
	case p.Delay == 0:
		p.Delay = d.Delay
	case p.Delay < 0:
		p.Delay = 0
	}
	return p
}

// aspectTolerance is the relative aspect mismatch accepted for a frame.
const aspectTolerance = 0.01

// FrameStatus returns the frame loading state.
func (c *Compositor) FrameStatus() FrameStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameStatus
}

// FrameError returns the last frame load error, if any.
func (c *Compositor) FrameError() *FrameLoadError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameErr
}

// LoadFrame fetches and decodes the frame, retrying within the session's
// attempt budget. Each call spends attempts until one succeeds or the
// budget runs out, at which point Failed becomes terminal. Cancelling ctx
// stops early and leaves the unspent attempts for a later call.
func (c *Compositor) LoadFrame(ctx context.Context) error {
	c.mu.Lock()
	switch c.frameStatus {
	case FrameLoading:
		c.mu.Unlock()
		return ErrFrameLoadInProgress
	case FrameLoaded:
		c.mu.Unlock()
		return nil
	case FrameFailed:
		if c.frameErr != nil && c.frameErr.Terminal {
			err := c.frameErr
			c.mu.Unlock()
			return err
		}
	}
	if c.opts.FrameSource == nil {
		c.mu.Unlock()
		return ErrNoFrameSource
	}
	c.frameStatus = FrameLoading
	c.mu.Unlock()

	img, ferr := c.fetchFrame(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if ferr != nil {
		c.frameStatus = FrameFailed
		c.frameErr = ferr
		if ferr.Terminal {
			c.logger.Error("Frame failed after %d attempt(s): %v", ferr.Attempts, ferr.Err)
		}
		c.changedLocked()
		return ferr
	}

	c.frame = img
	c.frameStatus = FrameLoaded
	c.frameErr = nil
	c.logger.Debug("Frame loaded from %s after %d attempt(s)", c.opts.FrameSource.Location(), c.frameAttempts)
	c.changedLocked()
	return nil
}

// fetchFrame runs attempts until success, a terminal failure or ctx ends.
// It runs without c.mu held except to count attempts.
func (c *Compositor) fetchFrame(ctx context.Context) (image.Image, *FrameLoadError) {
	src := c.opts.FrameSource
	policy := c.opts.Retry

	var lastErr error
	for {
		c.mu.Lock()
		if c.frameAttempts >= policy.MaxAttempts {
			attempts := c.frameAttempts
			c.mu.Unlock()
			if lastErr == nil {
				lastErr = errors.New("attempt budget exhausted")
			}
			return nil, &FrameLoadError{Location: src.Location(), Attempts: attempts, Terminal: true, Err: lastErr}
		}
		c.frameAttempts++
		attempt := c.frameAttempts
		c.mu.Unlock()

		c.logger.Debug("Frame load attempt %d/%d from %s", attempt, policy.MaxAttempts, src.Location())

		img, err := c.fetchOnce(ctx, src)
		if err == nil {
			return img, nil
		}
		if errors.Is(err, ErrFrameAspect) {
			return nil, &FrameLoadError{Location: src.Location(), Attempts: attempt, Terminal: true, Err: err}
		}
		if ctx.Err() != nil {
			return nil, &FrameLoadError{Location: src.Location(), Attempts: attempt, Err: ctx.Err()}
		}

		lastErr = err
		c.logger.Warn("Frame load attempt %d failed: %v", attempt, err)

		if attempt < policy.MaxAttempts {
			if serr := c.opts.Sleep(ctx, policy.Delay); serr != nil {
				return nil, &FrameLoadError{Location: src.Location(), Attempts: attempt, Err: serr}
			}
		}
	}
}

func (c *Compositor) fetchOnce(ctx context.Context, src ports.FrameSource) (image.Image, error) {
	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty frame data")
	}
	img, err := c.renderer.DecodeImage(data, ports.FormatAuto)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if err := checkAspect(img, c.layout.Width, c.layout.Height); err != nil {
		return nil, err
	}
	return img, nil
}

func checkAspect(img image.Image, width, height float64) error {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: empty %dx%d image", ErrFrameAspect, b.Dx(), b.Dy())
	}
	got := float64(b.Dx()) / float64(b.Dy())
	want := width / height
	if math.Abs(got/want-1) > aspectTolerance {
		return fmt.Errorf("%w: frame is %dx%d, canvas is %.0fx%.0f", ErrFrameAspect, b.Dx(), b.Dy(), width, height)
	}
	return nil
}
