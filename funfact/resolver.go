package funfact

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/liamcoop/numclass/numbers"
)

// ErrNotInteger is returned for numbers the external service cannot describe
var ErrNotInteger = fmt.Errorf("%w: only integers have facts", ErrUnavailable)

// DefaultTimeout bounds a single lookup when none is configured
const DefaultTimeout = 2 * time.Second

// Resolver bounds lookups with a timeout and collapses concurrent lookups
// for the same number into one call to the source
type Resolver struct {
	source  Source
	timeout time.Duration
	group   singleflight.Group
}

// NewResolver wraps source. A non-positive timeout uses DefaultTimeout.
func NewResolver(source Source, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		source:  source,
		timeout: timeout,
	}
}

// Resolve returns a fact for n. Errors always wrap ErrUnavailable so callers
// can fall back without inspecting the cause.
func (r *Resolver) Resolve(ctx context.Context, n float64) (string, error) {
	if !numbers.IsInteger(n) || n > numbers.MaxExactInteger || n < -numbers.MaxExactInteger {
		return "", ErrNotInteger
	}
	v := int64(n)

	ch := r.group.DoChan(strconv.FormatInt(v, 10), func() (any, error) {
		// Detached from any single caller so one cancelled request does not
		// fail the others sharing this lookup
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.source.Fact(lookupCtx, v)
	})

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, ErrUnavailable) {
				return "", res.Err
			}
			return "", fmt.Errorf("%w: %v", ErrUnavailable, res.Err)
		}
		return res.Val.(string), nil
	case <-timer.C:
		return "", fmt.Errorf("%w: lookup for %d timed out after %s", ErrUnavailable, v, r.timeout)
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
}
