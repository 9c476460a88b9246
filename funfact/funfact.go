// Package funfact resolves human-readable facts about numbers from an
// external service.
package funfact

import (
	"context"
	"errors"
)

// ErrUnavailable is wrapped by every lookup failure, including timeouts
var ErrUnavailable = errors.New("fun fact unavailable")

// Source looks up a fact about an integer
type Source interface {
	Fact(ctx context.Context, n int64) (string, error)
}

// SourceFunc adapts a plain function to the Source interface
type SourceFunc func(ctx context.Context, n int64) (string, error)

// Fact calls fn(ctx, n)
func (fn SourceFunc) Fact(ctx context.Context, n int64) (string, error) {
	return fn(ctx, n)
}
