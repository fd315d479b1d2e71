// Package runctx carries the identity of one scrape run through contexts,
// logs and errors.
package runctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type key int

const runKey key = 0

// Run identifies one invocation of the batch runner.
type Run struct {
	ID        string
	Site      string
	StartTime time.Time
}

// New attaches a fresh run for site to ctx.
func New(ctx context.Context, site string) context.Context {
	return context.WithValue(ctx, runKey, &Run{
		ID:        uuid.NewString(),
		Site:      site,
		StartTime: time.Now(),
	})
}

// From returns the run attached to ctx, or a placeholder when none is.
func From(ctx context.Context) *Run {
	if r, ok := ctx.Value(runKey).(*Run); ok {
		return r
	}
	return &Run{ID: "unknown", StartTime: time.Now()}
}

// Logger returns l annotated with the run's id and site.
func Logger(ctx context.Context, l zerolog.Logger) zerolog.Logger {
	r := From(ctx)
	return l.With().Str("run_id", r.ID).Str("site", r.Site).Logger()
}

// ItemError is a failure scoped to one input URL of a run.
type ItemError struct {
	RunID string
	URL   string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.RunID, e.URL, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// NewItemError wraps err with the run id from ctx.
func NewItemError(ctx context.Context, url string, err error) error {
	return &ItemError{RunID: From(ctx).ID, URL: url, Err: err}
}
