// Package async processes invoice files in the background on a bounded worker pool.
package async

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned by Enqueue once Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job asks the workers to process the invoice file at Path.
type Job struct {
	Path        string
	Force       bool // process even if the same content was already processed
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
