package async

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document to extract.
type Job struct {
	Index       int // position in the batch, for ordered aggregation
	Path        string
	ContentHash string
	SubmittedAt time.Time
}

// Handler processes one job. Errors are logged by the queue.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
