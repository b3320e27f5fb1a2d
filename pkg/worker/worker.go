package worker

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Task processes a single URL and returns its outcome.
type Task[T any] func(ctx context.Context, url string) (T, error)

// Worker runs a task, paced by a limiter shared with the other workers.
type Worker[T any] struct {
	task    Task[T]
	limiter *rate.Limiter
}

// NewWorker creates a new worker. A nil limiter disables pacing.
func NewWorker[T any](task Task[T], limiter *rate.Limiter) *Worker[T] {
	return &Worker[T]{
		task:    task,
		limiter: limiter,
	}
}

// ProcessURL waits for the limiter and runs the task.
func (w *Worker[T]) ProcessURL(ctx context.Context, url string) (T, error) {
	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			var zero T
			return zero, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	return w.task(ctx, url)
}
