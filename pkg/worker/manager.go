package worker

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
	"k8s.io/klog/v2"
)

// Result is the outcome of one URL.
type Result[T any] struct {
	URL      string
	WorkerID int
	Value    T
	Err      error
}

// Manager manages workers and distributes URLs to them
type Manager[T any] struct {
	workerCount int
	task        Task[T]
	limiter     *rate.Limiter
}

// NewManager creates a new manager
func NewManager[T any](workerCount int, task Task[T], limiter *rate.Limiter) *Manager[T] {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Manager[T]{
		workerCount: workerCount,
		task:        task,
		limiter:     limiter,
	}
}

type job struct {
	index int
	url   string
}

// ProcessURLs distributes URLs to workers and processes them concurrently.
// Results are returned in input order. An error is returned only when every URL failed.
func (m *Manager[T]) ProcessURLs(ctx context.Context, urls []string) ([]Result[T], error) {
	jobChan := make(chan job, len(urls))
	for i, url := range urls {
		jobChan <- job{index: i, url: url}
	}
	close(jobChan)

	var wg sync.WaitGroup

	type indexed struct {
		index int
		res   Result[T]
	}
	resultsChan := make(chan indexed, len(urls))

	for i := 0; i < m.workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			w := NewWorker(m.task, m.limiter)
			for j := range jobChan {
				value, err := w.ProcessURL(ctx, j.url)
				resultsChan <- indexed{
					index: j.index,
					res:   Result[T]{URL: j.url, WorkerID: workerID, Value: value, Err: err},
				}
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Aggregate on a single goroutine.
	results := make([]Result[T], len(urls))
	var successCount, errorCount int

	for r := range resultsChan {
		results[r.index] = r.res
		if r.res.Err == nil {
			successCount++
			if successCount%100 == 0 {
				klog.Infof("Progress: %d successful, %d errors", successCount, errorCount)
			}
		} else {
			errorCount++
			klog.V(1).Infof("Worker %d: Error processing %s: %v", r.res.WorkerID, r.res.URL, r.res.Err)
		}
	}

	klog.Infof("Completed: %d successful, %d errors (total: %d)", successCount, errorCount, len(urls))

	if errorCount > 0 && successCount == 0 {
		return results, fmt.Errorf("all %d URLs failed to process", errorCount)
	}

	return results, nil
}
