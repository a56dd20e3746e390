package downloader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"redditsave/pkg/logger"
)

// Job is a single file to fetch
type Job struct {
	Index int
	URL   string
	Name  string
}

// Result is the outcome of one job
type Result struct {
	Job      Job
	Err      error
	Duration time.Duration
}

// DownloadFunc fetches url and stores it under name
type DownloadFunc func(ctx context.Context, url, name string) error

// WorkerPool runs a batch of downloads over a fixed number of workers. A
// batch is all-or-nothing: the first failure cancels the jobs still queued.
type WorkerPool struct {
	numWorkers int
	download   DownloadFunc
	logger     logger.Logger
}

// NewWorkerPool creates a pool of numWorkers workers, at least one
func NewWorkerPool(numWorkers int, download DownloadFunc, log logger.Logger) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &WorkerPool{
		numWorkers: numWorkers,
		download:   download,
		logger:     log,
	}
}

// Workers returns the number of workers a batch runs on
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// Run executes jobs and returns the first failure, wrapped with the job
// index. It returns ctx.Err() when the batch is cancelled from outside.
func (wp *WorkerPool) Run(ctx context.Context, jobs []Job) error {
	if len(jobs) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := wp.numWorkers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobQueue := make(chan Job, len(jobs))
	resultQueue := make(chan Result, len(jobs))
	for _, job := range jobs {
		jobQueue <- job
	}
	close(jobQueue)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go wp.worker(ctx, cancel, i, jobQueue, resultQueue, &wg)
	}
	go func() {
		wg.Wait()
		close(resultQueue)
	}()

	var firstErr error
	for result := range resultQueue {
		if result.Err == nil {
			continue
		}
		if firstErr == nil || (errors.Is(firstErr, context.Canceled) && !errors.Is(result.Err, context.Canceled)) {
			firstErr = fmt.Errorf("item %d: %w", result.Job.Index, result.Err)
		}
	}

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// worker drains the job queue until it is empty or the batch is cancelled
func (wp *WorkerPool) worker(ctx context.Context, cancel context.CancelFunc, id int, jobs <-chan Job, results chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		result := wp.processJob(ctx, job, id)
		// queue the failure before cancelling so it precedes any
		// context errors it causes in sibling workers
		results <- result
		if result.Err != nil {
			cancel()
		}
	}
}

// processJob handles a single download job
func (wp *WorkerPool) processJob(ctx context.Context, job Job, workerID int) Result {
	start := time.Now()
	err := wp.download(ctx, job.URL, job.Name)
	result := Result{Job: job, Err: err, Duration: time.Since(start)}

	fields := map[string]interface{}{
		"worker_id": workerID,
		"index":     job.Index,
		"file":      job.Name,
		"duration":  result.Duration,
	}
	if err != nil {
		fields["error"] = err.Error()
		wp.logger.DebugWithFields("Worker failed to download item", fields)
	} else {
		wp.logger.DebugWithFields("Worker completed item", fields)
	}

	return result
}
