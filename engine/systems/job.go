package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/prism/engine/core"
)

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = errors.New("job system is shut down")

/** @brief Describes a job to be run. */
type JobTask struct {
	/** @brief Used in log lines only. */
	Name string
	/** @brief Invoked on a worker when the job starts. Required. */
	Run func() error
	/** @brief Invoked on the worker when Run succeeds. Optional. */
	OnComplete func()
	/** @brief Invoked on the worker when Run fails. Optional. */
	OnFailure func(err error)
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	pending sync.WaitGroup
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	defer js.pending.Done()
	if err := job.Run(); err != nil {
		core.LogError("job %s failed: %s", job.Name, err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete()
	}
}

/**
 * @brief Queues the job for execution. Blocks while the queue is full.
 * Returns ErrJobSystemClosed after Shutdown.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	js.pending.Add(1)
	js.jobQueue <- jt
	return nil
}

/** @brief Blocks until every submitted job has finished. */
func (js *JobSystem) Wait() {
	js.pending.Wait()
}

/** @brief Drains the queue, stops the workers and waits for them. */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.mu.Unlock()

	js.wg.Wait()
	return nil
}

func (js *JobSystem) Workers() int {
	return js.numWorkers
}
