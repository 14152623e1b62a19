// Package runtime provides the host job queue that pending promise reactions
// and async resumptions are scheduled on.
package runtime

import "sync"

// Job is a unit of deferred work.
type Job struct {
	Name string // for logs, e.g. "PromiseReactionJob"
	Run  func()
}

// JobQueue abstracts how jobs are scheduled and drained so hosts can swap in
// a deterministic or instrumented queue.
type JobQueue interface {
	// Enqueue schedules a job to run after the current job completes.
	Enqueue(job Job)

	// RunUntilIdle executes jobs in FIFO order, including jobs enqueued while
	// draining, and returns how many ran.
	RunUntilIdle() int

	// Pending returns the number of jobs waiting to run.
	Pending() int

	// Reset drops all pending jobs.
	Reset()
}

// DefaultJobQueue is a mutex-guarded FIFO queue.
type DefaultJobQueue struct {
	mu   sync.Mutex
	jobs []Job
}

// NewDefaultJobQueue creates an empty queue.
func NewDefaultJobQueue() *DefaultJobQueue {
	return &DefaultJobQueue{jobs: make([]Job, 0, 16)}
}

func (q *DefaultJobQueue) Enqueue(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

func (q *DefaultJobQueue) next() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return Job{}, false
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, true
}

func (q *DefaultJobQueue) RunUntilIdle() int {
	ran := 0
	for {
		job, ok := q.next()
		if !ok {
			return ran
		}
		job.Run()
		ran++
	}
}

func (q *DefaultJobQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *DefaultJobQueue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = make([]Job, 0, 16)
}
