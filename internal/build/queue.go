package build

import (
	"sync"

	"github.com/roach88/blockc/internal/ir"
)

// job is one script waiting to be compiled. slot indexes the build's
// result slice.
type job struct {
	slot   int
	script ir.NamedScript
}

// jobQueue is a FIFO of compile jobs shared by the build's workers.
//
// The queue is filled before any worker starts and then closed, so workers
// never wait: an empty queue means the build is done.
type jobQueue struct {
	mu     sync.Mutex
	jobs   []job
	closed bool
}

func newJobQueue(capacity int) *jobQueue {
	return &jobQueue{jobs: make([]job, 0, capacity)}
}

// Enqueue adds a job to the back of the queue.
// Returns false if the queue is closed.
func (q *jobQueue) Enqueue(j job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.jobs = append(q.jobs, j)
	return true
}

// TryDequeue removes and returns the front job.
// Returns (job{}, false) if the queue is empty.
func (q *jobQueue) TryDequeue() (job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return job{}, false
	}

	j := q.jobs[0]
	// Drop the script pointer held by the backing array.
	q.jobs[0] = job{}
	if len(q.jobs) == 1 {
		q.jobs = q.jobs[:0]
	} else {
		q.jobs = q.jobs[1:]
	}
	return j, true
}

// Len returns the current queue length.
func (q *jobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Close stops further enqueues. Queued jobs can still be dequeued.
func (q *jobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
