package threadpool

import (
	"sync"

	"github.com/akb825/DeepSea-sub003/core/dserr"
	"golang.org/x/sync/semaphore"
)

// Task is a unit of work dispatched by a Pool.
type Task func()

// TaskQueue is a single FIFO queue of tasks with an optional
// concurrency cap. Queues are round-robin visited by the owning
// Pool's scheduler; within one queue, dispatch is strict FIFO subject
// to MaxConcurrency in-flight tasks.
//
// MaxConcurrency == 0 means unbounded (up to the pool's total worker
// count), enforced with a golang.org/x/sync/semaphore.Weighted sized
// to the pool's worker count at the time the queue is created
// (minimum 1). The weight does not follow later SetThreadCount calls.
type TaskQueue struct {
	pool *Pool

	mu        sync.Mutex
	cond      *sync.Cond
	pending   []Task
	capacity  int
	inFlight  int
	sem       *semaphore.Weighted
	closed    bool
	destroyWG sync.WaitGroup
}

// newTaskQueue creates a queue owned by pool with the given pending
// capacity and concurrency cap (0 = unbounded, capacity <= 0 =
// unbounded).
func newTaskQueue(pool *Pool, capacity, maxConcurrency int) *TaskQueue {
	q := &TaskQueue{
		pool:     pool,
		capacity: capacity,
	}
	q.cond = sync.NewCond(&q.mu)
	weight := int64(maxConcurrency)
	if weight <= 0 {
		weight = int64(pool.WorkerCount())
		if weight <= 0 {
			weight = 1
		}
	}
	q.sem = semaphore.NewWeighted(weight)
	return q
}

// AddTasks enqueues ts, blocking while pending == capacity (capacity
// <= 0 means unbounded).
func (q *TaskQueue) AddTasks(ts []Task) error {
	const op = "threadpool.TaskQueue.AddTasks"
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return dserr.New(op, dserr.PermissionDenied)
	}
	for _, tk := range ts {
		for q.capacity > 0 && len(q.pending) >= q.capacity {
			q.cond.Wait()
		}
		q.pending = append(q.pending, tk)
		q.destroyWG.Add(1)
	}
	q.mu.Unlock()
	q.pool.notifyWork()
	return nil
}

// tryPop removes and returns the head task if the queue has pending
// work and is within its concurrency cap. Must be called with the
// owning Pool's scheduling lock held (lock order: Pool, then
// TaskQueue).
func (q *TaskQueue) tryPop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, false
	}
	if !q.sem.TryAcquire(1) {
		return nil, false
	}
	t := q.pending[0]
	q.pending = q.pending[1:]
	q.inFlight++
	q.cond.Broadcast() // room freed for AddTasks waiters
	return t, true
}

// finish marks one dispatched task as complete.
func (q *TaskQueue) finish() {
	q.sem.Release(1)
	q.mu.Lock()
	q.inFlight--
	empty := len(q.pending) == 0 && q.inFlight == 0
	q.mu.Unlock()
	q.destroyWG.Done()
	if empty {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	}
}

// WaitForTasks blocks until pending == 0 && inFlight == 0.
func (q *TaskQueue) WaitForTasks() {
	q.mu.Lock()
	for len(q.pending) > 0 || q.inFlight > 0 {
		q.cond.Wait()
	}
	q.mu.Unlock()
}

// Destroy waits for outstanding tasks then detaches the queue from its
// pool. It must be callable while holding no pool locks.
func (q *TaskQueue) Destroy() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	q.destroyWG.Wait()
	q.pool.removeQueue(q)
}

// Pending returns the current pending-task count (racy snapshot).
func (q *TaskQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
