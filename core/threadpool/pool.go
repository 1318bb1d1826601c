// Package threadpool implements the dynamically-sized worker pool
// described in spec.md §3/§4.2: a fixed Pool object owning a mutable
// set of worker goroutines and a mutable set of TaskQueues, scheduled
// round-robin across queues with per-queue concurrency caps and
// strict FIFO dispatch within each queue.
//
// The teacher's internal/parallel.WorkerPool (gogpu-gg) gave each
// worker its own queue and let idle workers steal from others; that
// optimizes for throughput but gives no fairness guarantee across
// logical queues. This module keeps the teacher's goroutine-loop shape
// (workers block on a condition variable when there is nothing to
// run) but replaces work-stealing with a single round-robin cursor
// shared by the scheduler, per spec.md's fairness requirement.
package threadpool

import (
	"sync"

	"github.com/akb825/DeepSea-sub003/core/dserr"
	"github.com/akb825/DeepSea-sub003/core/logging"
)

// Option configures optional, cosmetic Pool metadata. Stack size and
// naming have no portable equivalent for goroutines; they are
// accepted and recorded so callers porting configuration from the
// original C API do not need a special case, per spec.md's
// original_source supplement for ThreadPool naming.
type Option func(*Pool)

// WithName records a human-readable name for diagnostics.
func WithName(name string) Option {
	return func(p *Pool) { p.name = name }
}

// WithStackSizeHint records a stack-size hint. It has no effect on
// goroutine scheduling; Go manages goroutine stacks automatically.
func WithStackSizeHint(bytes int) Option {
	return func(p *Pool) { p.stackSizeHint = bytes }
}

// Pool owns a mutable set of worker goroutines draining a mutable set
// of TaskQueues.
type Pool struct {
	name          string
	stackSizeHint int

	mu      sync.Mutex
	cond    *sync.Cond
	queues  []*TaskQueue
	cursor  int
	target  int // desired worker count
	active  int // current live worker count
	gen     uint64
	closed  bool
	workers sync.WaitGroup
}

// New creates a Pool with the given initial worker count.
func New(threadCount int, opts ...Option) *Pool {
	p := &Pool{target: threadCount}
	p.cond = sync.NewCond(&p.mu)
	for _, o := range opts {
		o(p)
	}
	logger := logging.Named("threadpool")
	p.mu.Lock()
	p.spawnLocked(threadCount)
	p.mu.Unlock()
	logger.Debug().Str("name", p.name).Int("workers", threadCount).Msg("thread pool created")
	return p
}

// NewTaskQueue creates and registers a queue owned by this pool.
// capacity <= 0 means unbounded pending tasks; maxConcurrency == 0
// means unbounded concurrency (up to the pool's worker count).
func (p *Pool) NewTaskQueue(capacity, maxConcurrency int) *TaskQueue {
	q := newTaskQueue(p, capacity, maxConcurrency)
	p.mu.Lock()
	p.queues = append(p.queues, q)
	p.mu.Unlock()
	return q
}

func (p *Pool) removeQueue(q *TaskQueue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, cand := range p.queues {
		if cand == q {
			p.queues = append(p.queues[:i], p.queues[i+1:]...)
			if p.cursor > i {
				p.cursor--
			}
			return
		}
	}
}

// WorkerCount returns the current target worker count.
func (p *Pool) WorkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// SetThreadCount atomically grows or shrinks the worker set. Shrinking
// signals excess workers, which exit after completing their current
// task.
func (p *Pool) SetThreadCount(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n > p.target {
		p.spawnLocked(n - p.target)
	}
	p.target = n
	p.cond.Broadcast()
}

func (p *Pool) spawnLocked(n int) {
	gen := p.gen
	p.active += n
	p.workers.Add(n)
	for i := 0; i < n; i++ {
		go p.workerLoop(gen)
	}
}

func (p *Pool) notifyWork() {
	p.mu.Lock()
	p.cond.Broadcast()
	p.mu.Unlock()
}

// pickNext scans queues starting at the round-robin cursor and
// returns the first dispatchable task. Must be called with p.mu held.
func (p *Pool) pickNext() (Task, *TaskQueue, bool) {
	n := len(p.queues)
	for i := 0; i < n; i++ {
		idx := (p.cursor + i) % n
		q := p.queues[idx]
		if t, ok := q.tryPop(); ok {
			p.cursor = (idx + 1) % n
			return t, q, true
		}
	}
	return nil, nil, false
}

func (p *Pool) workerLoop(gen uint64) {
	defer p.workers.Done()
	for {
		p.mu.Lock()
		var task Task
		var queue *TaskQueue
		for {
			if p.closed || p.gen != gen {
				p.mu.Unlock()
				return
			}
			if p.active > p.target {
				p.active--
				p.mu.Unlock()
				return
			}
			if len(p.queues) > 0 {
				if t, q, ok := p.pickNext(); ok {
					task, queue = t, q
					break
				}
			}
			p.cond.Wait()
		}
		p.mu.Unlock()
		task()
		queue.finish()
	}
}

// Destroy blocks until every worker exits. It does not destroy
// queues: destroying a pool while any queue still exists fails with
// dserr.PermissionDenied, per spec.md §4.2.
func (p *Pool) Destroy() error {
	const op = "threadpool.Pool.Destroy"
	p.mu.Lock()
	if len(p.queues) > 0 {
		p.mu.Unlock()
		return dserr.New(op, dserr.PermissionDenied)
	}
	p.closed = true
	p.gen++
	p.cond.Broadcast()
	p.mu.Unlock()
	p.workers.Wait()
	return nil
}
