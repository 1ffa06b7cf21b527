package queue

import (
	"context"
	"sync"
)

const memoryQueueDepth = 256

// MemoryQueue is a channel-backed Queue for tests and single-process
// deployments. Pushed jobs are also kept in a history slice so tests can
// assert on what was enqueued.
type MemoryQueue struct {
	mu      sync.Mutex
	closed  bool
	history []Job
	jobs    chan Job
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		jobs: make(chan Job, memoryQueueDepth),
	}
}

// Push enqueues a job. A full queue blocks until a worker drains it or
// the context is cancelled.
func (q *MemoryQueue) Push(ctx context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.history = append(q.history, job)
	q.mu.Unlock()

	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns the channel workers drain.
func (q *MemoryQueue) Receive() <-chan Job {
	return q.jobs
}

// Jobs returns a snapshot of every job ever pushed. Test use only.
func (q *MemoryQueue) Jobs() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Job, len(q.history))
	copy(out, q.history)
	return out
}

// Close closes the queue's channel.
func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}

var _ Queue = (*MemoryQueue)(nil)

// MemoryGroup is a Group of MemoryQueues, one per wiki, created lazily.
type MemoryGroup struct {
	mu     sync.Mutex
	queues map[string]*MemoryQueue
}

// NewMemoryGroup creates an empty group.
func NewMemoryGroup() *MemoryGroup {
	return &MemoryGroup{
		queues: make(map[string]*MemoryQueue),
	}
}

// Queue returns the queue for a wiki, creating it on first use.
func (g *MemoryGroup) Queue(wiki string) Queue {
	return g.MemoryQueue(wiki)
}

// MemoryQueue is like Queue but returns the concrete type, for workers
// and tests that need Receive or Jobs.
func (g *MemoryGroup) MemoryQueue(wiki string) *MemoryQueue {
	g.mu.Lock()
	defer g.mu.Unlock()

	q, ok := g.queues[wiki]
	if !ok {
		q = NewMemoryQueue()
		g.queues[wiki] = q
	}
	return q
}

// Wikis returns the wikis that have a queue.
func (g *MemoryGroup) Wikis() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	wikis := make([]string, 0, len(g.queues))
	for wiki := range g.queues {
		wikis = append(wikis, wiki)
	}
	return wikis
}

var _ Group = (*MemoryGroup)(nil)
