// Package foreground models the single designated foreground context that
// completion callbacks from the library under test are delivered to.
//
// The context is a FIFO of tasks. Anything may Post onto it (including
// goroutines doing background work on behalf of the library), but tasks only
// ever run on the goroutine that drains it, which in a test is the test
// goroutine itself while the bridge is pumping.
package foreground

import "sync"

// Task is a unit of work scheduled onto the foreground context.
type Task func()

// Queue is the foreground context as seen by the bridge.
//
// Implementations must run tasks strictly in Post order and must never run a
// task from inside Post.
type Queue interface {
	// Post schedules a task. Returns false if the queue no longer accepts work.
	Post(task Task) bool

	// TryNext removes and returns the oldest task without blocking.
	TryNext() (Task, bool)

	// Wait returns a channel that signals when tasks may be available.
	// The channel is closed once the queue is closed.
	Wait() <-chan struct{}

	// Len returns the number of queued tasks.
	Len() int

	// Closed reports whether the queue stopped accepting work.
	Closed() bool
}

// FIFO is the in-memory foreground queue.
//
// The queue is unbounded so a callback may schedule arbitrarily many
// follow-up tasks (including nested completions) without blocking.
//
// Post is safe from any goroutine; draining is expected from one goroutine.
// A buffered channel of size 1 coalesces wake-ups so an idle drainer can
// select on Wait() alongside a timer.
type FIFO struct {
	mu     sync.Mutex
	tasks  []Task
	closed bool
	signal chan struct{}
}

// NewFIFO creates an empty queue.
func NewFIFO() *FIFO {
	return &FIFO{
		tasks:  make([]Task, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Post adds a task to the back of the queue.
// Returns false if the queue is closed or the task is nil.
func (q *FIFO) Post(task Task) bool {
	if task == nil {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.tasks = append(q.tasks, task)

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryNext removes and returns the front task.
// Returns (nil, false) if the queue is empty.
func (q *FIFO) TryNext() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return nil, false
	}

	task := q.tasks[0]

	// Drop the reference so the closure and whatever it captured can be collected.
	q.tasks[0] = nil

	if len(q.tasks) == 1 {
		q.tasks = q.tasks[:0]
	} else {
		q.tasks = q.tasks[1:]
	}

	return task, true
}

// Wait returns the wake-up channel. See Queue.Wait.
func (q *FIFO) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *FIFO) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Closed reports whether Close has been called.
func (q *FIFO) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close stops accepting new tasks and wakes any waiter.
// Already queued tasks can still be drained.
func (q *FIFO) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}

// RunNext runs the oldest queued task on the calling goroutine.
// Returns false if nothing was queued.
func RunNext(q Queue) bool {
	task, ok := q.TryNext()
	if !ok {
		return false
	}
	task()
	return true
}

// Drain runs queued tasks until the queue is empty, including tasks posted
// by the tasks it runs. Returns how many tasks ran.
func Drain(q Queue) int {
	n := 0
	for RunNext(q) {
		n++
	}
	return n
}
