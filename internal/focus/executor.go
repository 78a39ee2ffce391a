package focus

import (
	"container/list"
	"sync"
)

// Executor runs submitted tasks one at a time, in order, on a single
// worker goroutine. Submit appends to the queue; SubmitFront inserts ahead
// of every task that has not started yet, which is how stop requests jump
// a backlog of acquisitions. A running task is never interrupted.
type Executor struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  *list.List
	closed bool
	done   chan struct{}
}

// NewExecutor starts the worker goroutine.
func NewExecutor() *Executor {
	e := &Executor{
		queue: list.New(),
		done:  make(chan struct{}),
	}
	e.cond = sync.NewCond(&e.mu)
	go e.run()
	return e
}

// Submit queues fn behind all previously submitted work. It reports false
// if the executor has been shut down.
func (e *Executor) Submit(fn func()) bool {
	return e.push(fn, false)
}

// SubmitFront queues fn ahead of all not-yet-started work. It reports
// false if the executor has been shut down.
func (e *Executor) SubmitFront(fn func()) bool {
	return e.push(fn, true)
}

func (e *Executor) push(fn func(), front bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	if front {
		e.queue.PushFront(fn)
	} else {
		e.queue.PushBack(fn)
	}
	e.cond.Signal()
	return true
}

// Shutdown rejects further submissions, lets the worker drain everything
// already queued, and returns once the worker has exited.
func (e *Executor) Shutdown() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.closed = true
	e.cond.Signal()
	e.mu.Unlock()
	<-e.done
}

func (e *Executor) run() {
	defer close(e.done)
	for {
		e.mu.Lock()
		for e.queue.Len() == 0 && !e.closed {
			e.cond.Wait()
		}
		front := e.queue.Front()
		if front == nil {
			// Queue drained and executor closed.
			e.mu.Unlock()
			return
		}
		e.queue.Remove(front)
		e.mu.Unlock()

		front.Value.(func())()
	}
}
