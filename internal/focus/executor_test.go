package focus

import (
	"sync"
	"testing"
)

func TestExecutorRunsTasksInSubmissionOrder(t *testing.T) {
	e := NewExecutor()
	defer e.Shutdown()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		e.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()

	for i, got := range order {
		if got != i {
			t.Fatalf("Expected FIFO order, got %v", order)
		}
	}
}

func TestSubmitFrontJumpsNotYetStartedWork(t *testing.T) {
	e := NewExecutor()
	defer e.Shutdown()

	gate := make(chan struct{})
	started := make(chan struct{})
	// Occupy the worker so the rest of the queue cannot start.
	e.Submit(func() {
		close(started)
		<-gate
	})
	<-started

	var mu sync.Mutex
	var order []string
	var wg sync.WaitGroup
	record := func(name string) func() {
		wg.Add(1)
		return func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			wg.Done()
		}
	}
	e.Submit(record("normal1"))
	e.Submit(record("normal2"))
	e.SubmitFront(record("urgent"))

	close(gate)
	wg.Wait()

	want := []string{"urgent", "normal1", "normal2"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, order)
		}
	}
}

func TestShutdownDrainsQueuedWork(t *testing.T) {
	e := NewExecutor()

	var mu sync.Mutex
	count := 0
	for i := 0; i < 10; i++ {
		e.Submit(func() {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}
	e.Shutdown()

	if count != 10 {
		t.Errorf("Expected all 10 queued tasks to run before shutdown returned, got %d", count)
	}
	if e.Submit(func() {}) {
		t.Error("Expected Submit after Shutdown to be rejected")
	}
	if e.SubmitFront(func() {}) {
		t.Error("Expected SubmitFront after Shutdown to be rejected")
	}
}
