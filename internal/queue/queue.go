package queue

import (
	"container/heap"
	"runtime"
	"sync"
	"time"
)

// ThreadPriority is a scheduling hint for the worker executing a task. Go
// offers no portable OS thread priority, so the hint is honored
// cooperatively: background-tier tasks yield the processor before running.
type ThreadPriority int

const (
	PriorityBackground ThreadPriority = iota
	PriorityNormal
)

// starvationYield controls whether background-tier tasks yield before
// running. Tests disable it to keep progress deterministic on loaded
// machines.
var (
	starvationMu    sync.Mutex
	starvationYield = true
)

// PreventThreadStarvationInTests disables the background-tier yield.
// Only affects tasks that run after the call.
func PreventThreadStarvationInTests() {
	starvationMu.Lock()
	defer starvationMu.Unlock()
	starvationYield = false
}

// Task is a unit of schedulable work. Higher QueuePri tasks run first; ties
// are broken by arrival order. The queue owns the task exclusively from
// submission until it runs.
type Task struct {
	Run       func()
	ThreadPri ThreadPriority
	QueuePri  int

	seq uint64 // arrival order, assigned on submission
}

// Stats reports queue throughput counters
type Stats struct {
	Enqueued  uint64
	Finished  uint64
	Queued    int
	Active    int
	LastIdle  time.Time
	IsStopped bool
}

// Queue is a priority queue of tasks executed by external worker goroutines.
// Push and Append never block; Work runs tasks until Stop is called.
type Queue struct {
	mu          sync.Mutex
	cond        *sync.Cond
	heap        taskHeap
	activeTasks int
	shouldStop  bool
	nextSeq     uint64
	enqueued    uint64
	finished    uint64
	lastIdle    time.Time
}

// New creates an empty queue
func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push adds one task to the queue. Safe from any goroutine; never blocks
// behind running tasks.
func (q *Queue) Push(t Task) {
	q.mu.Lock()
	t.seq = q.nextSeq
	q.nextSeq++
	q.enqueued++
	heap.Push(&q.heap, t)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Append adds many tasks in one lock acquisition
func (q *Queue) Append(tasks []Task) {
	q.mu.Lock()
	for _, t := range tasks {
		t.seq = q.nextSeq
		q.nextSeq++
		q.enqueued++
		heap.Push(&q.heap, t)
	}
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Work processes tasks until Stop is called and the current task (if any)
// completes. Each worker goroutine calls Work; when the queue drains, onIdle
// is invoked on exactly one worker (the one that finished the last task).
func (q *Queue) Work(onIdle func()) {
	for {
		q.mu.Lock()
		for len(q.heap) == 0 && !q.shouldStop {
			q.cond.Wait()
		}
		if q.shouldStop {
			// Queued tasks are discarded, not run.
			q.heap = nil
			q.mu.Unlock()
			q.cond.Broadcast()
			return
		}
		t := heap.Pop(&q.heap).(Task)
		q.activeTasks++
		q.mu.Unlock()

		q.runTask(t)

		q.mu.Lock()
		q.finished++
		if q.activeTasks == 1 && len(q.heap) == 0 {
			// This worker just finished the last task. The idle callback
			// runs before the active count drops, so a waiter woken for
			// any reason cannot observe the queue idle until the callback
			// has completed.
			q.mu.Unlock()
			if onIdle != nil {
				onIdle()
			}
			q.mu.Lock()
			q.lastIdle = time.Now()
		}
		q.activeTasks--
		q.mu.Unlock()
		q.cond.Broadcast()
	}
}

// runTask executes one task, containing panics so a failing task body can
// never take down a worker or corrupt the heap.
func (q *Queue) runTask(t Task) {
	defer func() {
		_ = recover()
	}()
	if t.ThreadPri == PriorityBackground {
		starvationMu.Lock()
		yield := starvationYield
		starvationMu.Unlock()
		if yield {
			runtime.Gosched()
		}
	}
	t.Run()
}

// Stop prevents further task execution from starting. Workers observe the
// stop after their current task completes; queued tasks are discarded.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.shouldStop = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// BlockUntilIdleForTest blocks until the queue holds zero tasks and zero
// tasks are executing, or the timeout elapses. Returns whether idle was
// reached. Test-only; production control flow must not depend on it.
func (q *Queue) BlockUntilIdleForTest(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	timer := time.AfterFunc(timeout, func() {
		// Broadcast under the lock so a waiter between its deadline check
		// and Wait cannot miss the wakeup.
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer timer.Stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.heap) != 0 || q.activeTasks != 0 {
		if time.Now().After(deadline) {
			return false
		}
		q.cond.Wait()
	}
	return true
}

// Stats returns a snapshot of queue counters
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Enqueued:  q.enqueued,
		Finished:  q.finished,
		Queued:    len(q.heap),
		Active:    q.activeTasks,
		LastIdle:  q.lastIdle,
		IsStopped: q.shouldStop,
	}
}

// taskHeap is a max-heap on QueuePri with arrival-order tiebreak
type taskHeap []Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].QueuePri != h[j].QueuePri {
		return h[i].QueuePri > h[j].QueuePri
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(Task)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}
