// Package queue provides the concurrent priority task scheduler used by the
// background index.
//
// A Queue is a max-heap of tasks drained by a fixed set of worker goroutines,
// each running Work. Submission never blocks the caller, so enqueueing work
// from a request path is always cheap.
//
// # Usage
//
//	q := queue.New()
//	for i := 0; i < workers; i++ {
//	    go q.Work(onIdle)
//	}
//	q.Push(queue.Task{Run: job, QueuePri: 1})
//	...
//	q.Stop() // running tasks finish, queued tasks are discarded
//
// # Idle Detection
//
// The queue is idle only when it is empty AND no task is executing. A test
// that waited for an empty heap alone could observe shared state while a
// late-finishing task still mutates it, so BlockUntilIdleForTest checks both
// under one lock.
//
// # Failure Containment
//
// A task body that panics is recovered inside the worker loop. Task outcome
// reporting is the task's own responsibility; the queue is agnostic to it.
package queue
