// Package workers provides a fixed-size goroutine pool with an unbounded task
// queue.
//
// Submit never blocks the producer. Drain closes the pool to new work and
// waits until every queued and running task has finished.
package workers

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ErrPoolClosed is returned by Submit after Drain was called.
var ErrPoolClosed = errors.New("worker pool closed")

// Task is a unit of work executed exactly once by some worker.
type Task interface {
	Run()
}

// TaskFunc adapts a plain function to Task.
type TaskFunc func()

func (f TaskFunc) Run() { f() }

// Stats is a snapshot of pool counters.
type Stats struct {
	Workers   int
	Submitted int64
	Completed int64
	Panicked  int64
	Queued    int
}

// Pool runs submitted tasks on a fixed number of goroutines.
//
// Goroutine topology: size workers, spawned by New, exiting once the pool is
// drained and the queue is empty.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond // signals workers: task queued or pool closed
	queue  []Task
	closed bool

	size int
	wg   sync.WaitGroup

	submitted atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64

	logger logrus.FieldLogger
}

// New starts a pool of size workers.
func New(size int, logger logrus.FieldLogger) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("number of workers must be greater than 0, got %d", size)
	}

	p := &Pool{
		size:   size,
		logger: logger,
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker(i)
	}

	logger.WithField("workers", size).Debug("Worker pool started")
	return p, nil
}

// Submit queues task for execution. It does not wait for a free worker.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.queue = append(p.queue, task)
	p.submitted.Add(1)
	p.mu.Unlock()

	p.cond.Signal()
	return nil
}

// Drain stops accepting tasks and blocks until all submitted tasks have run.
// Safe to call more than once.
func (p *Pool) Drain() {
	p.mu.Lock()
	alreadyClosed := p.closed
	p.closed = true
	p.mu.Unlock()

	if !alreadyClosed {
		p.cond.Broadcast()
	}
	p.wg.Wait()

	if !alreadyClosed {
		p.logger.WithFields(logrus.Fields{
			"submitted": p.submitted.Load(),
			"completed": p.completed.Load(),
		}).Debug("Worker pool drained")
	}
}

// Stats returns the current counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	queued := len(p.queue)
	p.mu.Unlock()

	return Stats{
		Workers:   p.size,
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
		Queued:    queued,
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		task, ok := p.next()
		if !ok {
			return
		}
		p.run(id, task)
	}
}

// next blocks until a task is queued. It returns false once the pool is
// closed and the queue is empty.
func (p *Pool) next() (Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return nil, false
	}

	task := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return task, true
}

func (p *Pool) run(worker int, task Task) {
	defer p.completed.Add(1)
	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			p.logger.WithFields(logrus.Fields{
				"worker": worker,
				"panic":  r,
			}).Error("Task panicked")
		}
	}()

	task.Run()
}
