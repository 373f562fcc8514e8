// Package tasks runs fire-and-forget work, such as the selection controller's
// backend fetches, on a fixed pool of workers.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

type Task = func()

var (
	ErrStopped   = errors.New("background tasks stopped")
	ErrQueueFull = errors.New("background tasks queue is full")
)

type BackgroundTasks struct {
	log        *slog.Logger
	tasks      chan Task
	maxWorkers int
	wg         *sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

func New(log *slog.Logger, maxWorkers int, maxTasksQueueSize int) *BackgroundTasks {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &BackgroundTasks{
		log:        log,
		maxWorkers: maxWorkers,
		wg:         &sync.WaitGroup{},
		tasks:      make(chan Task, maxTasksQueueSize),
	}
}

func (t *BackgroundTasks) Run() {
	t.wg.Add(t.maxWorkers)
	for i := 0; i < t.maxWorkers; i++ {
		go func() {
			defer t.wg.Done()
			log := t.log.With("worker", i)
			for task := range t.tasks {
				t.exec(log, task)
			}
		}()
	}
}

// exec runs one task. A panicking task is logged and the worker keeps serving.
func (t *BackgroundTasks) exec(log *slog.Logger, task Task) {
	defer func() {
		if err := recover(); err != nil {
			log.Error("panic", "err", err)
		}
	}()
	task()
}

// Add queues task without blocking. It returns ErrStopped after Shutdown and
// ErrQueueFull when every slot is taken; the task is not run in either case.
func (t *BackgroundTasks) Add(task Task) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.stopped {
		t.log.Warn("task rejected", "err", ErrStopped)
		return ErrStopped
	}
	select {
	case t.tasks <- task:
		return nil
	default:
		t.log.Warn("task rejected", "err", ErrQueueFull, "queue_size", cap(t.tasks))
		return ErrQueueFull
	}
}

func (t *BackgroundTasks) Shutdown(ctx context.Context) error {
	const op = "tasks.BackgroundTasks.Shutdown"
	log := t.log.With("op", op)
	log.Info("shutting down background tasks")
	t.mu.Lock()
	if !t.stopped {
		t.stopped = true
		close(t.tasks)
	}
	t.mu.Unlock()
	shutdownCh := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(shutdownCh)
	}()
	select {
	case <-ctx.Done():
		log.Warn("graceful shutdown timed out.. forcing exit", "timeout", ctx.Err())
		return ctx.Err()
	case <-shutdownCh:
		log.Info("background tasks successfully stopped")
		return nil
	}
}

func (t *BackgroundTasks) IsEmpty() bool {
	return len(t.tasks) == 0
}
