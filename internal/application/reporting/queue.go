package reporting

import (
	"context"
	"sync"

	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
	"github.com/medmuse/medmuse-backend/pkg/errors"
)

const (
	defaultRenderWorkers   = 2
	defaultRenderQueueSize = 64
)

// Task is one unit of deferred render work.  The context is the queue's
// lifetime context; it is cancelled when a drain deadline expires.
type Task func(ctx context.Context)

// RenderQueue is the bounded worker pool behind the detached render stage.
//
// Enqueue never blocks: when the queue is full or draining the task is
// rejected, which is acceptable because artifact fetch re-renders on demand.
type RenderQueue struct {
	tasks   chan Task
	wg      sync.WaitGroup
	logger  logging.Logger
	metrics Metrics

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func NewRenderQueue(workers, capacity int, logger logging.Logger, metrics Metrics) *RenderQueue {
	if workers <= 0 {
		workers = defaultRenderWorkers
	}
	if capacity <= 0 {
		capacity = defaultRenderQueueSize
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = NewNopMetrics()
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &RenderQueue{
		tasks:   make(chan Task, capacity),
		logger:  logger.Named("render-queue"),
		metrics: metrics,
		baseCtx: ctx,
		cancel:  cancel,
	}

	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.worker()
	}
	return q
}

func (q *RenderQueue) worker() {
	defer q.wg.Done()
	for task := range q.tasks {
		q.metrics.SetRenderQueueDepth(len(q.tasks))
		task(q.baseCtx)
	}
}

// Enqueue submits a task.  It reports false when the queue is full or
// draining; callers treat that as a deferred render, not a failure.
func (q *RenderQueue) Enqueue(task Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	select {
	case q.tasks <- task:
		q.metrics.SetRenderQueueDepth(len(q.tasks))
		return true
	default:
		q.logger.Warn("render queue full, dropping task")
		return false
	}
}

// Depth returns the number of queued, not-yet-started tasks.
func (q *RenderQueue) Depth() int {
	return len(q.tasks)
}

// Drain stops accepting tasks and waits for queued and in-flight work.  When
// ctx expires first, in-flight tasks are cancelled through their context and
// Drain returns a timeout error without waiting further.
func (q *RenderQueue) Drain(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		return errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "render queue drain timed out")
	}
}
