package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Worker pops tasks from a redis list and dispatches them to registered
// handlers. Failed tasks are re-enqueued until their retry budget is
// exhausted, then dropped with an error log.
type Worker struct {
	client       redis.UniversalClient
	queue        string
	pollTimeout  time.Duration
	drainTimeout time.Duration
	sem          chan struct{}
	logger       *slog.Logger

	mu       sync.RWMutex
	handlers map[string]Handler
	wg       sync.WaitGroup
}

// NewWorker creates a worker bound to the queue named in cfg.
func NewWorker(client redis.UniversalClient, cfg Config, logger *slog.Logger) (*Worker, error) {
	if client == nil {
		return nil, ErrClientNil
	}
	if logger == nil {
		logger = slog.Default()
	}

	queue := cfg.QueueName
	if queue == "" {
		queue = DefaultQueueName
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	drainTimeout := cfg.ShutdownTimeout
	if drainTimeout <= 0 {
		drainTimeout = 30 * time.Second
	}
	concurrency := cfg.MaxConcurrentTasks
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Worker{
		client:       client,
		queue:        queue,
		pollTimeout:  pollTimeout,
		drainTimeout: drainTimeout,
		sem:          make(chan struct{}, concurrency),
		logger:       logger,
		handlers:     make(map[string]Handler),
	}, nil
}

// RegisterHandler adds a handler; duplicate names are rejected.
func (w *Worker) RegisterHandler(h Handler) error {
	if h == nil {
		return ErrHandlerNil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.handlers[h.Name()]; exists {
		return ErrHandlerExists
	}
	w.handlers[h.Name()] = h
	return nil
}

// Run blocks, consuming tasks until ctx is cancelled. In-flight tasks are
// waited for before returning.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "queue worker started", slog.String("queue", w.queue))

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.logger.InfoContext(ctx, "queue worker stopped", slog.String("queue", w.queue))
			return ctx.Err()
		default:
		}

		res, err := w.client.BRPop(ctx, w.pollTimeout, listKey(w.queue)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.ErrorContext(ctx, "queue poll failed", slog.Any("error", err))
			continue
		}
		// BRPop returns [key, value].
		if len(res) != 2 {
			continue
		}

		var task Task
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			w.logger.ErrorContext(ctx, "discarding undecodable task", slog.Any("error", err))
			continue
		}

		w.sem <- struct{}{}
		w.wg.Add(1)
		go func(task Task) {
			defer func() {
				<-w.sem
				w.wg.Done()
			}()
			tctx, cancel := w.taskContext(ctx)
			defer cancel()
			w.process(tctx, task)
		}(task)
	}
}

// taskContext detaches a popped task from run cancellation: a task in
// flight when shutdown starts must still finish, and on failure its retry
// re-enqueue must still reach redis. The drain timeout bounds how long
// that grace lasts.
func (w *Worker) taskContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), w.drainTimeout)
}

func (w *Worker) process(ctx context.Context, task Task) {
	w.mu.RLock()
	handler, ok := w.handlers[task.TaskName]
	w.mu.RUnlock()
	if !ok {
		w.logger.ErrorContext(ctx, "no handler for task",
			slog.String("task", task.TaskName),
			slog.String("queue", task.Queue),
		)
		return
	}

	err := handler.Handle(ctx, task.Payload)
	if err == nil {
		return
	}

	if task.RetryCount >= task.MaxRetries {
		w.logger.ErrorContext(ctx, "task failed permanently",
			slog.String("task", task.TaskName),
			slog.Int("retries", int(task.RetryCount)),
			slog.Any("error", err),
		)
		return
	}

	task.RetryCount++
	data, marshalErr := json.Marshal(task)
	if marshalErr != nil {
		w.logger.ErrorContext(ctx, "failed to re-enqueue task", slog.Any("error", marshalErr))
		return
	}
	if pushErr := w.client.LPush(ctx, listKey(task.Queue), data).Err(); pushErr != nil {
		w.logger.ErrorContext(ctx, "failed to re-enqueue task", slog.Any("error", pushErr))
		return
	}

	w.logger.WarnContext(ctx, "task failed, re-enqueued",
		slog.String("task", task.TaskName),
		slog.Int("retry", int(task.RetryCount)),
		slog.Any("error", err),
	)
}
