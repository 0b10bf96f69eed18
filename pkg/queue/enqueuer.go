package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Enqueuer pushes tasks onto a redis list. Enqueueing is fire-and-forget:
// the caller never waits for the task to run, and failure/retry policy is
// the worker's concern.
type Enqueuer struct {
	client     redis.UniversalClient
	queue      string
	maxRetries int8
}

type EnqueuerOption func(*Enqueuer)

// WithQueue overrides the default queue name.
func WithQueue(name string) EnqueuerOption {
	return func(e *Enqueuer) {
		if name != "" {
			e.queue = name
		}
	}
}

// WithMaxRetries overrides the default retry budget for enqueued tasks.
func WithMaxRetries(n int8) EnqueuerOption {
	return func(e *Enqueuer) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// NewEnqueuer creates an Enqueuer on the given redis client.
func NewEnqueuer(client redis.UniversalClient, opts ...EnqueuerOption) (*Enqueuer, error) {
	if client == nil {
		return nil, ErrClientNil
	}

	e := &Enqueuer{
		client:     client,
		queue:      DefaultQueueName,
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Enqueue marshals payload and pushes it as a task named after the
// payload's type.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any) error {
	if payload == nil {
		return ErrPayloadNil
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("queue: marshal payload of type %T: %w", payload, err)
	}

	task := Task{
		ID:         uuid.New(),
		Queue:      e.queue,
		TaskName:   qualifiedStructName(payload),
		Payload:    payloadBytes,
		MaxRetries: e.maxRetries,
		EnqueuedAt: time.Now().UTC(),
	}

	return e.push(ctx, task)
}

func (e *Enqueuer) push(ctx context.Context, task Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("queue: marshal task %q: %w", task.TaskName, err)
	}
	if err := e.client.LPush(ctx, listKey(task.Queue), data).Err(); err != nil {
		return fmt.Errorf("queue: push task %q to %q: %w", task.TaskName, task.Queue, err)
	}
	return nil
}
