// Package queue is a small redis-backed task queue used for fire-and-forget
// background work such as outbound email. The web process enqueues tasks
// onto a redis list; a separate worker process pops them and dispatches to
// registered handlers by task name.
package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultQueueName is used when no queue is specified.
const DefaultQueueName = "default"

// Task is the unit of work stored in the broker.
type Task struct {
	ID         uuid.UUID       `json:"id"`
	Queue      string          `json:"queue"`
	TaskName   string          `json:"task_name"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	RetryCount int8            `json:"retry_count"`
	MaxRetries int8            `json:"max_retries"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

type Config struct {
	QueueName          string        `env:"QUEUE_NAME" envDefault:"default"`
	PollTimeout        time.Duration `env:"QUEUE_POLL_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout    time.Duration `env:"QUEUE_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxConcurrentTasks int           `env:"QUEUE_MAX_CONCURRENT_TASKS" envDefault:"10"`
	MaxRetries         int8          `env:"QUEUE_MAX_RETRIES" envDefault:"3"`
}

// listKey is the redis key holding the pending tasks of a queue.
func listKey(queue string) string {
	return "queue:" + queue
}

// qualifiedStructName derives a task name from the payload's Go type, so
// enqueuer and worker agree without a shared registry of string constants.
func qualifiedStructName(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}
