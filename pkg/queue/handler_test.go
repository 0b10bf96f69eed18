package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashokafoundation/website/pkg/queue"
)

type greetTask struct {
	Name string `json:"name"`
}

func TestNewTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("name derived from payload type", func(t *testing.T) {
		h := queue.NewTaskHandler(func(ctx context.Context, p greetTask) error { return nil })
		assert.Equal(t, "queue_test.greetTask", h.Name())
	})

	t.Run("payload decoded before dispatch", func(t *testing.T) {
		var got greetTask
		h := queue.NewTaskHandler(func(ctx context.Context, p greetTask) error {
			got = p
			return nil
		})

		payload, err := json.Marshal(greetTask{Name: "ashoka"})
		require.NoError(t, err)

		require.NoError(t, h.Handle(context.Background(), payload))
		assert.Equal(t, "ashoka", got.Name)
	})

	t.Run("handler error propagates", func(t *testing.T) {
		wantErr := errors.New("boom")
		h := queue.NewTaskHandler(func(ctx context.Context, p greetTask) error { return wantErr })

		err := h.Handle(context.Background(), json.RawMessage(`{}`))
		require.ErrorIs(t, err, wantErr)
	})

	t.Run("malformed payload fails", func(t *testing.T) {
		h := queue.NewTaskHandler(func(ctx context.Context, p greetTask) error { return nil })
		err := h.Handle(context.Background(), json.RawMessage(`{broken`))
		require.Error(t, err)
	})
}
