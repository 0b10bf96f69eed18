package queue

import "errors"

var (
	ErrClientNil     = errors.New("queue: redis client is nil")
	ErrPayloadNil    = errors.New("queue: payload is nil")
	ErrHandlerNil    = errors.New("queue: handler is nil")
	ErrHandlerExists = errors.New("queue: handler already registered")
)
