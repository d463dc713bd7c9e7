package websocket

import "errors"

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrInvalidMessage  = errors.New("invalid message format")
	ErrAccessDenied    = errors.New("access denied")
	ErrChatNotFound    = errors.New("chat not found")
)
