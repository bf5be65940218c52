// Package message moves encoded records between processes. A topic is fixed
// when a Publisher or Subscriber is created.
package message

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("message: closed")

type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
	Close() error
}

// Subscriber yields payloads in arrival order. Next blocks until a payload
// arrives or ctx is done.
type Subscriber interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}
