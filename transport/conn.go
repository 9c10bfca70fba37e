// Package transport defines the text connection the channel adapter speaks
// Socket.IO packets over. Implementations live in the websocket and redis
// subpackages.
package transport

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("transport is closed")

// Conn carries one Socket.IO packet per Read/Write call.
type Conn interface {
	// Read blocks until the next packet arrives, ctx is done or the
	// connection is gone.
	Read(ctx context.Context) (string, error)

	Write(ctx context.Context, packet string) error

	Close() error
}
