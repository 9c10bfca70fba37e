package application

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
)

// navigator hands navigation requests to the application loop. It never
// blocks, since it is called from channel callbacks running on the UI loop.
type navigator struct {
	requests chan string
}

func newNavigator() *navigator {
	return &navigator{requests: make(chan string, 1)}
}

func (that *navigator) Navigate(_ context.Context, path string) error {
	select {
	case that.requests <- path:
		return nil
	default:
		return fmt.Errorf("%w: %s", apperror.ErrAlreadyNavigated, path)
	}
}
