// Package lobby waits for the server to pair the player and then sends the
// player to the game page.
package lobby

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-client/internal/channel"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// LivenessMessage is announced on load to prove the channel is open.
const LivenessMessage = "I'm connected!"

type State int

const (
	Waiting State = iota
	Redirecting
)

func (that State) String() string {
	switch that {
	case Waiting:
		return "waiting"
	case Redirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

type events interface {
	On(event string, handler channel.Handler)
	Emit(ctx context.Context, event string, payload any, ack channel.AckFunc) error
}

// Navigator leaves the current page for path.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Redirector moves from Waiting to Redirecting on the first "game started"
// and navigates to the game page exactly once. It never times out.
type Redirector struct {
	logger    *slog.Logger
	events    events
	navigator Navigator
	gamePath  string

	mutex      sync.Mutex
	state      State
	redirected chan struct{}
}

func New(logger *slog.Logger, events events, navigator Navigator, gamePath string) *Redirector {
	return &Redirector{
		logger:     logger.With("component", "lobby"),
		events:     events,
		navigator:  navigator,
		gamePath:   gamePath,
		state:      Waiting,
		redirected: make(chan struct{}),
	}
}

// Start listens for the game start and announces the player on the channel.
func (that *Redirector) Start(ctx context.Context) error {
	that.Listen(ctx)

	return that.Announce(ctx)
}

// Announce sends the liveness ping. Pages that register before joining call
// Listen first and Announce once the channel is connected.
func (that *Redirector) Announce(ctx context.Context) error {
	if err := that.events.Emit(ctx, entity.EventLiveness, entity.Liveness{Data: LivenessMessage}, nil); err != nil {
		return fmt.Errorf("failed to announce: %w", err)
	}

	return nil
}

// Listen only registers for "game started", for pages that stay quiet.
func (that *Redirector) Listen(ctx context.Context) {
	that.events.On(entity.EventGameStarted, func(json.RawMessage) {
		that.redirect(ctx)
	})
}

func (that *Redirector) redirect(ctx context.Context) {
	log := that.logger.With("method", "redirect")

	that.mutex.Lock()
	if that.state == Redirecting {
		that.mutex.Unlock()
		log.Debug("game already started, ignoring")
		return
	}
	that.state = Redirecting
	close(that.redirected)
	that.mutex.Unlock()

	log.Info("game started, leaving lobby", "path", that.gamePath)

	if err := that.navigator.Navigate(ctx, that.gamePath); err != nil {
		log.Error("could not navigate to game", "error", err)
	}
}

func (that *Redirector) State() State {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	return that.state
}

// Redirected is closed once the redirect has started.
func (that *Redirector) Redirected() <-chan struct{} {
	return that.redirected
}
