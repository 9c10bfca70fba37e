// Package bridge marshals channel callbacks into the UI's render cycle.
//
// Channel handlers fire on the channel's reader goroutine, outside of anything
// the UI initiated, so the UI would never redraw after them. Every handler and
// ack callback registered through a Bridge runs via an Applier instead, which
// executes it inside the render cycle and redraws once it returns.
package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-client/internal/channel"
)

// Applier runs fn inside the UI cycle, then renders exactly once.
type Applier interface {
	Apply(fn func())
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(fn func())

func (that ApplierFunc) Apply(fn func()) {
	that(fn)
}

type eventChannel interface {
	On(event string, handler channel.Handler)
	Emit(ctx context.Context, event string, payload any, ack channel.AckFunc) error
}

type Bridge struct {
	logger  *slog.Logger
	channel eventChannel
	applier Applier
}

func New(logger *slog.Logger, ch eventChannel, applier Applier) *Bridge {
	return &Bridge{
		logger:  logger.With("component", "bridge"),
		channel: ch,
		applier: applier,
	}
}

// On registers handler so that it runs inside the UI cycle.
func (that *Bridge) On(event string, handler channel.Handler) {
	that.channel.On(event, func(payload json.RawMessage) {
		that.apply(event, func() { handler(payload) })
	})
}

// Emit sends event right away; a non-nil ack runs inside the UI cycle.
func (that *Bridge) Emit(ctx context.Context, event string, payload any, ack channel.AckFunc) error {
	var wrapped channel.AckFunc
	if ack != nil {
		wrapped = func(args []json.RawMessage) {
			that.apply(event+" ack", func() { ack(args) })
		}
	}

	return that.channel.Emit(ctx, event, payload, wrapped)
}

func (that *Bridge) apply(name string, fn func()) {
	that.applier.Apply(func() {
		defer func() {
			if r := recover(); r != nil {
				that.logger.Error("callback panicked", "callback", name, "panic", r)
			}
		}()

		fn()
	})
}

// Sync is an Applier for headless use: callbacks run on the caller's
// goroutine, one at a time, followed by the render function.
type Sync struct {
	mutex   sync.Mutex
	render  func()
	renders int
}

func NewSync(render func()) *Sync {
	return &Sync{render: render}
}

func (that *Sync) Apply(fn func()) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	defer func() {
		that.renders++
		if that.render != nil {
			that.render()
		}
	}()

	fn()
}

// Renders counts the render passes so far.
func (that *Sync) Renders() int {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	return that.renders
}
