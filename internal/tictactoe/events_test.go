package tictactoe

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-client/internal/channel"
)

type emitted struct {
	event   string
	payload any
}

// fakeEvents stands in for the bridged channel: tests push server events
// with fire and inspect what the controllers emitted.
type fakeEvents struct {
	handlers  map[string][]channel.Handler
	emits     []emitted
	connected bool
	emitErr   error
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{handlers: make(map[string][]channel.Handler), connected: true}
}

func (that *fakeEvents) On(event string, handler channel.Handler) {
	that.handlers[event] = append(that.handlers[event], handler)
}

func (that *fakeEvents) Emit(_ context.Context, event string, payload any, _ channel.AckFunc) error {
	if that.emitErr != nil {
		return that.emitErr
	}

	that.emits = append(that.emits, emitted{event: event, payload: payload})
	return nil
}

func (that *fakeEvents) Connected() bool {
	return that.connected
}

func (that *fakeEvents) fire(event, payload string) {
	for _, handler := range that.handlers[event] {
		handler(json.RawMessage(payload))
	}
}

type mockNotifier struct {
	mock.Mock
}

func (that *mockNotifier) Notify(message string) {
	that.Called(message)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
