package tictactoe

import (
	"encoding/json"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/store"
)

// Status projects turn, game over and winner from the latest update. It keeps
// its own subscription and re-reads those keys from every payload.
type Status struct {
	logger *slog.Logger
	status *store.Store[*entity.GameStatus]
}

func NewStatus(logger *slog.Logger, events events) *Status {
	status := &Status{
		logger: logger.With("component", "status"),
		status: store.New[*entity.GameStatus](nil),
	}

	events.On(entity.EventUpdateGame, status.handleUpdate)

	return status
}

func (that *Status) handleUpdate(payload json.RawMessage) {
	status, err := entity.ParseGameStatus(payload)
	if err != nil {
		that.logger.Warn("ignoring game update", "method", "handleUpdate", "error", err)
		return
	}

	that.status.Replace(&status)
}

// Status returns the latest status; ok is false before the first update.
func (that *Status) Status() (entity.GameStatus, bool) {
	status := that.status.Get()
	if status == nil {
		return entity.GameStatus{}, false
	}

	return *status, true
}

func (that *Status) Turn() string {
	status, _ := that.Status()
	return status.Turn
}

func (that *Status) GameOver() bool {
	status, _ := that.Status()
	return status.GameOver
}

func (that *Status) Winner() string {
	status, _ := that.Status()
	return status.Winner
}

func (that *Status) Subscribe(fn func(*entity.GameStatus)) func() {
	return that.status.Subscribe(fn)
}
