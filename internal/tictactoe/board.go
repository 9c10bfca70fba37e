package tictactoe

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-client/internal/channel"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/store"
)

type events interface {
	On(event string, handler channel.Handler)
	Emit(ctx context.Context, event string, payload any, ack channel.AckFunc) error
}

type link interface {
	Connected() bool
}

type notifier interface {
	Notify(message string)
}

// Board mirrors the server's field. It never changes the field on its own:
// a click only asks the server, and the field moves when the server's update
// comes back.
type Board struct {
	logger *slog.Logger
	events events
	link   link

	field *store.Store[entity.Board]
}

func NewBoard(logger *slog.Logger, events events, link link) *Board {
	board := &Board{
		logger: logger.With("component", "board"),
		events: events,
		link:   link,
		field:  store.New(entity.EmptyBoard()),
	}

	events.On(entity.EventUpdateGame, board.handleUpdate)

	return board
}

func (that *Board) handleUpdate(payload json.RawMessage) {
	log := that.logger.With("method", "handleUpdate")

	field, err := entity.ParseField(payload)
	if err != nil {
		log.Warn("ignoring game update", "error", err)
		return
	}

	that.field.Replace(field)
}

func (that *Board) Field() entity.Board {
	return that.field.Get()
}

// CellData is the display text of a cell: empty for "-", the mark otherwise.
func (that *Board) CellData(row, column int) string {
	symbol := that.field.Get().Symbol(row, column)
	if symbol == entity.EmptyCell {
		return ""
	}

	return symbol
}

// ClickCell asks the server to place the player's mark. Coordinates are passed
// through as given; the server decides whether the move is legal.
func (that *Board) ClickCell(ctx context.Context, row, column int) error {
	return that.events.Emit(ctx, entity.EventMakeMove, entity.Move{Row: row, Column: column}, nil)
}

func (that *Board) Subscribe(fn func(entity.Board)) func() {
	return that.field.Subscribe(fn)
}

// Destroy warns the user before the view goes away while the game is still live.
func (that *Board) Destroy(n notifier) {
	if !that.link.Connected() {
		return
	}

	that.logger.Info("board destroyed while connected")
	n.Notify(entity.NoticeDisconnect)
}
