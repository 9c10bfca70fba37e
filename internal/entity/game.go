package entity

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
)

const (
	EventUpdateGame  = "update game"
	EventMakeMove    = "make move"
	EventGameStarted = "game started"
	EventLiveness    = "my event"
)

// NoticeDisconnect is what the user is told when a live game view goes away.
const NoticeDisconnect = "disconnect"

const (
	PlayerX   = "X"
	PlayerO   = "O"
	EmptyCell = "-"

	NoWinner = "none"

	BoardSize = 3
)

// Board is the 3x3 field as it travels on the wire: three rows of three symbols.
type Board [BoardSize]string

// EmptyBoard returns the field every page starts with before the server speaks.
func EmptyBoard() Board {
	return Board{"---", "---", "---"}
}

// Symbol returns the raw symbol at row/column, or an empty string when out of range.
func (that Board) Symbol(row, column int) string {
	if !InRange(row) || !InRange(column) {
		return ""
	}

	rowData := that[row]
	if column >= len(rowData) {
		return ""
	}

	return rowData[column : column+1]
}

// Validate checks the board shape and symbols.
func (that Board) Validate() error {
	for i, row := range that {
		if utf8.RuneCountInString(row) != BoardSize || len(row) != BoardSize {
			return fmt.Errorf("%w: row %d is %q", apperror.ErrMalformedUpdate, i, row)
		}

		for _, symbol := range row {
			switch string(symbol) {
			case EmptyCell, PlayerX, PlayerO:
			default:
				return fmt.Errorf("%w: unknown symbol %q in row %d", apperror.ErrMalformedUpdate, symbol, i)
			}
		}
	}

	return nil
}

func InRange(index int) bool {
	return index >= 0 && index < BoardSize
}

// GameStatus is the turn/game-over/winner projection of the latest update.
type GameStatus struct {
	Turn     string `json:"turn"`
	GameOver bool   `json:"gameOver"`
	Winner   string `json:"winner"`
}

func (that GameStatus) HasWinner() bool {
	return that.Winner != "" && that.Winner != NoWinner
}

type fieldWire struct {
	Field []string `json:"field"`
}

type statusWire struct {
	Turn     *string `json:"turn"`
	GameOver *bool   `json:"gameOver"`
	Winner   *string `json:"winner"`
}

// ParseField extracts only the field of an "update game" payload.
func ParseField(payload json.RawMessage) (Board, error) {
	var wire fieldWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return Board{}, fmt.Errorf("%w: %w", apperror.ErrMalformedUpdate, err)
	}

	if len(wire.Field) != BoardSize {
		return Board{}, fmt.Errorf("%w: field has %d rows", apperror.ErrMalformedUpdate, len(wire.Field))
	}

	var board Board
	copy(board[:], wire.Field)

	if err := board.Validate(); err != nil {
		return Board{}, err
	}

	return board, nil
}

// ParseGameStatus extracts only turn, gameOver and winner. All three must be
// present; the field is not looked at.
func ParseGameStatus(payload json.RawMessage) (GameStatus, error) {
	var wire statusWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return GameStatus{}, fmt.Errorf("%w: %w", apperror.ErrMalformedUpdate, err)
	}

	switch {
	case wire.Turn == nil:
		return GameStatus{}, fmt.Errorf("%w: missing turn", apperror.ErrMalformedUpdate)
	case wire.GameOver == nil:
		return GameStatus{}, fmt.Errorf("%w: missing gameOver", apperror.ErrMalformedUpdate)
	case wire.Winner == nil:
		return GameStatus{}, fmt.Errorf("%w: missing winner", apperror.ErrMalformedUpdate)
	}

	return GameStatus{Turn: *wire.Turn, GameOver: *wire.GameOver, Winner: *wire.Winner}, nil
}

// Move is the payload of the "make move" event.
type Move struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Liveness is the payload of the lobby's connect announcement.
type Liveness struct {
	Data string `json:"data"`
}
