package entity

import (
	"encoding/json"
	"testing"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_Symbol(t *testing.T) {
	t.Run("Returns symbols of a filled board", func(t *testing.T) {
		// Given: a board with X and O marks
		board := Board{"XOX", "-O-", "--X"}

		// When: reading cells
		// Then: raw symbols are returned unchanged
		assert.Equal(t, PlayerX, board.Symbol(0, 0))
		assert.Equal(t, PlayerO, board.Symbol(0, 1))
		assert.Equal(t, EmptyCell, board.Symbol(1, 0))
		assert.Equal(t, PlayerX, board.Symbol(2, 2))
	})

	t.Run("Returns empty string out of range", func(t *testing.T) {
		// Given: an empty board
		board := EmptyBoard()

		// When: reading outside the 3x3 grid
		// Then: nothing is returned
		assert.Equal(t, "", board.Symbol(-1, 0))
		assert.Equal(t, "", board.Symbol(0, 3))
		assert.Equal(t, "", board.Symbol(3, 3))
	})
}

func TestBoard_Validate(t *testing.T) {
	t.Run("Accepts the empty board", func(t *testing.T) {
		assert.NoError(t, EmptyBoard().Validate())
	})

	t.Run("Rejects short rows", func(t *testing.T) {
		// Given: a board with a two-cell row
		board := Board{"XO", "---", "---"}

		// When: validating
		err := board.Validate()

		// Then: ErrMalformedUpdate is returned
		require.ErrorIs(t, err, apperror.ErrMalformedUpdate)
	})

	t.Run("Rejects unknown symbols", func(t *testing.T) {
		// Given: a board with a lowercase mark
		board := Board{"x--", "---", "---"}

		// When: validating
		err := board.Validate()

		// Then: ErrMalformedUpdate is returned
		require.ErrorIs(t, err, apperror.ErrMalformedUpdate)
		assert.Contains(t, err.Error(), "unknown symbol")
	})
}

func TestParseUpdate(t *testing.T) {
	t.Run("Parses a complete payload", func(t *testing.T) {
		// Given: an update game payload
		payload := json.RawMessage(`{"field":["XOX","-O-","--X"],"turn":"O","gameOver":false,"winner":"none"}`)

		// When: parsing both parts
		field, fieldErr := ParseField(payload)
		status, statusErr := ParseGameStatus(payload)

		// Then: board and status are extracted
		require.NoError(t, fieldErr)
		require.NoError(t, statusErr)
		assert.Equal(t, Board{"XOX", "-O-", "--X"}, field)
		assert.Equal(t, GameStatus{Turn: "O", GameOver: false, Winner: NoWinner}, status)
		assert.False(t, status.HasWinner())
	})

	t.Run("Parses a finished game", func(t *testing.T) {
		payload := json.RawMessage(`{"field":["XXX","OO-","---"],"turn":"O","gameOver":true,"winner":"alice"}`)

		status, err := ParseGameStatus(payload)

		require.NoError(t, err)
		assert.True(t, status.GameOver)
		assert.True(t, status.HasWinner())
	})

	fieldCases := []struct {
		name    string
		payload string
	}{
		{name: "missing field", payload: `{"turn":"O","gameOver":false,"winner":"none"}`},
		{name: "two rows", payload: `{"field":["---","---"],"turn":"O","gameOver":false,"winner":"none"}`},
		{name: "bad symbol", payload: `{"field":["-?-","---","---"],"turn":"O","gameOver":false,"winner":"none"}`},
		{name: "not an object", payload: `["---","---","---"]`},
	}

	for _, tc := range fieldCases {
		t.Run("Field rejects "+tc.name, func(t *testing.T) {
			// When: parsing a partial or broken field
			_, err := ParseField(json.RawMessage(tc.payload))

			// Then: the field is rejected whole
			require.ErrorIs(t, err, apperror.ErrMalformedUpdate)
		})
	}

	statusCases := []struct {
		name    string
		payload string
	}{
		{name: "missing turn", payload: `{"field":["---","---","---"],"gameOver":false,"winner":"none"}`},
		{name: "missing gameOver", payload: `{"field":["---","---","---"],"turn":"O","winner":"none"}`},
		{name: "missing winner", payload: `{"field":["---","---","---"],"turn":"O","gameOver":false}`},
		{name: "not an object", payload: `"update"`},
	}

	for _, tc := range statusCases {
		t.Run("Status rejects "+tc.name, func(t *testing.T) {
			_, err := ParseGameStatus(json.RawMessage(tc.payload))

			require.ErrorIs(t, err, apperror.ErrMalformedUpdate)
		})
	}
}

func TestParseField(t *testing.T) {
	t.Run("Ignores the status keys", func(t *testing.T) {
		// Given: a payload with a field and no status
		payload := json.RawMessage(`{"field":["X--","-O-","---"]}`)

		// When: extracting the field
		field, err := ParseField(payload)

		// Then: the field alone is enough
		require.NoError(t, err)
		assert.Equal(t, Board{"X--", "-O-", "---"}, field)
	})

	t.Run("Rejects a short field", func(t *testing.T) {
		_, err := ParseField(json.RawMessage(`{"field":["XO"],"turn":"O","gameOver":true,"winner":"X"}`))

		require.ErrorIs(t, err, apperror.ErrMalformedUpdate)
	})
}

func TestParseGameStatus(t *testing.T) {
	t.Run("Ignores a broken field", func(t *testing.T) {
		// Given: complete status keys next to a malformed field
		payload := json.RawMessage(`{"field":["XO","---"],"turn":"O","gameOver":true,"winner":"X"}`)

		// When: extracting the status
		status, err := ParseGameStatus(payload)

		// Then: the status is still read
		require.NoError(t, err)
		assert.Equal(t, GameStatus{Turn: "O", GameOver: true, Winner: "X"}, status)
	})

	t.Run("Rejects missing keys", func(t *testing.T) {
		_, err := ParseGameStatus(json.RawMessage(`{"field":["---","---","---"],"turn":"O"}`))

		require.ErrorIs(t, err, apperror.ErrMalformedUpdate)
	})
}
