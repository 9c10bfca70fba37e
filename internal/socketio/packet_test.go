package socketio

import (
	"encoding/json"
	"testing"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ackID(id uint64) *uint64 {
	return &id
}

func TestEncode(t *testing.T) {
	t.Run("Event in a custom namespace with ack id", func(t *testing.T) {
		// Given: a make move event expecting an acknowledgement
		packet, err := NewEvent("/tictactoe/game", "make move", map[string]int{"row": 1}, ackID(12))
		require.NoError(t, err)

		// When: encoding it
		text := Encode(packet)

		// Then: namespace, id and args are laid out in order
		assert.Equal(t, `2/tictactoe/game,12["make move",{"row":1}]`, text)
	})

	t.Run("Connect to the default namespace", func(t *testing.T) {
		assert.Equal(t, "0", Encode(Packet{Type: Connect, Namespace: DefaultNamespace}))
	})

	t.Run("Connect to a custom namespace", func(t *testing.T) {
		assert.Equal(t, "0/tictactoe/wait,", Encode(Packet{Type: Connect, Namespace: "/tictactoe/wait"}))
	})

	t.Run("Event without payload", func(t *testing.T) {
		packet, err := NewEvent(DefaultNamespace, "game started", nil, nil)
		require.NoError(t, err)

		assert.Equal(t, `2["game started"]`, Encode(packet))
	})
}

func TestDecode(t *testing.T) {
	t.Run("Event with namespace and args", func(t *testing.T) {
		// Given: an update game packet from the server
		text := `2/tictactoe/game,["update game",{"turn":"O"}]`

		// When: decoding it
		packet, err := Decode(text)
		require.NoError(t, err)

		// Then: namespace and event args are recovered
		assert.Equal(t, Event, packet.Type)
		assert.Equal(t, "/tictactoe/game", packet.Namespace)
		assert.Nil(t, packet.ID)

		name, args, err := packet.EventArgs()
		require.NoError(t, err)
		assert.Equal(t, "update game", name)
		require.Len(t, args, 1)
		assert.JSONEq(t, `{"turn":"O"}`, string(args[0]))
	})

	t.Run("Ack with id", func(t *testing.T) {
		// Given: an acknowledgement for packet 7
		packet, err := Decode(`3/tictactoe/game,7["ok",1]`)
		require.NoError(t, err)

		// Then: id and ack args are recovered
		assert.Equal(t, Ack, packet.Type)
		require.NotNil(t, packet.ID)
		assert.Equal(t, uint64(7), *packet.ID)

		args, err := packet.AckArgs()
		require.NoError(t, err)
		assert.Len(t, args, 2)
	})

	t.Run("Connect reply without trailing comma", func(t *testing.T) {
		packet, err := Decode("0/tictactoe/wait")
		require.NoError(t, err)

		assert.Equal(t, Connect, packet.Type)
		assert.Equal(t, "/tictactoe/wait", packet.Namespace)
	})

	t.Run("Connect reply with sid on default namespace", func(t *testing.T) {
		packet, err := Decode(`0{"sid":"abc"}`)
		require.NoError(t, err)

		assert.Equal(t, DefaultNamespace, packet.Namespace)
		assert.JSONEq(t, `{"sid":"abc"}`, string(packet.Data))
	})

	t.Run("Round trips an encoded event", func(t *testing.T) {
		packet, err := NewEvent("/tictactoe/wait", "my event", map[string]string{"data": "hi"}, ackID(3))
		require.NoError(t, err)

		decoded, err := Decode(Encode(packet))
		require.NoError(t, err)

		assert.Equal(t, packet.Namespace, decoded.Namespace)
		assert.Equal(t, *packet.ID, *decoded.ID)
		assert.JSONEq(t, string(packet.Data), string(decoded.Data))
	})

	errorCases := map[string]string{
		"empty":          "",
		"unknown type":   "9",
		"not a digit":    "x",
		"binary event":   `51-["upload",{"_placeholder":true,"num":0}]`,
		"broken payload": `2["update game",`,
	}

	for name, text := range errorCases {
		t.Run("Rejects "+name, func(t *testing.T) {
			_, err := Decode(text)

			require.ErrorIs(t, err, apperror.ErrMalformedPacket)
		})
	}
}

func TestPacket_EventArgs(t *testing.T) {
	t.Run("Rejects non-event packets", func(t *testing.T) {
		_, _, err := Packet{Type: Ack}.EventArgs()

		require.ErrorIs(t, err, apperror.ErrMalformedPacket)
	})

	t.Run("Rejects events without a name", func(t *testing.T) {
		_, _, err := Packet{Type: Event, Data: json.RawMessage(`[]`)}.EventArgs()

		require.ErrorIs(t, err, apperror.ErrMalformedPacket)
	})

	t.Run("Rejects non-string names", func(t *testing.T) {
		_, _, err := Packet{Type: Event, Data: json.RawMessage(`[1]`)}.EventArgs()

		require.ErrorIs(t, err, apperror.ErrMalformedPacket)
	})
}
