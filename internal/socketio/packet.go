// Package socketio encodes and decodes Socket.IO v4 packets.
//
// A packet travels as text: the type digit, an optional namespace followed by
// a comma, an optional ack id and an optional JSON payload, for example
//
//	2/tictactoe/game,12["make move",{"row":1,"column":2}]
//
// Binary packets are not supported.
package socketio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
)

type PacketType byte

const (
	Connect PacketType = iota
	Disconnect
	Event
	Ack
	ConnectError
	BinaryEvent
	BinaryAck
)

const DefaultNamespace = "/"

func (that PacketType) String() string {
	switch that {
	case Connect:
		return "CONNECT"
	case Disconnect:
		return "DISCONNECT"
	case Event:
		return "EVENT"
	case Ack:
		return "ACK"
	case ConnectError:
		return "CONNECT_ERROR"
	case BinaryEvent:
		return "BINARY_EVENT"
	case BinaryAck:
		return "BINARY_ACK"
	default:
		return "UNKNOWN(" + strconv.Itoa(int(that)) + ")"
	}
}

type Packet struct {
	Type      PacketType
	Namespace string
	ID        *uint64
	Data      json.RawMessage
}

// NewEvent builds an EVENT packet carrying ["event", payload]. A nil payload
// sends the event name alone.
func NewEvent(namespace, event string, payload any, id *uint64) (Packet, error) {
	args := []any{event}
	if payload != nil {
		args = append(args, payload)
	}

	data, err := json.Marshal(args)
	if err != nil {
		return Packet{}, fmt.Errorf("failed to marshal %q payload: %w", event, err)
	}

	return Packet{Type: Event, Namespace: namespace, ID: id, Data: data}, nil
}

// EventArgs splits an EVENT packet into its name and arguments.
func (that Packet) EventArgs() (string, []json.RawMessage, error) {
	if that.Type != Event {
		return "", nil, fmt.Errorf("%w: %s is not an event", apperror.ErrMalformedPacket, that.Type)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(that.Data, &raw); err != nil {
		return "", nil, fmt.Errorf("%w: event data: %w", apperror.ErrMalformedPacket, err)
	}

	if len(raw) == 0 {
		return "", nil, fmt.Errorf("%w: event without name", apperror.ErrMalformedPacket)
	}

	var name string
	if err := json.Unmarshal(raw[0], &name); err != nil {
		return "", nil, fmt.Errorf("%w: event name: %w", apperror.ErrMalformedPacket, err)
	}

	return name, raw[1:], nil
}

// AckArgs returns the arguments of an ACK packet.
func (that Packet) AckArgs() ([]json.RawMessage, error) {
	if that.Type != Ack {
		return nil, fmt.Errorf("%w: %s is not an ack", apperror.ErrMalformedPacket, that.Type)
	}

	if len(that.Data) == 0 {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(that.Data, &raw); err != nil {
		return nil, fmt.Errorf("%w: ack data: %w", apperror.ErrMalformedPacket, err)
	}

	return raw, nil
}

// Encode renders the packet in its text form.
func Encode(packet Packet) string {
	var sb strings.Builder

	sb.WriteByte('0' + byte(packet.Type))

	if packet.Namespace != "" && packet.Namespace != DefaultNamespace {
		sb.WriteString(packet.Namespace)
		sb.WriteByte(',')
	}

	if packet.ID != nil {
		sb.WriteString(strconv.FormatUint(*packet.ID, 10))
	}

	sb.Write(packet.Data)

	return sb.String()
}

// Decode parses the text form of a packet.
func Decode(text string) (Packet, error) {
	if text == "" {
		return Packet{}, fmt.Errorf("%w: empty packet", apperror.ErrMalformedPacket)
	}

	packetType := PacketType(text[0] - '0')
	if text[0] < '0' || packetType > BinaryAck {
		return Packet{}, fmt.Errorf("%w: unknown type %q", apperror.ErrMalformedPacket, text[0])
	}

	if packetType == BinaryEvent || packetType == BinaryAck {
		return Packet{}, fmt.Errorf("%w: binary packets are not supported", apperror.ErrMalformedPacket)
	}

	packet := Packet{Type: packetType, Namespace: DefaultNamespace}
	rest := text[1:]

	if strings.HasPrefix(rest, "/") {
		end := strings.IndexByte(rest, ',')
		if end < 0 {
			packet.Namespace = rest
			return packet, nil
		}

		packet.Namespace = rest[:end]
		rest = rest[end+1:]
	}

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}

	if digits > 0 {
		id, err := strconv.ParseUint(rest[:digits], 10, 64)
		if err != nil {
			return Packet{}, fmt.Errorf("%w: ack id: %w", apperror.ErrMalformedPacket, err)
		}

		packet.ID = &id
		rest = rest[digits:]
	}

	if rest != "" {
		if !json.Valid([]byte(rest)) {
			return Packet{}, fmt.Errorf("%w: invalid json payload", apperror.ErrMalformedPacket)
		}

		packet.Data = json.RawMessage(rest)
	}

	return packet, nil
}
