// Package channel is the client side of one Socket.IO namespace: it joins the
// namespace over a transport connection, dispatches inbound events to
// registered handlers in receipt order and emits outbound events with
// optional acknowledgements.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/socketio"
	"github.com/rocketscienceinc/tictactoe-client/transport"
)

const disconnectWait = time.Second

// Handler receives the first argument of an event, nil when the event has none.
type Handler func(payload json.RawMessage)

// AckFunc receives the arguments of the server's acknowledgement.
type AckFunc func(args []json.RawMessage)

type Channel struct {
	logger    *slog.Logger
	conn      transport.Conn
	namespace string
	sid       string

	handlersMutex sync.RWMutex
	handlers      map[string][]Handler

	acksMutex sync.Mutex
	acks      map[uint64]AckFunc
	nextAckID uint64

	joined     atomic.Bool
	done       chan struct{}
	closeOnce  sync.Once
	cancelRead context.CancelFunc

	errMutex sync.Mutex
	err      error
}

type connectReply struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
}

// New prepares a channel for namespace over conn. Handlers registered before
// Connect see every event the server sends after joining.
func New(logger *slog.Logger, conn transport.Conn, namespace string) *Channel {
	return &Channel{
		logger:    logger.With("component", "channel", "namespace", namespace),
		conn:      conn,
		namespace: namespace,
		handlers:  make(map[string][]Handler),
		acks:      make(map[uint64]AckFunc),
		done:      make(chan struct{}),
	}
}

// Dial joins namespace over conn and starts dispatching events. It returns
// once the server accepted the namespace.
func Dial(ctx context.Context, logger *slog.Logger, conn transport.Conn, namespace string) (*Channel, error) {
	that := New(logger, conn, namespace)

	if err := that.Connect(ctx); err != nil {
		return nil, err
	}

	return that, nil
}

// Connect joins the namespace and starts dispatching events.
func (that *Channel) Connect(ctx context.Context) error {
	if that.joined.Load() {
		return nil
	}

	if err := that.connect(ctx); err != nil {
		return err
	}

	readCtx, cancelRead := context.WithCancel(context.Background())
	that.cancelRead = cancelRead
	that.joined.Store(true)

	go that.readLoop(readCtx)

	return nil
}

func (that *Channel) connect(ctx context.Context) error {
	log := that.logger.With("method", "connect")

	packet := socketio.Packet{Type: socketio.Connect, Namespace: that.namespace}
	if err := that.conn.Write(ctx, socketio.Encode(packet)); err != nil {
		return fmt.Errorf("failed to send connect: %w", err)
	}

	for {
		text, err := that.conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("failed to read connect reply: %w", err)
		}

		reply, err := socketio.Decode(text)
		if err != nil {
			log.Warn("skipping malformed packet", "error", err)
			continue
		}

		if reply.Namespace != that.namespace {
			log.Debug("skipping packet of another namespace", "packet_namespace", reply.Namespace)
			continue
		}

		var payload connectReply
		if len(reply.Data) > 0 {
			if err = json.Unmarshal(reply.Data, &payload); err != nil {
				log.Warn("failed to decode connect payload", "error", err)
			}
		}

		switch reply.Type {
		case socketio.Connect:
			that.sid = payload.SID
			log.Info("connected", "sid", that.sid)
			return nil
		case socketio.ConnectError:
			return fmt.Errorf("%w: %s %s", apperror.ErrNamespaceRejected, that.namespace, payload.Message)
		default:
			log.Debug("skipping packet before connect", "type", reply.Type)
		}
	}
}

func (that *Channel) Namespace() string {
	return that.namespace
}

func (that *Channel) SID() string {
	return that.sid
}

// On registers handler for event. Every handler of an event is invoked for
// every received message, in registration order.
func (that *Channel) On(event string, handler Handler) {
	that.handlersMutex.Lock()
	defer that.handlersMutex.Unlock()

	that.handlers[event] = append(that.handlers[event], handler)
}

// Emit sends event immediately. With a non-nil ack the server's
// acknowledgement invokes it exactly once.
func (that *Channel) Emit(ctx context.Context, event string, payload any, ack AckFunc) error {
	if !that.joined.Load() {
		return fmt.Errorf("failed to emit %q: %w", event, apperror.ErrNotConnected)
	}

	if !that.Connected() {
		return fmt.Errorf("failed to emit %q: %w", event, apperror.ErrChannelClosed)
	}

	var id *uint64
	if ack != nil {
		that.acksMutex.Lock()
		ackID := that.nextAckID
		that.nextAckID++
		that.acks[ackID] = ack
		that.acksMutex.Unlock()

		id = &ackID
	}

	packet, err := socketio.NewEvent(that.namespace, event, payload, id)
	if err == nil {
		err = that.conn.Write(ctx, socketio.Encode(packet))
	}

	if err != nil {
		if id != nil {
			that.dropAck(*id)
		}
		return fmt.Errorf("failed to emit %q: %w", event, err)
	}

	return nil
}

// Connected reports whether the channel joined and still delivers events.
func (that *Channel) Connected() bool {
	if !that.joined.Load() {
		return false
	}

	select {
	case <-that.done:
		return false
	default:
		return true
	}
}

// Done is closed when the channel stops, either by Close or because the
// connection dropped.
func (that *Channel) Done() <-chan struct{} {
	return that.done
}

// Err explains why the channel stopped.
func (that *Channel) Err() error {
	that.errMutex.Lock()
	defer that.errMutex.Unlock()

	return that.err
}

// Close leaves the namespace and releases the connection. Pending
// acknowledgements are dropped.
func (that *Channel) Close() error {
	if !that.Connected() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), disconnectWait)
	defer cancel()

	packet := socketio.Packet{Type: socketio.Disconnect, Namespace: that.namespace}
	if err := that.conn.Write(ctx, socketio.Encode(packet)); err != nil {
		that.logger.Debug("failed to send disconnect", "error", err)
	}

	that.shutdown(apperror.ErrChannelClosed)

	return nil
}

func (that *Channel) readLoop(ctx context.Context) {
	log := that.logger.With("method", "readLoop")

	for {
		text, err := that.conn.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || !that.Connected() {
				return
			}

			log.Warn("connection lost", "error", err)
			that.shutdown(fmt.Errorf("%w: %w", apperror.ErrDisconnected, err))
			return
		}

		packet, err := socketio.Decode(text)
		if err != nil {
			log.Warn("skipping malformed packet", "error", err)
			continue
		}

		if packet.Namespace != that.namespace {
			continue
		}

		switch packet.Type {
		case socketio.Event:
			that.dispatch(packet)
		case socketio.Ack:
			that.resolveAck(packet)
		case socketio.Disconnect:
			log.Info("server closed the namespace")
			that.shutdown(fmt.Errorf("%w: server closed %s", apperror.ErrDisconnected, that.namespace))
			return
		default:
			log.Debug("skipping packet", "type", packet.Type)
		}
	}
}

func (that *Channel) dispatch(packet socketio.Packet) {
	log := that.logger.With("method", "dispatch")

	event, args, err := packet.EventArgs()
	if err != nil {
		log.Warn("skipping malformed event", "error", err)
		return
	}

	var payload json.RawMessage
	if len(args) > 0 {
		payload = args[0]
	}

	that.handlersMutex.RLock()
	handlers := append([]Handler(nil), that.handlers[event]...)
	that.handlersMutex.RUnlock()

	if len(handlers) == 0 {
		log.Debug("no handler for event", "event", event)
		return
	}

	for _, handler := range handlers {
		that.invoke(event, func() { handler(payload) })
	}
}

func (that *Channel) resolveAck(packet socketio.Packet) {
	log := that.logger.With("method", "resolveAck")

	if packet.ID == nil {
		log.Warn("skipping ack without id")
		return
	}

	ack := that.dropAck(*packet.ID)
	if ack == nil {
		log.Debug("skipping unknown ack", "id", *packet.ID)
		return
	}

	args, err := packet.AckArgs()
	if err != nil {
		log.Warn("malformed ack arguments", "error", err)
	}

	that.invoke("ack", func() { ack(args) })
}

// invoke keeps the read loop alive when a handler panics.
func (that *Channel) invoke(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			that.logger.Error("handler panicked", "event", name, "panic", r)
		}
	}()

	fn()
}

func (that *Channel) dropAck(id uint64) AckFunc {
	that.acksMutex.Lock()
	defer that.acksMutex.Unlock()

	ack := that.acks[id]
	delete(that.acks, id)

	return ack
}

func (that *Channel) shutdown(err error) {
	that.closeOnce.Do(func() {
		that.errMutex.Lock()
		that.err = err
		that.errMutex.Unlock()

		that.acksMutex.Lock()
		clear(that.acks)
		that.acksMutex.Unlock()

		close(that.done)
		if that.cancelRead != nil {
			that.cancelRead()
		}

		if closeErr := that.conn.Close(); closeErr != nil {
			that.logger.Debug("failed to close connection", "error", closeErr)
		}
	})
}
