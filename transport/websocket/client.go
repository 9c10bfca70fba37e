package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-client/transport"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	defaultPingInterval = 25 * time.Second
	defaultPingTimeout  = 20 * time.Second

	enginePath = "/socket.io/"

	incomingBuffer = 64
)

// Engine.IO v4 packet types.
const (
	engineOpen    = '0'
	engineClose   = '1'
	enginePing    = '2'
	enginePong    = '3'
	engineMessage = '4'
	engineNoop    = '6'
)

var ErrHandshake = errors.New("engine.io handshake failed")

type Options struct {
	ServerURL        string
	SessionCookie    string
	HandshakeTimeout time.Duration
}

type openPayload struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
	MaxPayload   int    `json:"maxPayload"`
}

// Conn is an Engine.IO v4 websocket session carrying Socket.IO packets.
type Conn struct {
	logger *slog.Logger
	conn   *websocket.Conn

	sid      string
	pongWait time.Duration

	incoming chan string
	done     chan struct{}

	writeMutex sync.Mutex
	closeOnce  sync.Once

	errMutex sync.Mutex
	err      error
}

// Dial opens the websocket, reads the Engine.IO open packet and starts the read pump.
func Dial(ctx context.Context, logger *slog.Logger, opts Options) (*Conn, error) {
	log := logger.With("method", "Dial")

	endpoint, err := EndpointURL(opts.ServerURL)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: opts.HandshakeTimeout,
	}

	header := http.Header{}
	if opts.SessionCookie != "" {
		header.Set("Cookie", opts.SessionCookie)
	}

	wsConn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	conn := &Conn{
		logger:   logger.With("component", "engine.io"),
		conn:     wsConn,
		incoming: make(chan string, incomingBuffer),
		done:     make(chan struct{}),
	}

	if err = conn.readOpen(ctx, opts.HandshakeTimeout); err != nil {
		wsConn.Close()
		return nil, err
	}

	log.Debug("engine.io session opened", "sid", conn.sid, "endpoint", endpoint)

	go conn.readPump()

	return conn, nil
}

// EndpointURL turns the configured server url into the Engine.IO websocket endpoint.
func EndpointURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server url %q: unsupported scheme %q", serverURL, u.Scheme)
	}

	if u.Host == "" {
		return "", fmt.Errorf("invalid server url %q: missing host", serverURL)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + enginePath

	query := u.Query()
	query.Set("EIO", "4")
	query.Set("transport", "websocket")
	u.RawQuery = query.Encode()

	return u.String(), nil
}

func (that *Conn) SID() string {
	return that.sid
}

func (that *Conn) readOpen(ctx context.Context, timeout time.Duration) error {
	deadline, ok := ctx.Deadline()
	if !ok && timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	if err := that.conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set read deadline: %w", err)
	}

	_, data, err := that.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	if len(data) == 0 || data[0] != engineOpen {
		return fmt.Errorf("%w: unexpected first packet %q", ErrHandshake, data)
	}

	var open openPayload
	if err = json.Unmarshal(data[1:], &open); err != nil {
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	pingInterval := time.Duration(open.PingInterval) * time.Millisecond
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}

	pingTimeout := time.Duration(open.PingTimeout) * time.Millisecond
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}

	that.sid = open.SID
	that.pongWait = pingInterval + pingTimeout

	return nil
}

// readPump answers server pings and forwards message packets to Read.
func (that *Conn) readPump() {
	log := that.logger.With("method", "readPump")

	for {
		if err := that.conn.SetReadDeadline(time.Now().Add(that.pongWait)); err != nil {
			that.shutdown(fmt.Errorf("failed to set read deadline: %w", err))
			return
		}

		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket closed unexpectedly", "error", err)
			}
			that.shutdown(fmt.Errorf("failed to read message: %w", err))
			return
		}

		if len(data) == 0 {
			continue
		}

		switch data[0] {
		case enginePing:
			if err = that.writeRaw(context.Background(), string(enginePong)+string(data[1:])); err != nil {
				that.shutdown(err)
				return
			}
		case engineMessage:
			select {
			case that.incoming <- string(data[1:]):
			case <-that.done:
				return
			}
		case engineClose:
			that.shutdown(transport.ErrClosed)
			return
		case enginePong, engineNoop:
		default:
			log.Debug("skipping unknown engine.io packet", "packet", string(data))
		}
	}
}

func (that *Conn) Read(ctx context.Context) (string, error) {
	select {
	case packet := <-that.incoming:
		return packet, nil
	case <-that.done:
		select {
		case packet := <-that.incoming:
			return packet, nil
		default:
			return "", that.Err()
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (that *Conn) Write(ctx context.Context, packet string) error {
	return that.writeRaw(ctx, string(engineMessage)+packet)
}

func (that *Conn) writeRaw(ctx context.Context, text string) error {
	select {
	case <-that.done:
		return transport.ErrClosed
	default:
	}

	deadline := time.Now().Add(writeWait)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	if err := that.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Err reports why the connection stopped, nil while it is open.
func (that *Conn) Err() error {
	that.errMutex.Lock()
	defer that.errMutex.Unlock()

	return that.err
}

// Done is closed once the connection is gone.
func (that *Conn) Done() <-chan struct{} {
	return that.done
}

func (that *Conn) Close() error {
	select {
	case <-that.done:
		return nil
	default:
	}

	that.writeMutex.Lock()
	_ = that.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	that.writeMutex.Unlock()

	that.shutdown(transport.ErrClosed)

	return nil
}

func (that *Conn) shutdown(err error) {
	that.closeOnce.Do(func() {
		that.errMutex.Lock()
		that.err = err
		that.errMutex.Unlock()

		close(that.done)
		that.conn.Close()
	})
}
