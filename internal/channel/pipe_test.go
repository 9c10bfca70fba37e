package channel

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/transport"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

// pipeConn is an in-memory transport: the test plays the server through
// toClient and fromClient.
type pipeConn struct {
	toClient   chan string
	fromClient chan string

	done      chan struct{}
	closeOnce sync.Once
}

var _ transport.Conn = (*pipeConn)(nil)

func newPipeConn() *pipeConn {
	return &pipeConn{
		toClient:   make(chan string, 16),
		fromClient: make(chan string, 16),
		done:       make(chan struct{}),
	}
}

func (that *pipeConn) Read(ctx context.Context) (string, error) {
	select {
	case packet, ok := <-that.toClient:
		if !ok {
			return "", transport.ErrClosed
		}
		return packet, nil
	case <-that.done:
		return "", transport.ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (that *pipeConn) Write(_ context.Context, packet string) error {
	select {
	case that.fromClient <- packet:
		return nil
	case <-that.done:
		return transport.ErrClosed
	}
}

func (that *pipeConn) Close() error {
	that.closeOnce.Do(func() { close(that.done) })
	return nil
}

func (that *pipeConn) closed() bool {
	select {
	case <-that.done:
		return true
	default:
		return false
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func sent(t *testing.T, conn *pipeConn) string {
	t.Helper()

	select {
	case packet := <-conn.fromClient:
		return packet
	case <-time.After(waitFor):
		t.Fatalf("timed out waiting for an outbound packet")
		return ""
	}
}

func noneSent(t *testing.T, conn *pipeConn) {
	t.Helper()

	select {
	case packet := <-conn.fromClient:
		t.Fatalf("expected no outbound packet, got %q", packet)
	case <-time.After(50 * time.Millisecond):
	}
}

// dialAccepted joins namespace with a server that accepts immediately.
func dialAccepted(t *testing.T, namespace string) (*Channel, *pipeConn) {
	t.Helper()

	conn := newPipeConn()
	conn.toClient <- "0" + namespace + `,{"sid":"sid-1"}`

	ch, err := Dial(context.Background(), testLogger(), conn, namespace)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })

	require.Equal(t, "0"+namespace+",", sent(t, conn))

	return ch, conn
}
