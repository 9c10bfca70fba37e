// Package redis carries Socket.IO packets over Redis pub/sub. A session
// publishes client packets on "<prefix>:<session>:up" and receives server
// packets from "<prefix>:<session>:down", which lets bots and test rigs
// drive a game without a websocket endpoint.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-client/transport"
)

const DefaultPrefix = "tictactoe"

type Options struct {
	Prefix  string
	Session string
}

type Conn struct {
	logger *slog.Logger
	client *redis.Client
	pubsub *redis.PubSub

	session     string
	upChannel   string
	downChannel string

	messages <-chan *redis.Message
	done     chan struct{}

	closeOnce sync.Once
}

// Dial subscribes to the session's down channel and returns once the
// subscription is confirmed, so no server packet published afterwards is lost.
func Dial(ctx context.Context, logger *slog.Logger, client *redis.Client, opts Options) (*Conn, error) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	session := opts.Session
	if session == "" {
		session = GenerateSessionID()
	}

	conn := &Conn{
		logger:      logger.With("component", "redis-transport", "session", session),
		client:      client,
		session:     session,
		upChannel:   ChannelName(prefix, session, "up"),
		downChannel: ChannelName(prefix, session, "down"),
		done:        make(chan struct{}),
	}

	conn.pubsub = client.Subscribe(ctx, conn.downChannel)
	if _, err := conn.pubsub.Receive(ctx); err != nil {
		conn.pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", conn.downChannel, err)
	}

	conn.messages = conn.pubsub.Channel()

	conn.logger.Debug("subscribed", "channel", conn.downChannel)

	return conn, nil
}

func ChannelName(prefix, session, direction string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, session, direction)
}

func (that *Conn) Session() string {
	return that.session
}

func (that *Conn) Read(ctx context.Context) (string, error) {
	select {
	case msg, ok := <-that.messages:
		if !ok {
			return "", transport.ErrClosed
		}
		return msg.Payload, nil
	case <-that.done:
		return "", transport.ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (that *Conn) Write(ctx context.Context, packet string) error {
	select {
	case <-that.done:
		return transport.ErrClosed
	default:
	}

	if err := that.client.Publish(ctx, that.upChannel, packet).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", that.upChannel, err)
	}

	return nil
}

func (that *Conn) Close() error {
	var err error

	that.closeOnce.Do(func() {
		close(that.done)

		if closeErr := that.pubsub.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close subscription: %w", closeErr)
		}
	})

	return err
}
