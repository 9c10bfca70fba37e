package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/tictactoe-client/internal/bridge"
	"github.com/rocketscienceinc/tictactoe-client/internal/config"
	"github.com/rocketscienceinc/tictactoe-client/internal/page"
	"github.com/rocketscienceinc/tictactoe-client/internal/ui"
	"github.com/rocketscienceinc/tictactoe-client/transport"
	"github.com/rocketscienceinc/tictactoe-client/transport/redis"
	"github.com/rocketscienceinc/tictactoe-client/transport/websocket"
)

var (
	ErrAddrNotFound = errors.New("redis address string is empty")
	ErrUnknownPath  = errors.New("unknown page path")
)

type dialFunc func(ctx context.Context) (transport.Conn, error)

// screen is what pages need from the terminal front-end.
type screen interface {
	bridge.Applier
	page.Confirmer
	page.Notifier
	ShowLobby(page ui.Leaver)
	ShowGame(board ui.BoardView, status ui.StatusView, page ui.Leaver)
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	dial, closeTransport, err := newDialer(ctx, logger, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeTransport(); err != nil {
			log.Error("could not close transport", "error", err)
		}
	}()

	program := ui.New(ctx, logger, tea.WithAltScreen())

	uiDone := make(chan error, 1)
	go func() {
		uiDone <- program.Run()
	}()

	app := newClient(logger, conf, dial, program)

	err = app.run(ctx, uiDone, program.Quit)
	printNotice(os.Stderr, program.Notice())

	return err
}

// printNotice repeats the last notice once the UI has left the terminal,
// since the alternate screen takes it along.
func printNotice(w io.Writer, notice string) {
	if notice == "" {
		return
	}

	fmt.Fprintln(w, notice)
}

// newDialer picks the transport every page connects over.
func newDialer(ctx context.Context, logger *slog.Logger, conf *config.Config) (dialFunc, func() error, error) {
	switch conf.Transport {
	case config.TransportRedis:
		addr := conf.Redis.GetRedisAddr()
		if addr == "" {
			return nil, nil, ErrAddrNotFound
		}

		client, err := redis.NewClient(ctx, addr)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis: %w", err)
		}

		dial := func(ctx context.Context) (transport.Conn, error) {
			conn, err := redis.Dial(ctx, logger, client, redis.Options{
				Prefix:  conf.Redis.ChannelPrefix,
				Session: conf.Redis.Session,
			})
			if err != nil {
				return nil, err
			}
			return conn, nil
		}

		return dial, client.Close, nil
	default:
		dial := func(ctx context.Context) (transport.Conn, error) {
			conn, err := websocket.Dial(ctx, logger, websocket.Options{
				ServerURL:        conf.ServerURL,
				SessionCookie:    conf.SessionCookie,
				HandshakeTimeout: conf.DialTimeout,
			})
			if err != nil {
				return nil, err
			}
			return conn, nil
		}

		return dial, func() error { return nil }, nil
	}
}
