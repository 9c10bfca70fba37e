package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/tictactoe-client/internal/bridge"
	"github.com/rocketscienceinc/tictactoe-client/internal/channel"
	"github.com/rocketscienceinc/tictactoe-client/internal/config"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/lobby"
	"github.com/rocketscienceinc/tictactoe-client/internal/page"
	"github.com/rocketscienceinc/tictactoe-client/internal/tictactoe"
)

// loadedPage is the page currently on screen with the channel it owns.
type loadedPage struct {
	name    string
	channel *channel.Channel
	page    *page.Page
	board   *tictactoe.Board
}

// client moves the player from the lobby to the game, one page at a time.
// Every page load opens its own connection, as a browser would.
type client struct {
	logger    *slog.Logger
	conf      *config.Config
	dial      dialFunc
	screen    screen
	navigator *navigator
}

func newClient(logger *slog.Logger, conf *config.Config, dial dialFunc, screen screen) *client {
	return &client{
		logger:    logger.With("component", "client"),
		conf:      conf,
		dial:      dial,
		screen:    screen,
		navigator: newNavigator(),
	}
}

// run loads the lobby and serves navigation until the UI stops or ctx ends.
func (that *client) run(ctx context.Context, uiDone <-chan error, quit func()) error {
	log := that.logger.With("method", "run")

	current, err := that.loadLobby(ctx)
	if err != nil {
		quit()
		<-uiDone
		return err
	}

	defer func() { that.unload(current) }()

	lost := current.channel.Done()

	for {
		select {
		case path := <-that.navigator.requests:
			next, navErr := that.navigate(ctx, current, path)
			if navErr != nil {
				log.Error("navigation failed", "path", path, "error", navErr)
				that.screen.Notify(entity.NoticeDisconnect)
				lost = nil
				continue
			}

			current = next
			lost = current.channel.Done()
		case <-lost:
			lost = nil
			if current.page != nil && isClosed(current.page.Unloaded()) {
				continue
			}

			log.Warn("connection lost", "page", current.name, "error", current.channel.Err())
			that.screen.Notify(entity.NoticeDisconnect)
		case uiErr := <-uiDone:
			if uiErr == nil || errors.Is(uiErr, tea.ErrProgramKilled) {
				return nil
			}
			return fmt.Errorf("terminal UI failed: %w", uiErr)
		case <-ctx.Done():
			log.Info("Application context canceled, shutting down")
			quit()
			<-uiDone
			return nil
		}
	}
}

func (that *client) loadLobby(ctx context.Context) (*loadedPage, error) {
	var redirector *lobby.Redirector

	ch, err := that.open(ctx, that.conf.WaitNamespace, func(events *bridge.Bridge, _ *channel.Channel) {
		redirector = lobby.New(that.logger, events, that.navigator, that.conf.GamePath)
		redirector.Listen(ctx)
	})
	if err != nil {
		return nil, err
	}

	if err = redirector.Announce(ctx); err != nil {
		that.logger.Warn("lobby announcement failed", "error", err)
	}

	that.screen.ShowLobby(nil)

	return &loadedPage{name: "wait", channel: ch}, nil
}

func (that *client) loadGame(ctx context.Context) (*loadedPage, error) {
	var board *tictactoe.Board
	var status *tictactoe.Status

	ch, err := that.open(ctx, that.conf.GameNamespace, func(events *bridge.Bridge, ch *channel.Channel) {
		board = tictactoe.NewBoard(that.logger, events, ch)
		status = tictactoe.NewStatus(that.logger, events)
		lobby.New(that.logger, events, that.navigator, that.conf.GamePath).Listen(ctx)
	})
	if err != nil {
		return nil, err
	}

	game := page.New(that.logger, "game", that.screen, that.screen, ch)
	that.screen.ShowGame(board, status, game)

	return &loadedPage{name: "game", channel: ch, page: game, board: board}, nil
}

// open dials a connection, lets register attach handlers, then joins namespace.
func (that *client) open(ctx context.Context, namespace string, register func(events *bridge.Bridge, ch *channel.Channel)) (*channel.Channel, error) {
	dialCtx, cancel := context.WithTimeout(ctx, that.conf.DialTimeout)
	defer cancel()

	conn, err := that.dial(dialCtx)
	if err != nil {
		return nil, fmt.Errorf("could not connect: %w", err)
	}

	ch := channel.New(that.logger, conn, namespace)
	register(bridge.New(that.logger, ch, that.screen), ch)

	if err = ch.Connect(dialCtx); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			that.logger.Debug("could not close connection", "error", closeErr)
		}
		return nil, fmt.Errorf("could not join %s: %w", namespace, err)
	}

	that.logger.Info("joined", "namespace", ch.Namespace(), "sid", ch.SID())

	return ch, nil
}

// navigate leaves current for path. The game page is the only destination;
// navigating to it from the game page loads a fresh one.
func (that *client) navigate(ctx context.Context, current *loadedPage, path string) (*loadedPage, error) {
	if path != that.conf.GamePath {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}

	that.logger.Info("navigating", "from", current.name, "path", path)

	if current.board != nil {
		current.board.Destroy(that.screen)
	}

	if err := current.channel.Close(); err != nil {
		that.logger.Warn("could not close channel", "page", current.name, "error", err)
	}

	return that.loadGame(ctx)
}

func (that *client) unload(current *loadedPage) {
	if current.page != nil {
		that.logger.Info("unloading", "page", current.page.Name())
		current.page.Unload()
		return
	}

	if err := current.channel.Close(); err != nil {
		that.logger.Warn("could not close channel", "page", current.name, "error", err)
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
