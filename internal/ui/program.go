// Package ui is the terminal front-end. A single bubbletea program owns the
// screen; channel callbacks reach it through Apply so they run on the UI
// loop, and every Apply is followed by a redraw.
package ui

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

type Program struct {
	ctx     context.Context
	logger  *slog.Logger
	notices *notices
	program *tea.Program

	watchMutex  sync.Mutex
	unsubscribe []func()
}

func New(ctx context.Context, logger *slog.Logger, opts ...tea.ProgramOption) *Program {
	n := &notices{}
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)

	return &Program{
		ctx:     ctx,
		logger:  logger.With("component", "ui"),
		notices: n,
		program: tea.NewProgram(newModel(ctx, logger.With("component", "ui"), n), opts...),
	}
}

// Run blocks until the player leaves or ctx ends.
func (that *Program) Run() error {
	_, err := that.program.Run()
	return err
}

// Apply runs fn on the UI loop; the screen is redrawn once it returns.
func (that *Program) Apply(fn func()) {
	that.program.Send(applyMsg{fn: fn})
}

// Notify puts message in the banner right away and asks for a redraw.
func (that *Program) Notify(message string) {
	that.logger.Info("notice", "message", message)
	that.notices.set(message)
	that.redraw()
}

func (that *Program) Notice() string {
	return that.notices.get()
}

// Confirm asks the player and waits for the answer. It must not be called
// from the UI loop. An ended context counts as consent.
func (that *Program) Confirm(message string) bool {
	reply := make(chan bool, 1)
	that.program.Send(promptMsg{message: message, reply: reply})

	select {
	case answer := <-reply:
		return answer
	case <-that.ctx.Done():
		return true
	}
}

// ShowLobby switches to the waiting screen for page. Loading a page clears
// the banner left by the previous one.
func (that *Program) ShowLobby(page Leaver) {
	that.watch()
	that.program.Send(lobbyMsg{page: page})
}

// ShowGame switches to the board of page and redraws whenever the board or
// the status is replaced.
func (that *Program) ShowGame(board BoardView, status StatusView, page Leaver) {
	that.watch(
		board.Subscribe(func(entity.Board) { that.redraw() }),
		status.Subscribe(func(*entity.GameStatus) { that.redraw() }),
	)
	that.program.Send(gameMsg{board: board, status: status, page: page})
}

// watch drops the subscriptions of the previous page and keeps the new ones.
func (that *Program) watch(unsubscribe ...func()) {
	that.watchMutex.Lock()
	defer that.watchMutex.Unlock()

	for _, stop := range that.unsubscribe {
		stop()
	}
	that.unsubscribe = unsubscribe
}

// redraw may be called from the UI loop itself, so it must not wait on Send.
func (that *Program) redraw() {
	go that.program.Send(redrawMsg{})
}

func (that *Program) Quit() {
	that.program.Quit()
}
