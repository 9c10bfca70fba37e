package ui

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// BoardView is the board a game screen draws and plays on.
type BoardView interface {
	Field() entity.Board
	CellData(row, column int) string
	ClickCell(ctx context.Context, row, column int) error
	Subscribe(fn func(entity.Board)) func()
}

// StatusView reports the game status line.
type StatusView interface {
	Status() (entity.GameStatus, bool)
	Subscribe(fn func(*entity.GameStatus)) func()
}

// Leaver is a page the player can ask to leave.
type Leaver interface {
	Leave() bool
}

type screen int

const (
	lobbyScreen screen = iota
	gameScreen
)

type (
	applyMsg  struct{ fn func() }
	redrawMsg struct{}
	leftMsg   struct{}
	promptMsg struct {
		message string
		reply   chan bool
	}
	clickFailedMsg struct{ err error }
	lobbyMsg       struct{ page Leaver }
	gameMsg        struct {
		board  BoardView
		status StatusView
		page   Leaver
	}
)

// notices holds the banner outside of the model so Notify can set it from
// any goroutine without waiting for the UI loop.
type notices struct {
	mutex   sync.Mutex
	message string
}

func (that *notices) set(message string) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	that.message = message
}

func (that *notices) get() string {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	return that.message
}

type model struct {
	ctx     context.Context
	logger  *slog.Logger
	notices *notices

	screen screen
	page   Leaver
	board  BoardView
	status StatusView

	cursorRow, cursorColumn int
	prompt                  *promptMsg
	clickErr                error
}

func newModel(ctx context.Context, logger *slog.Logger, n *notices) *model {
	return &model{
		ctx:     ctx,
		logger:  logger,
		notices: n,
		screen:  lobbyScreen,
	}
}

func (that *model) Init() tea.Cmd {
	return nil
}

func (that *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case applyMsg:
		msg.fn()
	case redrawMsg:
	case lobbyMsg:
		that.notices.set("")
		that.screen = lobbyScreen
		that.page = msg.page
		that.board, that.status = nil, nil
	case gameMsg:
		that.notices.set("")
		that.screen = gameScreen
		that.page = msg.page
		that.board, that.status = msg.board, msg.status
		that.cursorRow, that.cursorColumn = 0, 0
		that.clickErr = nil
	case promptMsg:
		if that.prompt != nil {
			msg.reply <- false
			break
		}
		that.prompt = &msg
	case clickFailedMsg:
		that.clickErr = msg.err
	case leftMsg:
		return that, tea.Quit
	case tea.KeyMsg:
		return that, that.handleKey(msg)
	}

	return that, nil
}

func (that *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if that.prompt != nil {
		switch key {
		case "y", "Y":
			that.answer(true)
		case "n", "N", "esc":
			that.answer(false)
		}
		return nil
	}

	switch key {
	case "ctrl+c", "q":
		return that.leave()
	case "up", "k":
		if that.cursorRow > 0 {
			that.cursorRow--
		}
	case "down", "j":
		if that.cursorRow < entity.BoardSize-1 {
			that.cursorRow++
		}
	case "left", "h":
		if that.cursorColumn > 0 {
			that.cursorColumn--
		}
	case "right", "l":
		if that.cursorColumn < entity.BoardSize-1 {
			that.cursorColumn++
		}
	case "enter", " ":
		return that.click()
	}

	return nil
}

func (that *model) answer(leave bool) {
	that.prompt.reply <- leave
	that.prompt = nil
}

// leave runs off the UI loop: the page asks for confirmation through the
// program, which needs the loop to show the prompt.
func (that *model) leave() tea.Cmd {
	page := that.page
	if page == nil {
		return tea.Quit
	}

	return func() tea.Msg {
		if page.Leave() {
			return leftMsg{}
		}
		return nil
	}
}

func (that *model) click() tea.Cmd {
	if that.screen != gameScreen || that.board == nil {
		return nil
	}

	board, row, column := that.board, that.cursorRow, that.cursorColumn
	that.clickErr = nil

	return func() tea.Msg {
		if err := board.ClickCell(that.ctx, row, column); err != nil {
			that.logger.Warn("move not sent", "row", row, "column", column, "error", err)
			return clickFailedMsg{err: err}
		}
		return nil
	}
}

func (that *model) View() string {
	var view strings.Builder

	view.WriteString(headerStyle.Render("Tic Tac Toe"))
	view.WriteString("\n\n")

	switch that.screen {
	case lobbyScreen:
		view.WriteString(promptStyle.Render("Waiting for an opponent..."))
		view.WriteString("\n")
	case gameScreen:
		that.renderGame(&view)
	}

	if notice := that.notices.get(); notice != "" {
		view.WriteString("\n")
		view.WriteString(noticeStyle.Render("! " + notice))
		view.WriteString("\n")
	}

	view.WriteString("\n")
	if that.prompt != nil {
		view.WriteString(promptStyle.Render(that.prompt.message + " (y/n)"))
	} else {
		view.WriteString(footerStyle.Render("arrows move, enter plays, q leaves"))
	}
	view.WriteString("\n")

	return view.String()
}

func (that *model) renderGame(view *strings.Builder) {
	for row := range entity.BoardSize {
		view.WriteString("  ")
		for column := range entity.BoardSize {
			selected := row == that.cursorRow && column == that.cursorColumn
			view.WriteString(renderCell(that.board.CellData(row, column), selected))
		}
		view.WriteString("\n")
	}

	view.WriteString("\n")

	status, ok := that.status.Status()
	switch {
	case !ok:
		view.WriteString(footerStyle.Render("Waiting for the first move..."))
	case status.GameOver && status.HasWinner():
		view.WriteString(winStyle.Render("Game over, winner: " + status.Winner))
	case status.GameOver:
		view.WriteString(winStyle.Render("Game over, no winner"))
	default:
		view.WriteString(footerStyle.Render("Turn: ") + styledMark(status.Turn))
	}
	view.WriteString("\n")

	if that.clickErr != nil {
		view.WriteString(noticeStyle.Render("move not sent: " + that.clickErr.Error()))
		view.WriteString("\n")
	}
}
