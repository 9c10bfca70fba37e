package ui

import (
	lip "github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

var (
	xStyle      = lip.NewStyle().Foreground(lip.Color("#8BE9FD"))
	oStyle      = lip.NewStyle().Foreground(lip.Color("#FF79C6"))
	cellStyle   = lip.NewStyle().Foreground(lip.Color("#BD93F9"))
	cursorStyle = lip.NewStyle().Background(lip.Color("#44475A")).Foreground(lip.Color("#F8F8F2")).Bold(true)
	headerStyle = lip.NewStyle().Foreground(lip.Color("#F1FA8C")).Bold(true)
	footerStyle = lip.NewStyle().Foreground(lip.Color("#6272A4"))
	winStyle    = lip.NewStyle().Foreground(lip.Color("#50FA7B")).Bold(true)
	noticeStyle = lip.NewStyle().Foreground(lip.Color("#FF5555")).Bold(true)
	promptStyle = lip.NewStyle().Foreground(lip.Color("#FFB86C")).Bold(true)
)

func styledMark(mark string) string {
	switch mark {
	case entity.PlayerX:
		return xStyle.Render(mark)
	case entity.PlayerO:
		return oStyle.Render(mark)
	default:
		return mark
	}
}

func renderCell(text string, selected bool) string {
	content := text
	if content == "" {
		content = " "
	}

	cell := "[" + content + "]"

	if selected {
		switch text {
		case entity.PlayerX:
			return cursorStyle.Foreground(lip.Color("#8BE9FD")).Render(cell)
		case entity.PlayerO:
			return cursorStyle.Foreground(lip.Color("#FF79C6")).Render(cell)
		default:
			return cursorStyle.Render(cell)
		}
	}

	switch text {
	case entity.PlayerX:
		return xStyle.Render(cell)
	case entity.PlayerO:
		return oStyle.Render(cell)
	default:
		return cellStyle.Render(cell)
	}
}
