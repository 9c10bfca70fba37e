// Package page holds the lifecycle of one page: asking before the player
// leaves and tearing the channel down once they do.
package page

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// LeaveMessage is shown when the player tries to leave a page.
const LeaveMessage = "Leave the game? Your opponent will be left alone."

// Confirmer asks the player a yes/no question.
type Confirmer interface {
	Confirm(message string) bool
}

// Notifier shows the player a notice.
type Notifier interface {
	Notify(message string)
}

type closer interface {
	Close() error
}

type Page struct {
	logger    *slog.Logger
	name      string
	confirmer Confirmer
	notifier  Notifier
	channel   closer

	unloadOnce sync.Once
	unloaded   chan struct{}
}

func New(logger *slog.Logger, name string, confirmer Confirmer, notifier Notifier, channel closer) *Page {
	return &Page{
		logger:    logger.With("component", "page", "page", name),
		name:      name,
		confirmer: confirmer,
		notifier:  notifier,
		channel:   channel,
		unloaded:  make(chan struct{}),
	}
}

func (that *Page) Name() string {
	return that.name
}

// BeforeUnload reports whether the player agreed to leave.
func (that *Page) BeforeUnload() bool {
	leave := that.confirmer.Confirm(LeaveMessage)
	that.logger.Debug("leave confirmation", "leave", leave)

	return leave
}

// Unload warns the player and closes the channel. Only the first call acts.
func (that *Page) Unload() {
	that.unloadOnce.Do(func() {
		log := that.logger.With("method", "Unload")

		that.notifier.Notify(entity.NoticeDisconnect)
		close(that.unloaded)

		if err := that.channel.Close(); err != nil {
			log.Warn("could not close channel", "error", err)
		}

		log.Info("page unloaded")
	})
}

// Leave unloads the page if the player confirms, and reports whether it did.
func (that *Page) Leave() bool {
	if !that.BeforeUnload() {
		return false
	}

	that.Unload()

	return true
}

// Unloaded is closed once unloading started, before the channel closes.
func (that *Page) Unloaded() <-chan struct{} {
	return that.unloaded
}
