package page

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

type mockConfirmer struct {
	mock.Mock
}

func (that *mockConfirmer) Confirm(message string) bool {
	return that.Called(message).Bool(0)
}

type mockNotifier struct {
	mock.Mock
}

func (that *mockNotifier) Notify(message string) {
	that.Called(message)
}

type mockCloser struct {
	mock.Mock
}

func (that *mockCloser) Close() error {
	return that.Called().Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestPage_BeforeUnload(t *testing.T) {
	t.Run("Asks with a non-empty message", func(t *testing.T) {
		// Given: a player who wants to stay
		confirmer := &mockConfirmer{}
		confirmer.On("Confirm", mock.MatchedBy(func(m string) bool { return m != "" })).Return(false).Once()

		page := New(testLogger(), "game", confirmer, &mockNotifier{}, &mockCloser{})

		// When: leaving is attempted
		leave := page.BeforeUnload()

		// Then: the player was asked and leaving is cancelled
		assert.False(t, leave)
		confirmer.AssertExpectations(t)
	})

	t.Run("Passes the decision through", func(t *testing.T) {
		confirmer := &mockConfirmer{}
		confirmer.On("Confirm", LeaveMessage).Return(true).Once()

		page := New(testLogger(), "game", confirmer, &mockNotifier{}, &mockCloser{})

		assert.True(t, page.BeforeUnload())
	})
}

func TestPage_Unload(t *testing.T) {
	t.Run("Warns and closes the channel once", func(t *testing.T) {
		// Given: a loaded page
		notifier := &mockNotifier{}
		notifier.On("Notify", entity.NoticeDisconnect).Return().Once()

		channel := &mockCloser{}
		channel.On("Close").Return(nil).Once()

		page := New(testLogger(), "game", &mockConfirmer{}, notifier, channel)

		// When: it is unloaded twice
		page.Unload()
		page.Unload()

		// Then: the notice and the close happened once
		notifier.AssertExpectations(t)
		channel.AssertExpectations(t)
		channel.AssertNumberOfCalls(t, "Close", 1)
		assert.True(t, isClosed(page.Unloaded()))
	})

	t.Run("Finishes even when close fails", func(t *testing.T) {
		notifier := &mockNotifier{}
		notifier.On("Notify", entity.NoticeDisconnect).Return()

		channel := &mockCloser{}
		channel.On("Close").Return(errors.New("already gone"))

		page := New(testLogger(), "wait", &mockConfirmer{}, notifier, channel)

		page.Unload()

		assert.True(t, isClosed(page.Unloaded()))
	})
}

func TestPage_Leave(t *testing.T) {
	t.Run("Stays when the player declines", func(t *testing.T) {
		// Given: a player who declines
		confirmer := &mockConfirmer{}
		confirmer.On("Confirm", LeaveMessage).Return(false)

		channel := &mockCloser{}
		page := New(testLogger(), "game", confirmer, &mockNotifier{}, channel)

		// When: leaving
		left := page.Leave()

		// Then: nothing was torn down
		assert.False(t, left)
		channel.AssertNotCalled(t, "Close")
		assert.False(t, isClosed(page.Unloaded()))
	})

	t.Run("Unloads when the player confirms", func(t *testing.T) {
		confirmer := &mockConfirmer{}
		confirmer.On("Confirm", LeaveMessage).Return(true)

		notifier := &mockNotifier{}
		notifier.On("Notify", entity.NoticeDisconnect).Return().Once()

		channel := &mockCloser{}
		channel.On("Close").Return(nil).Once()

		page := New(testLogger(), "game", confirmer, notifier, channel)

		assert.True(t, page.Leave())
		assert.Equal(t, "game", page.Name())
		notifier.AssertExpectations(t)
		channel.AssertExpectations(t)
	})
}
