package application

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

func TestPrintNotice(t *testing.T) {
	t.Run("Repeats the last notice after the UI is gone", func(t *testing.T) {
		// Given: the game page was left with a disconnect notice
		var out bytes.Buffer

		// When: the notice is printed after exit
		printNotice(&out, entity.NoticeDisconnect)

		// Then: the player sees it on the normal screen
		assert.Equal(t, entity.NoticeDisconnect+"\n", out.String())
	})

	t.Run("Prints nothing without a notice", func(t *testing.T) {
		var out bytes.Buffer

		printNotice(&out, "")

		assert.Empty(t, out.String())
	})
}
