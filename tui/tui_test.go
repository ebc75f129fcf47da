package tui

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"stacker/tetris"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	return screen
}

func cellAt(s tcell.Screen, x, y int) (rune, tcell.Style) {
	r, _, style, _ := s.GetContent(x, y)
	return r, style
}

func textAt(s tcell.Screen, x, y, n int) string {
	var b strings.Builder
	for i := range n {
		r, _ := cellAt(s, x+i, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestKeyAction(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want tetris.Action
		ok   bool
	}{
		{tcell.KeyDown, 0, tetris.MoveDown, true},
		{tcell.KeyRune, 's', tetris.MoveDown, true},
		{tcell.KeyLeft, 0, tetris.MoveLeft, true},
		{tcell.KeyRune, 'a', tetris.MoveLeft, true},
		{tcell.KeyRight, 0, tetris.MoveRight, true},
		{tcell.KeyRune, 'd', tetris.MoveRight, true},
		{tcell.KeyUp, 0, tetris.Rotate, true},
		{tcell.KeyRune, 'e', tetris.Rotate, true},
		{tcell.KeyRune, 'x', tetris.Rotate, true},
		{tcell.KeyRune, 'z', "", false},
		{tcell.KeyRune, 'w', "", false},
		{tcell.KeyEnter, 0, "", false},
	}
	for _, test := range tests {
		a, ok := keyAction(test.key, test.r)
		assert.Equal(t, test.ok, ok, "key %v rune %q", test.key, test.r)
		assert.Equal(t, test.want, a, "key %v rune %q", test.key, test.r)
	}
}

func TestDraw(t *testing.T) {
	screen := testScreen(t)
	ui := newTUI(screen, slog.New(slog.DiscardHandler), nil)

	tts := tetris.NewTestTetris(tetris.O)
	tts.Stack[19][0] = tetris.I
	tts.Score = 100
	tts.LinesClear = 1
	ui.draw(tts.Snapshot())

	t.Run("frame", func(t *testing.T) {
		r, _ := cellAt(screen, originX-1, originY)
		assert.Equal(t, '|', r)
		r, _ = cellAt(screen, originX+tetris.Cols*cellW, originY+tetris.Rows-1)
		assert.Equal(t, '|', r)
		r, _ = cellAt(screen, originX, originY+tetris.Rows)
		assert.Equal(t, '-', r)
	})

	t.Run("locked cell", func(t *testing.T) {
		assert.Equal(t, "[]", textAt(screen, originX, originY+19, 2))
		_, style := cellAt(screen, originX, originY+19)
		_, bg, _ := style.Decompose()
		assert.Equal(t, tcell.ColorAqua, bg)
	})

	t.Run("falling tetromino", func(t *testing.T) {
		assert.Equal(t, "[][]", textAt(screen, originX+4*cellW, originY, 4))
		assert.Equal(t, "[][]", textAt(screen, originX+4*cellW, originY+1, 4))
		_, style := cellAt(screen, originX+4*cellW, originY)
		_, bg, _ := style.Decompose()
		assert.Equal(t, tcell.ColorYellow, bg)
		assert.Equal(t, "  ", textAt(screen, originX+4*cellW, originY+2, 2))
	})

	t.Run("score", func(t *testing.T) {
		assert.Equal(t, "score 100", textAt(screen, infoX, originY, 9))
		assert.Equal(t, "lines 1", textAt(screen, infoX, originY+1, 7))
		assert.NotEqual(t, "GAME OVER", textAt(screen, infoX, originY+3, 9))
	})

	t.Run("game over banner", func(t *testing.T) {
		over := tts.Snapshot()
		over.GameOver = true
		over.Tetromino = nil
		ui.draw(over)
		assert.Equal(t, "GAME OVER", textAt(screen, infoX, originY+3, 9))
		assert.Equal(t, "  ", textAt(screen, originX+4*cellW, originY, 2))
	})
}

func TestRun(t *testing.T) {
	screen := testScreen(t)
	game, ticker := tetris.NewTestGame(tetris.NewTestTetris(tetris.O))
	ui := newTUI(screen, slog.New(slog.DiscardHandler), func() *tetris.Game { return game })

	done := make(chan struct{})
	go func() { ui.Run(); close(done) }()

	assert.Eventually(t, ticker.IsReset, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool {
		return textAt(screen, originX+4*cellW, originY, 2) == "[]"
	}, time.Second, time.Millisecond)

	screen.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)
	assert.Eventually(t, func() bool {
		return textAt(screen, originX+3*cellW, originY, 2) == "[]"
	}, time.Second, time.Millisecond)

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for quit")
	case <-done:
	}
	assert.Equal(t, 1, ticker.Stops())
}
