// Package tui is a tcell frontend for local games.
package tui

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stacker/tetris"

	"github.com/gdamore/tcell/v2"
)

const (
	originX = 1
	originY = 1
	cellW   = 2
	infoX   = originX + tetris.Cols*cellW + 4
)

var colorMap = map[tetris.Shape]tcell.Color{
	tetris.I: tcell.ColorAqua,
	tetris.J: tcell.ColorBlue,
	tetris.L: tcell.ColorOrange,
	tetris.O: tcell.ColorYellow,
	tetris.S: tcell.ColorGreen,
	tetris.Z: tcell.ColorRed,
	tetris.T: tcell.ColorPurple,
}

var (
	frameStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	textStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

type Options struct {
	// Tick is the gravity interval.
	Tick time.Duration
	// Sound beeps on every line clear.
	Sound bool
}

type TUI struct {
	screen  tcell.Screen
	logger  *slog.Logger
	newGame func() *tetris.Game
	sound   *sound

	game     *tetris.Game
	over     bool
	mu       sync.Mutex
	restart  chan struct{}
	quit     chan struct{}
	quitOnce sync.Once
}

// New opens the terminal screen.
func New(l *slog.Logger, o *Options) (*TUI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init screen: %w", err)
	}
	t := newTUI(screen, l, func() *tetris.Game { return tetris.NewGame(o.Tick) })
	if o.Sound {
		s, err := newSound()
		if err != nil {
			// the game is playable without sound.
			l.Warn("audio initialization failed", slog.String("error", err.Error()))
		}
		t.sound = s
	}
	return t, nil
}

func newTUI(screen tcell.Screen, l *slog.Logger, newGame func() *tetris.Game) *TUI {
	return &TUI{
		screen:  screen,
		logger:  l,
		newGame: newGame,
		restart: make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
}

// Run plays games until the player quits, then restores the terminal.
func (t *TUI) Run() {
	defer t.close()
	go t.listenKeys()
	for {
		g := t.newGame()
		t.setGame(g, false)
		go g.Start()
		if !t.play(g) {
			return
		}
		select {
		case <-t.restart:
		case <-t.quit:
			return
		}
	}
}

func (t *TUI) setGame(g *tetris.Game, over bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.game = g
	t.over = over
}

func (t *TUI) current() (*tetris.Game, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game, t.over
}

// play draws g until it's over. It returns false if the player quit.
func (t *TUI) play(g *tetris.Game) bool {
	var last *tetris.Tetris
	for {
		select {
		case u := <-g.GetUpdate():
			if last != nil && u.LinesClear > last.LinesClear {
				t.sound.lineClear()
			}
			last = u
			t.draw(u)
			if u.GameOver {
				t.setGame(g, true)
				return true
			}
		case <-g.Done():
			t.setGame(g, true)
			return true
		case <-t.quit:
			g.Stop()
			return false
		}
	}
}

func (t *TUI) listenKeys() {
	defer t.stop()
	for {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			// the screen was finalized.
			return
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape {
				return
			}
			g, over := t.current()
			if over {
				if ev.Key() == tcell.KeyRune && ev.Rune() == 'p' {
					select {
					case t.restart <- struct{}{}:
					default:
					}
				}
				continue
			}
			if a, ok := keyAction(ev.Key(), ev.Rune()); ok && g != nil {
				g.Action(a)
			}
		}
	}
}

func keyAction(k tcell.Key, r rune) (tetris.Action, bool) {
	switch {
	case k == tcell.KeyDown || (k == tcell.KeyRune && r == 's'):
		return tetris.MoveDown, true
	case k == tcell.KeyLeft || (k == tcell.KeyRune && r == 'a'):
		return tetris.MoveLeft, true
	case k == tcell.KeyRight || (k == tcell.KeyRune && r == 'd'):
		return tetris.MoveRight, true
	case k == tcell.KeyUp || (k == tcell.KeyRune && (r == 'e' || r == 'x')):
		return tetris.Rotate, true
	}
	return "", false
}

func (t *TUI) stop() {
	t.quitOnce.Do(func() { close(t.quit) })
}

func (t *TUI) close() {
	t.stop()
	t.sound.close()
	t.screen.Fini()
}

func (t *TUI) draw(s *tetris.Tetris) {
	t.screen.Clear()

	// frame
	w := tetris.Cols * cellW
	for x := -1; x <= w; x++ {
		t.screen.SetContent(originX+x, originY-1, '-', nil, frameStyle)
		t.screen.SetContent(originX+x, originY+tetris.Rows, '-', nil, frameStyle)
	}
	for y := range tetris.Rows {
		t.screen.SetContent(originX-1, originY+y, '|', nil, frameStyle)
		t.screen.SetContent(originX+w, originY+y, '|', nil, frameStyle)
	}

	for y, row := range s.Stack {
		for x, c := range row {
			if c != "" {
				t.drawCell(x, y, c)
			}
		}
	}
	if tm := s.Tetromino; tm != nil {
		for iy, row := range tm.Grid {
			for ix, c := range row {
				// cells above the stack stay hidden until they fall into view.
				if c && s.Stack.IsInside(tm.Y+iy, tm.X+ix) {
					t.drawCell(tm.X+ix, tm.Y+iy, tm.Shape)
				}
			}
		}
	}

	t.drawText(infoX, originY, fmt.Sprintf("score %d", s.Score))
	t.drawText(infoX, originY+1, fmt.Sprintf("lines %d", s.LinesClear))
	if s.GameOver {
		t.drawText(infoX, originY+3, "GAME OVER")
		t.drawText(infoX, originY+4, "(p)lay (esc) quit")
	}
	t.screen.Show()
}

func (t *TUI) drawCell(x, y int, s tetris.Shape) {
	style := tcell.StyleDefault.Background(colorMap[s]).Foreground(tcell.ColorBlack)
	t.screen.SetContent(originX+x*cellW, originY+y, '[', nil, style)
	t.screen.SetContent(originX+x*cellW+1, originY+y, ']', nil, style)
}

func (t *TUI) drawText(x, y int, s string) {
	for i, r := range s {
		t.screen.SetContent(x+i, y, r, nil, textStyle)
	}
}
