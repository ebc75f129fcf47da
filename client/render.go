package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/template"

	"stacker/tetris"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	resetPos    = "\033[H" // Reset cursor position to 0,0
	clearScreen = "\033[2J\033[H"

	lobbyRow   = 8
	lobbyWidth = 20
)

//go:embed "layout.tmpl"
var layout string

var colorMap = map[tetris.Shape]string{
	tetris.I: Cyan,
	tetris.J: Blue,
	tetris.L: Orange,
	tetris.O: Yellow,
	tetris.S: Green,
	tetris.Z: Red,
	tetris.T: Magenta,
}

// lobbyMessage holds the lines printed inside the lobby box.
type lobbyMessage []string

func defaultLobby() lobbyMessage {
	return lobbyMessage{"Terminal Stacker", "", "(p)lay  (o)nline", "(q)uit"}
}

func gameOver(score int) lobbyMessage {
	return lobbyMessage{"Game Over :)", fmt.Sprintf("score %d", score), "(p)lay  (o)nline", "(q)uit"}
}

func connecting(addr string) lobbyMessage {
	return lobbyMessage{"connecting to", addr, "", "(c)ancel"}
}

func errorMessage() lobbyMessage {
	return lobbyMessage{"something went", "wrong :(", "(p)lay  (o)nline", "(q)uit"}
}

type templateData struct {
	Game *tetris.Tetris
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
}

func newRender(l *slog.Logger) (*render, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &render{
		writer:   os.Stdout,
		logger:   l,
		template: tmp,
	}, nil
}

func (r *render) reset() {
	fmt.Fprint(r.writer, clearScreen)
}

func (r *render) game(t *tetris.Tetris) {
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, &templateData{Game: t}); err != nil {
		r.logger.Error("unable to execute template in game()", slog.String("error", err.Error()))
	}
}

// lobby draws a box with m centered in it on top of the stack.
func (r *render) lobby(m lobbyMessage) {
	border := "+" + strings.Repeat("-", lobbyWidth) + "+"
	fmt.Fprintf(r.writer, "\033[%d;1H%s", lobbyRow, border)
	for i, line := range m {
		fmt.Fprintf(r.writer, "\033[%d;1H|%s|", lobbyRow+1+i, center(line, lobbyWidth))
	}
	fmt.Fprintf(r.writer, "\033[%d;1H%s", lobbyRow+1+len(m), border)
}

func center(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"stack": stack,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	return template.New("layout").Funcs(funcMap).Parse(l)
}

func block(s tetris.Shape) string {
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", colorMap[s])
}

// stack renders the locked cells and the falling tetromino.
func stack(t *tetris.Tetris) [tetris.Rows][tetris.Cols]string {
	rendered := [tetris.Rows][tetris.Cols]string{}
	for y := range tetris.Rows {
		for x := range tetris.Cols {
			rendered[y][x] = "  "
		}
	}
	if t == nil {
		return rendered
	}

	for y, row := range t.Stack {
		for x, c := range row {
			if c != "" {
				rendered[y][x] = block(c)
			}
		}
	}

	// cells above the stack aren't rendered until they fall into view.
	if tm := t.Tetromino; tm != nil {
		for iy, row := range tm.Grid {
			for ix, c := range row {
				if c && t.Stack.IsInside(tm.Y+iy, tm.X+ix) {
					rendered[tm.Y+iy][tm.X+ix] = block(tm.Shape)
				}
			}
		}
	}
	return rendered
}
