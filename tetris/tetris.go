// Package tetris contains the logic of the game: the stack, the tetromino
// catalog, collision checks, locking and line clears.
package tetris

import (
	"math/rand/v2"
	"sync"
)

// Action is a player command.
type Action string

const (
	MoveLeft  Action = "left"   // Moves the Tetromino one step to the left.
	MoveRight Action = "right"  // Moves the Tetromino one step to the right.
	MoveDown  Action = "down"   // Moves the Tetromino one step down. It never locks.
	Rotate    Action = "rotate" // Rotates the Tetromino clockwise.
)

// ParseAction returns the Action named by s.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case MoveLeft, MoveRight, MoveDown, Rotate:
		return a, true
	}
	return "", false
}

const pointsPerLine = 100

// Tetris is a single game session.
// All exported methods are safe for concurrent use.
type Tetris struct {
	Stack      Stack
	Tetromino  *Tetromino
	Score      int
	LinesClear int
	GameOver   bool

	// pick returns the catalog index for the next tetromino.
	pick func() int
	// step counts the ticks and actions applied so far.
	step uint64
	mu   sync.RWMutex
}

// New returns a game with an empty stack and a random tetromino in play.
func New() *Tetris {
	return newTetris(func() int { return rand.IntN(len(catalog)) })
}

func newTetris(pick func() int) *Tetris {
	t := &Tetris{pick: pick}
	t.spawn()
	return t
}

// Collides reports whether grid, with its top-left corner at x+dx, y+dy,
// overlaps a locked cell or leaves the stack through the sides or the bottom.
// Cells above the stack never collide, not even past the sides.
func Collides(s *Stack, grid [][]bool, x, y, dx, dy int) bool {
	for ir, r := range grid {
		for ic, c := range r {
			if !c {
				continue
			}
			row := y + ir + dy
			col := x + ic + dx
			if row < 0 {
				continue
			}
			if col < 0 || col >= Cols || row >= Rows || s.IsOccupied(row, col) {
				return true
			}
		}
	}
	return false
}

func (t *Tetris) isCollision(dx, dy int, grid [][]bool) bool {
	return Collides(&t.Stack, grid, t.Tetromino.X, t.Tetromino.Y, dx, dy)
}

// Tick is one step of gravity: the tetromino falls one row or,
// if it can't, gets locked into the stack and the next one spawns.
func (t *Tetris) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.step++
	t.tick()
}

func (t *Tetris) MoveLeft()  { t.Do(MoveLeft) }
func (t *Tetris) MoveRight() { t.Do(MoveRight) }
func (t *Tetris) SoftDrop()  { t.Do(MoveDown) }
func (t *Tetris) Rotate()    { t.Do(Rotate) }

// Do applies a player command. Blocked moves are ignored.
func (t *Tetris) Do(a Action) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.step++
	t.action(a)
}

func (t *Tetris) action(a Action) {
	if t.GameOver || t.Tetromino == nil {
		return
	}
	switch a {
	case MoveLeft:
		t.move(-1, 0)
	case MoveRight:
		t.move(1, 0)
	case MoveDown:
		t.move(0, 1)
	case Rotate:
		t.rotate()
	}
}

func (t *Tetris) move(dx, dy int) bool {
	if t.isCollision(dx, dy, t.Tetromino.Grid) {
		return false
	}
	t.Tetromino.X += dx
	t.Tetromino.Y += dy
	return true
}

// rotate turns the tetromino clockwise around its top-left corner.
// there are no wall kicks: a blocked rotation is dropped.
func (t *Tetris) rotate() {
	grid := t.Tetromino.rotated()
	if !t.isCollision(0, 0, grid) {
		t.Tetromino.Grid = grid
	}
}

func (t *Tetris) tick() {
	if t.GameOver || t.Tetromino == nil {
		return
	}
	if !t.move(0, 1) {
		t.lock()
	}
}

// lock moves the tetromino into the stack, clears full rows
// and spawns the next tetromino.
func (t *Tetris) lock() {
	t.Stack.lock(t.Tetromino.Grid, t.Tetromino.X, t.Tetromino.Y, t.Tetromino.Shape)
	t.Tetromino = nil
	if n := t.Stack.clearFullRows(); n > 0 {
		t.LinesClear += n
		t.Score += n * pointsPerLine
	}
	t.spawn()
}

// spawn puts a new tetromino at the top of the stack.
// if it already collides there the game is over and no tetromino is in play.
func (t *Tetris) spawn() {
	tm := spawnTetromino(t.pick())
	if Collides(&t.Stack, tm.Grid, tm.X, tm.Y, 0, 0) {
		t.GameOver = true
		return
	}
	t.Tetromino = tm
}

// IsGameOver reports whether the game has ended.
func (t *Tetris) IsGameOver() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.GameOver
}

// Snapshot returns a copy of the current status that's safe to read concurrently.
func (t *Tetris) Snapshot() *Tetris {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &Tetris{
		Stack:      t.Stack,
		Tetromino:  t.Tetromino.copy(),
		Score:      t.Score,
		LinesClear: t.LinesClear,
		GameOver:   t.GameOver,
		step:       t.step,
	}
}

// Step returns how many ticks and actions had been applied when the status
// was taken. Of two snapshots of the same game the higher step is the newer.
func (t *Tetris) Step() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.step
}
