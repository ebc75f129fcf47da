package tetris

import (
	"sync"
	"time"
)

// DefaultTick is the time between two gravity steps.
const DefaultTick = 1 * time.Second

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
	d      time.Duration
}

// NewTicker returns a stopped Ticker firing every d once Reset.
// A zero d means DefaultTick.
func NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		d = DefaultTick
	}
	t := time.NewTicker(d)
	t.Stop()
	return &wrappedTicker{ticker: t, d: d}
}

func (t *wrappedTicker) C() <-chan time.Time { return t.ticker.C }
func (t *wrappedTicker) Stop()               { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) {
	if d <= 0 {
		d = t.d
	}
	t.ticker.Reset(d)
}

// Game drives a single round of Tetris with a ticker and player actions.
// Every change is published as a snapshot on the update channel, the last
// one having GameOver set when the game ended on its own. That last
// snapshot is always delivered, so readers must keep reading until they
// see it or until Done is closed.
type Game struct {
	updateCh chan *Tetris
	actionCh chan Action
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once

	tetris *Tetris
	ticker Ticker
}

// NewGame returns a random game ticking every interval. A zero interval means DefaultTick.
func NewGame(interval time.Duration) *Game {
	return NewConfigurableGame(NewTicker(interval), New)
}

// NewConfigurableGame returns a game driven by ticker that plays the Tetris built by newGame.
func NewConfigurableGame(ticker Ticker, newGame func() *Tetris) *Game {
	return &Game{
		updateCh: make(chan *Tetris),
		actionCh: make(chan Action),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		tetris:   newGame(),
		ticker:   ticker,
	}
}

// Start begins the round. The first snapshot is sent before Start returns,
// so the caller must already be reading the update channel.
func (g *Game) Start() {
	s := g.tetris.Snapshot()
	g.updateCh <- s
	if s.GameOver {
		g.stop()
		close(g.doneCh)
		return
	}
	g.ticker.Reset(0)
	go g.listen()
}

// Stop ends the round. It's safe to call more than once and after the game is over.
func (g *Game) Stop() {
	g.stop()
}

// stop halts the ticker, exactly once no matter how the round ended.
func (g *Game) stop() {
	g.stopOnce.Do(func() {
		g.ticker.Stop()
		close(g.stopCh)
	})
}

// Action queues a for the running game. It's dropped once the game is stopped.
func (g *Game) Action(a Action) {
	select {
	case g.actionCh <- a:
	case <-g.stopCh:
	}
}

// GetUpdate returns the channel the game publishes snapshots on.
func (g *Game) GetUpdate() <-chan *Tetris {
	return g.updateCh
}

// Done is closed once the game has stopped and published its last snapshot.
func (g *Game) Done() <-chan struct{} {
	return g.doneCh
}

// Read returns a copy of the current status. It's safe to call from any goroutine.
func (g *Game) Read() *Tetris {
	return g.tetris.Snapshot()
}

func (g *Game) listen() {
	defer close(g.doneCh)
	for {
		select {
		case <-g.ticker.C():
			g.tetris.Tick()
		case a := <-g.actionCh:
			g.tetris.Do(a)
		case <-g.stopCh:
			return
		}
		s := g.tetris.Snapshot()
		if s.GameOver {
			// the ticker must not fire against a finished game.
			g.stop()
			g.updateCh <- s
			return
		}
		select {
		case g.updateCh <- s:
		case <-g.stopCh:
			return
		}
	}
}
