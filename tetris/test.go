package tetris

import (
	"sync"
	"time"
)

// MockTicker is a manual implementation of the Ticker interface.
type MockTicker struct {
	ch     chan time.Time
	stops  int
	resets int
	mu     sync.Mutex
}

func NewMockTicker() *MockTicker          { return &MockTicker{ch: make(chan time.Time)} }
func (m *MockTicker) C() <-chan time.Time { return m.ch }
func (m *MockTicker) Tick()               { m.ch <- time.Now() }
func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
}
func (m *MockTicker) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
}

// Stops returns how many times Stop was called.
func (m *MockTicker) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// IsReset reports whether the ticker was started.
func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets > 0
}

// NewTestTetris creates a game with an empty stack that only ever spawns shape.
func NewTestTetris(shape Shape) *Tetris {
	i := catalogIndex(shape)
	if i < 0 {
		panic("unknown shape " + string(shape))
	}
	return newTetris(func() int { return i })
}

// NewTestGame creates a game playing t and returns it with its manual ticker.
func NewTestGame(t *Tetris) (*Game, *MockTicker) {
	ticker := NewMockTicker()
	return NewConfigurableGame(ticker, func() *Tetris { return t }), ticker
}
