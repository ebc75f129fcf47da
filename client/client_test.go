package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"stacker/tetris"

	"github.com/eiannone/keyboard"
	"github.com/stretchr/testify/assert"
)

type mockTetris struct {
	updateCh chan *tetris.Tetris
	doneCh   chan struct{}
	start    bool
	stop     bool
	actions  []tetris.Action
	mu       sync.Mutex
}

func newMockTetris() *mockTetris {
	return &mockTetris{updateCh: make(chan *tetris.Tetris), doneCh: make(chan struct{})}
}

func (m *mockTetris) GetUpdate() <-chan *tetris.Tetris { return m.updateCh }
func (m *mockTetris) Done() <-chan struct{}            { return m.doneCh }
func (m *mockTetris) Start()                           { m.mu.Lock(); m.start = true; m.mu.Unlock() }
func (m *mockTetris) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stop {
		m.stop = true
		close(m.doneCh)
	}
}
func (m *mockTetris) Action(a tetris.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, a)
}
func (m *mockTetris) started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start
}
func (m *mockTetris) stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}
func (m *mockTetris) received() []tetris.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.actions)
}

type mockRender struct {
	games   int
	lobbies []lobbyMessage
	mu      sync.Mutex
}

func (m *mockRender) reset() {}
func (m *mockRender) game(*tetris.Tetris) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games++
}
func (m *mockRender) lobby(l lobbyMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lobbies = append(m.lobbies, l)
}
func (m *mockRender) lastLobby() lobbyMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.lobbies) == 0 {
		return nil
	}
	return m.lobbies[len(m.lobbies)-1]
}

func newTestClient(newGame func() tetrisGame, newRemote func(context.Context) (tetrisGame, error)) (*Client, *mockRender, chan keyboard.KeyEvent) {
	render := &mockRender{}
	kCh := make(chan keyboard.KeyEvent)
	return &Client{
		newGame:   newGame,
		newRemote: newRemote,
		render:    render,
		options:   &Options{Address: "localhost:9000"},
		logger:    slog.New(slog.DiscardHandler),
		kbCh:      kCh,
		state:     &state{current: lobby},
		cancel:    func() {},
	}, render, kCh
}

func isState(cl *Client, want clientState) func() bool {
	return func() bool {
		s, _ := cl.state.get()
		return s == want
	}
}

func TestClient(t *testing.T) {
	tts := newMockTetris()
	cl, render, kCh := newTestClient(func() tetrisGame { return tts }, nil)

	done := make(chan struct{})
	go func() { cl.Start(); close(done) }()
	assert.Eventually(t, func() bool { return render.lastLobby() != nil }, time.Second, time.Millisecond)
	assert.Equal(t, defaultLobby(), render.lastLobby())

	// 'p' starts a local game.
	kCh <- keyboard.KeyEvent{Rune: 'p'}
	assert.Eventually(t, tts.started, time.Second, time.Millisecond)
	assert.Eventually(t, isState(cl, playing), time.Second, time.Millisecond)

	// while in game, keys are directed to tetris actions.
	keys := []keyboard.KeyEvent{
		{Rune: 's'}, {Key: keyboard.KeyArrowDown},
		{Rune: 'a'}, {Key: keyboard.KeyArrowLeft},
		{Rune: 'd'}, {Key: keyboard.KeyArrowRight},
		{Rune: 'e'}, {Rune: 'x'}, {Key: keyboard.KeyArrowUp},
		{Rune: 'z'}, {Rune: 'w'}, // ignored
	}
	for _, k := range keys {
		kCh <- k
	}
	want := []tetris.Action{
		tetris.MoveDown, tetris.MoveDown,
		tetris.MoveLeft, tetris.MoveLeft,
		tetris.MoveRight, tetris.MoveRight,
		tetris.Rotate, tetris.Rotate, tetris.Rotate,
	}
	assert.Eventually(t, func() bool { return len(tts.received()) == len(want) }, time.Second, time.Millisecond)
	assert.Equal(t, want, tts.received())

	// every update is rendered, game over goes back to the lobby.
	tts.updateCh <- &tetris.Tetris{}
	tts.updateCh <- &tetris.Tetris{GameOver: true, Score: 300}
	assert.Eventually(t, isState(cl, lobby), time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return fmt.Sprint(render.lastLobby()) == fmt.Sprint(gameOver(300)) }, time.Second, time.Millisecond)
	render.mu.Lock()
	assert.Equal(t, 2, render.games)
	render.mu.Unlock()

	// 'q' quits from the lobby.
	kCh <- keyboard.KeyEvent{Rune: 'q'}
	select {
	case <-time.After(time.Second):
		t.Errorf("timeout waiting for quit")
	case <-done:
	}
}

func TestClientEscStopsGame(t *testing.T) {
	tts := newMockTetris()
	cl, render, kCh := newTestClient(func() tetrisGame { return tts }, nil)
	go cl.Start()

	kCh <- keyboard.KeyEvent{Rune: 'p'}
	assert.Eventually(t, isState(cl, playing), time.Second, time.Millisecond)
	kCh <- keyboard.KeyEvent{Key: keyboard.KeyEsc}
	assert.Eventually(t, tts.stopped, time.Second, time.Millisecond)
	assert.Eventually(t, isState(cl, lobby), time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return fmt.Sprint(render.lastLobby()) == fmt.Sprint(defaultLobby()) }, time.Second, time.Millisecond)

	kCh <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC}
}

func TestClientOnline(t *testing.T) {
	t.Run("connection error goes back to the lobby", func(t *testing.T) {
		cl, render, kCh := newTestClient(nil, func(context.Context) (tetrisGame, error) {
			return nil, errors.New("connection refused")
		})
		go cl.Start()

		kCh <- keyboard.KeyEvent{Rune: 'o'}
		assert.Eventually(t, func() bool { return fmt.Sprint(render.lastLobby()) == fmt.Sprint(errorMessage()) }, time.Second, time.Millisecond)
		assert.Eventually(t, isState(cl, lobby), time.Second, time.Millisecond)
		kCh <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC}
	})

	t.Run("remote game is played like a local one", func(t *testing.T) {
		tts := newMockTetris()
		cl, _, kCh := newTestClient(nil, func(context.Context) (tetrisGame, error) { return tts, nil })
		go cl.Start()

		kCh <- keyboard.KeyEvent{Rune: 'o'}
		assert.Eventually(t, isState(cl, playing), time.Second, time.Millisecond)
		assert.Eventually(t, tts.started, time.Second, time.Millisecond)
		kCh <- keyboard.KeyEvent{Key: keyboard.KeyArrowLeft}
		assert.Eventually(t, func() bool { return len(tts.received()) == 1 }, time.Second, time.Millisecond)
		kCh <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC}
		assert.Eventually(t, tts.stopped, time.Second, time.Millisecond)
	})

	t.Run("cancel while waiting", func(t *testing.T) {
		release := make(chan struct{})
		tts := newMockTetris()
		cl, render, kCh := newTestClient(nil, func(ctx context.Context) (tetrisGame, error) {
			<-release
			return tts, nil
		})
		go cl.Start()

		kCh <- keyboard.KeyEvent{Rune: 'o'}
		assert.Eventually(t, isState(cl, waiting), time.Second, time.Millisecond)
		kCh <- keyboard.KeyEvent{Rune: 'c'}
		assert.Eventually(t, isState(cl, lobby), time.Second, time.Millisecond)
		close(release)
		assert.Eventually(t, tts.stopped, time.Second, time.Millisecond)
		assert.False(t, tts.started())
		assert.Equal(t, defaultLobby(), render.lastLobby())
		kCh <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC}
	})
}
