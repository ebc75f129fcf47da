// Package client is the terminal frontend: it reads the keyboard, renders
// the game with ANSI escapes and plays either locally or on a server.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stacker/tetris"

	"github.com/eiannone/keyboard"
)

type clientState int

const (
	lobby clientState = iota
	waiting
	playing
)

type state struct {
	current clientState
	game    tetrisGame
	mu      sync.Mutex
}

func (s *state) get() (clientState, tetrisGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.game
}

func (s *state) set(c clientState, g tetrisGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
	s.game = g
}

// setIf moves to c only while the client still plays g.
func (s *state) setIf(g tetrisGame, c clientState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == g {
		s.current = c
	}
}

type tetrisGame interface {
	Start()
	GetUpdate() <-chan *tetris.Tetris
	Done() <-chan struct{}
	Action(tetris.Action)
	Stop()
}

type renderer interface {
	game(*tetris.Tetris)
	lobby(lobbyMessage)
	reset()
}

type Options struct {
	// Address is the server online games are played on.
	Address string
	// Tick is the gravity interval of local games.
	Tick time.Duration
}

type Client struct {
	newGame   func() tetrisGame
	newRemote func(context.Context) (tetrisGame, error)
	render    renderer
	options   *Options
	logger    *slog.Logger
	kbCh      <-chan keyboard.KeyEvent
	state     *state
	cancel    context.CancelFunc
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	r, err := newRender(l)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	return &Client{
		newGame: func() tetrisGame { return tetris.NewGame(o.Tick) },
		newRemote: func(ctx context.Context) (tetrisGame, error) {
			return DialRemote(ctx, o.Address, l)
		},
		render:  r,
		options: o,
		logger:  l,
		kbCh:    kb,
		state:   &state{current: lobby},
		cancel:  func() {},
	}, nil
}

// Close releases the keyboard.
func (c *Client) Close() error {
	return keyboard.Close()
}

// Start shows the lobby and blocks until the player quits.
func (c *Client) Start() {
	c.render.reset()
	c.render.lobby(defaultLobby())
	c.listenKB()
	if _, g := c.state.get(); g != nil {
		g.Stop()
	}
	c.cancel()
}

func (c *Client) listenKB() {
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		current, game := c.state.get()
		switch current {
		case lobby:
			switch event.Rune {
			case 'p':
				g := c.newGame()
				c.state.set(playing, g)
				go c.play(g)
			case 'o':
				c.state.set(waiting, nil)
				c.render.lobby(connecting(c.options.Address))
				ctx, cancel := context.WithCancel(context.Background())
				c.cancel = cancel
				go c.connect(ctx)
			case 'q':
				return
			}
		case waiting:
			if event.Rune == 'c' || event.Key == keyboard.KeyEsc {
				c.cancel()
				c.state.set(lobby, nil)
				c.render.lobby(defaultLobby())
			}
		case playing:
			if event.Key == keyboard.KeyEsc {
				game.Stop()
				continue
			}
			if a, ok := keyAction(event); ok {
				game.Action(a)
			}
		}
	}
}

func keyAction(event keyboard.KeyEvent) (tetris.Action, bool) {
	switch {
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		return tetris.MoveDown, true
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		return tetris.MoveLeft, true
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		return tetris.MoveRight, true
	case event.Key == keyboard.KeyArrowUp || event.Rune == 'e' || event.Rune == 'x':
		return tetris.Rotate, true
	}
	return "", false
}

func (c *Client) connect(ctx context.Context) {
	g, err := c.newRemote(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// the player gave up waiting.
			return
		}
		c.logger.Error("unable to start remote game", slog.String("error", err.Error()))
		c.state.set(lobby, nil)
		c.render.lobby(errorMessage())
		return
	}
	if current, _ := c.state.get(); current != waiting || ctx.Err() != nil {
		g.Stop()
		return
	}
	c.state.set(playing, g)
	c.play(g)
}

// play renders g until it's over or stopped and then goes back to the lobby.
func (c *Client) play(g tetrisGame) {
	go g.Start()
	c.render.reset()
	var last *tetris.Tetris
	defer func() {
		c.state.setIf(g, lobby)
		if last != nil && last.GameOver {
			c.render.lobby(gameOver(last.Score))
			return
		}
		c.render.lobby(defaultLobby())
	}()
	for {
		select {
		case u := <-g.GetUpdate():
			last = u
			c.render.game(u)
			if u.GameOver {
				return
			}
		case <-g.Done():
			return
		}
	}
}
