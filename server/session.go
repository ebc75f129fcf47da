package server

import (
	"sync"

	"stacker/tetris"
)

// session is one running game and the Watch streams following it.
type session struct {
	tetris *tetris.Tetris
	game   *tetris.Game

	subs  map[chan *tetris.Tetris]struct{}
	last  *tetris.Tetris
	ended bool
	mu    sync.Mutex
}

func newSession(t *tetris.Tetris, ticker tetris.Ticker) *session {
	return &session{
		tetris: t,
		game:   tetris.NewConfigurableGame(ticker, func() *tetris.Tetris { return t }),
		subs:   make(map[chan *tetris.Tetris]struct{}),
		last:   t.Snapshot(),
	}
}

// run drives the game and fans its updates out until the game is done.
func (s *session) run(onEnd func()) {
	go s.game.Start()
	for {
		select {
		case u := <-s.game.GetUpdate():
			s.publish(u)
		case <-s.game.Done():
			s.end()
			onEnd()
			return
		}
	}
}

// do applies a to the game right away and returns the resulting status.
// Player actions never lock a piece, so they can't end the game.
func (s *session) do(a tetris.Action) *tetris.Tetris {
	s.tetris.Do(a)
	u := s.tetris.Snapshot()
	s.publish(u)
	return u
}

// publish hands u to every subscriber. A subscriber that hasn't read the
// previous status gets it replaced by u. Ticks and commands snapshot the game
// from different goroutines, so a status older than the last one is dropped.
func (s *session) publish(u *tetris.Tetris) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || u.Step() < s.last.Step() {
		return
	}
	s.last = u
	for ch := range s.subs {
		select {
		case ch <- u:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- u
		}
	}
}

// subscribe returns a channel receiving the latest status first and every
// update after it. The channel is closed when the session ends.
func (s *session) subscribe() (<-chan *tetris.Tetris, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan *tetris.Tetris, 1)
	ch <- s.last
	if s.ended {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
}

func (s *session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}
