// Package server hosts independent Tetris sessions over gRPC.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"stacker/pb"
	"stacker/tetris"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Options struct {
	Logger *slog.Logger
	// Tick is the gravity interval of every session. Zero means tetris.DefaultTick.
	Tick time.Duration

	newTicker func() tetris.Ticker
	newTetris func() *tetris.Tetris
}

type Server struct {
	pb.UnimplementedStackerServer
	sessions map[string]*session
	options  *Options
	logger   *slog.Logger
	mu       sync.Mutex
}

func New(o *Options) *Server {
	if o == nil {
		o = &Options{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.newTicker == nil {
		o.newTicker = func() tetris.Ticker { return tetris.NewTicker(o.Tick) }
	}
	if o.newTetris == nil {
		o.newTetris = tetris.New
	}
	return &Server{
		sessions: make(map[string]*session),
		options:  o,
		logger:   o.Logger,
	}
}

func (s *Server) CreateSession(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	id := uuid.New().String()
	ss := newSession(s.options.newTetris(), s.options.newTicker())

	s.mu.Lock()
	s.sessions[id] = ss
	s.mu.Unlock()

	go ss.run(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.sessions[id] == ss {
			delete(s.sessions, id)
		}
		s.logger.Info("session finished", slog.String("session", id), slog.Int("score", ss.tetris.Snapshot().Score))
	})
	s.logger.Info("session created", slog.String("session", id))
	return wrapperspb.String(id), nil
}

func (s *Server) Command(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, a, err := pb.ParseCommand(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	ss, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return encode(ss.do(a))
}

func (s *Server) Watch(in *wrapperspb.StringValue, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ss, err := s.session(in.GetValue())
	if err != nil {
		return err
	}
	ch, unsubscribe := ss.subscribe()
	defer unsubscribe()

	ctx := stream.Context()
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return nil
			}
			msg, err := encode(u)
			if err != nil {
				return err
			}
			if err := stream.Send(msg); err != nil {
				return status.Errorf(codes.Unavailable, "failed to send Watch message: %v", err)
			}
			if u.GameOver {
				return nil
			}
		case <-ctx.Done():
			return status.FromContextError(ctx.Err()).Err()
		}
	}
}

func (s *Server) CloseSession(_ context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	s.mu.Lock()
	ss, ok := s.sessions[in.GetValue()]
	delete(s.sessions, in.GetValue())
	s.mu.Unlock()
	if !ok {
		return nil, status.Errorf(codes.NotFound, "session %q not found", in.GetValue())
	}
	ss.game.Stop()
	s.logger.Info("session closed", slog.String("session", in.GetValue()))
	return &emptypb.Empty{}, nil
}

// Close stops every running session.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ss := range s.sessions {
		ss.game.Stop()
		delete(s.sessions, id)
	}
}

func (s *Server) session(id string) (*session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid session id %q", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[id]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "session %q not found", id)
	}
	return ss, nil
}

func encode(t *tetris.Tetris) (*structpb.Struct, error) {
	msg, err := pb.EncodeState(t)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return msg, nil
}
