package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"stacker/pb"
	"stacker/tetris"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const commandTimeout = 2 * time.Second

// RemoteGame is a game played on the server. It mirrors tetris.Game so the
// client renders both the same way.
type RemoteGame struct {
	client pb.StackerClient
	conn   io.Closer
	id     string
	logger *slog.Logger

	updateCh chan *tetris.Tetris
	doneCh   chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// DialRemote connects to addr and creates a new session there.
func DialRemote(ctx context.Context, addr string, l *slog.Logger) (*RemoteGame, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("unable to create gRPC client: %w", err)
	}
	g, err := newRemoteGame(ctx, pb.NewStackerClient(conn), conn, l)
	if err != nil {
		conn.Close() //nolint: errcheck
		return nil, err
	}
	return g, nil
}

func newRemoteGame(ctx context.Context, c pb.StackerClient, conn io.Closer, l *slog.Logger) (*RemoteGame, error) {
	id, err := c.CreateSession(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, fmt.Errorf("unable to create session: %w", err)
	}
	gctx, cancel := context.WithCancel(context.Background())
	return &RemoteGame{
		client:   c,
		conn:     conn,
		id:       id.GetValue(),
		logger:   l.With(slog.String("session", id.GetValue())),
		updateCh: make(chan *tetris.Tetris),
		doneCh:   make(chan struct{}),
		ctx:      gctx,
		cancel:   cancel,
	}, nil
}

// Start follows the session's updates until the game is over or stopped.
func (r *RemoteGame) Start() {
	defer close(r.doneCh)
	stream, err := r.client.Watch(r.ctx, wrapperspb.String(r.id))
	if err != nil {
		r.logger.Error("unable to create gRPC Watch stream", slog.String("error", err.Error()))
		return
	}
	for {
		msg, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.logger.Debug("stream.Recv() closed with EOF")
				return
			}
			if st, ok := status.FromError(err); ok && st.Code() == codes.Canceled {
				r.logger.Debug("stream.Recv() closed with Cancel", slog.String("msg", st.Message()))
				return
			}
			r.logger.Error("stream.Recv() unable to receive message", slog.String("error", err.Error()))
			return
		}
		u, err := pb.DecodeState(msg)
		if err != nil {
			r.logger.Error("unable to decode state", slog.String("error", err.Error()))
			return
		}
		select {
		case r.updateCh <- u:
		case <-r.ctx.Done():
			return
		}
		if u.GameOver {
			return
		}
	}
}

// Action sends a to the server. The resulting state arrives through the update channel.
func (r *RemoteGame) Action(a tetris.Action) {
	ctx, cancel := context.WithTimeout(r.ctx, commandTimeout)
	defer cancel()
	if _, err := r.client.Command(ctx, pb.NewCommand(r.id, a)); err != nil {
		if status.Code(err) == codes.Canceled {
			return
		}
		r.logger.Error("unable to send command", slog.String("action", string(a)), slog.String("error", err.Error()))
	}
}

func (r *RemoteGame) GetUpdate() <-chan *tetris.Tetris { return r.updateCh }
func (r *RemoteGame) Done() <-chan struct{}           { return r.doneCh }

// Stop closes the session on the server and the connection.
func (r *RemoteGame) Stop() {
	r.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if _, err := r.client.CloseSession(ctx, wrapperspb.String(r.id)); err != nil && status.Code(err) != codes.NotFound {
			r.logger.Error("unable to close session", slog.String("error", err.Error()))
		}
		r.cancel()
		if r.conn != nil {
			if err := r.conn.Close(); err != nil {
				r.logger.Error("unable to close gRPC client", slog.String("error", err.Error()))
			}
		}
	})
}
