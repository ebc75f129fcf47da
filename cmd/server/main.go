package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"stacker/pb"
	"stacker/server"

	"google.golang.org/grpc"
)

func main() {
	port := flag.Int("port", 9000, "port to listen on")
	tick := flag.Duration("tick", 0, "gravity interval of every session (default 1s)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	defer lis.Close()

	srv := server.New(&server.Options{Logger: logger, Tick: *tick})
	defer srv.Close()
	s := grpc.NewServer()
	pb.RegisterStackerServer(s, srv)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		// running games hold their Watch streams open.
		srv.Close()
		s.GracefulStop()
	}()

	logger.Info("starting server", slog.String("address", lis.Addr().String()))
	if err := s.Serve(lis); err != nil {
		logger.Error("failed to serve", slog.String("error", err.Error()))
	}
}
