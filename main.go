package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"stacker/client"
	"stacker/tui"

	"golang.org/x/term"
)

func main() {
	addr := flag.String("addr", "localhost:9000", "server address for online games")
	ui := flag.String("ui", "ansi", "frontend: ansi or tcell")
	sound := flag.Bool("sound", false, "beep on line clears (tcell only)")
	tick := flag.Duration("tick", 0, "gravity interval of local games (default 1s)")
	logFile := flag.String("log", "", "write logs to this file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Fatal("stdin is not a terminal")
	}

	logger, closeLog, err := newLogger(*logFile, *debug)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	switch *ui {
	case "ansi":
		c, err := client.New(logger, &client.Options{Address: *addr, Tick: *tick})
		if err != nil {
			log.Fatal(err)
		}
		defer c.Close() //nolint: errcheck
		c.Start()
	case "tcell":
		t, err := tui.New(logger, &tui.Options{Tick: *tick, Sound: *sound})
		if err != nil {
			log.Fatal(err)
		}
		t.Run()
	default:
		log.Fatalf("unknown frontend %q", *ui)
	}
}

// newLogger logs to path, or nowhere when path is empty: the terminal is the game surface.
func newLogger(path string, debug bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	var w io.Writer = io.Discard
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() } //nolint: errcheck
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}
