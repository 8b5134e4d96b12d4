package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// logger is shared by every component; main replaces it once at startup.
var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// stateRingSize bounds the snapshots waiting for the sync loop.
const stateRingSize = 8

// guiQueueSize bounds the feedback waiting for the OSC sender.
const guiQueueSize = 64

func newBackend(c AudioConfig) (audioBackend, error) {
	switch c.Backend {
	case "", "portaudio":
		return &portaudioBackend{}, nil
	case "oto":
		return newOtoBackend(c.SampleRate), nil
	case "pipe":
		return openPipeOutput(c.Output, c.SampleRate)
	}
	return nil, fmt.Errorf("unknown audio backend: %s", c.Backend)
}

// checkAddresses validates every network address before anything starts.
func checkAddresses(c OscConfig) error {
	for _, a := range []string{c.Listen, c.Local, c.Remote} {
		if _, err := parseUDPAddr(a); err != nil {
			return err
		}
	}
	return nil
}

// waitForKey cancels once any key is pressed on an interactive terminal.
func waitForKey(cancel context.CancelFunc) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		logger.Warn("can't read keys", "err", err)
		return
	}
	fmt.Fprint(os.Stderr, "Press any key to stop...\r\n")
	go func() {
		// ignore restore error
		defer term.Restore(fd, state)
		var b [1]byte
		os.Stdin.Read(b[:])
		cancel()
	}()
}

func main() {
	configFile := flag.String("config", "", "Path to config, created with defaults if not found.")
	debug := flag.Bool("debug", false, "Log every control message.")
	flag.Parse()
	if *configFile == "" {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		return
	}
	initLogger(*debug)

	config, err := ReadConfig(*configFile)
	if err != nil {
		log.Fatalf("can't read config: %v because: %v", *configFile, err)
	}
	if err := checkAddresses(config.Osc); err != nil {
		log.Fatalf("osc config error: %v", err)
	}
	format, err := ParseSampleFormat(config.Audio.Format)
	if err != nil {
		log.Fatalf("audio config error: %v", err)
	}
	factory, err := newSourceFactory(config.Source, config.Seed)
	if err != nil {
		log.Fatalf("source config error: %v", err)
	}
	backend, err := newBackend(config.Audio)
	if err != nil {
		log.Fatalf("audio config error: %v", err)
	}

	events := newEventQueue()
	states := newStateRing(stateRingSize)
	gui := make(chan GuiEvent, guiQueueSize)

	player := NewPlayer(factory, backend, format, config.Audio.underrunTimeout(), events, states, nil)
	sampleRate, err := player.Start()
	if err != nil {
		log.Fatalf("can't start player: %v", err)
	}

	ctrl := NewController(events, gui, sampleRate)
	if err := config.DynamicConfig.apply(ctrl); err != nil {
		logger.Error("initial config not fully applied", "err", err)
	}

	sender := NewOscSender(config.Osc.Local, config.Osc.Remote, gui)
	if err := sender.Start(); err != nil {
		log.Fatalf("can't start osc sender: %v", err)
	}
	receiver := NewOscReceiver(config.Osc.Listen, newGranularHandler(ctrl))
	if err := receiver.Start(); err != nil {
		log.Fatalf("can't start osc receiver: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	waitForKey(cancel)

	configs := make(chan *Config)
	errs := make(chan error)
	if config.WatchConfig {
		if err := Watch(*configFile, configs, errs, ctx.Done()); err != nil {
			log.Fatalf("can't start watcher: %v", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		syncState(states, ctrl, gctx.Done())
		return nil
	})
	g.Go(func() error {
		select {
		case <-receiver.Done():
			return errors.New("osc receiver stopped")
		case <-gctx.Done():
			return nil
		}
	})
	g.Go(func() error {
		for {
			select {
			// handle config changes
			case c := <-configs:
				if err := c.DynamicConfig.apply(ctrl); err != nil {
					logger.Error("config not fully applied", "err", err)
				}
			case err := <-errs:
				logger.Error("config watch", "err", err)
			case <-gctx.Done():
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("stopping", "err", err)
	}
	logger.Info("exiting")
	receiver.Stop()
	sender.Stop()
	player.Stop()

	stopped := make(chan struct{})
	go func() {
		player.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		logger.Warn("engines did not stop in time")
	}
}
