package main

import (
	"errors"
	"sync"
)

// stateInterval is the number of chunks between two state snapshots.
const stateInterval = 50

var ErrEngineStarted = errors.New("engine already started")

// SynthEngine runs a Generator on its own goroutine and pushes every produced
// chunk onto out. out is expected to have capacity 1: the blocking send is
// what keeps the engine in step with the audio device.
type SynthEngine struct {
	factory GeneratorFactory
	events  *eventQueue
	state   *stateRing
	out     chan<- StereoChunk
	aux     chan<- StereoChunk

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewSynthEngine wires an engine. aux, events and state may be nil.
func NewSynthEngine(out, aux chan<- StereoChunk, factory GeneratorFactory, events *eventQueue, state *stateRing) *SynthEngine {
	return &SynthEngine{
		factory: factory,
		events:  events,
		state:   state,
		out:     out,
		aux:     aux,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start creates the generator for sampleRate and begins producing chunks.
func (e *SynthEngine) Start(sampleRate float32) error {
	err := ErrEngineStarted
	e.startOnce.Do(func() {
		err = nil
		go e.run(sampleRate)
	})
	return err
}

// Stop asks the loop to end. It returns immediately; use Done to wait.
func (e *SynthEngine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
}

// Done is closed once the loop has returned. It never closes if Start was not called.
func (e *SynthEngine) Done() <-chan struct{} {
	return e.done
}

func (e *SynthEngine) run(sampleRate float32) {
	defer close(e.done)

	gen := e.factory.Create(sampleRate)
	handler, _ := gen.(eventHandler)
	pos, _ := gen.(positioner)
	countdown := stateInterval

	for {
		select {
		case <-e.stop:
			logger.Info("synth stopped")
			return
		default:
		}

		if e.events != nil && handler != nil {
			if ev, ok := e.events.receive(); ok {
				handler.HandleEvent(ev)
			}
		}

		gen.Process()
		chunk := StereoChunk{Left: *gen.Left(), Right: *gen.Right()}

		// the monitor channel never holds up synthesis, a full one drops the chunk
		if e.aux != nil {
			select {
			case e.aux <- chunk:
			default:
			}
		}
		select {
		case e.out <- chunk:
		case <-e.stop:
			logger.Info("synth stopped")
			return
		}

		countdown--
		if countdown == 0 {
			countdown = stateInterval
			if pos != nil && e.state != nil {
				e.state.send(SynthState{Index: pos.Position()})
			}
		}
	}
}
