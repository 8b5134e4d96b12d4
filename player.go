package main

import (
	"fmt"
	"time"
)

// Player connects a synth engine to an audio engine through a single-slot
// chunk channel.
type Player struct {
	synth *SynthEngine
	audio *AudioEngine
}

// NewPlayer wires the engines. aux, when not nil, receives a copy of every
// chunk the device will play, for monitoring; it is dropped when full.
func NewPlayer(factory GeneratorFactory, backend audioBackend, format SampleFormat, underrunTimeout time.Duration,
	events *eventQueue, state *stateRing, aux chan<- StereoChunk) *Player {
	chunks := make(chan StereoChunk, 1)
	return &Player{
		synth: NewSynthEngine(chunks, aux, factory, events, state),
		audio: NewAudioEngine(chunks, backend, format, underrunTimeout),
	}
}

// Start opens the device first, so the generator is created at the rate the
// device runs at, then starts synthesis. It returns that rate.
func (p *Player) Start() (float32, error) {
	sampleRate, err := p.audio.Start()
	if err != nil {
		return 0, err
	}
	if err := p.synth.Start(sampleRate); err != nil {
		p.audio.Stop()
		return 0, fmt.Errorf("can't start synth: %w", err)
	}
	return sampleRate, nil
}

func (p *Player) Stop() {
	p.synth.Stop()
	p.audio.Stop()
}

// Wait blocks until both engines have returned after Stop.
func (p *Player) Wait() {
	<-p.synth.Done()
	<-p.audio.Done()
}
