package main

import (
	"fmt"
	"math/rand"
	"time"
)

// Generator produces one stereo chunk per Process call. The chunks behind
// Left and Right belong to the generator and are only valid until the next
// Process; the synth engine copies them before they leave its goroutine.
type Generator interface {
	Process()
	Left() *Chunk
	Right() *Chunk
}

// eventHandler is implemented by generators that accept parameter changes.
type eventHandler interface {
	HandleEvent(SynthEvent)
}

// positioner is implemented by generators that report a playback index.
type positioner interface {
	Position() float32
}

// GeneratorFactory creates the generator inside the synth engine goroutine,
// once the device sample rate is known.
type GeneratorFactory interface {
	Create(sampleRate float32) Generator
}

// GeneratorFactoryFunc adapts a function to GeneratorFactory.
type GeneratorFactoryFunc func(sampleRate float32) Generator

func (f GeneratorFactoryFunc) Create(sampleRate float32) Generator {
	return f(sampleRate)
}

var toneWaves = map[string]wave{
	"tone":     sineWave{},
	"sine":     sineWave{},
	"square":   squareWave{},
	"saw":      sawWave{},
	"triangle": triangleWave{},
}

// newSourceFactory maps a configured source name to a factory.
func newSourceFactory(source string, seed int64) (GeneratorFactory, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	switch source {
	case "", "granular":
		return GeneratorFactoryFunc(func(sampleRate float32) Generator {
			return NewGranulator(sampleRate, rand.New(rand.NewSource(seed)))
		}), nil
	case "sampler":
		return GeneratorFactoryFunc(func(sampleRate float32) Generator {
			return NewSampler(sampleRate)
		}), nil
	}
	if w, ok := toneWaves[source]; ok {
		return GeneratorFactoryFunc(func(sampleRate float32) Generator {
			return NewOscillator(w, sampleRate)
		}), nil
	}
	return nil, fmt.Errorf("unknown source: %s", source)
}
