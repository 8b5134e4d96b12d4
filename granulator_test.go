package main

import (
	"math"
	"math/rand"
	"testing"
)

func newTestGranulator(samples []float32) *Granulator {
	g := NewGranulator(defaultSampleRate, rand.New(rand.NewSource(7)))
	g.HandleEvent(SynthEvent{Kind: EventLoadSound, Samples: samples})
	return g
}

func TestGranulatorSilentWithoutSample(t *testing.T) {
	g := NewGranulator(defaultSampleRate, constRand(0.5))
	for i := 0; i < 10; i++ {
		g.Process()
	}
	if *g.Left() != (Chunk{}) || *g.Right() != (Chunk{}) {
		t.Fatalf("expected silence from the default buffer")
	}

	g.HandleEvent(SynthEvent{Kind: EventLoadSound, Samples: []float32{1}})
	g.Process()
	if *g.Left() != (Chunk{}) {
		t.Fatalf("expected silence from a one sample buffer")
	}
}

func TestGranulatorExactSamples(t *testing.T) {
	samples := []float32{0, 1, 0, -1}
	g := newTestGranulator(samples)
	g.HandleEvent(SynthEvent{Kind: EventBounds, Start: 0, End: len(samples)})
	g.HandleEvent(SynthEvent{Kind: EventGrainsPerSec, Value: 2 * defaultSampleRate})
	g.HandleEvent(SynthEvent{Kind: EventPanSpread, Value: 0})
	g.HandleEvent(SynthEvent{Kind: EventScanSpread, Value: 0})
	g.HandleEvent(SynthEvent{Kind: EventLevel, Value: 1})

	for i := 0; i < 20; i++ {
		g.Process()
		for n := range g.pool.grains {
			gr := &g.pool.grains[n]
			if gr.state == grainStopped {
				continue
			}
			p := gr.position
			if p != float32(int(p)) {
				t.Fatalf("expected integer grain position, got %v", p)
			}
			if p < 0 || p >= float32(len(samples)-1) {
				t.Fatalf("grain outside window: %v", p)
			}
			if v := g.valueAt(p); v != samples[int(p)] {
				t.Fatalf("position %v: expected %v, got %v", p, samples[int(p)], v)
			}
		}
	}
	if g.pool.active() == 0 {
		t.Fatalf("expected active grains after warm-up")
	}
	if v := g.valueAt(1); v != 1 {
		t.Fatalf("expected 1 at position 1, got %v", v)
	}
}

func TestGranulatorInterpolates(t *testing.T) {
	g := newTestGranulator([]float32{0, 1, 0, -1})
	if v := g.valueAt(0.5); v != 0.5 {
		t.Fatalf("expected 0.5, got %v", v)
	}
	if v := g.valueAt(2.25); v != -0.25 {
		t.Fatalf("expected -0.25, got %v", v)
	}
}

func TestGranulatorNormalizesOverlap(t *testing.T) {
	samples := make([]float32, 1000)
	for i := range samples {
		samples[i] = 1
	}
	g := newTestGranulator(samples)
	g.HandleEvent(SynthEvent{Kind: EventGrainsPerSec, Value: defaultSampleRate})
	g.HandleEvent(SynthEvent{Kind: EventPanSpread, Value: 1})
	g.HandleEvent(SynthEvent{Kind: EventScanSpread, Value: 0.5})

	for i := 0; i < 100; i++ {
		g.Process()
		for n := 0; n < chunkSize; n++ {
			l, r := g.Left()[n], g.Right()[n]
			if l < 0 || l > 1+1e-6 || r < 0 || r > 1+1e-6 {
				t.Fatalf("output out of range: %v %v", l, r)
			}
		}
	}
	if g.pool.active() < 2 {
		t.Fatalf("expected overlapping grains, got %d", g.pool.active())
	}
}

func TestGranulatorLevel(t *testing.T) {
	samples := make([]float32, 100)
	for i := range samples {
		samples[i] = 1
	}
	g := newTestGranulator(samples)
	g.HandleEvent(SynthEvent{Kind: EventGrainsPerSec, Value: defaultSampleRate})
	g.HandleEvent(SynthEvent{Kind: EventLevel, Value: 0})
	for i := 0; i < 10; i++ {
		g.Process()
	}
	if *g.Left() != (Chunk{}) {
		t.Fatalf("expected silence at level 0")
	}
}

func TestGranulatorBounds(t *testing.T) {
	g := newTestGranulator(make([]float32, 100))
	g.HandleEvent(SynthEvent{Kind: EventBounds, Start: 50, End: 60})
	if g.Position() != 50 {
		t.Fatalf("expected index moved to start, got %v", g.Position())
	}
	for i := 0; i < 10; i++ {
		g.Process()
		if p := g.Position(); p < 50 || p >= 59 {
			t.Fatalf("scan left the window: %v", p)
		}
	}

	// rejected, window unchanged
	g.HandleEvent(SynthEvent{Kind: EventBounds, Start: 70, End: 60})
	if g.start != 50 || g.end != 60 {
		t.Fatalf("expected 50..60, got %d..%d", g.start, g.end)
	}
	g.HandleEvent(SynthEvent{Kind: EventBounds, Start: -5, End: 500})
	if g.start != 0 || g.end != 100 {
		t.Fatalf("expected clamped 0..100, got %d..%d", g.start, g.end)
	}
}

func TestGranulatorScanStep(t *testing.T) {
	g := newTestGranulator(make([]float32, 1000))
	g.HandleEvent(SynthEvent{Kind: EventStep, Value: 2})
	g.Process()
	if p := g.Position(); math.Abs(float64(p)-2*chunkSize) > 1e-3 {
		t.Fatalf("expected index %v, got %v", 2*chunkSize, p)
	}
}

func TestGrainsPerSecIgnoresNonPositive(t *testing.T) {
	g := newTestGranulator(make([]float32, 10))
	before := g.pool.ticksBetweenGrains
	g.HandleEvent(SynthEvent{Kind: EventGrainsPerSec, Value: 0})
	if g.pool.ticksBetweenGrains != before {
		t.Fatalf("expected threshold unchanged")
	}
	g.HandleEvent(SynthEvent{Kind: EventGrainsPerSec, Value: 441})
	if g.pool.ticksBetweenGrains != 100 {
		t.Fatalf("expected 100 ticks between grains, got %v", g.pool.ticksBetweenGrains)
	}
}
