package main

const defaultSampleRate = 44100

// Granulator plays a sample buffer as overlapping grains spawned around a
// moving scan position. It is only touched by the synth engine goroutine.
type Granulator struct {
	samples    []float32
	sampleRate float32

	left, right Chunk

	index float32 // scan position
	step  float32 // scan pitch ratio
	level float32
	start int // included
	end   int // excluded

	pool       *grainPool
	panSpread  float32
	scanSpread float32
	grainStep  float32
	env        envelope

	results []grainResult
}

func NewGranulator(sampleRate float32, rnd randSource) *Granulator {
	samples := make([]float32, 5)
	return &Granulator{
		samples:    samples,
		sampleRate: sampleRate,
		step:       1,
		level:      1,
		end:        len(samples),
		pool:       newGrainPool(rnd, 200),
		grainStep:  1,
		env: envelope{
			attackSlope:  0.1,
			sustainTicks: 1000,
			releaseSlope: -0.1,
		},
		results: make([]grainResult, 0, maxGrains),
	}
}

func (g *Granulator) Left() *Chunk  { return &g.left }
func (g *Granulator) Right() *Chunk { return &g.right }

// Position is the current scan index in samples.
func (g *Granulator) Position() float32 { return g.index }

func (g *Granulator) loadSamples(samples []float32) {
	g.samples = samples
	g.index = 0
	g.start = 0
	g.end = len(samples)
}

func (g *Granulator) setBounds(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(g.samples) {
		end = len(g.samples)
	}
	if start >= end {
		return
	}
	g.start, g.end = start, end
	if g.index < float32(start) || g.index >= float32(end) {
		g.index = float32(start)
	}
}

func (g *Granulator) setGrainsPerSec(gps float32) {
	if gps <= 0 {
		return
	}
	g.pool.setTicksBetweenGrains(g.sampleRate / gps)
}

// HandleEvent applies one parameter change.
func (g *Granulator) HandleEvent(e SynthEvent) {
	switch e.Kind {
	case EventLoadSound:
		g.loadSamples(e.Samples)
	case EventLevel:
		g.level = e.Value
	case EventBounds:
		g.setBounds(e.Start, e.End)
	case EventStep:
		g.step = e.Value
	case EventPanSpread:
		g.panSpread = e.Value
	case EventScanSpread:
		g.scanSpread = e.Value
	case EventGrainStep:
		g.grainStep = e.Value
	case EventGrainsPerSec:
		g.setGrainsPerSec(e.Value)
	case EventGrainEnvelope:
		g.env = e.Envelope
	}
}

// valueAt linearly interpolates the buffer at a fractional index.
func (g *Granulator) valueAt(position float32) float32 {
	i := int(position)
	w := position - float32(i)
	return (1-w)*g.samples[i] + w*g.samples[i+1]
}

func (g *Granulator) nextIndex() float32 {
	// -1 keeps the interpolation inside the buffer
	return wrapPosition(g.index+g.step, float32(g.start), float32(g.end)-1)
}

func (g *Granulator) Process() {
	if len(g.samples) < 2 {
		g.left.zero()
		g.right.zero()
		return
	}
	windowEnd := float32(len(g.samples)) - 1
	locationSpread := g.scanSpread * float32(len(g.samples)) / 2

	for i := 0; i < chunkSize; i++ {
		g.pool.schedule(g.grainStep, g.index, g.panSpread, locationSpread, g.env)

		g.results = g.results[:0]
		for n := range g.pool.grains {
			if r, ok := g.pool.grains[n].next(g.grainStep, 0, windowEnd); ok {
				g.results = append(g.results, r)
			}
		}

		var lWeight, rWeight, left, right float32
		for _, r := range g.results {
			v := g.valueAt(r.position)
			lWeight += r.left
			rWeight += r.right
			left += r.left * v
			right += r.right * v
		}
		if lWeight > 1 {
			left /= lWeight
		}
		if rWeight > 1 {
			right /= rWeight
		}
		g.left[i] = g.level * left
		g.right[i] = g.level * right

		g.index = g.nextIndex()
	}
}
