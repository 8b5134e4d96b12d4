package main

// Sampler loops the sample buffer between start and end without grains.
type Sampler struct {
	samples    []float32
	sampleRate float32
	index      float32
	step       float32
	level      float32
	start, end int
	out        Chunk
}

func NewSampler(sampleRate float32) *Sampler {
	samples := make([]float32, 2)
	return &Sampler{
		samples:    samples,
		sampleRate: sampleRate,
		step:       1,
		level:      1,
		end:        len(samples),
	}
}

func (s *Sampler) Left() *Chunk      { return &s.out }
func (s *Sampler) Right() *Chunk     { return &s.out }
func (s *Sampler) Position() float32 { return s.index }

func (s *Sampler) HandleEvent(e SynthEvent) {
	switch e.Kind {
	case EventLoadSound:
		s.samples = e.Samples
		s.index = 0
		s.start, s.end = 0, len(e.Samples)
	case EventLevel:
		s.level = e.Value
	case EventStep:
		s.step = e.Value
	case EventBounds:
		if e.Start >= 0 && e.Start < e.End && e.End <= len(s.samples) {
			s.start, s.end = e.Start, e.End
			if s.index < float32(s.start) || s.index >= float32(s.end) {
				s.index = float32(s.start)
			}
		}
	}
}

// valueAt interpolates at pos. The last sample is read alone so a window
// ending at the buffer end never reads past it.
func (s *Sampler) valueAt(pos float32) float32 {
	n := int(pos)
	if n+1 >= len(s.samples) {
		return s.samples[len(s.samples)-1]
	}
	w := pos - float32(n)
	return (1-w)*s.samples[n] + w*s.samples[n+1]
}

func (s *Sampler) Process() {
	if len(s.samples) < 2 {
		s.out.zero()
		return
	}
	for i := range s.out {
		s.out[i] = s.level * s.valueAt(s.index)

		s.index += s.step
		// -1 because of the interpolation
		if s.index >= float32(s.end)-1 {
			s.index = float32(s.start)
		}
	}
}
