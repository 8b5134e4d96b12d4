package main

// Oscillator is a mono test tone, copied to both channels.
type Oscillator struct {
	wave       wave
	sampleRate float32
	frequency  float32
	step       float32
	phase      float32
	level      float32
	out        Chunk
}

func NewOscillator(w wave, sampleRate float32) *Oscillator {
	o := &Oscillator{
		wave:       w,
		sampleRate: sampleRate,
		level:      0.25,
	}
	o.setFrequency(220)
	return o
}

func (o *Oscillator) setFrequency(f float32) {
	o.frequency = f
	o.step = f / o.sampleRate
}

func (o *Oscillator) Process() {
	for i := range o.out {
		o.out[i] = o.level * o.wave.at(o.phase)
		o.phase = wrapPhase(o.phase + o.step)
	}
}

func (o *Oscillator) Left() *Chunk  { return &o.out }
func (o *Oscillator) Right() *Chunk { return &o.out }

// HandleEvent takes the master level and treats the step ratio as a
// transposition of the base frequency.
func (o *Oscillator) HandleEvent(e SynthEvent) {
	switch e.Kind {
	case EventLevel:
		o.level = e.Value
	case EventStep:
		o.step = 220 * e.Value / o.sampleRate
	}
}
