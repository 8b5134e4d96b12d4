package main

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/go-audio/wav"
)

// SampleLoadError is returned when a sample file can't be used. The
// previously loaded sample stays in effect.
type SampleLoadError struct {
	Path string
	Err  error
}

func (e *SampleLoadError) Error() string {
	return fmt.Sprintf("can't load sample %s: %v", e.Path, e.Err)
}

func (e *SampleLoadError) Unwrap() error { return e.Err }

type GuiEventKind int

const (
	GuiPosition GuiEventKind = iota
	GuiSampleRMS
)

// GuiEvent is UI feedback produced by the controller.
type GuiEvent struct {
	Kind     GuiEventKind
	Position float32
	RMS      []float32
}

// Controller turns parameter changes into synth events. It is safe for
// concurrent use; calls are serialized.
type Controller struct {
	sync.Mutex

	events     *eventQueue
	gui        chan<- GuiEvent
	sampleRate float32

	currentFile string
	samples     []float32

	level          float32
	start, end     float32
	semiTones      float32
	panSpread      float32
	scanSpread     float32
	grainSemiTones float32
	grainsPerSec   float32
	grainLength    float32
	attackRatio    float32
	releaseRatio   float32
}

// NewController creates a controller for an engine running at sampleRate.
// gui may be nil.
func NewController(events *eventQueue, gui chan<- GuiEvent, sampleRate float32) *Controller {
	return &Controller{
		events:       events,
		gui:          gui,
		sampleRate:   sampleRate,
		level:        1,
		end:          1,
		grainsPerSec: sampleRate / 200,
		grainLength:  1020,
		attackRatio:  10.0 / 1020,
		releaseRatio: 10.0 / 1020,
	}
}

func (c *Controller) sendGui(e GuiEvent) {
	if c.gui == nil {
		return
	}
	select {
	case c.gui <- e:
	default:
		logger.Warn("gui event dropped", "kind", e.Kind)
	}
}

func (c *Controller) SetLevel(level float32) {
	c.Lock()
	defer c.Unlock()

	if level < 0 {
		level = 0
	}
	c.level = level
	c.events.send(SynthEvent{Kind: EventLevel, Value: level})
}

// SetBounds sets the loop window as fractions of the sample length. It is
// ignored unless 0 <= start < end <= 1.
func (c *Controller) SetBounds(start, end float32) bool {
	c.Lock()
	defer c.Unlock()

	if start < 0 || end > 1 || start >= end {
		return false
	}
	c.start, c.end = start, end
	c.sendBounds()
	return true
}

func (c *Controller) sendBounds() {
	n := float32(len(c.samples))
	c.events.send(SynthEvent{
		Kind:  EventBounds,
		Start: int(n * c.start),
		End:   int(n * c.end),
	})
}

// Bounds returns the current window as fractions of the sample length.
func (c *Controller) Bounds() (start, end float32) {
	c.Lock()
	defer c.Unlock()
	return c.start, c.end
}

func pitchRatio(semiTones float32) float32 {
	return float32(math.Pow(2, float64(semiTones)/12))
}

// SetTune sets the scan pitch in semitones.
func (c *Controller) SetTune(semiTones float32) {
	c.Lock()
	defer c.Unlock()

	c.semiTones = semiTones
	c.events.send(SynthEvent{Kind: EventStep, Value: pitchRatio(semiTones)})
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func (c *Controller) SetPanSpread(spread float32) {
	c.Lock()
	defer c.Unlock()

	c.panSpread = clamp01(spread)
	c.events.send(SynthEvent{Kind: EventPanSpread, Value: c.panSpread})
}

func (c *Controller) SetScanSpread(spread float32) {
	c.Lock()
	defer c.Unlock()

	c.scanSpread = clamp01(spread)
	c.events.send(SynthEvent{Kind: EventScanSpread, Value: c.scanSpread})
}

// SetGrainTune sets the pitch grains read at, in semitones.
func (c *Controller) SetGrainTune(semiTones float32) {
	c.Lock()
	defer c.Unlock()

	c.grainSemiTones = semiTones
	c.events.send(SynthEvent{Kind: EventGrainStep, Value: pitchRatio(semiTones)})
}

// SetGrainsPerSec is ignored for non-positive rates.
func (c *Controller) SetGrainsPerSec(gps float32) bool {
	c.Lock()
	defer c.Unlock()

	if gps <= 0 {
		return false
	}
	c.grainsPerSec = gps
	c.events.send(SynthEvent{Kind: EventGrainsPerSec, Value: gps})
	return true
}

// SetGrainLength sets the total grain duration in ticks.
func (c *Controller) SetGrainLength(ticks float32) bool {
	c.Lock()
	defer c.Unlock()

	if ticks <= 0 {
		return false
	}
	c.grainLength = ticks
	c.sendEnvelope()
	return true
}

// SetGrainEnvelope sets attack and release as fractions of the grain length.
func (c *Controller) SetGrainEnvelope(attackRatio, releaseRatio float32) {
	c.Lock()
	defer c.Unlock()

	c.attackRatio = clamp01(attackRatio)
	c.releaseRatio = clamp01(releaseRatio)
	c.sendEnvelope()
}

func (c *Controller) sendEnvelope() {
	c.events.send(SynthEvent{
		Kind:     EventGrainEnvelope,
		Envelope: grainEnvelope(c.grainLength, c.attackRatio, c.releaseRatio),
	})
}

// grainEnvelope derives per-tick slopes from a grain length in ticks.
func grainEnvelope(length, attackRatio, releaseRatio float32) envelope {
	attack := length * attackRatio
	release := length * releaseRatio
	sustain := length - attack - release
	if sustain < 0 {
		sustain = 0
	}
	env := envelope{
		attackSlope:  1,
		sustainTicks: sustain,
		releaseSlope: -1,
	}
	if attack > 0 {
		env.attackSlope = 1 / attack
	}
	if release > 0 {
		env.releaseSlope = -1 / release
	}
	return env
}

// SetPosition reports the synth playback index to the UI as a fraction.
func (c *Controller) SetPosition(index float32) {
	c.Lock()
	defer c.Unlock()

	if len(c.samples) == 0 {
		return
	}
	c.sendGui(GuiEvent{Kind: GuiPosition, Position: index / float32(len(c.samples))})
}

// LoadSample decodes a WAV file, resamples it to the engine rate and sends
// it to the synth. The window is reset to the whole sample.
func (c *Controller) LoadSample(path string) error {
	raw, rate, err := decodeWav(path)
	if err != nil {
		return &SampleLoadError{Path: path, Err: err}
	}
	samples := resample(raw, rate, c.sampleRate)
	if len(samples) < 2 {
		return &SampleLoadError{Path: path, Err: fmt.Errorf("sample too short: %d frames", len(samples))}
	}

	c.Lock()
	defer c.Unlock()

	c.currentFile = path
	c.samples = samples
	c.start, c.end = 0, 1
	logger.Info("sample loaded", "path", path, "frames", len(samples), "sourceRate", rate)

	toSend := make([]float32, len(samples))
	copy(toSend, samples)
	c.events.send(SynthEvent{Kind: EventLoadSound, Samples: toSend})
	c.sendGui(GuiEvent{Kind: GuiSampleRMS, RMS: rmsEnvelope(samples, rmsWindows)})
	return nil
}

// CurrentFile is the last successfully loaded sample path.
func (c *Controller) CurrentFile() string {
	c.Lock()
	defer c.Unlock()
	return c.currentFile
}

// decodeWav reads the first channel of a PCM WAV file as floats in [-1, 1).
// 8 bit WAV is unsigned and is re-centred on 0.
func decodeWav(path string) ([]float32, float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding: %w", err)
	}
	channels := int(d.NumChans)
	bits := int(d.BitDepth)
	if channels < 1 || bits == 0 {
		return nil, 0, fmt.Errorf("bad format: %d channels, %d bits", channels, bits)
	}
	scale := float32(math.Pow(2, float64(bits-1)))
	offset := 0
	if bits == 8 {
		offset = 128
	}
	out := make([]float32, 0, len(buf.Data)/channels)
	for i := 0; i < len(buf.Data); i += channels {
		out = append(out, float32(buf.Data[i]-offset)/scale)
	}
	return out, float32(d.SampleRate), nil
}
