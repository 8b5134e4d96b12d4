package main

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var ErrNotStereo = errors.New("only stereo devices are supported")

// audioBackend is an output device. Open negotiates the stream and reports
// the device sample rate; Start makes the device pull frames from src.
type audioBackend interface {
	Open(format SampleFormat) (sampleRate float32, err error)
	Start(src *frameStream, errs chan<- error) error
	Close() error
}

// frameStream turns received stereo chunks into a stream of frames. When
// the current chunk is used up it waits for the next one; with a zero
// underrun timeout that wait only ends on a new chunk or on quit.
type frameStream struct {
	in   <-chan StereoChunk
	quit <-chan struct{}

	cur StereoChunk
	idx int

	underrunTimeout time.Duration
	timer           *time.Timer
	underruns       atomic.Uint64
}

func newFrameStream(in <-chan StereoChunk, quit <-chan struct{}, underrunTimeout time.Duration) *frameStream {
	s := &frameStream{
		in:              in,
		quit:            quit,
		idx:             chunkSize,
		underrunTimeout: underrunTimeout,
	}
	if underrunTimeout > 0 {
		s.timer = time.NewTimer(underrunTimeout)
		s.timer.Stop()
	}
	return s
}

func (s *frameStream) load() {
	s.idx = 0
	if s.timer == nil {
		select {
		case s.cur = <-s.in:
		case <-s.quit:
			s.cur = StereoChunk{}
		}
		return
	}
	select {
	case s.cur = <-s.in:
		return
	default:
	}
	s.timer.Reset(s.underrunTimeout)
	select {
	case s.cur = <-s.in:
	case <-s.timer.C:
		s.underruns.Add(1)
		s.cur = StereoChunk{}
		return
	case <-s.quit:
		s.cur = StereoChunk{}
	}
	if !s.timer.Stop() {
		select {
		case <-s.timer.C:
		default:
		}
	}
}

func (s *frameStream) next() (l, r float32) {
	if s.idx >= chunkSize {
		s.load()
	}
	l, r = s.cur.frame(s.idx)
	s.idx++
	return l, r
}

// fillF32 writes interleaved stereo float frames.
func (s *frameStream) fillF32(out []float32) {
	for i := 0; i+1 < len(out); i += 2 {
		out[i], out[i+1] = s.next()
	}
}

func (s *frameStream) fillI16(out []int16) {
	for i := 0; i+1 < len(out); i += 2 {
		l, r := s.next()
		out[i], out[i+1] = toI16(l), toI16(r)
	}
}

// fillBytes writes whole interleaved frames in format f and returns the
// number of bytes written.
func (s *frameStream) fillBytes(out []byte, f SampleFormat) int {
	bps := f.bytesPerSample()
	frame := 2 * bps
	n := len(out) - len(out)%frame
	for i := 0; i < n; i += frame {
		l, r := s.next()
		f.putSample(out[i:], l)
		f.putSample(out[i+bps:], r)
	}
	return n
}

// AudioEngine owns the output device and feeds it from the chunk channel.
type AudioEngine struct {
	backend         audioBackend
	format          SampleFormat
	in              <-chan StereoChunk
	underrunTimeout time.Duration

	stream   *frameStream
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewAudioEngine(in <-chan StereoChunk, backend audioBackend, format SampleFormat, underrunTimeout time.Duration) *AudioEngine {
	return &AudioEngine{
		backend:         backend,
		format:          format,
		in:              in,
		underrunTimeout: underrunTimeout,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// Start opens the device and starts streaming. It returns the device sample
// rate. Errors here are configuration errors and nothing has been started.
func (a *AudioEngine) Start() (float32, error) {
	sampleRate, err := a.backend.Open(a.format)
	if err != nil {
		return 0, fmt.Errorf("can't open audio output: %w", err)
	}
	a.stream = newFrameStream(a.in, a.stop, a.underrunTimeout)
	errs := make(chan error, 1)
	if err := a.backend.Start(a.stream, errs); err != nil {
		a.backend.Close()
		return 0, fmt.Errorf("can't start audio output: %w", err)
	}
	logger.Info("audio output started", "sampleRate", sampleRate, "format", a.format)

	go func() {
		defer close(a.done)
		select {
		case err := <-errs:
			logger.Error("audio stream error", "err", err)
			a.Stop()
		case <-a.stop:
		}
		if err := a.backend.Close(); err != nil {
			logger.Warn("can't close audio output", "err", err)
		}
		logger.Info("audio output stopped", "underruns", a.Underruns())
	}()
	return sampleRate, nil
}

func (a *AudioEngine) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
}

// Done is closed once the device has been released. It never closes if Start failed.
func (a *AudioEngine) Done() <-chan struct{} {
	return a.done
}

// Underruns counts chunks replaced by silence. It stays 0 unless an underrun timeout is set.
func (a *AudioEngine) Underruns() uint64 {
	if a.stream == nil {
		return 0
	}
	return a.stream.underruns.Load()
}
