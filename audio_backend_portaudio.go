package main

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"
)

var ErrStreamStalled = errors.New("audio stream stopped calling back")

// streamWatchInterval is how long the device may go without a callback.
const streamWatchInterval = time.Second

// portaudioBackend plays on the default output device.
type portaudioBackend struct {
	format SampleFormat
	device *portaudio.DeviceInfo
	stream *portaudio.Stream
	watch  streamWatch
	quit   chan struct{}
	done   chan struct{}
}

// streamWatch counts callbacks and device underflows. portaudio has no
// error callback, so a device that stops calling back is the failure signal.
type streamWatch struct {
	callbacks  atomic.Uint64
	underflows atomic.Uint64
}

func (w *streamWatch) called(flags portaudio.StreamCallbackFlags) {
	w.callbacks.Add(1)
	if flags&portaudio.OutputUnderflow != 0 {
		w.underflows.Add(1)
	}
}

// run reports ErrStreamStalled on errs when no callback happened for a whole
// interval, and logs new underflows. It returns when quit is closed.
func (w *streamWatch) run(interval time.Duration, errs chan<- error, quit <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	var calls, underflows uint64
	for {
		select {
		case <-t.C:
			c, u := w.callbacks.Load(), w.underflows.Load()
			if c == calls {
				errs <- ErrStreamStalled
				return
			}
			if u != underflows {
				logger.Warn("audio device underflow", "count", u-underflows)
			}
			calls, underflows = c, u
		case <-quit:
			return
		}
	}
}

func (b *portaudioBackend) Open(format SampleFormat) (float32, error) {
	if format == FormatU16 {
		return 0, fmt.Errorf("%w for portaudio: %v", ErrUnsupportedFormat, format)
	}
	if err := portaudio.Initialize(); err != nil {
		return 0, fmt.Errorf("can't init portaudio: %w", err)
	}
	device, err := portaudio.DefaultOutputDevice()
	if err != nil {
		// ignore Terminate error
		portaudio.Terminate()
		return 0, fmt.Errorf("can't get output device: %w", err)
	}
	if device.MaxOutputChannels < 2 {
		portaudio.Terminate()
		return 0, fmt.Errorf("%w: %s has %d channels", ErrNotStereo, device.Name, device.MaxOutputChannels)
	}
	logger.Info("output device", "name", device.Name, "sampleRate", device.DefaultSampleRate)
	b.format = format
	b.device = device
	return float32(device.DefaultSampleRate), nil
}

func (b *portaudioBackend) Start(src *frameStream, errs chan<- error) error {
	p := portaudio.HighLatencyParameters(nil, b.device)
	p.Output.Channels = 2

	var callback interface{}
	switch b.format {
	case FormatI16:
		callback = func(out []int16, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			b.watch.called(flags)
			src.fillI16(out)
		}
	default:
		callback = func(out []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			b.watch.called(flags)
			src.fillF32(out)
		}
	}
	stream, err := portaudio.OpenStream(p, callback)
	if err != nil {
		return fmt.Errorf("can't open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("can't start stream: %w", err)
	}
	b.stream = stream
	b.quit = make(chan struct{})
	b.done = make(chan struct{})
	go func() {
		defer close(b.done)
		b.watch.run(streamWatchInterval, errs, b.quit)
	}()
	return nil
}

func (b *portaudioBackend) Close() error {
	// ignore Terminate error
	defer portaudio.Terminate()
	if b.stream == nil {
		return nil
	}
	close(b.quit)
	<-b.done
	if err := b.stream.Stop(); err != nil {
		b.stream.Close()
		return fmt.Errorf("can't stop stream: %w", err)
	}
	return b.stream.Close()
}
