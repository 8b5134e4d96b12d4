package main

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// otoBackend plays through oto. oto has no device negotiation, so the
// sample rate comes from the configuration.
type otoBackend struct {
	sampleRate int
	format     SampleFormat
	ctx        *oto.Context
	player     *oto.Player
	quit       chan struct{}
}

func newOtoBackend(sampleRate int) *otoBackend {
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	return &otoBackend{sampleRate: sampleRate}
}

func (b *otoBackend) Open(format SampleFormat) (float32, error) {
	var f oto.Format
	switch format {
	case FormatF32:
		f = oto.FormatFloat32LE
	case FormatI16:
		f = oto.FormatSignedInt16LE
	default:
		return 0, fmt.Errorf("%w for oto: %v", ErrUnsupportedFormat, format)
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   b.sampleRate,
		ChannelCount: 2,
		Format:       f,
		BufferSize:   20 * time.Millisecond,
	})
	if err != nil {
		return 0, fmt.Errorf("can't create oto context: %w", err)
	}
	<-ready
	b.ctx = ctx
	b.format = format
	return float32(b.sampleRate), nil
}

// otoReader adapts a frame stream to the io.Reader oto pulls from. A frame
// that does not fit in p is split and its tail returned by the next Read.
type otoReader struct {
	src     *frameStream
	format  SampleFormat
	frame   []byte
	pending []byte
}

func newOtoReader(src *frameStream, format SampleFormat) *otoReader {
	return &otoReader{
		src:    src,
		format: format,
		frame:  make([]byte, 2*format.bytesPerSample()),
	}
}

func (r *otoReader) Read(p []byte) (int, error) {
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	if len(r.pending) > 0 {
		return n, nil
	}
	n += r.src.fillBytes(p[n:], r.format)
	if n < len(p) {
		r.src.fillBytes(r.frame, r.format)
		m := copy(p[n:], r.frame)
		r.pending = r.frame[m:]
		n += m
	}
	return n, nil
}

func (b *otoBackend) Start(src *frameStream, errs chan<- error) error {
	b.player = b.ctx.NewPlayer(newOtoReader(src, b.format))
	b.player.Play()
	b.quit = make(chan struct{})
	go func() {
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if err := b.player.Err(); err != nil {
					errs <- err
					return
				}
			case <-b.quit:
				return
			}
		}
	}()
	return nil
}

func (b *otoBackend) Close() error {
	if b.player == nil {
		return nil
	}
	close(b.quit)
	return b.player.Close()
}
