package main

import (
	"fmt"
	"io"
	"os"
)

// pipeBackend writes raw interleaved little-endian PCM to a writer, e.g.
//
//	granular -config c.json | aplay -f S16_LE -c 2 -r 44100
//
// The writer blocking is what paces the stream.
type pipeBackend struct {
	w          io.Writer
	closer     io.Closer
	sampleRate int
	format     SampleFormat
	quit       chan struct{}
	done       chan struct{}
}

func newPipeBackend(w io.Writer, sampleRate int) *pipeBackend {
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	return &pipeBackend{w: w, sampleRate: sampleRate}
}

// openPipeOutput opens path for writing, "-" being stdout.
func openPipeOutput(path string, sampleRate int) (*pipeBackend, error) {
	if path == "" || path == "-" {
		return newPipeBackend(os.Stdout, sampleRate), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("can't create pipe output: %w", err)
	}
	b := newPipeBackend(f, sampleRate)
	b.closer = f
	return b, nil
}

func (b *pipeBackend) Open(format SampleFormat) (float32, error) {
	b.format = format
	return float32(b.sampleRate), nil
}

func (b *pipeBackend) Start(src *frameStream, errs chan<- error) error {
	b.quit = make(chan struct{})
	b.done = make(chan struct{})
	buf := make([]byte, chunkSize*2*b.format.bytesPerSample())
	go func() {
		defer close(b.done)
		for {
			select {
			case <-b.quit:
				return
			default:
			}
			n := src.fillBytes(buf, b.format)
			if _, err := b.w.Write(buf[:n]); err != nil {
				errs <- err
				return
			}
		}
	}()
	return nil
}

func (b *pipeBackend) Close() error {
	if b.quit != nil {
		close(b.quit)
		<-b.done
	}
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}
