package main

import (
	"bytes"
	"testing"
)

func TestOtoReaderSplitsFrames(t *testing.T) {
	var c StereoChunk
	for i := 0; i < chunkSize; i++ {
		c.Left[i] = float32(i) / chunkSize
		c.Right[i] = -float32(i) / chunkSize
	}
	whole := make(chan StereoChunk, 1)
	whole <- c
	want := make([]byte, chunkSize*4)
	newFrameStream(whole, make(chan struct{}), 0).fillBytes(want, FormatI16)

	// the last read runs into the next chunk
	split := make(chan StereoChunk, 2)
	split <- c
	split <- c
	r := newOtoReader(newFrameStream(split, make(chan struct{}), 0), FormatI16)
	var got []byte
	buf := make([]byte, 3)
	for len(got) < len(want) {
		n, err := r.Read(buf)
		if err != nil {
			t.Fatalf("error reading: %v", err)
		}
		if n == 0 {
			t.Fatalf("read returned no bytes for a %d byte buffer", len(buf))
		}
		got = append(got, buf[:n]...)
	}
	if !bytes.Equal(got[:len(want)], want) {
		t.Fatalf("split frames differ from whole frames")
	}
}
