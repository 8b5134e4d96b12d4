package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var ErrUnsupportedFormat = errors.New("unsupported sample format")

// SampleFormat is the numeric format samples take at the device boundary.
type SampleFormat int

const (
	FormatF32 SampleFormat = iota
	FormatI16
	FormatU16
)

func ParseSampleFormat(s string) (SampleFormat, error) {
	switch s {
	case "", "f32":
		return FormatF32, nil
	case "i16":
		return FormatI16, nil
	case "u16":
		return FormatU16, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f SampleFormat) String() string {
	switch f {
	case FormatI16:
		return "i16"
	case FormatU16:
		return "u16"
	}
	return "f32"
}

func (f SampleFormat) bytesPerSample() int {
	if f == FormatF32 {
		return 4
	}
	return 2
}

func clampUnit(v float32) float32 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

func toI16(v float32) int16 {
	return int16(clampUnit(v) * math.MaxInt16)
}

// toU16 maps [-1, 1] onto [0, 65535] with silence at 32768.
func toU16(v float32) uint16 {
	u := (clampUnit(v) + 1) * 32768
	if u > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(u)
}

// putSample writes v in format f, little endian, at the start of b.
func (f SampleFormat) putSample(b []byte, v float32) {
	switch f {
	case FormatI16:
		binary.LittleEndian.PutUint16(b, uint16(toI16(v)))
	case FormatU16:
		binary.LittleEndian.PutUint16(b, toU16(v))
	default:
		binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	}
}
