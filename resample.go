package main

import (
	"math"

	timestats "github.com/cwbudde/algo-dsp/stats/time"
)

// rmsWindows is the resolution of the envelope sent to the UI.
const rmsWindows = 600

// resample converts mono samples from one rate to another. Equal rates give
// a copy, downsampling picks the nearest source sample, upsampling
// interpolates linearly and stops before the last source sample.
func resample(src []float32, from, to float32) []float32 {
	if len(src) == 0 || from <= 0 || to <= 0 {
		return nil
	}
	if from == to {
		return append([]float32(nil), src...)
	}
	ratio := float64(to) / float64(from)
	size := int(math.Round(ratio * float64(len(src))))
	out := make([]float32, 0, size)

	if ratio < 1 {
		for i := 0; i < size; i++ {
			j := int(math.Round(float64(i) / ratio))
			if j >= len(src) {
				j = len(src) - 1
			}
			out = append(out, src[j])
		}
		return out
	}
	for i := 0; i < size; i++ {
		pos := float64(i) / ratio
		j := int(pos)
		if j+1 >= len(src) {
			break
		}
		w := float32(pos - float64(j))
		out = append(out, (1-w)*src[j]+w*src[j+1])
	}
	return out
}

// rmsEnvelope splits samples into n equal windows and returns each window's
// RMS scaled so the loudest window is 1. Buffers too short for two samples
// per window, or silent ones, give [0].
func rmsEnvelope(samples []float32, n int) []float32 {
	if n < 1 {
		n = 1
	}
	width := len(samples) / n
	if width < 2 {
		return []float32{0}
	}
	window := make([]float64, width)
	rms := make([]float64, n)
	max := 0.0
	for i := range rms {
		for j, v := range samples[i*width : (i+1)*width] {
			window[j] = float64(v)
		}
		rms[i] = timestats.RMS(window)
		if rms[i] > max {
			max = rms[i]
		}
	}
	if max == 0 {
		return []float32{0}
	}
	out := make([]float32, n)
	for i, v := range rms {
		out[i] = float32(v / max)
	}
	return out
}
