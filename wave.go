package main

import "math"

// wave evaluates one period of a waveform. Locations are in [0, 1).
type wave interface {
	at(location float32) float32
}

const sineTableSize = 44100

// sineTable holds one period of sin(2πx). It is built during package
// initialisation, before main runs, and is read-only afterwards.
var sineTable = buildSineTable(sineTableSize)

func buildSineTable(size int) []float32 {
	t := make([]float32, size)
	for i := range t {
		t[i] = float32(math.Sin(float64(i) * 2 * math.Pi / float64(size)))
	}
	return t
}

type sineWave struct{}

func (sineWave) at(location float32) float32 {
	return tableLookup(sineTable, location)
}

// cosWave reads the sine table a quarter period ahead.
type cosWave struct{}

func (cosWave) at(location float32) float32 {
	return tableLookup(sineTable, wrapPhase(location+0.25))
}

type squareWave struct{}

func (squareWave) at(location float32) float32 {
	if location < 0.5 {
		return -1
	}
	return 1
}

type sawWave struct{}

func (sawWave) at(location float32) float32 {
	switch {
	case location < 0:
		return -1
	case location > 1:
		return 1
	}
	return -1 + 2*location
}

type triangleWave struct{}

func (triangleWave) at(location float32) float32 {
	switch {
	case location < 0:
		return -1
	case location > 1:
		return 1
	case location < 0.5:
		return -1 + 4*location
	}
	return 3 - 4*location
}

// tableLookup linearly interpolates table at location, clamping outside [0, 1).
func tableLookup(table []float32, location float32) float32 {
	n := len(table)
	if location < 0 {
		return table[0]
	}
	if location >= 1 {
		return table[n-1]
	}
	pos := float32(n) * location
	i := int(pos)
	if i+1 >= n {
		return table[i]
	}
	w := pos - float32(i)
	return table[i]*(1-w) + table[i+1]*w
}

func wrapPhase(p float32) float32 {
	for p >= 1 {
		p--
	}
	for p < 0 {
		p++
	}
	return p
}

// panCoefficients maps a pan angle in [-1, 1] to constant-power gains.
// -1 is hard left, 0 is centre, 1 is hard right; l²+r² stays 1.
func panCoefficients(angle float32) (l, r float32) {
	switch {
	case angle > 1:
		angle = 1
	case angle < -1:
		angle = -1
	}
	// the first quarter period of the table covers [0, π/2]
	idx := (1 - angle) / 8
	return sineWave{}.at(idx), cosWave{}.at(idx)
}
