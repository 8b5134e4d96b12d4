package main

// chunkSize is the number of samples moved between pipeline stages at once.
const chunkSize = 32

// Chunk is a fixed-size mono block. It is an array, so assigning or sending it copies it.
type Chunk [chunkSize]float32

func chunkWithValue(v float32) Chunk {
	var c Chunk
	for i := range c {
		c[i] = v
	}
	return c
}

func (c *Chunk) zero() {
	*c = Chunk{}
}

// StereoChunk is the unit exchanged on every channel in the system.
type StereoChunk struct {
	Left, Right Chunk
}

// frame returns the interleaved sample pair at index i.
func (s *StereoChunk) frame(i int) (l, r float32) {
	return s.Left[i], s.Right[i]
}
