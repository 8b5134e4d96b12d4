package main

// randSource is the spawn-time randomness used by grains. *rand.Rand satisfies it.
type randSource interface {
	Float32() float32
}

type grainState int

const (
	grainStopped grainState = iota
	grainAttack
	grainSustain
	grainRelease
)

func (s grainState) String() string {
	switch s {
	case grainAttack:
		return "attack"
	case grainSustain:
		return "sustain"
	case grainRelease:
		return "release"
	}
	return "stopped"
}

// grainResult is one grain's contribution for the current tick.
type grainResult struct {
	position    float32
	left, right float32
}

// envelope describes a grain's amplitude shape in per-tick increments.
type envelope struct {
	attackSlope  float32
	sustainTicks float32
	releaseSlope float32 // negative
}

type grain struct {
	state    grainState
	position float32
	level    float32
	lCoef    float32
	rCoef    float32
	env      envelope
	sustain  float32
}

// recycle restarts a stopped grain around position. It reports false if the grain is still playing.
func (g *grain) recycle(rnd randSource, position, panSpread, locationSpread float32, env envelope) bool {
	if g.state != grainStopped {
		return false
	}
	angle := panSpread * (2*rnd.Float32() - 1)
	g.lCoef, g.rCoef = panCoefficients(angle)
	offset := locationSpread * (2*rnd.Float32() - 1)

	g.position = position + offset
	g.level = 0
	g.env = env
	g.sustain = env.sustainTicks
	g.state = grainAttack
	return true
}

// next advances the grain one tick inside the window [start, end).
func (g *grain) next(step, start, end float32) (grainResult, bool) {
	var level float32
	switch g.state {
	case grainStopped:
		return grainResult{}, false
	case grainAttack:
		g.level += g.env.attackSlope
		if g.level >= 1 {
			g.level = 1
			g.state = grainSustain
		}
		level = g.level
	case grainSustain:
		g.sustain--
		if g.sustain <= 0 {
			g.state = grainRelease
		}
		level = 1
	case grainRelease:
		g.level += g.env.releaseSlope
		if g.level < 0 {
			g.level = 0
			g.state = grainStopped
		}
		level = g.level
	}

	g.position = wrapPosition(g.position+step, start, end)
	return grainResult{
		position: g.position,
		left:     level * g.lCoef,
		right:    level * g.rCoef,
	}, true
}

func wrapPosition(p, start, end float32) float32 {
	switch {
	case p >= end:
		return start
	case p < start:
		return end - 1
	}
	return p
}
