package main

// maxGrains is the fixed size of the grain pool.
const maxGrains = 32

// grainPool owns every grain slot and decides when a new one starts.
type grainPool struct {
	grains [maxGrains]grain
	rnd    randSource

	ticksBetweenGrains float32
	elapsed            float32
}

func newGrainPool(rnd randSource, ticksBetweenGrains float32) *grainPool {
	return &grainPool{
		rnd:                rnd,
		ticksBetweenGrains: ticksBetweenGrains,
	}
}

func (p *grainPool) setTicksBetweenGrains(ticks float32) {
	p.ticksBetweenGrains = ticks
}

// schedule advances the cadence by step and spawns a grain at position once
// the threshold is passed, restarting the cadence from 0. When every slot is
// busy the cadence is held at the threshold so the spawn is retried on each
// following tick.
func (p *grainPool) schedule(step, position, panSpread, locationSpread float32, env envelope) {
	p.elapsed += step
	if p.elapsed <= p.ticksBetweenGrains {
		return
	}
	if p.spawn(position, panSpread, locationSpread, env) {
		p.elapsed = 0
		return
	}
	p.elapsed = p.ticksBetweenGrains
}

func (p *grainPool) spawn(position, panSpread, locationSpread float32, env envelope) bool {
	for i := range p.grains {
		if p.grains[i].recycle(p.rnd, position, panSpread, locationSpread, env) {
			return true
		}
	}
	return false
}

func (p *grainPool) active() int {
	n := 0
	for i := range p.grains {
		if p.grains[i].state != grainStopped {
			n++
		}
	}
	return n
}
