package main

import "time"

// SynthState is a point-in-time snapshot published by the synth engine.
type SynthState struct {
	Index float32
}

// stateRing is a bounded latest-value-wins channel: when it is full the
// oldest unread snapshot is dropped to make room for the new one. It has a
// single writer, the synth engine goroutine.
type stateRing struct {
	ch chan SynthState
}

func newStateRing(capacity int) *stateRing {
	if capacity < 1 {
		capacity = 1
	}
	return &stateRing{ch: make(chan SynthState, capacity)}
}

// send never blocks.
func (r *stateRing) send(s SynthState) {
	for {
		select {
		case r.ch <- s:
			return
		default:
		}
		select {
		case <-r.ch:
		default:
		}
	}
}

// latest drains the ring and returns the newest snapshot, waiting up to
// timeout for one to arrive when the ring is empty.
func (r *stateRing) latest(timeout time.Duration) (SynthState, bool) {
	var s SynthState
	select {
	case s = <-r.ch:
	case <-time.After(timeout):
		return SynthState{}, false
	}
	for {
		select {
		case s = <-r.ch:
		default:
			return s, true
		}
	}
}
