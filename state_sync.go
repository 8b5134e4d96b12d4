package main

import "time"

// stateReadTimeout bounds how long the sync loop waits for a snapshot
// before checking whether it should stop.
const stateReadTimeout = 100 * time.Millisecond

// syncState forwards synth snapshots to the controller until done is closed.
func syncState(states *stateRing, ctrl *Controller, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}
		if s, ok := states.latest(stateReadTimeout); ok {
			ctrl.SetPosition(s.Index)
		}
	}
}
