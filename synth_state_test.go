package main

import (
	"testing"
	"time"
)

func TestStateRingLatestWins(t *testing.T) {
	r := newStateRing(4)
	for i := 0; i < 10; i++ {
		r.send(SynthState{Index: float32(i)})
	}
	s, ok := r.latest(time.Millisecond)
	if !ok {
		t.Fatalf("expected a snapshot")
	}
	if s.Index != 9 {
		t.Fatalf("expected the newest snapshot, got %v", s.Index)
	}
	if _, ok := r.latest(time.Millisecond); ok {
		t.Fatalf("expected the ring to be drained")
	}
}

func TestStateRingWaits(t *testing.T) {
	r := newStateRing(1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		r.send(SynthState{Index: 3})
	}()
	s, ok := r.latest(time.Second)
	if !ok || s.Index != 3 {
		t.Fatalf("expected snapshot 3, got %v %v", s, ok)
	}
}
