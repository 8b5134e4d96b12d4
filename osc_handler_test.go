package main

import (
	"testing"

	"github.com/hypebeast/go-osc/osc"
)

func newTestHandler() (*granularHandler, *Controller, *eventQueue) {
	events := newEventQueue()
	ctrl := NewController(events, nil, 44100)
	return newGranularHandler(ctrl), ctrl, events
}

func TestHandlerFloatSetters(t *testing.T) {
	h, _, events := newTestHandler()
	cases := []struct {
		addr  string
		value float32
		kind  EventKind
		want  float32
	}{
		{"/level", 0.5, EventLevel, 0.5},
		{"/tune", 12, EventStep, 2},
		{"/tune", -12, EventStep, 0.5},
		{"/pan_spread", 0.3, EventPanSpread, 0.3},
		{"/scan_spread", 0.7, EventScanSpread, 0.7},
		{"/grain_tune", 12, EventGrainStep, 2},
		{"/grains_per_sec", 100, EventGrainsPerSec, 100},
	}
	for _, c := range cases {
		h.handleMessage(osc.NewMessage(c.addr, c.value))
		e, ok := drain(events)[c.kind]
		if !ok {
			t.Fatalf("%s: expected a %v event", c.addr, c.kind)
		}
		if e.Value != c.want {
			t.Errorf("%s %v: expected %v, got %v", c.addr, c.value, c.want, e.Value)
		}
	}
}

func TestHandlerEnvelope(t *testing.T) {
	h, _, events := newTestHandler()
	h.handleMessage(osc.NewMessage("/grain_length", float32(100)))
	h.handleMessage(osc.NewMessage("/grain_env", float32(0.5), float32(0.5)))
	e, ok := drain(events)[EventGrainEnvelope]
	if !ok {
		t.Fatalf("expected an envelope event")
	}
	if e.Envelope.sustainTicks != 0 || e.Envelope.attackSlope != 1.0/50 {
		t.Fatalf("unexpected envelope %+v", e.Envelope)
	}
}

func TestHandlerSampleBounds(t *testing.T) {
	h, ctrl, events := newTestHandler()
	ctrl.samples = make([]float32, 100)
	h.handleMessage(osc.NewMessage("/sample_bounds", float32(0.2), float32(0.4)))
	if e := drain(events)[EventBounds]; e.Start != 20 || e.End != 40 {
		t.Fatalf("expected 20..40, got %d..%d", e.Start, e.End)
	}

	h.handleMessage(osc.NewMessage("/sample_bounds", float32(0.6), float32(0.4)))
	h.handleMessage(osc.NewMessage("/sample_bounds", float32(0.4), float32(0.4)))
	if start, end := ctrl.Bounds(); start != 0.2 || end != 0.4 {
		t.Fatalf("rejected bounds changed the window to %v..%v", start, end)
	}
	if n := events.len(); n != 0 {
		t.Fatalf("rejected bounds sent %d events", n)
	}
}

func TestHandlerSample(t *testing.T) {
	h, ctrl, events := newTestHandler()
	p := writeWav(t, 44100, 1, sineData(100))
	h.handleMessage(osc.NewMessage("/sample", p))
	if ctrl.CurrentFile() != p {
		t.Fatalf("expected %q loaded, got %q", p, ctrl.CurrentFile())
	}
	if _, ok := drain(events)[EventLoadSound]; !ok {
		t.Fatalf("expected a load event")
	}

	h.handleMessage(osc.NewMessage("/sample", "/does/not/exist.wav"))
	if ctrl.CurrentFile() != p {
		t.Fatalf("failed load replaced the sample")
	}
}

func TestHandlerIgnoresMismatches(t *testing.T) {
	h, _, events := newTestHandler()
	for _, msg := range []*osc.Message{
		osc.NewMessage("/level", int32(1)),
		osc.NewMessage("/level", "loud"),
		osc.NewMessage("/level"),
		osc.NewMessage("/level", float32(1), float32(2)),
		osc.NewMessage("/sample", float32(1)),
		osc.NewMessage("/sample_bounds", float32(0.1)),
		osc.NewMessage("/grain_env", "a", "b"),
		osc.NewMessage("/unknown", float32(1)),
	} {
		h.handleMessage(msg)
	}
	if n := events.len(); n != 0 {
		t.Fatalf("expected mismatches ignored, got %d events", n)
	}
}
