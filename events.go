package main

import "sync"

type EventKind int

const (
	EventLoadSound EventKind = iota
	EventLevel
	EventBounds
	EventStep
	EventPanSpread
	EventScanSpread
	EventGrainStep
	EventGrainsPerSec
	EventGrainEnvelope

	numEventKinds
)

var eventKindNames = [...]string{
	EventLoadSound:     "load_sound",
	EventLevel:         "level",
	EventBounds:        "bounds",
	EventStep:          "step",
	EventPanSpread:     "pan_spread",
	EventScanSpread:    "scan_spread",
	EventGrainStep:     "grain_step",
	EventGrainsPerSec:  "grains_per_sec",
	EventGrainEnvelope: "grain_envelope",
}

func (k EventKind) String() string {
	if k < 0 || k >= numEventKinds {
		return "unknown"
	}
	return eventKindNames[k]
}

// SynthEvent is a parameter change for the synth engine. Only the fields
// relevant to Kind are set.
type SynthEvent struct {
	Kind     EventKind
	Value    float32
	Start    int
	End      int
	Samples  []float32
	Envelope envelope
}

// eventQueue carries parameter changes from the controller to the synth
// engine. It holds at most one pending event per kind: a newer event replaces
// the pending one of the same kind and moves to the back of the queue, so
// the queue never grows past numEventKinds.
type eventQueue struct {
	mu      sync.Mutex
	pending []SynthEvent
}

func newEventQueue() *eventQueue {
	return &eventQueue{pending: make([]SynthEvent, 0, numEventKinds)}
}

func (q *eventQueue) send(e SynthEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.pending {
		if q.pending[i].Kind == e.Kind {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			break
		}
	}
	q.pending = append(q.pending, e)
}

// receive pops the oldest pending event without blocking.
func (q *eventQueue) receive() (SynthEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return SynthEvent{}, false
	}
	e := q.pending[0]
	copy(q.pending, q.pending[1:])
	q.pending[len(q.pending)-1] = SynthEvent{}
	q.pending = q.pending[:len(q.pending)-1]
	return e, true
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
