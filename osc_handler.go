package main

import (
	"fmt"

	"github.com/hypebeast/go-osc/osc"
)

// granularHandler maps control addresses onto Controller calls. Anything
// that does not match an address and its argument types is logged and
// dropped; the protocol has no way to report errors back.
type granularHandler struct {
	ctrl *Controller
}

func newGranularHandler(ctrl *Controller) *granularHandler {
	return &granularHandler{ctrl: ctrl}
}

// floatArgs returns the arguments if there are exactly n and all are floats.
func floatArgs(msg *osc.Message, n int) ([]float32, bool) {
	if len(msg.Arguments) != n {
		return nil, false
	}
	out := make([]float32, n)
	for i, a := range msg.Arguments {
		f, ok := a.(float32)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

var floatSetters = map[string]func(c *Controller, v float32){
	"/level":          func(c *Controller, v float32) { c.SetLevel(v) },
	"/tune":           func(c *Controller, v float32) { c.SetTune(v) },
	"/pan_spread":     func(c *Controller, v float32) { c.SetPanSpread(v) },
	"/scan_spread":    func(c *Controller, v float32) { c.SetScanSpread(v) },
	"/grain_tune":     func(c *Controller, v float32) { c.SetGrainTune(v) },
	"/grains_per_sec": func(c *Controller, v float32) { c.SetGrainsPerSec(v) },
	"/grain_length":   func(c *Controller, v float32) { c.SetGrainLength(v) },
}

func (h *granularHandler) handleMessage(msg *osc.Message) {
	if set, ok := floatSetters[msg.Address]; ok {
		if v, ok := floatArgs(msg, 1); ok {
			logger.Debug("osc", "addr", msg.Address, "value", v[0])
			set(h.ctrl, v[0])
			return
		}
		h.unmatched(msg)
		return
	}

	switch msg.Address {
	case "/sample":
		if len(msg.Arguments) == 1 {
			if path, ok := msg.Arguments[0].(string); ok {
				logger.Info("change sample", "path", path)
				if err := h.ctrl.LoadSample(path); err != nil {
					logger.Error("sample not loaded", "err", err)
				}
				return
			}
		}
	case "/sample_bounds":
		if v, ok := floatArgs(msg, 2); ok {
			if !h.ctrl.SetBounds(v[0], v[1]) {
				start, end := h.ctrl.Bounds()
				logger.Warn("sample bounds rejected", "start", v[0], "end", v[1], "keeping", fmt.Sprintf("%v..%v", start, end))
			}
			return
		}
	case "/grain_env":
		if v, ok := floatArgs(msg, 2); ok {
			h.ctrl.SetGrainEnvelope(v[0], v[1])
			return
		}
	}
	h.unmatched(msg)
}

func (h *granularHandler) unmatched(msg *osc.Message) {
	logger.Warn("no match for osc message", "addr", msg.Address, "args", msg.Arguments)
}
