package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigUnmarshal(t *testing.T) {
	var c Config
	err := json.Unmarshal([]byte(defaultConfig), &c)
	if err != nil {
		t.Fatalf("error unmarshalling: %v", err)
	}
	if c.Osc.Listen == "" {
		t.Fatalf("expected osc listen address to be set")
	}
	if c.Params.End != 1 {
		t.Fatalf("expected end 1, got %v", c.Params.End)
	}
}

func TestDefaultConfigPassesSchema(t *testing.T) {
	c, err := parseConfig([]byte(defaultConfig), "default.json")
	if err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
	if c.Params.GrainsPerSec != 40 {
		t.Fatalf("expected 40 grains/sec, got %v", c.Params.GrainsPerSec)
	}
	if c.Audio.SampleRate != 44100 {
		t.Fatalf("expected schema default sample rate, got %v", c.Audio.SampleRate)
	}
}

func TestParseConfigFillsDefaults(t *testing.T) {
	c, err := parseConfig([]byte(`{"params": {"level": 0.5}}`), "partial.json")
	if err != nil {
		t.Fatalf("error parsing: %v", err)
	}
	if !c.WatchConfig {
		t.Fatalf("expected watchConfig default true")
	}
	if c.Source != "granular" {
		t.Fatalf("expected granular source, got %q", c.Source)
	}
	if c.Audio.Backend != "portaudio" || c.Audio.Format != "f32" {
		t.Fatalf("unexpected audio defaults: %+v", c.Audio)
	}
	if c.Params.Level != 0.5 {
		t.Fatalf("expected level 0.5, got %v", c.Params.Level)
	}
	if c.Params.End != 1 {
		t.Fatalf("expected end default 1, got %v", c.Params.End)
	}
}

func TestParseConfigRejects(t *testing.T) {
	for name, data := range map[string]string{
		"pan spread":     `{"params": {"panSpread": 2}}`,
		"backend":        `{"audio": {"backend": "alsa"}}`,
		"format":         `{"audio": {"format": "s24"}}`,
		"grains per sec": `{"params": {"grainsPerSec": 0}}`,
		"bounds":         `{"params": {"start": 0.5, "end": 0.4}}`,
		"syntax":         `{"params": `,
	} {
		if _, err := parseConfig([]byte(data), name+".json"); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestReadConfigWritesDefault(t *testing.T) {
	p := filepath.Join(t.TempDir(), "granular.json")
	c, err := ReadConfig(p)
	if err != nil {
		t.Fatalf("error reading: %v", err)
	}
	if c.Osc.Remote != "127.0.0.1:9665" {
		t.Fatalf("unexpected remote %q", c.Osc.Remote)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if string(data) != defaultConfig {
		t.Fatalf("written config differs from default")
	}
}

func TestDynamicConfigApply(t *testing.T) {
	events := newEventQueue()
	ctrl := NewController(events, nil, 44100)
	d := DynamicConfig{Params: Params{
		Level: 0.5, Start: 0.25, End: 0.75, GrainsPerSec: 10, GrainLength: 100, Attack: 0.1, Release: 0.1,
	}}
	if err := d.apply(ctrl); err != nil {
		t.Fatalf("error applying: %v", err)
	}
	if start, end := ctrl.Bounds(); start != 0.25 || end != 0.75 {
		t.Fatalf("expected bounds 0.25..0.75, got %v..%v", start, end)
	}
	// one pending event per kind, the sample is not touched
	if n := events.len(); n != int(numEventKinds)-1 {
		t.Fatalf("expected %d pending events, got %d", numEventKinds-1, n)
	}
}

func TestDynamicConfigApplyBadSample(t *testing.T) {
	ctrl := NewController(newEventQueue(), nil, 44100)
	d := DynamicConfig{Sample: filepath.Join(t.TempDir(), "missing.wav"), Params: Params{Level: 1, End: 1, GrainsPerSec: 1, GrainLength: 1}}
	if err := d.apply(ctrl); err == nil {
		t.Fatalf("expected a sample load error")
	}
	if ctrl.CurrentFile() != "" {
		t.Fatalf("failed load must not change the current file")
	}
}

func TestWatch(t *testing.T) {
	p := filepath.Join(t.TempDir(), "granular.json")
	if _, err := ReadConfig(p); err != nil {
		t.Fatalf("error reading: %v", err)
	}
	configs := make(chan *Config)
	errs := make(chan error)
	done := make(chan struct{})
	defer close(done)
	if err := Watch(p, configs, errs, done); err != nil {
		t.Fatalf("error watching: %v", err)
	}

	err := os.WriteFile(p, []byte(`{"params": {"level": 0.125}}`), 0644)
	if err != nil {
		t.Fatalf("error writing: %v", err)
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-configs:
			// a write can be seen half done, wait for the final one
			if c.Params.Level == 0.125 {
				return
			}
		case <-errs:
		case <-deadline:
			t.Fatalf("no config change seen")
		}
	}
}
