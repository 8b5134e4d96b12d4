package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

const defaultConfig = `
{
	"watchConfig": true,
	"source": "granular",
	"osc": {
		"listen": "127.0.0.1:9666",
		"local": "127.0.0.1:9664",
		"remote": "127.0.0.1:9665"
	},
	"audio": {
		"backend": "portaudio",
		"format": "f32",
		"underrunTimeoutMs": 0
	},
	"sample": "",
	"params": {
		"level": 1,
		"start": 0,
		"end": 1,
		"tune": 0,
		"panSpread": 0.5,
		"scanSpread": 0.01,
		"grainTune": 0,
		"grainsPerSec": 40,
		"grainLength": 4410,
		"attack": 0.25,
		"release": 0.25
	}
}
`

// configSchema fills in anything the file leaves out and bounds the values.
const configSchema = `
watchConfig: bool | *true
source:      *"granular" | "sampler" | "tone" | "sine" | "square" | "saw" | "triangle"
seed:        int | *0
osc: {
	listen: string | *"127.0.0.1:9666"
	local:  string | *"127.0.0.1:9664"
	remote: string | *"127.0.0.1:9665"
}
audio: {
	backend:           *"portaudio" | "oto" | "pipe"
	format:            *"f32" | "i16" | "u16"
	sampleRate:        int & >0 | *44100
	output:            string | *"-"
	underrunTimeoutMs: int & >=0 | *0
}
sample: string | *""
params: {
	level:        number & >=0 | *1.0
	start:        number & >=0 & <1 | *0.0
	end:          number & >0 & <=1 | *1.0
	tune:         number | *0.0
	panSpread:    number & >=0 & <=1 | *0.0
	scanSpread:   number & >=0 & <=1 | *0.0
	grainTune:    number | *0.0
	grainsPerSec: number & >0 | *220.5
	grainLength:  number & >0 | *1020.0
	attack:       number & >=0 & <=1 | *0.01
	release:      number & >=0 & <=1 | *0.01
}
`

type OscConfig struct {
	Listen string `json:"listen"`
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

type AudioConfig struct {
	Backend           string `json:"backend"`
	Format            string `json:"format"`
	SampleRate        int    `json:"sampleRate"`
	Output            string `json:"output"`
	UnderrunTimeoutMs int    `json:"underrunTimeoutMs"`
}

func (c AudioConfig) underrunTimeout() time.Duration {
	return time.Duration(c.UnderrunTimeoutMs) * time.Millisecond
}

// StaticConfig is read once at startup.
type StaticConfig struct {
	WatchConfig bool        `json:"watchConfig"`
	Source      string      `json:"source"`
	Seed        int64       `json:"seed"`
	Osc         OscConfig   `json:"osc"`
	Audio       AudioConfig `json:"audio"`
}

type Params struct {
	Level        float32 `json:"level"`
	Start        float32 `json:"start"`
	End          float32 `json:"end"`
	Tune         float32 `json:"tune"`
	PanSpread    float32 `json:"panSpread"`
	ScanSpread   float32 `json:"scanSpread"`
	GrainTune    float32 `json:"grainTune"`
	GrainsPerSec float32 `json:"grainsPerSec"`
	GrainLength  float32 `json:"grainLength"`
	Attack       float32 `json:"attack"`
	Release      float32 `json:"release"`
}

// DynamicConfig is re-applied whenever the config file changes.
type DynamicConfig struct {
	Sample string `json:"sample"`
	Params Params `json:"params"`
}

type Config struct {
	StaticConfig
	DynamicConfig
}

func ReadConfig(p string) (*Config, error) {
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		err = os.WriteFile(p, []byte(defaultConfig), 0644)
		if err != nil {
			return nil, fmt.Errorf("can't write defaultConfig: %w", err)
		}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("can't read config: %w", err)
	}
	return parseConfig(data, p)
}

// parseConfig checks data against configSchema and decodes the result.
func parseConfig(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(configSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	merged := schema.Unify(v)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("validating: %w", err)
	}
	resolved, err := merged.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("resolving: %w", err)
	}
	var c Config
	err = json.Unmarshal(resolved, &c)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling: %w", err)
	}
	if c.Params.Start >= c.Params.End {
		return nil, fmt.Errorf("params: start %v must be before end %v", c.Params.Start, c.Params.End)
	}
	return &c, nil
}

// apply pushes the dynamic section to the controller. The sample is only
// reloaded when its path changed.
func (d DynamicConfig) apply(ctrl *Controller) error {
	var err error
	if d.Sample != "" && d.Sample != ctrl.CurrentFile() {
		err = ctrl.LoadSample(d.Sample)
	}
	p := d.Params
	ctrl.SetLevel(p.Level)
	ctrl.SetBounds(p.Start, p.End)
	ctrl.SetTune(p.Tune)
	ctrl.SetPanSpread(p.PanSpread)
	ctrl.SetScanSpread(p.ScanSpread)
	ctrl.SetGrainTune(p.GrainTune)
	ctrl.SetGrainsPerSec(p.GrainsPerSec)
	ctrl.SetGrainLength(p.GrainLength)
	ctrl.SetGrainEnvelope(p.Attack, p.Release)
	return err
}
