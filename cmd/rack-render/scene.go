package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-rack/effect"
	"github.com/cwbudde/algo-rack/param"
	"github.com/cwbudde/algo-rack/preset"
)

const (
	defaultSampleRate = 48000
	defaultVoices     = 8
	defaultTailS      = 1.0
)

// sceneFile is the top-level YAML document.
type sceneFile struct {
	SampleRate int `yaml:"sample_rate"`
	// Impulses maps an effect name to a WAV impulse response. Each entry is
	// registered as a convolution effect before rendering.
	Impulses map[string]string `yaml:"impulses"`
	Scenes   []scene           `yaml:"scenes"`
}

type scene struct {
	Name         string               `yaml:"name"`
	Output       string               `yaml:"output"`
	Synth        string               `yaml:"synth"`
	Drum         string               `yaml:"drum"`
	Voices       int                  `yaml:"voices"`
	Params       param.Values         `yaml:"params"`
	Duration     float64              `yaml:"duration"`
	Tail         *float64             `yaml:"tail"`
	Bend         float32              `yaml:"bend"`
	EffectPreset string               `yaml:"effect_preset"`
	Effects      []effect.EffectState `yaml:"effects"`
	Notes        []noteEvent          `yaml:"notes"`
}

type noteEvent struct {
	Note int    `yaml:"note"`
	Drum string `yaml:"drum"`
	// At and Length are in seconds.
	At     float64 `yaml:"at"`
	Length float64 `yaml:"length"`
	// Velocity is 0..1; 0 plays at full velocity.
	Velocity float32 `yaml:"velocity"`
}

func loadSceneFile(path string) (*sceneFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sf, err := decodeSceneFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base := filepath.Dir(path)
	for name, p := range sf.Impulses {
		if !filepath.IsAbs(p) {
			sf.Impulses[name] = filepath.Join(base, p)
		}
	}
	return sf, nil
}

func decodeSceneFile(r io.Reader) (*sceneFile, error) {
	var sf sceneFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("decode scene file: %w", err)
	}
	if sf.SampleRate == 0 {
		sf.SampleRate = defaultSampleRate
	}
	if err := sf.validate(); err != nil {
		return nil, err
	}
	return &sf, nil
}

func (sf *sceneFile) validate() error {
	if sf.SampleRate < 8000 || sf.SampleRate > 384000 {
		return fmt.Errorf("sample_rate must be in [8000,384000], got %d", sf.SampleRate)
	}
	if len(sf.Scenes) == 0 {
		return fmt.Errorf("scenes must not be empty")
	}
	for name, p := range sf.Impulses {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(p) == "" {
			return fmt.Errorf("impulses entries need a name and a path")
		}
	}
	seen := make(map[string]bool, len(sf.Scenes))
	outputs := make(map[string]bool, len(sf.Scenes))
	for i := range sf.Scenes {
		s := &sf.Scenes[i]
		if err := s.normalize(); err != nil {
			return fmt.Errorf("scenes[%d]: %w", i, err)
		}
		if seen[s.Name] {
			return fmt.Errorf("scenes[%d].name %q is duplicated", i, s.Name)
		}
		if outputs[s.Output] {
			return fmt.Errorf("scenes[%d].output %q is duplicated", i, s.Output)
		}
		seen[s.Name] = true
		outputs[s.Output] = true
	}
	return nil
}

func (s *scene) normalize() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	if s.Output == "" {
		s.Output = s.Name + ".wav"
	}
	if (s.Synth == "") == (s.Drum == "") {
		return fmt.Errorf("exactly one of synth or drum must be set")
	}
	if s.Voices == 0 {
		s.Voices = defaultVoices
	}
	if s.Voices < 1 {
		return fmt.Errorf("voices must be >= 1, got %d", s.Voices)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if s.Tail == nil {
		tail := defaultTailS
		s.Tail = &tail
	}
	if *s.Tail < 0 {
		return fmt.Errorf("tail must be >= 0")
	}
	if s.EffectPreset != "" && len(s.Effects) > 0 {
		return fmt.Errorf("effect_preset and effects are exclusive")
	}
	for i := range s.Notes {
		n := &s.Notes[i]
		if n.Drum != "" {
			note, ok := preset.DrumNote(n.Drum)
			if !ok {
				return fmt.Errorf("notes[%d].drum: unknown token %q", i, n.Drum)
			}
			n.Note = note
		}
		if n.Note < 0 || n.Note > 127 {
			return fmt.Errorf("notes[%d].note must be in [0,127], got %d", i, n.Note)
		}
		if n.At < 0 || n.Length < 0 {
			return fmt.Errorf("notes[%d]: at and length must be >= 0", i)
		}
		if n.Velocity < 0 || n.Velocity > 1 {
			return fmt.Errorf("notes[%d].velocity must be in [0,1]", i)
		}
		if n.Velocity == 0 {
			n.Velocity = 1
		}
	}
	return nil
}

// effectPreset finds name in the built-in mastering and mixing banks.
func effectPreset(name string) (*preset.EffectPreset, bool) {
	for _, bank := range []*preset.EffectBank{preset.MasteringBank(), preset.MixingBank()} {
		if p, ok := bank.ByName(name); ok {
			return p, true
		}
	}
	return nil, false
}
