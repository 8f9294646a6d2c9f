package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-rack/dsp"
	"github.com/cwbudde/algo-rack/effect"
	"github.com/cwbudde/algo-rack/internal/wavio"
	"github.com/cwbudde/algo-rack/preset"
	"github.com/cwbudde/algo-rack/synth"
)

const blockSize = 128

type renderer struct {
	synths     *synth.Registry
	effects    *effect.Registry
	sampleRate int
	outDir     string
	metering   bool
	log        logrus.FieldLogger
	progress   *progress
}

type result struct {
	Name   string
	Path   string
	Frames int
	Peak   float64
	RMS    float64
}

type event struct {
	frame    int
	on       bool
	note     int
	velocity float32
}

func newRenderer(sampleRate int, outDir string, log logrus.FieldLogger) *renderer {
	sr := float32(sampleRate)
	return &renderer{
		synths:     synth.WithBuiltin(synth.WithSampleRate(sr), synth.WithLogger(log)),
		effects:    effect.WithBuiltin(effect.WithSampleRate(sr), effect.WithLogger(log)),
		sampleRate: sampleRate,
		outDir:     outDir,
		log:        log,
	}
}

// registerImpulses adds one convolution effect per impulse file.
func (r *renderer) registerImpulses(impulses map[string]string) error {
	names := make([]string, 0, len(impulses))
	for name := range impulses {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		path := impulses[name]
		left, right, err := wavio.ReadStereoAt(path, r.sampleRate)
		if err != nil {
			return fmt.Errorf("impulse %q: %w", name, err)
		}
		b, err := effect.NewConvolutionBuilder(name, "Convolution with "+filepath.Base(path), left, right, float64(r.sampleRate))
		if err != nil {
			return fmt.Errorf("impulse %q: %w", name, err)
		}
		r.effects.Register(name, b)
		r.log.WithFields(logrus.Fields{
			"function": "registerImpulses",
			"name":     name,
			"path":     path,
			"frames":   len(left),
		}).Debug("Registered impulse response")
	}
	return nil
}

func (r *renderer) buildPoly(s *scene) (*synth.Poly, error) {
	if s.Drum == "" {
		return synth.NewPoly(r.synths, s.Synth, s.Voices, s.Params)
	}
	p, ok := preset.DrumForToken(s.Drum)
	if !ok {
		p, ok = preset.DrumBank().ByName(s.Drum)
	}
	if !ok {
		return nil, fmt.Errorf("unknown drum %q", s.Drum)
	}
	for k, v := range s.Params {
		p.Param(k, v)
	}
	if err := p.Check(r.synths); err != nil {
		return nil, err
	}
	return p.Poly(r.synths, s.Voices)
}

func (r *renderer) buildChain(s *scene) (*effect.Chain, error) {
	c := effect.NewChain(r.effects, effect.WithStrictParams(true), effect.WithMetering(r.metering))
	switch {
	case s.EffectPreset != "":
		p, ok := effectPreset(s.EffectPreset)
		if !ok {
			return nil, fmt.Errorf("unknown effect preset %q", s.EffectPreset)
		}
		if err := p.ApplyTo(c); err != nil {
			return nil, err
		}
	case len(s.Effects) > 0:
		st := effect.NewChainState(float32(r.sampleRate))
		st.Effects = s.Effects
		if err := preset.CheckChainState(r.effects, st); err != nil {
			return nil, err
		}
		if err := c.LoadState(st); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (r *renderer) events(s *scene) []event {
	sr := float32(r.sampleRate)
	out := make([]event, 0, 2*len(s.Notes))
	for _, n := range s.Notes {
		on := dsp.SecondsToSamples(float32(n.At), sr)
		out = append(out,
			event{frame: on, on: true, note: n.Note, velocity: n.Velocity},
			event{frame: on + max(1, dsp.SecondsToSamples(float32(n.Length), sr)), note: n.Note},
		)
	}
	// Note-offs sort before note-ons on the same frame so retriggers work.
	slices.SortStableFunc(out, func(a, b event) int {
		if c := cmp.Compare(a.frame, b.frame); c != 0 {
			return c
		}
		switch {
		case a.on == b.on:
			return 0
		case a.on:
			return 1
		default:
			return -1
		}
	})
	return out
}

// render plays s through its chain and writes the result. Leading frames
// equal to the chain latency are dropped.
func (r *renderer) render(ctx context.Context, s *scene) (result, error) {
	poly, err := r.buildPoly(s)
	if err != nil {
		return result{}, fmt.Errorf("scene %q: %w", s.Name, err)
	}
	chain, err := r.buildChain(s)
	if err != nil {
		return result{}, fmt.Errorf("scene %q: %w", s.Name, err)
	}
	if s.Bend != 0 {
		poly.PitchBend(s.Bend)
	}

	sr := float32(r.sampleRate)
	frames := dsp.SecondsToSamples(float32(s.Duration+*s.Tail), sr)
	latency := chain.Latency()
	total := frames + latency
	events := r.events(s)

	left := make([]float32, total)
	right := make([]float32, total)
	next := 0
	for start := 0; start < total; start += blockSize {
		if err := ctx.Err(); err != nil {
			return result{}, err
		}
		end := min(start+blockSize, total)
		for i := start; i < end; i++ {
			for next < len(events) && events[next].frame <= i {
				e := events[next]
				if e.on {
					poly.NoteOn(e.note, e.velocity)
				} else {
					poly.NoteOff(e.note)
				}
				next++
			}
			left[i], right[i] = poly.GetStereo()
		}
		chain.ProcessBlock(left[start:end], right[start:end])
		r.progress.update(s.Name, end, total)
	}

	left, right = left[latency:], right[latency:]
	path := filepath.Join(r.outDir, s.Output)
	if err := wavio.WriteStereo(path, left, right, r.sampleRate); err != nil {
		return result{}, fmt.Errorf("scene %q: %w", s.Name, err)
	}
	peak, rms := wavio.Stats(left, right)
	res := result{Name: s.Name, Path: path, Frames: len(left), Peak: peak, RMS: rms}
	r.logMeters(s.Name, chain)
	r.log.WithFields(logrus.Fields{
		"function":  "render",
		"scene":     s.Name,
		"path":      path,
		"frames":    res.Frames,
		"latency":   latency,
		"peak_dbfs": fmt.Sprintf("%.1f", wavio.PeakDBFS(peak)),
	}).Info("Rendered scene")
	return res, nil
}

func (r *renderer) logMeters(name string, c *effect.Chain) {
	cpu := c.CPUReport()
	for i, l := range c.Levels() {
		r.log.WithFields(logrus.Fields{
			"function": "render",
			"scene":    name,
			"effect":   l.Name,
			"in_peak":  fmt.Sprintf("%.1f", dsp.GainToDB(l.Input.Peak())),
			"out_peak": fmt.Sprintf("%.1f", dsp.GainToDB(l.Output.Peak())),
			"cpu_peak": fmt.Sprintf("%.2f%%", cpu[i].PeakPercent),
			"overload": cpu[i].Overloaded,
		}).Info("Effect meter")
	}
}

// progress prints one status line per update while scenes render. A nil
// progress ignores updates.
type progress struct {
	mu      sync.Mutex
	w       io.Writer
	order   []string
	percent map[string]int
}

func newProgress(w io.Writer, scenes []scene) *progress {
	p := &progress{w: w, percent: make(map[string]int, len(scenes))}
	for _, s := range scenes {
		p.order = append(p.order, s.Name)
		p.percent[s.Name] = 0
	}
	return p
}

func (p *progress) update(name string, done, total int) {
	if p == nil {
		return
	}
	pct := 100
	if total > 0 {
		pct = done * 100 / total
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.percent[name] == pct {
		return
	}
	p.percent[name] = pct
	parts := make([]string, len(p.order))
	for i, n := range p.order {
		parts[i] = fmt.Sprintf("%s %3d%%", n, p.percent[n])
	}
	fmt.Fprintf(p.w, "\r%s", strings.Join(parts, "  "))
}

func (p *progress) finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w)
}
