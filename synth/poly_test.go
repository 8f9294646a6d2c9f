package synth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cwbudde/algo-rack/catalog"
)

func TestPolyStartsIdle(t *testing.T) {
	reg := newTestRegistry()
	p, err := NewPoly(reg, "dc", 4, nil)
	if err != nil {
		t.Fatalf("new poly failed: %v", err)
	}
	for i, v := range p.Voices() {
		if v.State != Idle || v.Note != -1 {
			t.Fatalf("voice %d not idle: %+v", i, v)
		}
	}
	if l, r := p.GetStereo(); l != 0 || r != 0 {
		t.Fatalf("idle output mismatch: got=(%v,%v) want=(0,0)", l, r)
	}
	if p.Controls(0) == p.Controls(1) || p.Controls(0).Amp == p.Controls(1).Amp {
		t.Fatalf("voices share controls")
	}
}

func TestPolyUnknownPreset(t *testing.T) {
	reg := newTestRegistry()
	if _, err := NewPoly(reg, "__nonexistent__", 4, nil); !errors.Is(err, catalog.ErrUnknownPreset) {
		t.Fatalf("error mismatch: got=%v want UnknownPreset", err)
	}
	if _, err := NewPoly(reg, "dc", 0, nil); err == nil {
		t.Fatalf("zero voices accepted")
	}
}

func TestPolyStealsExactlyOneOldest(t *testing.T) {
	reg := newTestRegistry()
	p, err := NewPoly(reg, "dc", 4, nil)
	if err != nil {
		t.Fatalf("new poly failed: %v", err)
	}
	notes := []int{60, 64, 67, 71, 74}
	var slots []int
	for _, n := range notes {
		slots = append(slots, p.NoteOn(n, 1))
		p.GetStereo()
	}
	if slots[4] != slots[0] {
		t.Fatalf("stolen slot mismatch: got=%d want=%d", slots[4], slots[0])
	}
	playing := map[int]bool{}
	for _, n := range p.PlayingNotes() {
		playing[n] = true
	}
	if len(playing) != 4 || playing[60] {
		t.Fatalf("playing notes mismatch: got=%v", p.PlayingNotes())
	}
	for _, n := range notes[1:] {
		if !playing[n] {
			t.Fatalf("note %d no longer playing: %v", n, p.PlayingNotes())
		}
	}
	if l, _ := p.GetStereo(); l != 4 {
		t.Fatalf("sum mismatch: got=%v want=4", l)
	}
}

func TestPolyStealsWithoutTicks(t *testing.T) {
	reg := newTestRegistry()
	p, _ := NewPoly(reg, "dc", 4, nil)
	for _, n := range []int{60, 62, 64, 65} {
		p.NoteOn(n, 1)
	}
	if got := p.NoteOn(67, 1); got != 0 {
		t.Fatalf("first steal slot mismatch: got=%d want=0", got)
	}
	if got := p.NoteOn(69, 1); got != 1 {
		t.Fatalf("second steal slot mismatch: got=%d want=1", got)
	}
}

func TestPolyPrefersReleasingVoice(t *testing.T) {
	reg := newTestRegistry()
	p, _ := NewPoly(reg, "dc", 3, nil)
	p.NoteOn(60, 1)
	p.NoteOn(62, 1)
	p.NoteOn(64, 1)
	p.NoteOff(64)
	p.GetStereo()
	p.NoteOff(62)

	// Slot 2 has been releasing longer than slot 1.
	if got := p.NoteOn(65, 1); got != 2 {
		t.Fatalf("slot mismatch: got=%d want=2", got)
	}
	if got := p.NoteOn(67, 1); got != 1 {
		t.Fatalf("slot mismatch: got=%d want=1", got)
	}
	// Only Active voices remain: the oldest onset is slot 0.
	if got := p.NoteOn(69, 1); got != 0 {
		t.Fatalf("slot mismatch: got=%d want=0", got)
	}
}

func TestPolyReleaseTieBreaksLowestSlot(t *testing.T) {
	reg := newTestRegistry()
	p, _ := NewPoly(reg, "dc", 2, nil)
	p.NoteOn(60, 1)
	p.NoteOn(60, 1)
	p.NoteOff(60)
	if got := p.Voice(0).State; got != Releasing {
		t.Fatalf("slot 0 state mismatch: got=%v want=releasing", got)
	}
	if got := p.Voice(1).State; got != Releasing {
		t.Fatalf("slot 1 state mismatch: got=%v want=releasing", got)
	}
	if got := p.NoteOn(62, 1); got != 0 {
		t.Fatalf("slot mismatch: got=%d want=0", got)
	}
}

func TestPolySameNoteIsPolyphonic(t *testing.T) {
	reg := newTestRegistry()
	p, _ := NewPoly(reg, "dc", 4, nil)
	a := p.NoteOn(60, 0.5)
	b := p.NoteOn(60, 0.25)
	if a == b {
		t.Fatalf("retrigger reused slot %d", a)
	}
	if got := p.Controls(a).Amp.Load(); got != 0.5 {
		t.Fatalf("first voice amp changed: got=%v want=0.5", got)
	}
	if l, _ := p.GetStereo(); l != 0.75 {
		t.Fatalf("sum mismatch: got=%v want=0.75", l)
	}
}

func TestPolyNoteOnWritesControls(t *testing.T) {
	reg := newTestRegistry()
	p, _ := NewPoly(reg, "dc", 2, nil)
	i := p.NoteOn(81, 2)
	c := p.Controls(i)
	if got := c.Amp.Load(); got != 1 {
		t.Fatalf("velocity clamp mismatch: got=%v want=1", got)
	}
	if got := c.Freq.Load(); got < 875 || got > 885 {
		t.Fatalf("freq mismatch: got=%v want~880", got)
	}
	if c.Gate.Load() <= 0 {
		t.Fatalf("gate not raised")
	}
	i = p.NoteOnMIDI(60, 127)
	if got := p.Controls(i).Amp.Load(); got != 1 {
		t.Fatalf("midi velocity mismatch: got=%v want=1", got)
	}
}

func TestPolyUnmatchedNoteOffIsNoop(t *testing.T) {
	reg := newTestRegistry()
	a, _ := NewPoly(reg, "supersaw", 4, nil)
	b, _ := NewPoly(reg, "supersaw", 4, nil)
	for _, p := range []*Poly{a, b} {
		p.NoteOn(60, 0.8)
		p.NoteOn(67, 0.8)
		for i := 0; i < 100; i++ {
			p.GetStereo()
		}
	}
	b.NoteOff(61)
	for i := 0; i < 2000; i++ {
		al, ar := a.GetStereo()
		bl, br := b.GetStereo()
		if al != bl || ar != br {
			t.Fatalf("frame %d mismatch: (%v,%v) != (%v,%v)", i, al, ar, bl, br)
		}
	}
}

func TestPolyAllNotesOffReturnsToIdle(t *testing.T) {
	reg := newTestRegistry()
	for _, name := range []string{"dc", "pad", "pluck", "organ", "pretty_bell"} {
		t.Run(name, func(t *testing.T) {
			p, err := NewPoly(reg, name, 4, nil)
			if err != nil {
				t.Fatalf("new poly failed: %v", err)
			}
			for i, n := range []int{48, 55, 60, 64, 67} {
				p.NoteOn(n, 0.7)
				for j := 0; j < 50*(i+1); j++ {
					p.GetStereo()
				}
			}
			p.AllNotesOff()
			if got := len(p.PlayingNotes()); got != 0 {
				t.Fatalf("playing notes after all off: %d", got)
			}
			limit := int(p.Controls(0).Release.Load()*p.SampleRate()) + 2
			for i := 0; i < limit; i++ {
				p.GetStereo()
			}
			if got := p.ActiveVoices(); got != 0 {
				t.Fatalf("active voices mismatch: got=%d want=0", got)
			}
			if l, r := p.GetStereo(); l != 0 || r != 0 {
				t.Fatalf("idle output mismatch: got=(%v,%v)", l, r)
			}
		})
	}
}

func TestPolyReleaseDeadline(t *testing.T) {
	reg := newTestRegistry()
	p, _ := NewPoly(reg, "dc", 1, nil)
	p.NoteOn(60, 1)
	p.GetStereo()
	p.NoteOff(60)
	// 0.01 s at 8 kHz is 80 ticks.
	for i := 0; i < 79; i++ {
		p.GetStereo()
		if p.Voice(0).State != Releasing {
			t.Fatalf("voice left release early at tick %d", i)
		}
	}
	p.GetStereo()
	if p.Voice(0).State != Idle {
		t.Fatalf("voice state mismatch: got=%v want=idle", p.Voice(0).State)
	}
}

func TestPolyNoGainCompensation(t *testing.T) {
	reg := newTestRegistry()
	for _, n := range []int{1, 2, 3, 4} {
		t.Run(fmt.Sprintf("%dvoices", n), func(t *testing.T) {
			p, _ := NewPoly(reg, "dc", 4, nil)
			for i := 0; i < n; i++ {
				p.NoteOn(60+i, 0.5)
			}
			l, r := p.GetStereo()
			want := float32(n) * 0.5
			if l != want || r != want {
				t.Fatalf("sum mismatch: got=(%v,%v) want=%v", l, r, want)
			}
		})
	}
}

func TestPolyBuilderAndGlobalControls(t *testing.T) {
	reg := newTestRegistry()
	p, err := reg.Poly("tb303").Voices(3).Cutoff(800).Resonance(0.7).SampleRate(16000).Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if p.NumVoices() != 3 || p.SampleRate() != 16000 {
		t.Fatalf("builder settings mismatch: voices=%d sr=%v", p.NumVoices(), p.SampleRate())
	}
	for i := 0; i < 3; i++ {
		if got := p.Controls(i).Cutoff.Load(); got != 800 {
			t.Fatalf("voice %d cutoff mismatch: got=%v want=800", i, got)
		}
	}
	p.SetCutoff(1200)
	p.SetResonance(0.2)
	if got := p.Controls(2).Cutoff.Load(); got != 1200 {
		t.Fatalf("cutoff mismatch: got=%v want=1200", got)
	}
	if got := p.Controls(2).Resonance.Load(); got != 0.2 {
		t.Fatalf("resonance mismatch: got=%v want=0.2", got)
	}

	i := p.NoteOn(45, 1)
	p.PitchBend(12)
	if got := p.Controls(i).PitchBend.Load(); got < 1.98 || got > 2.02 {
		t.Fatalf("bend mismatch: got=%v want~2", got)
	}
	j := p.NoteOn(50, 1)
	if got := p.Controls(j).PitchBend.Load(); got < 1.98 || got > 2.02 {
		t.Fatalf("new note bend mismatch: got=%v want~2", got)
	}
	if got, want := p.SetParam("drive", 1), reg.mustMeta("tb303").hasParam("drive"); got != want {
		t.Fatalf("SetParam result mismatch: got=%v want=%v", got, want)
	}
	if p.SetParam("__nonexistent__", 1) {
		t.Fatalf("unknown parameter accepted")
	}
}

func TestPolyProcessAndReset(t *testing.T) {
	reg := newTestRegistry()
	p, _ := NewPoly(reg, "dc", 2, nil)
	p.NoteOn(60, 0.5)
	buf := make([]float32, 8)
	p.Process(buf)
	for i, v := range buf {
		if v != 0.5 {
			t.Fatalf("sample %d mismatch: got=%v want=0.5", i, v)
		}
	}
	p.Reset()
	if p.ActiveVoices() != 0 {
		t.Fatalf("reset left active voices")
	}
}

func TestPolyBuiltinSine(t *testing.T) {
	reg := newTestRegistry()
	p, err := NewPoly(reg, "sine", 2, nil)
	if err != nil {
		t.Fatalf("new poly failed: %v", err)
	}
	for i := 0; i < 100; i++ {
		if l, r := p.GetStereo(); l != 0 || r != 0 {
			t.Fatalf("output before note-on at %d: (%v,%v)", i, l, r)
		}
	}

	slot := p.NoteOn(69, 1)
	var peak float32
	for i := 0; i < 800; i++ {
		l, r := p.GetStereo()
		peak = max(peak, absf(l), absf(r))
	}
	if peak < 0.05 {
		t.Fatalf("note-on peak too low: got=%v", peak)
	}

	p.NoteOff(69)
	n := int(p.Controls(slot).Release.Load()*8000) + 2
	for i := 0; i < n; i++ {
		p.GetStereo()
	}
	if got := p.ActiveVoices(); got != 0 {
		t.Fatalf("active voices after release mismatch: got=%d want=0", got)
	}
	if l, r := p.GetStereo(); l != 0 || r != 0 {
		t.Fatalf("output after release mismatch: got=(%v,%v) want=(0,0)", l, r)
	}
}
