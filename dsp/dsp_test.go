package dsp

import (
	"fmt"
	"math"
	"testing"
)

func TestBiquadLowpassPassesDC(t *testing.T) {
	b := NewLowpass(1000, 48000, 0.7071)
	var y float32
	for i := 0; i < 4800; i++ {
		y = b.Process(1)
	}
	if math.Abs(float64(y-1)) > 1e-3 {
		t.Fatalf("dc gain mismatch: got=%v want=1", y)
	}
}

func TestBiquadHighpassBlocksDC(t *testing.T) {
	b := NewHighpass(200, 48000, 0.7071)
	var y float32
	for i := 0; i < 48000; i++ {
		y = b.Process(1)
	}
	if math.Abs(float64(y)) > 1e-3 {
		t.Fatalf("dc leak: got=%v want=0", y)
	}
	b.Reset()
	if got := b.Process(0); got != 0 {
		t.Fatalf("reset state mismatch: got=%v want=0", got)
	}
}

func TestDelayLineRead(t *testing.T) {
	d := NewDelayLine(8)
	for i := 1; i <= 5; i++ {
		d.Write(float32(i))
	}
	if got := d.Read(1); got != 5 {
		t.Fatalf("read(1) mismatch: got=%v want=5", got)
	}
	if got := d.Read(3); got != 3 {
		t.Fatalf("read(3) mismatch: got=%v want=3", got)
	}
	if got := d.ReadFractional(1.5); got != 4.5 {
		t.Fatalf("read(1.5) mismatch: got=%v want=4.5", got)
	}
	d.Reset()
	if got := d.Read(1); got != 0 {
		t.Fatalf("reset mismatch: got=%v want=0", got)
	}
}

func TestOscillatorRangeAndFrequency(t *testing.T) {
	const sr = 48000
	const freq = 440
	for _, w := range []Waveform{Sine, Saw, Square, Triangle, Pulse} {
		t.Run(w.String(), func(t *testing.T) {
			o := NewOscillator(w, 0)
			prev := o.Next(freq, sr)
			crossings := 0
			for i := 1; i < sr; i++ {
				v := o.Next(freq, sr)
				if v > 1.5 || v < -1.5 {
					t.Fatalf("sample %d out of range: %v", i, v)
				}
				if prev < 0 && v >= 0 {
					crossings++
				}
				prev = v
			}
			if crossings < freq-2 || crossings > freq+2 {
				t.Fatalf("rising crossings mismatch: got=%d want~%d", crossings, freq)
			}
		})
	}
}

func TestNoiseDeterministic(t *testing.T) {
	a := NewNoise(7, false)
	b := NewNoise(7, false)
	for i := 0; i < 1000; i++ {
		va, vb := a.Next(), b.Next()
		if va != vb {
			t.Fatalf("sample %d mismatch: %v != %v", i, va, vb)
		}
		if va < -1 || va >= 1 {
			t.Fatalf("sample %d out of range: %v", i, va)
		}
	}
}

func TestADSRStages(t *testing.T) {
	const sr = 1000
	cfg := ADSRConfig{Attack: 0.01, Decay: 0.01, Sustain: 0.5, Release: 0.02}
	e := NewADSR(cfg, sr)

	for i := 0; i < 10; i++ {
		e.Next(1, 0)
	}
	if math.Abs(float64(e.Level()-1)) > 1e-5 {
		t.Fatalf("attack peak mismatch: got=%v want=1", e.Level())
	}
	for i := 0; i < 10; i++ {
		e.Next(1, 0)
	}
	if e.Stage() != StageSustain || e.Level() != 0.5 {
		t.Fatalf("sustain mismatch: stage=%v level=%v", e.Stage(), e.Level())
	}

	n := SecondsToSamples(cfg.Release, sr)
	for i := 0; i < n-1; i++ {
		if v := e.Next(0, 0); v <= 0 {
			t.Fatalf("release reached zero early at %d", i)
		}
	}
	if v := e.Next(0, 0); v != 0 || e.Stage() != StageIdle {
		t.Fatalf("release end mismatch: level=%v stage=%v", v, e.Stage())
	}
}

func TestADSRReleaseOverrideAndRetrigger(t *testing.T) {
	const sr = 1000
	e := NewADSR(EnvOrgan, sr)
	for i := 0; i < 5; i++ {
		e.Next(1, 0)
	}
	// 0.005 s override -> 5 samples.
	for i := 0; i < 5; i++ {
		e.Next(0, 0.005)
	}
	if e.Stage() != StageIdle {
		t.Fatalf("override release stage mismatch: got=%v want=idle", e.Stage())
	}

	e.Next(2, 0)
	if e.Stage() != StageAttack {
		t.Fatalf("retrigger stage mismatch: got=%v want=attack", e.Stage())
	}
	e.Next(3, 0)
	if e.Stage() != StageAttack && e.Stage() != StageDecay {
		t.Fatalf("second retrigger stage mismatch: got=%v", e.Stage())
	}
}

func TestSVFLowpassAttenuatesHighs(t *testing.T) {
	const sr = 48000
	for _, tc := range []struct {
		freq    float32
		wantMax float64
		wantMin float64
	}{
		{freq: 100, wantMin: 0.8, wantMax: 1.2},
		{freq: 12000, wantMin: 0, wantMax: 0.1},
	} {
		t.Run(fmt.Sprintf("%.0fHz", tc.freq), func(t *testing.T) {
			f := NewSVF(sr, 1000, 0)
			o := NewOscillator(Sine, 0)
			var peak float64
			for i := 0; i < sr/2; i++ {
				lp, _, _ := f.Process(o.Next(tc.freq, sr))
				if i > sr/4 && math.Abs(float64(lp)) > peak {
					peak = math.Abs(float64(lp))
				}
			}
			if peak < tc.wantMin || peak > tc.wantMax {
				t.Fatalf("peak mismatch: got=%v want in [%v,%v]", peak, tc.wantMin, tc.wantMax)
			}
		})
	}
}

func TestLFORange(t *testing.T) {
	for _, s := range []LFOShape{LFOSine, LFOTriangle, LFOSaw, LFOSquare, LFOSampleHold} {
		l := NewLFO(s, 0)
		for i := 0; i < 2000; i++ {
			v := l.Next(5, 1000)
			if v < -1 || v > 1 {
				t.Fatalf("shape %d sample %d out of range: %v", s, i, v)
			}
		}
	}
}

func TestDBConversions(t *testing.T) {
	if g := DBToGain(0); g != 1 {
		t.Fatalf("0 dB mismatch: got=%v want=1", g)
	}
	if db := GainToDB(0); db != -120 {
		t.Fatalf("floor mismatch: got=%v want=-120", db)
	}
	if db := GainToDB(DBToGain(-6)); math.Abs(float64(db+6)) > 1e-4 {
		t.Fatalf("round trip mismatch: got=%v want=-6", db)
	}
}
