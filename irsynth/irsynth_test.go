package irsynth

import (
	"math"
	"testing"
)

func TestGenerateEveryKind(t *testing.T) {
	for _, kind := range []Kind{Room, Hall, Plate} {
		t.Run(kind.String(), func(t *testing.T) {
			cfg := DefaultConfig(kind, 16000)
			cfg.DurationS = 0.3
			cfg.Modes = 48
			cfg.NormalizePeak = 0.8

			l, r, err := Generate(cfg)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if len(l) != cfg.Length() || len(r) != len(l) {
				t.Fatalf("unexpected output lengths: L=%d R=%d want=%d", len(l), len(r), cfg.Length())
			}
			peak := 0.0
			energy := 0.0
			for i := range l {
				if math.IsNaN(float64(l[i])) || math.IsInf(float64(l[i]), 0) || math.IsNaN(float64(r[i])) || math.IsInf(float64(r[i]), 0) {
					t.Fatalf("non-finite sample at %d", i)
				}
				peak = math.Max(peak, math.Max(math.Abs(float64(l[i])), math.Abs(float64(r[i]))))
				energy += float64(l[i]*l[i] + r[i]*r[i])
			}
			if energy <= 1e-8 {
				t.Fatalf("expected non-zero energy")
			}
			if math.Abs(peak-0.8) > 1e-3 {
				t.Fatalf("normalization peak mismatch: got=%.6f want=0.8", peak)
			}
		})
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	cfg := DefaultConfig(Hall, 16000)
	cfg.DurationS = 0.2
	cfg.Seed = 99

	l1, r1, err := Generate(cfg)
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	l2, r2, err := Generate(cfg)
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	for i := range l1 {
		if l1[i] != l2[i] || r1[i] != r2[i] {
			t.Fatalf("non-deterministic output at index %d", i)
		}
	}

	cfg.Seed = 100
	l3, _, err := Generate(cfg)
	if err != nil {
		t.Fatalf("third Generate: %v", err)
	}
	same := true
	for i := range l1 {
		if l1[i] != l3[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced identical output")
	}
}

func TestPreDelayIsSilent(t *testing.T) {
	cfg := DefaultConfig(Hall, 16000)
	cfg.DurationS = 0.2
	l, r, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	d := int(cfg.PreDelayS * float64(cfg.SampleRate))
	for i := 0; i < d; i++ {
		if l[i] != 0 || r[i] != 0 {
			t.Fatalf("sample %d inside pre-delay is non-zero: (%v,%v)", i, l[i], r[i])
		}
	}
	if l[d] == 0 {
		t.Fatalf("direct impulse missing at %d", d)
	}
}

func TestHallDecaysSlowerThanRoom(t *testing.T) {
	tailEnergy := func(kind Kind) float64 {
		cfg := DefaultConfig(kind, 16000)
		cfg.DurationS = 1.0
		cfg.FadeOutS = 0
		l, _, err := Generate(cfg)
		if err != nil {
			t.Fatalf("Generate(%s): %v", kind, err)
		}
		e := 0.0
		for _, v := range l[len(l)/2:] {
			e += float64(v * v)
		}
		return e
	}
	if room, hall := tailEnergy(Room), tailEnergy(Hall); hall <= room {
		t.Fatalf("hall tail not longer than room: hall=%g room=%g", hall, room)
	}
}

func TestPlateEigenfreqsSortedAndBounded(t *testing.T) {
	freqs := plateEigenfreqs(60, 8000, 64, 1.4, 1.0)
	if len(freqs) != 64 {
		t.Fatalf("mode count mismatch: got=%d want=64", len(freqs))
	}
	if math.Abs(freqs[0]-60) > 1e-9 {
		t.Fatalf("fundamental mismatch: got=%v want=60", freqs[0])
	}
	for i := 1; i < len(freqs); i++ {
		if freqs[i] < freqs[i-1] || freqs[i] > 8000 {
			t.Fatalf("mode %d out of order or range: %v", i, freqs[i])
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sample rate", func(c *Config) { c.SampleRate = 4000 }},
		{"duration", func(c *Config) { c.DurationS = 0 }},
		{"pre-delay", func(c *Config) { c.PreDelayS = c.DurationS }},
		{"brightness", func(c *Config) { c.Brightness = 0 }},
		{"decay", func(c *Config) { c.HighDecayS = -1 }},
		{"kind", func(c *Config) { c.Kind = Kind(9) }},
		{"peak", func(c *Config) { c.NormalizePeak = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig(Room, 48000)
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	plate := DefaultConfig(Plate, 48000)
	plate.Modes = 0
	if err := plate.Validate(); err == nil {
		t.Fatalf("expected plate mode validation error")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Room, Hall, Plate} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("cathedral"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
