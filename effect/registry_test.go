package effect

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/cwbudde/algo-rack/catalog"
	"github.com/cwbudde/algo-rack/param"
)

func TestBuiltinCatalogResolves(t *testing.T) {
	reg := newTestRegistry()
	if reg.Len() == 0 {
		t.Fatalf("builtin catalog empty")
	}

	for _, name := range reg.Names() {
		t.Run(name, func(t *testing.T) {
			b, ok := reg.Get(name)
			if !ok {
				t.Fatalf("builder missing")
			}
			m := b.Metadata()
			if m.Name != name || m.Description == "" {
				t.Fatalf("metadata mismatch: name=%q description=%q", m.Name, m.Description)
			}

			_, c := mustResolve(t, reg, name, nil)
			if c == nil {
				t.Fatalf("nil controls")
			}
			want := make([]string, len(m.Params))
			for i, d := range m.Params {
				want[i] = d.Name
				got, ok := c.Get(d.Name)
				if !ok {
					t.Fatalf("param %s missing", d.Name)
				}
				if got != d.Default {
					t.Fatalf("default of %s mismatch: got=%v want=%v", d.Name, got, d.Default)
				}
				if d.Default < d.Min || d.Default > d.Max {
					t.Fatalf("default of %s outside [%v,%v]: %v", d.Name, d.Min, d.Max, d.Default)
				}
			}
			if !slices.Equal(c.Names(), want) || len(c.Params) != len(m.Params) {
				t.Fatalf("control names mismatch: got=%v want=%v", c.Names(), want)
			}
		})
	}
}

func TestBuiltinCatalogNames(t *testing.T) {
	reg := newTestRegistry()
	for _, name := range []string{
		"gain", "pan", "stereo_widener", "stereo_width", "width", "dc_blocker",
		"lpf", "lowpass", "hpf", "highpass", "bpf", "bandpass", "notch", "rlpf", "rhpf", "wobble",
		"low_shelf", "high_shelf", "eq_3band", "eq3", "parametric_eq", "peq", "tilt_eq",
		"distortion", "tape_saturation", "bitcrusher", "krush", "lofi", "ring_mod",
		"compressor", "limiter", "gate", "sidechain_compressor", "sidechain_gate",
		"chorus", "flanger", "phaser", "tremolo", "vibrato", "slicer", "octaver",
		"delay", "stereo_delay", "ping_pong", "slapback", "echo",
		"reverb", "freeverb", "room", "hall", "plate", "room_reverb", "hall_reverb", "plate_reverb",
	} {
		if !reg.Contains(name) {
			t.Fatalf("builtin %q missing", name)
		}
	}
}

func TestAliasMetadataIsUnique(t *testing.T) {
	reg := newTestRegistry()
	seen := map[string]bool{}
	for _, m := range reg.List() {
		if seen[m.Name] {
			t.Fatalf("duplicate metadata name %s", m.Name)
		}
		seen[m.Name] = true
	}

	b, ok := reg.Get("lowpass")
	if !ok {
		t.Fatalf("lowpass alias missing")
	}
	m := b.Metadata()
	if m.Name != "lowpass" || !strings.Contains(m.Description, "alias of lpf") {
		t.Fatalf("alias metadata mismatch: %+v", m)
	}
}

func TestUnknownPreset(t *testing.T) {
	reg := newTestRegistry()
	if _, _, err := reg.Resolve("__nonexistent__", nil); !errors.Is(err, catalog.ErrUnknownPreset) {
		t.Fatalf("error mismatch: got=%v want=%v", err, catalog.ErrUnknownPreset)
	}
}

func TestRegisterOverwriteWarns(t *testing.T) {
	logger, hook := test.NewNullLogger()
	reg := New(WithLogger(logger))
	b := NewBuilder(Metadata{Name: "x"}, func(Context, param.Values) (Unit, *Controls, error) {
		return nil, nil, errors.New("unused")
	})
	reg.Register("x", b)
	if len(hook.Entries) != 0 {
		t.Fatalf("first register logged: %+v", hook.Entries)
	}
	reg.Register("x", b)
	if len(hook.Entries) != 1 || hook.LastEntry().Level != logrus.WarnLevel {
		t.Fatalf("overwrite warning mismatch: %+v", hook.Entries)
	}
}

func TestRegistryAlias(t *testing.T) {
	reg := newTestRegistry()
	if err := reg.Alias("vol", "gain"); err != nil {
		t.Fatalf("Alias: %v", err)
	}
	_, c := mustResolve(t, reg, "vol", param.Values{"gain": 3})
	if got, _ := c.Get("gain"); got != 3 {
		t.Fatalf("aliased gain mismatch: got=%v want=3", got)
	}

	if err := reg.Alias("broken", "__nonexistent__"); !errors.Is(err, catalog.ErrUnknownPreset) {
		t.Fatalf("error mismatch: got=%v want=%v", err, catalog.ErrUnknownPreset)
	}
	if reg.Contains("broken") {
		t.Fatalf("broken alias registered")
	}
}

func TestBuildErrorIsWrapped(t *testing.T) {
	reg := New(WithLogger(quietLogger()))
	cause := errors.New("boom")
	reg.Register("bad", NewBuilder(Metadata{Name: "bad"}, func(Context, param.Values) (Unit, *Controls, error) {
		return nil, nil, cause
	}))
	_, _, err := reg.Resolve("bad", nil)
	if !errors.Is(err, cause) {
		t.Fatalf("error mismatch: got=%v want=%v", err, cause)
	}
	if !strings.Contains(err.Error(), `build effect "bad"`) {
		t.Fatalf("error not wrapped with name: %v", err)
	}
}

func TestListByCategory(t *testing.T) {
	reg := newTestRegistry()
	dyn := reg.ListByCategory(Dynamics)
	names := make([]string, len(dyn))
	for i, m := range dyn {
		names[i] = m.Name
	}
	want := []string{"compressor", "limiter", "gate", "sidechain_compressor", "sidechain_gate"}
	if !slices.Equal(names, want) {
		t.Fatalf("dynamics mismatch: got=%v want=%v", names, want)
	}

	total := 0
	for _, cat := range Categories() {
		total += len(reg.ListByCategory(cat))
	}
	if total != reg.Len() {
		t.Fatalf("category total mismatch: got=%d want=%d", total, reg.Len())
	}
}

func TestCategoryText(t *testing.T) {
	for _, cat := range Categories() {
		b, err := cat.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", cat, err)
		}
		var back Category
		if err := back.UnmarshalText(b); err != nil || back != cat {
			t.Fatalf("category text mismatch: got=%v want=%v err=%v", back, cat, err)
		}
	}
	var c Category
	if err := c.UnmarshalText([]byte("nope")); err == nil {
		t.Fatalf("unknown category accepted")
	}
	if _, err := Category(99).MarshalText(); err == nil {
		t.Fatalf("invalid category marshaled")
	}
	if got := Category(99).String(); got != "category(99)" {
		t.Fatalf("string mismatch: got=%q want=%q", got, "category(99)")
	}
}

func TestSessionBuild(t *testing.T) {
	reg := newTestRegistry()
	_, c, err := reg.Effect("delay").Param("time", 0.3).Params(param.Values{"mix": 0.2}).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v, _ := c.Get("time"); !near(float64(v), 0.3, 1e-6) {
		t.Fatalf("time mismatch: got=%v want=0.3", v)
	}
	if v, _ := c.Get("mix"); !near(float64(v), 0.2, 1e-6) {
		t.Fatalf("mix mismatch: got=%v want=0.2", v)
	}

	// Out of range values are clamped.
	_, c, err = reg.Effect("delay").Param("time", 10).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v, _ := c.Get("time"); v != 2 {
		t.Fatalf("clamped time mismatch: got=%v want=2", v)
	}
}

func TestSessionStrict(t *testing.T) {
	reg := newTestRegistry()
	if _, _, err := reg.Effect("gain").Param("bogus", 1).Build(); err != nil {
		t.Fatalf("lenient build failed: %v", err)
	}

	_, _, err := reg.Effect("gain").Param("bogus", 1).Strict().Build()
	if !errors.Is(err, param.ErrUnknownParameter) {
		t.Fatalf("error mismatch: got=%v want=%v", err, param.ErrUnknownParameter)
	}
}

func TestControlsSet(t *testing.T) {
	c := NewControls([]param.Def{param.NewDef("mix", 0.5, 0, 1)}, param.Values{"mix": 0.25, "other": 3})
	if v, ok := c.Get("mix"); !ok || v != 0.25 {
		t.Fatalf("mix mismatch: got=%v ok=%v want=0.25", v, ok)
	}
	if _, ok := c.Get("other"); ok {
		t.Fatalf("undeclared control created")
	}

	if !c.Set("mix", 7) {
		t.Fatalf("Set mix reported missing")
	}
	if v, _ := c.Get("mix"); v != 1 {
		t.Fatalf("clamped mix mismatch: got=%v want=1", v)
	}
	if c.Set("other", 1) {
		t.Fatalf("Set on undeclared control succeeded")
	}

	if err := c.SetStrict("other", 1); !errors.Is(err, param.ErrUnknownParameter) {
		t.Fatalf("error mismatch: got=%v want=%v", err, param.ErrUnknownParameter)
	}
	if c.Param("other") != nil {
		t.Fatalf("Param on undeclared control not nil")
	}
	if snap := c.Snapshot(); len(snap) != 1 || snap["mix"] != 1 {
		t.Fatalf("snapshot mismatch: got=%v want=map[mix:1]", snap)
	}
}
