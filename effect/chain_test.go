package effect

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/cwbudde/algo-rack/catalog"
	"github.com/cwbudde/algo-rack/param"
)

func newTestChain(t *testing.T, opts ...Option) *Chain {
	t.Helper()
	return NewChain(newTestRegistry(), opts...)
}

func mustAdd(t *testing.T, c *Chain, name string, params param.Values) uuid.UUID {
	t.Helper()
	id, err := c.Add(name, params)
	if err != nil {
		t.Fatalf("add %q: %v", name, err)
	}
	return id
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func wantIndexError(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("error mismatch: got=%v want=%v", err, ErrIndexOutOfRange)
	}
}

func TestEmptyChainIsIdentity(t *testing.T) {
	c := newTestChain(t)
	for _, x := range noise(64) {
		if l, r := c.Process(x, -x); l != x || r != -x {
			t.Fatalf("frame mismatch: got=(%v,%v) want=(%v,%v)", l, r, x, -x)
		}
	}

	left, right := noise(32), noise(32)
	wantL := append([]float32(nil), left...)
	wantR := append([]float32(nil), right...)
	c.ProcessBlock(left, right)
	if !slices.Equal(left, wantL) || !slices.Equal(right, wantR) {
		t.Fatalf("empty chain changed the block")
	}
}

func TestAllBypassedChainIsIdentity(t *testing.T) {
	c := newTestChain(t)
	for _, name := range []string{"distortion", "lpf", "delay", "chorus"} {
		mustAdd(t, c, name, nil)
	}
	for i := 0; i < c.Len(); i++ {
		mustOK(t, c.Bypass(i, true))
	}
	for _, x := range noise(256) {
		if l, r := c.Process(x, 0.5*x); l != x || r != 0.5*x {
			t.Fatalf("frame mismatch: got=(%v,%v) want=(%v,%v)", l, r, x, 0.5*x)
		}
	}
}

func TestChainBypassWhole(t *testing.T) {
	c := newTestChain(t)
	mustAdd(t, c, "gain", param.Values{"gain": 0})

	if l, _ := c.Process(1, 1); l != 0 {
		t.Fatalf("zero gain mismatch: got=%v want=0", l)
	}

	c.SetBypassed(true)
	if !c.Bypassed() {
		t.Fatalf("chain not bypassed")
	}
	if l, r := c.Process(1, 1); l != 1 || r != 1 {
		t.Fatalf("bypassed chain mismatch: got=(%v,%v) want=(1,1)", l, r)
	}
}

func TestBypassOutOfRange(t *testing.T) {
	c := newTestChain(t)
	for i := 0; i < 2; i++ {
		mustAdd(t, c, "gain", nil)
	}
	err := c.Bypass(5, true)
	wantIndexError(t, err)

	var ie *IndexOutOfRangeError
	if !errors.As(err, &ie) {
		t.Fatalf("error type mismatch: got=%T", err)
	}
	if ie.Index != 5 || ie.Len != 2 {
		t.Fatalf("error fields mismatch: got=%+v want index=5 len=2", ie)
	}
	if got, want := err.Error(), "chain index 5 out of range [0, 2)"; got != want {
		t.Fatalf("message mismatch: got=%q want=%q", got, want)
	}

	wantIndexError(t, c.Bypass(-1, true))
	wantIndexError(t, c.Mute(2, true))
	wantIndexError(t, c.Remove(2))
	wantIndexError(t, c.SetParam(3, "gain", 1))
	if c.IsBypassed(7) {
		t.Fatalf("out of range entry reported bypassed")
	}
}

func TestBypassIsIdempotent(t *testing.T) {
	c := newTestChain(t)
	mustAdd(t, c, "gain", param.Values{"gain": 0.5})

	mustOK(t, c.Bypass(0, true))
	mustOK(t, c.Bypass(0, true))
	if !c.IsBypassed(0) {
		t.Fatalf("entry not bypassed")
	}
	if l, _ := c.Process(1, 1); l != 1 {
		t.Fatalf("bypassed output mismatch: got=%v want=1", l)
	}

	mustOK(t, c.Bypass(0, false))
	mustOK(t, c.Bypass(0, false))
	if c.IsBypassed(0) {
		t.Fatalf("entry still bypassed")
	}
	if l, _ := c.Process(1, 1); l != 0.5 {
		t.Fatalf("active output mismatch: got=%v want=0.5", l)
	}
}

func TestGainChainUnity(t *testing.T) {
	c := newTestChain(t)
	mustAdd(t, c, "gain", param.Values{"gain": 0.5})
	mustAdd(t, c, "gain", param.Values{"gain": 2})

	for i := 0; i < 16; i++ {
		if l, r := c.Process(1, 1); l != 1 || r != 1 {
			t.Fatalf("frame %d mismatch: got=(%v,%v) want=(1,1)", i, l, r)
		}
	}
}

func TestMuteOutputsSilence(t *testing.T) {
	c := newTestChain(t)
	mustAdd(t, c, "gain", nil)
	mustAdd(t, c, "dc_blocker", nil)
	mustOK(t, c.Mute(0, true))
	if !c.IsMuted(0) {
		t.Fatalf("entry not muted")
	}

	if l, r := c.Process(1, 1); l != 0 || r != 0 {
		t.Fatalf("muted output mismatch: got=(%v,%v) want=(0,0)", l, r)
	}

	left, right := []float32{1, 1, 1}, []float32{1, 1, 1}
	c.ProcessBlock(left, right)
	if !slices.Equal(left, []float32{0, 0, 0}) || !slices.Equal(right, []float32{0, 0, 0}) {
		t.Fatalf("muted block mismatch: got=%v/%v", left, right)
	}
}

func TestProcessBlockMatchesProcess(t *testing.T) {
	names := []string{"lpf", "delay", "compressor", "tremolo"}
	a, b := newTestChain(t), newTestChain(t)
	for _, n := range names {
		mustAdd(t, a, n, nil)
		mustAdd(t, b, n, nil)
	}
	in := noise(512)
	left := append([]float32(nil), in...)
	right := append([]float32(nil), in...)
	a.ProcessBlock(left, right)
	for i, x := range in {
		l, r := b.Process(x, x)
		if !near(float64(l), float64(left[i]), 1e-6) || !near(float64(r), float64(right[i]), 1e-6) {
			t.Fatalf("frame %d mismatch: got=(%v,%v) want=(%v,%v)", i, left[i], right[i], l, r)
		}
	}
}

func TestProcessBlockUsesShorterSlice(t *testing.T) {
	c := newTestChain(t)
	mustAdd(t, c, "gain", param.Values{"gain": 2})
	left, right := []float32{1, 1, 1}, []float32{1, 1}
	c.ProcessBlock(left, right)
	if !slices.Equal(left, []float32{2, 2, 1}) || !slices.Equal(right, []float32{2, 2}) {
		t.Fatalf("block mismatch: got=%v/%v want=[2 2 1]/[2 2]", left, right)
	}
}

func TestProcessSidechainRoutesKey(t *testing.T) {
	c := newTestChain(t)
	mustAdd(t, c, "gain", param.Values{"gain": 0.5})
	mustAdd(t, c, "sidechain_gate", nil)

	if l, r := c.Process(1, 1); l != 0.5 || r != 0.5 {
		t.Fatalf("unkeyed chain mismatch: got=(%v,%v) want=(0.5,0.5)", l, r)
	}
	for i := 0; i < 4000; i++ {
		c.ProcessSidechain(1, 1, 0, 0)
	}
	if l, _ := c.ProcessSidechain(1, 1, 0, 0); l != 0 {
		t.Fatalf("silent key left gate open: got=%v want=0", l)
	}
	var l float32
	for i := 0; i < 4000; i++ {
		l, _ = c.ProcessSidechain(1, 1, 0.5, 0.5)
	}
	if !near(float64(l), 0.5, 1e-3) {
		t.Fatalf("keyed gate mismatch: got=%v want=0.5", l)
	}

	mustOK(t, c.Bypass(1, true))
	if l, _ := c.ProcessSidechain(1, 1, 0, 0); l != 0.5 {
		t.Fatalf("bypassed keyed entry mismatch: got=%v want=0.5", l)
	}
	mustOK(t, c.Mute(0, true))
	if l, r := c.ProcessSidechain(1, 1, 1, 1); l != 0 || r != 0 {
		t.Fatalf("muted keyed chain mismatch: got=(%v,%v) want=(0,0)", l, r)
	}
}

func TestInsertMoveRemove(t *testing.T) {
	c := newTestChain(t)
	for _, n := range []string{"gain", "pan", "lpf"} {
		mustAdd(t, c, n, nil)
	}
	_, err := c.Insert(1, "hpf", nil)
	mustOK(t, err)
	wantNames(t, c, "gain", "hpf", "pan", "lpf")

	mustOK(t, c.Move(0, 3))
	wantNames(t, c, "hpf", "pan", "lpf", "gain")
	mustOK(t, c.Move(3, 1))
	wantNames(t, c, "hpf", "gain", "pan", "lpf")
	mustOK(t, c.Move(2, 2))
	wantIndexError(t, c.Move(0, 4))

	mustOK(t, c.Remove(0))
	wantNames(t, c, "gain", "pan", "lpf")

	_, err = c.Insert(3, "notch", nil)
	mustOK(t, err)
	_, err = c.Insert(9, "notch", nil)
	wantIndexError(t, err)

	if _, err = c.Add("__nonexistent__", nil); !errors.Is(err, catalog.ErrUnknownPreset) {
		t.Fatalf("error mismatch: got=%v want=%v", err, catalog.ErrUnknownPreset)
	}
	if c.Len() != 4 {
		t.Fatalf("len mismatch: got=%d want=4", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("len after clear mismatch: got=%d want=0", c.Len())
	}
}

func TestRemoveReleasesEntry(t *testing.T) {
	c := newTestChain(t)
	for _, n := range []string{"gain", "pan", "lpf"} {
		mustAdd(t, c, n, nil)
	}
	mustOK(t, c.Remove(1))
	wantNames(t, c, "gain", "lpf")
	if tail := c.entries[len(c.entries):cap(c.entries)]; tail[0] != nil {
		t.Fatalf("removed entry still referenced past len: %q", tail[0].name)
	}
}

func chainNames(c *Chain) []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.Name(i)
	}
	return out
}

func wantNames(t *testing.T, c *Chain, want ...string) {
	t.Helper()
	if got := chainNames(c); !slices.Equal(got, want) {
		t.Fatalf("chain order mismatch: got=%v want=%v", got, want)
	}
}

func TestEntryIDs(t *testing.T) {
	c := newTestChain(t)
	a := mustAdd(t, c, "gain", nil)
	b := mustAdd(t, c, "lpf", nil)
	if a == uuid.Nil || a == b {
		t.Fatalf("ids not unique: a=%v b=%v", a, b)
	}
	if c.ID(0) != a || c.IndexOf(b) != 1 {
		t.Fatalf("id lookup mismatch: id0=%v index(b)=%d", c.ID(0), c.IndexOf(b))
	}
	if c.IndexOf(uuid.New()) != -1 || c.ID(5) != uuid.Nil {
		t.Fatalf("unknown id lookup mismatch")
	}

	mustOK(t, c.SetParamID(b, "cutoff", 500))
	ctl, err := c.Controls(1)
	mustOK(t, err)
	if v, _ := ctl.Get("cutoff"); v != 500 {
		t.Fatalf("cutoff mismatch: got=%v want=500", v)
	}

	mustOK(t, c.BypassID(a, true))
	if !c.IsBypassed(0) {
		t.Fatalf("entry not bypassed by id")
	}
	mustOK(t, c.MoveID(a, 1))
	wantNames(t, c, "lpf", "gain")
	mustOK(t, c.RemoveID(b))
	wantNames(t, c, "gain")

	if err := c.RemoveID(b); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("error mismatch: got=%v want=%v", err, ErrEntryNotFound)
	}
	if err := c.BypassID(uuid.New(), true); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("error mismatch: got=%v want=%v", err, ErrEntryNotFound)
	}
}

func TestSetParamStrictness(t *testing.T) {
	lenient := newTestChain(t)
	mustAdd(t, lenient, "gain", param.Values{"bogus": 1})
	mustOK(t, lenient.SetParam(0, "bogus", 1))

	strict := newTestChain(t, WithStrictParams(true))
	if _, err := strict.Add("gain", param.Values{"bogus": 1}); !errors.Is(err, param.ErrUnknownParameter) {
		t.Fatalf("error mismatch: got=%v want=%v", err, param.ErrUnknownParameter)
	}
	mustAdd(t, strict, "gain", nil)
	if err := strict.SetParam(0, "bogus", 1); !errors.Is(err, param.ErrUnknownParameter) {
		t.Fatalf("error mismatch: got=%v want=%v", err, param.ErrUnknownParameter)
	}
	mustOK(t, strict.SetParam(0, "gain", 2))
}

func TestLatency(t *testing.T) {
	c := newTestChain(t)
	mustAdd(t, c, "gain", nil)
	if c.Latency() != 0 {
		t.Fatalf("gain latency mismatch: got=%d want=0", c.Latency())
	}

	mustAdd(t, c, "room", nil)
	mustAdd(t, c, "plate", nil)
	if got, want := c.Latency(), 2*ConvolutionPartSize; got != want {
		t.Fatalf("chain latency mismatch: got=%d want=%d", got, want)
	}

	lat, err := c.EffectLatency(1)
	mustOK(t, err)
	if lat != ConvolutionPartSize {
		t.Fatalf("entry latency mismatch: got=%d want=%d", lat, ConvolutionPartSize)
	}

	mustOK(t, c.Bypass(2, true))
	if got := c.Latency(); got != ConvolutionPartSize {
		t.Fatalf("latency with bypass mismatch: got=%d want=%d", got, ConvolutionPartSize)
	}
	mustOK(t, c.Mute(1, true))
	if got := c.Latency(); got != ConvolutionPartSize {
		t.Fatalf("latency with mute mismatch: got=%d want=%d", got, ConvolutionPartSize)
	}

	c.SetBypassed(true)
	if c.Latency() != 0 {
		t.Fatalf("bypassed chain latency mismatch: got=%d want=0", c.Latency())
	}
}

func TestMetering(t *testing.T) {
	c := newTestChain(t, WithMetering(true))
	if !c.Metering() {
		t.Fatalf("metering disabled")
	}
	mustAdd(t, c, "gain", param.Values{"gain": 0.5})

	left := make([]float32, 1024)
	right := make([]float32, 1024)
	for i := range left {
		left[i], right[i] = 1, -1
	}
	c.ProcessBlock(left, right)

	levels := c.Levels()
	if len(levels) != 1 || levels[0].Name != "gain" {
		t.Fatalf("levels mismatch: got=%+v", levels)
	}
	if levels[0].Input.PeakL != 1 || levels[0].Input.PeakR != 1 {
		t.Fatalf("input peaks mismatch: got=(%v,%v) want=(1,1)", levels[0].Input.PeakL, levels[0].Input.PeakR)
	}
	if !near(float64(levels[0].Output.PeakL), 0.5, 1e-6) || !near(float64(levels[0].Output.RMSR), 0.5, 1e-6) {
		t.Fatalf("output levels mismatch: got=%+v", levels[0].Output)
	}

	report := c.CPUReport()
	if len(report) != 1 || report[0].Percent < 0 || c.TotalCPUPercent() < 0 {
		t.Fatalf("cpu report mismatch: got=%+v total=%v", report, c.TotalCPUPercent())
	}

	plain := newTestChain(t)
	mustAdd(t, plain, "gain", nil)
	if plain.Levels() != nil || plain.CPUReport() != nil || plain.Overloaded() {
		t.Fatalf("unmetered chain reported meters")
	}
}

func TestResetMetersAppliesOnNextProcess(t *testing.T) {
	c := newTestChain(t, WithMetering(true))
	mustAdd(t, c, "gain", nil)
	ones := func() ([]float32, []float32) {
		return constant(1024, 1), constant(1024, 1)
	}
	c.ProcessBlock(ones())

	c.ResetMeters()
	if got := c.Levels()[0].Input.PeakL; got != 1 {
		t.Fatalf("reset applied outside the audio path: peak=%v want=1", got)
	}
	c.Process(0, 0)
	if got := c.Levels()[0].Input.PeakL; got != 0 {
		t.Fatalf("peak after reset mismatch: got=%v want=0", got)
	}

	c.ProcessBlock(ones())
	c.ResetMeters()
	c.ProcessBlock([]float32{0}, []float32{0})
	if got := c.Levels()[0].Input.PeakL; got != 0 {
		t.Fatalf("block peak after reset mismatch: got=%v want=0", got)
	}
}

func TestStateRoundTrip(t *testing.T) {
	c := newTestChain(t)
	mustAdd(t, c, "gain", param.Values{"gain": 0.5})
	mustAdd(t, c, "lpf", param.Values{"cutoff": 500})
	mustOK(t, c.Bypass(0, true))
	mustOK(t, c.Mute(1, true))

	st := c.State()
	if st.Version != StateVersion || st.SampleRate != testSampleRate {
		t.Fatalf("state header mismatch: got version=%d rate=%v", st.Version, st.SampleRate)
	}
	if len(st.Effects) != 2 || st.Effects[1].Name != "lpf" || st.Effects[1].Parameters["cutoff"] != 500 {
		t.Fatalf("state effects mismatch: got=%+v", st.Effects)
	}

	other := newTestChain(t)
	mustOK(t, other.LoadState(st))
	if got := other.State(); !reflect.DeepEqual(got, st) {
		t.Fatalf("round trip mismatch: got=%+v want=%+v", got, st)
	}
	if !other.IsBypassed(0) || !other.IsMuted(1) {
		t.Fatalf("flags lost in round trip")
	}
}

func TestLoadStateFailureLeavesChain(t *testing.T) {
	logger, hook := test.NewNullLogger()
	reg := WithBuiltin(WithSampleRate(testSampleRate), WithLogger(logger))
	c := NewChain(reg)
	mustAdd(t, c, "gain", nil)
	id := c.ID(0)

	st := NewChainState(testSampleRate)
	st.Effects = []EffectState{{Name: "lpf"}, {Name: "__nonexistent__"}}
	err := c.LoadState(st)
	if !errors.Is(err, catalog.ErrUnknownPreset) {
		t.Fatalf("error mismatch: got=%v want=%v", err, catalog.ErrUnknownPreset)
	}
	if !strings.Contains(err.Error(), "effects[1]") {
		t.Fatalf("error does not name the entry: %v", err)
	}

	wantNames(t, c, "gain")
	if c.ID(0) != id {
		t.Fatalf("entry id changed: got=%v want=%v", c.ID(0), id)
	}
	if len(hook.Entries) == 0 || hook.LastEntry().Level != logrus.WarnLevel {
		t.Fatalf("load failure not logged at warn level: %+v", hook.Entries)
	}

	st = ChainState{Version: StateVersion + 1}
	if err := c.LoadState(st); err == nil {
		t.Fatalf("future state version accepted")
	}
	if c.Len() != 1 {
		t.Fatalf("len mismatch: got=%d want=1", c.Len())
	}
}

func TestLoadStateIDs(t *testing.T) {
	c := newTestChain(t)
	keep := uuid.New()
	st := NewChainState(testSampleRate)
	st.Effects = []EffectState{
		{ID: keep.String(), Name: "gain"},
		{ID: keep.String(), Name: "gain"},
		{ID: "not-a-uuid", Name: "gain"},
	}
	mustOK(t, c.LoadState(st))
	if c.ID(0) != keep {
		t.Fatalf("kept id mismatch: got=%v want=%v", c.ID(0), keep)
	}
	if c.ID(1) == keep || c.ID(2) == uuid.Nil || c.ID(1) == c.ID(2) {
		t.Fatalf("duplicate or invalid ids not replaced: %v %v", c.ID(1), c.ID(2))
	}
}
