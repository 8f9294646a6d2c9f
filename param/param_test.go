package param

import (
	"errors"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"
	"testing"
)

func TestSharedLoadStore(t *testing.T) {
	s := NewShared(0.25)
	if got := s.Load(); got != 0.25 {
		t.Fatalf("initial value mismatch: got=%v want=0.25", got)
	}

	s.Store(-3.5)
	if got := s.Load(); got != -3.5 {
		t.Fatalf("stored value mismatch: got=%v want=-3.5", got)
	}

	var zero Shared
	if got := zero.Load(); got != 0 {
		t.Fatalf("zero value mismatch: got=%v want=0", got)
	}
}

func TestSharedConcurrentAdd(t *testing.T) {
	s := NewShared(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := s.Load(); got != 8000 {
		t.Fatalf("sum mismatch: got=%v want=8000", got)
	}
}

func TestSharedConcurrentStoreNeverTears(t *testing.T) {
	s := NewShared(1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10000; i++ {
			if i%2 == 0 {
				s.Store(1)
			} else {
				s.Store(-1)
			}
		}
	}()
	for i := 0; i < 10000; i++ {
		if v := s.Load(); v != 1 && v != -1 {
			t.Fatalf("torn read: %v", v)
		}
	}
	<-done
}

func TestDefClampNormalize(t *testing.T) {
	d := NewDef("cutoff", 1000, 20, 20000)

	for _, tc := range []struct{ in, want float32 }{{5, 20}, {50000, 20000}, {440, 440}} {
		if got := d.Clamp(tc.in); got != tc.want {
			t.Fatalf("Clamp(%v) mismatch: got=%v want=%v", tc.in, got, tc.want)
		}
	}

	if d.Normalize(20) != 0 || d.Normalize(20000) != 1 {
		t.Fatalf("normalize bounds mismatch: got=(%v,%v) want=(0,1)", d.Normalize(20), d.Normalize(20000))
	}
	if got := d.Denormalize(d.Normalize(10010)); math.Abs(float64(got)-10010) > 0.5 {
		t.Fatalf("normalize round trip mismatch: got=%v want=10010", got)
	}
	if got := d.Denormalize(2); got != 20000 {
		t.Fatalf("Denormalize(2) mismatch: got=%v want=20000", got)
	}

	open := Def{Name: "x", Min: 1, Max: 0}
	if got := open.Clamp(7); got != 7 {
		t.Fatalf("open range clamp mismatch: got=%v want=7", got)
	}
}

func TestValuesResolve(t *testing.T) {
	defs := []Def{
		NewDef("mix", 0.5, 0, 1),
		NewDef("time", 0.3, 0.01, 2),
	}
	got := Values{"mix": 3, "bogus": 1}.Resolve(defs)

	if want := (Values{"mix": 1, "time": 0.3}); !maps.Equal(got, want) {
		t.Fatalf("resolve mismatch: got=%v want=%v", got, want)
	}
	if unknown := (Values{"mix": 3, "bogus": 1}).Unknown(defs); !slices.Equal(unknown, []string{"bogus"}) {
		t.Fatalf("unknown mismatch: got=%v want=[bogus]", unknown)
	}

	var nilValues Values
	if got := nilValues.Get("x", 9); got != 9 {
		t.Fatalf("nil Get mismatch: got=%v want=9", got)
	}
	if nilValues.Clone() == nil {
		t.Fatalf("nil Clone returned nil")
	}
}

func TestNewSetSnapshot(t *testing.T) {
	defs := []Def{NewDef("gain", 1, 0, 4)}
	set := NewSet(defs, Values{"gain": 2})
	if len(set) != 1 {
		t.Fatalf("set len mismatch: got=%d want=1", len(set))
	}

	set["gain"].Store(3)
	if got, want := set.Snapshot(), (Values{"gain": 3}); !maps.Equal(got, want) {
		t.Fatalf("snapshot mismatch: got=%v want=%v", got, want)
	}
}

func TestCheckKnown(t *testing.T) {
	defs := []Def{NewDef("gain", 1, 0, 4)}
	if err := CheckKnown("gain", defs, Values{"gain": 1}); err != nil {
		t.Fatalf("known value rejected: %v", err)
	}

	err := CheckKnown("gain", defs, Values{"gian": 1})
	if !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("error mismatch: got=%v want=%v", err, ErrUnknownParameter)
	}

	var upe *UnknownParameterError
	if !errors.As(err, &upe) {
		t.Fatalf("error type mismatch: got=%T", err)
	}
	if upe.Name != "gian" || !strings.Contains(err.Error(), `"gain"`) {
		t.Fatalf("error detail mismatch: name=%q msg=%q", upe.Name, err.Error())
	}
}

func TestSmoothedApproachesTarget(t *testing.T) {
	target := NewShared(0)
	s := NewSmoothed(target, 0.01, 48000)
	if got := s.Next(); got != 0 {
		t.Fatalf("initial value mismatch: got=%v want=0", got)
	}

	target.Store(1)
	if first := s.Next(); first <= 0 || first >= 1 {
		t.Fatalf("first step not between 0 and 1: %v", first)
	}

	for i := 0; i < 48000; i++ {
		s.Next()
	}
	if got := s.Value(); got != 1 {
		t.Fatalf("settled value mismatch: got=%v want=1", got)
	}
}

func TestSmoothedDisabled(t *testing.T) {
	target := NewShared(2)
	s := NewSmoothed(target, 0, 48000)
	target.Store(5)
	if got := s.Next(); got != 5 {
		t.Fatalf("unsmoothed value mismatch: got=%v want=5", got)
	}
}
