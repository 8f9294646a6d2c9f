package wavio

import (
	"math"
	"path/filepath"
	"testing"
)

func TestStereoRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.wav")
	const n = 256
	left := make([]float32, n)
	right := make([]float32, n)
	for i := range n {
		left[i] = 0.5 * float32(math.Sin(2*math.Pi*float64(i)/32))
		right[i] = -0.25
	}
	if err := WriteStereo(path, left, right, 22050); err != nil {
		t.Fatalf("WriteStereo: %v", err)
	}
	gotL, gotR, sr, err := ReadStereo(path)
	if err != nil {
		t.Fatalf("ReadStereo: %v", err)
	}
	if sr != 22050 {
		t.Fatalf("sample rate mismatch: got=%d want=22050", sr)
	}
	if len(gotL) != n || len(gotR) != n {
		t.Fatalf("length mismatch: got=%d/%d want=%d", len(gotL), len(gotR), n)
	}
	for i := range n {
		if math.Abs(float64(gotL[i]-left[i])) > 1e-3 || math.Abs(float64(gotR[i]-right[i])) > 1e-3 {
			t.Fatalf("sample %d mismatch: got=(%f,%f) want=(%f,%f)", i, gotL[i], gotR[i], left[i], right[i])
		}
	}
}

func TestMonoReadsAsBothChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	data := []float32{0, 0.5, -0.5, 0.25}
	if err := WriteMono(path, data, 8000); err != nil {
		t.Fatalf("WriteMono: %v", err)
	}
	left, right, _, err := ReadStereo(path)
	if err != nil {
		t.Fatalf("ReadStereo: %v", err)
	}
	for i := range data {
		if left[i] != right[i] {
			t.Fatalf("channel mismatch at %d: %f vs %f", i, left[i], right[i])
		}
	}
}

func TestReadStereoAtResamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ir.wav")
	left := make([]float32, 400)
	left[0] = 0.8
	if err := WriteStereo(path, left, left, 8000); err != nil {
		t.Fatalf("WriteStereo: %v", err)
	}
	l, r, err := ReadStereoAt(path, 16000)
	if err != nil {
		t.Fatalf("ReadStereoAt: %v", err)
	}
	if len(l) < 600 || len(l) > 1000 || len(r) != len(l) {
		t.Fatalf("resampled length mismatch: got=%d/%d want about 800", len(l), len(r))
	}
}

func TestWriteRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	if err := WriteStereo(filepath.Join(dir, "a.wav"), []float32{0}, nil, 8000); err == nil {
		t.Fatalf("expected length mismatch error")
	}
	if err := WriteInterleaved(filepath.Join(dir, "b.wav"), nil, 0, 8000); err == nil {
		t.Fatalf("expected channel error")
	}
	if err := WriteMono(filepath.Join(dir, "c.wav"), nil, 0); err == nil {
		t.Fatalf("expected sample rate error")
	}
	if _, _, _, err := ReadStereo(filepath.Join(dir, "missing.wav")); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestResampleSameRate(t *testing.T) {
	in := []float32{1, 2, 3}
	out, err := Resample(in, 48000, 48000)
	if err != nil || &out[0] != &in[0] {
		t.Fatalf("same-rate resample should return input: err=%v", err)
	}
	if _, err := Resample(in, 0, 48000); err == nil {
		t.Fatalf("expected rate error")
	}
}

func TestStats(t *testing.T) {
	peak, rms := Stats([]float32{1, -1}, []float32{-1, 1})
	if peak != 1 || math.Abs(rms-1) > 1e-12 {
		t.Fatalf("stats mismatch: peak=%f rms=%f", peak, rms)
	}
	if p, r := Stats(nil, nil); p != 0 || r != 0 {
		t.Fatalf("empty stats mismatch: %f %f", p, r)
	}
	if got := PeakDBFS(0.5); math.Abs(got+6.0206) > 1e-3 {
		t.Fatalf("PeakDBFS mismatch: got=%f", got)
	}
}
