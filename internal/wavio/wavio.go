// Package wavio reads and writes the 16-bit PCM WAV files used by the rack
// command-line tools.
package wavio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

const bitDepth = 16

// ReadStereo reads a mono or stereo WAV file. Mono files are duplicated to
// both channels; channels beyond the second are ignored.
func ReadStereo(path string) (left, right []float32, sampleRate int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, nil, 0, fmt.Errorf("invalid wav sample-rate: %d", buf.Format.SampleRate)
	}

	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	if frames == 0 {
		return nil, nil, 0, fmt.Errorf("empty wav data: %s", path)
	}
	left = make([]float32, frames)
	right = make([]float32, frames)
	for i := range frames {
		left[i] = buf.Data[i*ch]
		if ch == 1 {
			right[i] = left[i]
		} else {
			right[i] = buf.Data[i*ch+1]
		}
	}
	return left, right, buf.Format.SampleRate, nil
}

// ReadStereoAt reads path and resamples both channels to sampleRate.
func ReadStereoAt(path string, sampleRate int) (left, right []float32, err error) {
	left, right, rate, err := ReadStereo(path)
	if err != nil {
		return nil, nil, err
	}
	if left, err = Resample(left, rate, sampleRate); err != nil {
		return nil, nil, err
	}
	if right, err = Resample(right, rate, sampleRate); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// Resample converts in from fromRate to toRate. Equal rates return in.
func Resample(in []float32, fromRate, toRate int) ([]float32, error) {
	if fromRate == toRate {
		return in, nil
	}
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("invalid resample rates %d -> %d", fromRate, toRate)
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, fmt.Errorf("create resampler: %w", err)
	}
	src := make([]float64, len(in))
	for i, v := range in {
		src[i] = float64(v)
	}
	res := r.Process(src)
	out := make([]float32, len(res))
	for i, v := range res {
		out[i] = float32(v)
	}
	return out, nil
}

// WriteStereo writes left and right as a 16-bit stereo file, creating parent
// directories as needed.
func WriteStereo(path string, left, right []float32, sampleRate int) error {
	if len(left) != len(right) {
		return fmt.Errorf("left/right length mismatch")
	}
	data := make([]float32, len(left)*2)
	for i := range left {
		data[i*2] = left[i]
		data[i*2+1] = right[i]
	}
	return WriteInterleaved(path, data, 2, sampleRate)
}

// WriteMono writes a 16-bit mono file.
func WriteMono(path string, data []float32, sampleRate int) error {
	return WriteInterleaved(path, data, 1, sampleRate)
}

// WriteInterleaved writes interleaved samples with channels channels.
func WriteInterleaved(path string, samples []float32, channels, sampleRate int) error {
	if channels < 1 {
		return fmt.Errorf("channels must be >= 1, got %d", channels)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0, got %d", sampleRate)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Stats returns the peak absolute value and the RMS over both channels.
func Stats(left, right []float32) (peak, rms float64) {
	n := min(len(left), len(right))
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for i := range n {
		lv := float64(left[i])
		rv := float64(right[i])
		peak = math.Max(peak, math.Max(math.Abs(lv), math.Abs(rv)))
		sum += lv*lv + rv*rv
	}
	return peak, math.Sqrt(sum / float64(2*n))
}

// PeakDBFS converts a linear peak to dBFS, floored at -120.
func PeakDBFS(peak float64) float64 {
	if peak <= 1e-6 {
		return -120
	}
	return 20 * math.Log10(peak)
}
