package analysis

import (
	"time"

	"github.com/cwbudde/algo-rack/param"
)

// DefaultOverloadPercent is the load above which a CPUMeter reports overload.
const DefaultOverloadPercent = 90

// CPUMeter tracks processing time as a percentage of the real-time budget of
// the audio it processed. The reading is an exponential moving average over
// recorded blocks.
type CPUMeter struct {
	sampleRate float64
	threshold  float32
	smoothing  float32

	percent param.Shared
	peak    param.Shared
	blocks  param.Shared
}

// NewCPUMeter creates a meter for audio at sampleRate.
func NewCPUMeter(sampleRate float64) *CPUMeter {
	return &CPUMeter{
		sampleRate: sampleRate,
		threshold:  DefaultOverloadPercent,
		smoothing:  0.1,
	}
}

// SetThreshold sets the overload threshold in percent.
func (m *CPUMeter) SetThreshold(percent float32) {
	m.threshold = percent
}

// Threshold returns the overload threshold in percent.
func (m *CPUMeter) Threshold() float32 {
	return m.threshold
}

// Record adds one block of frames that took elapsed to process.
func (m *CPUMeter) Record(elapsed time.Duration, frames int) {
	if frames <= 0 || m.sampleRate <= 0 {
		return
	}
	budget := float64(frames) / m.sampleRate
	load := float32(100 * elapsed.Seconds() / budget)
	if m.blocks.Load() == 0 {
		m.percent.Store(load)
	} else {
		p := m.percent.Load()
		m.percent.Store(p + m.smoothing*(load-p))
	}
	if load > m.peak.Load() {
		m.peak.Store(load)
	}
	m.blocks.Add(1)
}

// Percent returns the smoothed load in percent of real time.
func (m *CPUMeter) Percent() float32 {
	return m.percent.Load()
}

// PeakPercent returns the highest single-block load since the last Reset.
func (m *CPUMeter) PeakPercent() float32 {
	return m.peak.Load()
}

// Overloaded reports whether the smoothed load exceeds the threshold.
func (m *CPUMeter) Overloaded() bool {
	return m.percent.Load() > m.threshold
}

// Reset clears the reading.
func (m *CPUMeter) Reset() {
	m.percent.Store(0)
	m.peak.Store(0)
	m.blocks.Store(0)
}
