package analysis

import (
	"math"

	"github.com/cwbudde/algo-rack/param"
)

// DefaultWindow is the number of frames a LevelMeter integrates before it
// publishes a reading.
const DefaultWindow = 1024

// Levels is a published stereo level reading.
type Levels struct {
	PeakL float32 `json:"peak_l"`
	PeakR float32 `json:"peak_r"`
	RMSL  float32 `json:"rms_l"`
	RMSR  float32 `json:"rms_r"`
}

// Peak returns the larger channel peak.
func (l Levels) Peak() float32 {
	if l.PeakL > l.PeakR {
		return l.PeakL
	}
	return l.PeakR
}

// RMS returns the larger channel RMS.
func (l Levels) RMS() float32 {
	if l.RMSL > l.RMSR {
		return l.RMSL
	}
	return l.RMSR
}

// LevelMeter integrates peak and RMS over fixed windows of frames. Add and
// AddBlock must be called from a single goroutine; Levels may be called from
// any goroutine.
type LevelMeter struct {
	window int

	n            int
	peakL, peakR float32
	sumL, sumR   float64

	pubPeakL, pubPeakR param.Shared
	pubRMSL, pubRMSR   param.Shared
}

// NewLevelMeter creates a meter publishing every window frames. window <= 0
// uses DefaultWindow.
func NewLevelMeter(window int) *LevelMeter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &LevelMeter{window: window}
}

// Window returns the integration length in frames.
func (m *LevelMeter) Window() int {
	return m.window
}

// Add accumulates one frame.
func (m *LevelMeter) Add(l, r float32) {
	al, ar := abs32(l), abs32(r)
	if al > m.peakL {
		m.peakL = al
	}
	if ar > m.peakR {
		m.peakR = ar
	}
	m.sumL += float64(l) * float64(l)
	m.sumR += float64(r) * float64(r)
	m.n++
	if m.n >= m.window {
		m.publish()
	}
}

// AddBlock accumulates a block of frames. The slices must have equal length.
func (m *LevelMeter) AddBlock(left, right []float32) {
	for i := range left {
		m.Add(left[i], right[i])
	}
}

// Flush publishes the partial window, if any.
func (m *LevelMeter) Flush() {
	if m.n > 0 {
		m.publish()
	}
}

func (m *LevelMeter) publish() {
	m.pubPeakL.Store(m.peakL)
	m.pubPeakR.Store(m.peakR)
	m.pubRMSL.Store(float32(math.Sqrt(m.sumL / float64(m.n))))
	m.pubRMSR.Store(float32(math.Sqrt(m.sumR / float64(m.n))))
	m.n = 0
	m.peakL, m.peakR = 0, 0
	m.sumL, m.sumR = 0, 0
}

// Levels returns the last published reading.
func (m *LevelMeter) Levels() Levels {
	return Levels{
		PeakL: m.pubPeakL.Load(),
		PeakR: m.pubPeakR.Load(),
		RMSL:  m.pubRMSL.Load(),
		RMSR:  m.pubRMSR.Load(),
	}
}

// Reset clears the accumulators and the published reading.
func (m *LevelMeter) Reset() {
	m.n = 0
	m.peakL, m.peakR = 0, 0
	m.sumL, m.sumR = 0, 0
	m.pubPeakL.Store(0)
	m.pubPeakR.Store(0)
	m.pubRMSL.Store(0)
	m.pubRMSR.Store(0)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
