package effect

import (
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-rack/param"
)

const testSampleRate = 16000

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestRegistry() *Registry {
	return WithBuiltin(WithSampleRate(testSampleRate), WithLogger(quietLogger()))
}

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

// noise returns a deterministic excitation in [-0.5, 0.5].
func noise(n int) []float32 {
	out := make([]float32, n)
	state := uint32(0x12345678)
	for i := range out {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		out[i] = float32(state)/float32(math.MaxUint32) - 0.5
	}
	return out
}

func near(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func mustResolve(t *testing.T, reg *Registry, name string, params param.Values) (Unit, *Controls) {
	t.Helper()
	u, c, err := reg.Resolve(name, params)
	if err != nil {
		t.Fatalf("resolve %q: %v", name, err)
	}
	return u, c
}
