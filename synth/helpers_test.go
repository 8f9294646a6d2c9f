package synth

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-rack/param"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// dcUnit outputs its amp while the gate is open.
type dcUnit struct {
	c *VoiceControls
}

func (u *dcUnit) Tick() (float32, float32) {
	if u.c.Gate.Load() > 0 {
		a := u.c.Amp.Load()
		return a, a
	}
	return 0, 0
}

func (u *dcUnit) Reset() {}

func dcBuilder(release float32) Builder {
	meta := Metadata{
		Name:     "dc",
		Category: Basic,
		Params: []param.Def{
			param.NewDef(ParamAmp, 1, 0, 1),
			param.NewDef(ParamRelease, release, 0, 1),
		},
	}
	return NewBuilder(meta, func(_ Context, freq float32, p param.Values) (Unit, *VoiceControls, error) {
		c := NewVoiceControls(freq, meta.Params, p)
		return &dcUnit{c: c}, c, nil
	})
}

func newTestRegistry() *Registry {
	r := WithBuiltin(WithSampleRate(8000), WithLogger(quietLogger()))
	r.Register("dc", dcBuilder(0.01))
	return r
}

func isFinite(x float32) bool {
	return x == x && x < 1e30 && x > -1e30
}

func (r *Registry) mustMeta(name string) Metadata {
	b, ok := r.Get(name)
	if !ok {
		panic("missing preset " + name)
	}
	return b.Metadata()
}

func (m Metadata) hasParam(name string) bool {
	_, ok := m.Param(name)
	return ok
}
