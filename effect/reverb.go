package effect

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/effects"

	"github.com/cwbudde/algo-rack/irsynth"
)

func reverbEffects() []builtinEntry {
	return []builtinEntry{
		{meta("reverb", "Reverb effect", Time, def("room", 0.5, 0, 1), def("time", 1, 0.1, 10)), newReverb},
		{meta("freeverb", "Comb and allpass reverb", Time,
			def("room", 0.5, 0, 1), def("damp", 0.5, 0, 1), def("mix", 0.3, 0, 1)), newFreeverb},
		{convolutionMeta("room", "Small room reverb", def("mix", 0.3, 0, 1)), synthIR(irsynth.Room)},
		{convolutionMeta("hall", "Large hall reverb", def("mix", 0.4, 0, 1)), synthIR(irsynth.Hall)},
		{convolutionMeta("plate", "Plate reverb (bright, metallic)",
			def("mix", 0.35, 0, 1), def("decay", 2, 0.5, 5)), synthIR(irsynth.Plate)},
	}
}

// Per-channel FDN settings. The right network runs a different pre-delay and
// modulation rate so a mono source decorrelates.
var fdnChannels = [2]struct{ preDelay, modRate float64 }{
	{preDelay: 0.010, modRate: 0.10},
	{preDelay: 0.013, modRate: 0.13},
}

// roomDamp maps room size to feedback damping: small rooms are dull.
func roomDamp(room float64) float64 {
	return 0.7 - 0.6*room
}

// reverbUnit runs one feedback delay network per channel. The output is fully
// wet.
type reverbUnit struct {
	room, time cached
	fx         [2]*effects.FDNReverb
}

func newReverb(ctx Context, c *Controls) (Unit, error) {
	u := &reverbUnit{room: track(c.Param("room")), time: track(c.Param("time"))}
	for i, ch := range fdnChannels {
		fx, err := effects.NewFDNReverb(float64(ctx.SampleRate))
		if err == nil {
			err = fx.SetWet(1)
		}
		if err == nil {
			err = fx.SetDry(0)
		}
		if err == nil {
			err = fx.SetPreDelay(ch.preDelay)
		}
		if err == nil {
			err = fx.SetModRate(ch.modRate)
		}
		if err != nil {
			return nil, fmt.Errorf("reverb: %w", err)
		}
		u.fx[i] = fx
	}
	if err := u.sync(); err != nil {
		return nil, fmt.Errorf("reverb: %w", err)
	}
	return u, nil
}

// sync pushes room and time through setters that only recompute gains, so a
// live change does not touch the delay lines.
func (u *reverbUnit) sync() error {
	if v, ok := u.room.changed(); ok {
		for _, fx := range u.fx {
			if err := fx.SetDamp(roomDamp(v)); err != nil {
				return err
			}
		}
	}
	if v, ok := u.time.changed(); ok {
		for _, fx := range u.fx {
			if err := fx.SetRT60(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (u *reverbUnit) Process(l, r float32) (float32, float32) {
	_ = u.sync()
	return float32(u.fx[0].ProcessSample(float64(l))), float32(u.fx[1].ProcessSample(float64(r)))
}

func (u *reverbUnit) Reset() {
	for _, fx := range u.fx {
		fx.Reset()
	}
}

// freeverbUnit is the classic eight-comb, four-allpass reverb per channel.
// Its tuning is fixed in samples, so rates away from 44.1 kHz scale the room.
type freeverbUnit struct {
	room, damp, mix cached
	fx              [2]*effects.Reverb
}

func newFreeverb(_ Context, c *Controls) (Unit, error) {
	u := &freeverbUnit{
		room: track(c.Param("room")),
		damp: track(c.Param("damp")),
		mix:  track(c.Param("mix")),
		fx:   [2]*effects.Reverb{effects.NewReverb(), effects.NewReverb()},
	}
	u.sync()
	return u, nil
}

// Comb feedback stays below 1 for every room setting.
func freeverbFeedback(room float64) float64 {
	return 0.7 + 0.28*room
}

func (u *freeverbUnit) sync() {
	if v, ok := u.room.changed(); ok {
		for _, fx := range u.fx {
			fx.SetRoomSize(freeverbFeedback(v))
		}
	}
	if v, ok := u.damp.changed(); ok {
		for _, fx := range u.fx {
			fx.SetDamp(v)
		}
	}
	if v, ok := u.mix.changed(); ok {
		for _, fx := range u.fx {
			fx.SetWet(v)
			fx.SetDry(1 - v)
		}
	}
}

func (u *freeverbUnit) Process(l, r float32) (float32, float32) {
	u.sync()
	return float32(u.fx[0].ProcessSample(float64(l))), float32(u.fx[1].ProcessSample(float64(r)))
}

func (u *freeverbUnit) Reset() {
	for _, fx := range u.fx {
		fx.Reset()
	}
}
