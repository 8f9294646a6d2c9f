// Package effect holds the effect preset registry, the live parameter
// surface of effect instances and the Chain that composes them.
//
//	reg := effect.WithBuiltin()
//	chain := effect.NewChain(reg, effect.WithMetering(true))
//	chain.Add("lpf", param.Values{"cutoff": 2000})
//	chain.Add("delay", param.Values{"time": 0.3, "mix": 0.25})
//	l, r := chain.Process(inL, inR)
package effect
