package effect

import (
	"github.com/cwbudde/algo-rack/param"
)

// StateVersion is the ChainState format version written by Chain.State.
const StateVersion = 1

// ChainState is the serializable form of a Chain.
type ChainState struct {
	Version    int           `json:"version" yaml:"version"`
	SampleRate float32       `json:"sample_rate" yaml:"sample_rate"`
	Bypassed   bool          `json:"bypassed" yaml:"bypassed"`
	Effects    []EffectState `json:"effects" yaml:"effects"`
}

// EffectState is the serializable form of one chain entry. ID is optional;
// LoadState keeps a valid id and generates one otherwise.
type EffectState struct {
	ID         string       `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string       `json:"name" yaml:"name"`
	Parameters param.Values `json:"parameters" yaml:"parameters"`
	Bypassed   bool         `json:"bypassed" yaml:"bypassed"`
	Muted      bool         `json:"muted" yaml:"muted"`
}

// NewChainState returns an empty state at the current version.
func NewChainState(sampleRate float32) ChainState {
	return ChainState{Version: StateVersion, SampleRate: sampleRate}
}
