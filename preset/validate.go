package preset

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-rack/effect"
	"github.com/cwbudde/algo-rack/param"
)

// ValidateChainState checks the structure of s. It does not resolve effect
// names; use CheckChainState for that.
func ValidateChainState(s effect.ChainState) error {
	if s.Version < 1 || s.Version > effect.StateVersion {
		return fmt.Errorf("version must be in [1,%d], got %d", effect.StateVersion, s.Version)
	}
	if s.SampleRate < 0 || !finite(s.SampleRate) {
		return fmt.Errorf("sample_rate must be >= 0")
	}
	return validateEffects(s.Effects)
}

func validateEffects(effects []effect.EffectState) error {
	for i, e := range effects {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("effects[%d].name must not be empty", i)
		}
		if err := validateValues(fmt.Sprintf("effects[%d]", i), e.Parameters); err != nil {
			return err
		}
	}
	return nil
}

func validateValues(prefix string, values param.Values) error {
	for _, k := range values.Keys() {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%s.parameters has an empty name", prefix)
		}
		if !finite(values[k]) {
			return fmt.Errorf("%s.parameters.%s must be finite", prefix, k)
		}
	}
	return nil
}

// CheckChainState validates s and resolves every effect name and parameter
// against reg. Parameters an effect does not declare are rejected.
func CheckChainState(reg *effect.Registry, s effect.ChainState) error {
	if err := ValidateChainState(s); err != nil {
		return err
	}
	return checkEffects(reg, s.Effects)
}

func checkEffects(reg *effect.Registry, effects []effect.EffectState) error {
	for i, e := range effects {
		b, ok := reg.Get(e.Name)
		if !ok {
			return fmt.Errorf("effects[%d].name: unknown effect %q", i, e.Name)
		}
		if err := param.CheckKnown(e.Name, b.Metadata().Params, e.Parameters); err != nil {
			return fmt.Errorf("effects[%d]: %w", i, err)
		}
	}
	return nil
}

func finite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}
