package mapgen

import (
	"fmt"
	"math/rand"
)

// IntParam is either a fixed integer (Min == Max) or a closed range
// [Min, Max] sampled uniformly.
type IntParam struct {
	Min int `mapstructure:"min" json:"min"`
	Max int `mapstructure:"max" json:"max"`
}

func FixedInt(v int) IntParam      { return IntParam{Min: v, Max: v} }
func IntRange(lo, hi int) IntParam { return IntParam{Min: lo, Max: hi} }
func (p IntParam) IsFixed() bool   { return p.Min == p.Max }
func (p IntParam) String() string {
	if p.IsFixed() {
		return fmt.Sprintf("%d", p.Min)
	}
	return fmt.Sprintf("[%d,%d]", p.Min, p.Max)
}

// Resolve returns the fixed value without touching rng, or draws from the range.
func (p IntParam) Resolve(rng *rand.Rand) int {
	if p.Min >= p.Max {
		return p.Min
	}
	return p.Min + rng.Intn(p.Max-p.Min+1)
}

func (p IntParam) validate(name string) error {
	if p.Min > p.Max {
		return fmt.Errorf("%w: %s minimum %d exceeds maximum %d", ErrInvalidConfig, name, p.Min, p.Max)
	}
	return nil
}

// FloatParam is either a fixed value (Min == Max) or a range [Min, Max]
// sampled uniformly.
type FloatParam struct {
	Min float64 `mapstructure:"min" json:"min"`
	Max float64 `mapstructure:"max" json:"max"`
}

func FixedFloat(v float64) FloatParam      { return FloatParam{Min: v, Max: v} }
func FloatRange(lo, hi float64) FloatParam { return FloatParam{Min: lo, Max: hi} }
func (p FloatParam) IsFixed() bool         { return p.Min == p.Max }
func (p FloatParam) String() string {
	if p.IsFixed() {
		return fmt.Sprintf("%g", p.Min)
	}
	return fmt.Sprintf("[%g,%g]", p.Min, p.Max)
}

func (p FloatParam) Resolve(rng *rand.Rand) float64 {
	if p.Min >= p.Max {
		return p.Min
	}
	return p.Min + rng.Float64()*(p.Max-p.Min)
}

func (p FloatParam) validate(name string) error {
	if p.Min > p.Max {
		return fmt.Errorf("%w: %s minimum %g exceeds maximum %g", ErrInvalidConfig, name, p.Min, p.Max)
	}
	return nil
}
