package domain

import "fmt"

// ReplayPolicy decides what happens to a signal that already contributes to
// a principle when a later, stricter pass no longer lets it match there.
type ReplayPolicy string

const (
	// ReplayAccumulate keeps old attributions and adds the new one.
	// Evidence counts never decrease.
	ReplayAccumulate ReplayPolicy = "accumulate"
	// ReplayReassign detaches the signal from principles it no longer matches.
	ReplayReassign ReplayPolicy = "reassign"
)

func ValidReplayPolicy(p string) bool {
	switch ReplayPolicy(p) {
	case ReplayAccumulate, ReplayReassign:
		return true
	}
	return false
}

// SynthesisConfig holds every tunable of a synthesis run.
type SynthesisConfig struct {
	InitialThreshold  float64        `json:"initial_threshold" yaml:"initial_threshold"`
	ThresholdStep     float64        `json:"threshold_step" yaml:"threshold_step"`
	MaxPasses         int            `json:"max_passes" yaml:"max_passes"`
	CascadeThresholds []int          `json:"cascade_thresholds" yaml:"cascade_thresholds"`
	MinOutputs        int            `json:"min_outputs" yaml:"min_outputs"`
	Tiers             TierBoundaries `json:"tiers" yaml:"tiers"`
	LoadCeilingRatio  float64        `json:"load_ceiling_ratio" yaml:"load_ceiling_ratio"`
	LoadCeilingCap    int            `json:"load_ceiling_cap" yaml:"load_ceiling_cap"`
	Replay            ReplayPolicy   `json:"replay" yaml:"replay"`
	// Dimension pins the expected vector length. Zero takes it from the
	// first well-formed signal.
	Dimension int `json:"dimension,omitempty" yaml:"dimension,omitempty"`
}

func DefaultSynthesisConfig() SynthesisConfig {
	return SynthesisConfig{
		InitialThreshold:  0.75,
		ThresholdStep:     0.02,
		MaxPasses:         5,
		CascadeThresholds: []int{3, 2, 1},
		MinOutputs:        3,
		Tiers:             DefaultTierBoundaries,
		LoadCeilingRatio:  0.5,
		LoadCeilingCap:    30,
		Replay:            ReplayAccumulate,
	}
}

// ThresholdAt returns the similarity threshold for the given pass, capped at 1.
func (c SynthesisConfig) ThresholdAt(pass int) float64 {
	t := c.InitialThreshold + float64(pass)*c.ThresholdStep
	if t > 1 {
		return 1
	}
	return t
}

// LoadCeiling is the largest output count considered cognitively manageable
// for the given number of signals.
func (c SynthesisConfig) LoadCeiling(signals int) float64 {
	ceiling := c.LoadCeilingRatio * float64(signals)
	if limit := float64(c.LoadCeilingCap); ceiling > limit {
		return limit
	}
	return ceiling
}

func (c SynthesisConfig) Validate() error {
	if c.InitialThreshold <= 0 || c.InitialThreshold > 1 {
		return fmt.Errorf("%w: initial_threshold must be in (0, 1], got %v", ErrInvalidConfig, c.InitialThreshold)
	}
	if c.ThresholdStep < 0 {
		return fmt.Errorf("%w: threshold_step must be >= 0, got %v", ErrInvalidConfig, c.ThresholdStep)
	}
	if c.MaxPasses < 1 {
		return fmt.Errorf("%w: max_passes must be >= 1, got %d", ErrInvalidConfig, c.MaxPasses)
	}
	if len(c.CascadeThresholds) == 0 {
		return fmt.Errorf("%w: cascade_thresholds is empty", ErrInvalidConfig)
	}
	for i, k := range c.CascadeThresholds {
		if k < 1 {
			return fmt.Errorf("%w: cascade threshold %d must be >= 1", ErrInvalidConfig, k)
		}
		if i > 0 && k >= c.CascadeThresholds[i-1] {
			return fmt.Errorf("%w: cascade_thresholds must be strictly descending", ErrInvalidConfig)
		}
	}
	if c.MinOutputs < 0 {
		return fmt.Errorf("%w: min_outputs must be >= 0, got %d", ErrInvalidConfig, c.MinOutputs)
	}
	if err := c.Tiers.Validate(); err != nil {
		return err
	}
	if c.LoadCeilingRatio <= 0 || c.LoadCeilingCap < 1 {
		return fmt.Errorf("%w: load ceiling ratio and cap must be positive", ErrInvalidConfig)
	}
	if !ValidReplayPolicy(string(c.Replay)) {
		return fmt.Errorf("%w: unknown replay policy %q", ErrInvalidConfig, c.Replay)
	}
	if c.Dimension < 0 {
		return fmt.Errorf("%w: dimension must be >= 0, got %d", ErrInvalidConfig, c.Dimension)
	}
	return nil
}
