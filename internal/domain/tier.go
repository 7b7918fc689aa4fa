package domain

import "fmt"

type Tier string

const (
	TierCore     Tier = "core"
	TierDomain   Tier = "domain"
	TierEmerging Tier = "emerging"
)

// TierBoundaries are the minimum evidence counts for the upper two tiers.
// Anything below DomainMin is Emerging.
type TierBoundaries struct {
	CoreMin   int `json:"core_min" yaml:"core_min"`
	DomainMin int `json:"domain_min" yaml:"domain_min"`
}

var DefaultTierBoundaries = TierBoundaries{CoreMin: 5, DomainMin: 3}

func (b TierBoundaries) Validate() error {
	if b.DomainMin < 1 {
		return fmt.Errorf("%w: domain_min must be >= 1, got %d", ErrInvalidConfig, b.DomainMin)
	}
	if b.CoreMin <= b.DomainMin {
		return fmt.Errorf("%w: core_min (%d) must exceed domain_min (%d)", ErrInvalidConfig, b.CoreMin, b.DomainMin)
	}
	return nil
}

// ComputeTier labels an evidence count. The result depends only on n,
// never on which cascade level admitted the principle.
func ComputeTier(n int, b TierBoundaries) Tier {
	switch {
	case n >= b.CoreMin:
		return TierCore
	case n >= b.DomainMin:
		return TierDomain
	default:
		return TierEmerging
	}
}

func TierReason(n int, b TierBoundaries) string {
	switch ComputeTier(n, b) {
	case TierCore:
		return fmt.Sprintf("evidence %d >= %d", n, b.CoreMin)
	case TierDomain:
		return fmt.Sprintf("%d <= evidence %d < %d", b.DomainMin, n, b.CoreMin)
	default:
		return fmt.Sprintf("evidence %d < %d", n, b.DomainMin)
	}
}

func AllTiers() []Tier {
	return []Tier{TierCore, TierDomain, TierEmerging}
}

func ValidTier(t string) bool {
	switch Tier(t) {
	case TierCore, TierDomain, TierEmerging:
		return true
	}
	return false
}
