package entity

import "strings"

// SubscriptionTier is the plan a user is billed on.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
	TierFamily  SubscriptionTier = "family"
)

// ParseSubscriptionTier converts raw input into a known tier.
func ParseSubscriptionTier(raw string) (SubscriptionTier, bool) {
	tier := SubscriptionTier(strings.ToLower(strings.TrimSpace(raw)))

	return tier, tier.IsValid()
}

// IsValid reports whether the tier is one of the enumerated plans.
func (t SubscriptionTier) IsValid() bool {
	switch t {
	case TierFree, TierPremium, TierFamily:
		return true
	default:
		return false
	}
}

// IsPaid reports whether the tier unlocks premium content.
func (t SubscriptionTier) IsPaid() bool {
	return t == TierPremium || t == TierFamily
}

func (t SubscriptionTier) String() string {
	return string(t)
}
