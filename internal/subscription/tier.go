// Package subscription holds the tier transition rules and the updater that applies them to
// customer records in the record store.
package subscription

import (
	apperrors "subscription-manager/internal/common/errors"
)

// Tier is a subscription level. Tiers are ordered by privilege: free < basic < premium.
type Tier string

const (
	TierFree    Tier = "free"
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// Tiers lists the defined tiers in privilege order.
var Tiers = []Tier{TierFree, TierBasic, TierPremium}

func (t Tier) String() string {
	return string(t)
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	for _, defined := range Tiers {
		if t == defined {
			return true
		}
	}
	return false
}

// ParseTier converts a requested subscription level into a Tier. Levels are case sensitive.
func ParseTier(level string) (Tier, error) {
	t := Tier(level)
	if !t.Valid() {
		return "", apperrors.NewInvalidTierArgumentError(level, tierNames())
	}
	return t, nil
}

func tierNames() []string {
	names := make([]string, len(Tiers))
	for i, t := range Tiers {
		names[i] = string(t)
	}
	return names
}
