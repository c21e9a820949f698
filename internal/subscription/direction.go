package subscription

import (
	"fmt"

	apperrors "subscription-manager/internal/common/errors"
)

// Direction selects which transition table applies to a change.
type Direction int

const (
	Upgrade Direction = iota + 1
	Downgrade
)

// transitions is the static reachability table per direction. A tier with no entry reaches
// nothing.
var transitions = map[Direction]map[Tier][]Tier{
	Upgrade: {
		TierFree:  {TierBasic, TierPremium},
		TierBasic: {TierPremium},
	},
	Downgrade: {
		TierPremium: {TierBasic, TierFree},
		TierBasic:   {TierFree},
	},
}

// ParseDirection accepts "upgrade" or "downgrade".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "upgrade":
		return Upgrade, nil
	case "downgrade":
		return Downgrade, nil
	default:
		return 0, apperrors.NewInvalidDirectionError(s)
	}
}

func (d Direction) String() string {
	switch d {
	case Upgrade:
		return "upgrade"
	case Downgrade:
		return "downgrade"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Valid reports whether d is Upgrade or Downgrade.
func (d Direction) Valid() bool {
	_, ok := transitions[d]
	return ok
}

// Reachable returns the tiers a change in direction d may reach from current.
func (d Direction) Reachable(current Tier) []Tier {
	return transitions[d][current]
}

// Terminal is the tier from which no change in direction d is possible.
func (d Direction) Terminal() Tier {
	if d == Downgrade {
		return TierFree
	}
	return TierPremium
}

// DateField names the record attribute stamped when a change in direction d is applied.
func (d Direction) DateField() string {
	if d == Downgrade {
		return FieldDowngradeDate
	}
	return FieldUpgradeDate
}

func (d Direction) title() string {
	if d == Downgrade {
		return "Downgrade"
	}
	return "Upgrade"
}

// IsReachable reports whether target can be reached from current under direction's table.
// Staying on the same tier is never a transition.
func IsReachable(direction Direction, current, target Tier) bool {
	if current == target {
		return false
	}
	for _, t := range direction.Reachable(current) {
		if t == target {
			return true
		}
	}
	return false
}
