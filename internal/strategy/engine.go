package strategy

import "StreakSentinel/internal/model"

// DefaultPurchaseCost is what the shop charges for a streak freeze, in gems.
const DefaultPurchaseCost = 200

// DefaultLowThreshold is the balance below which the low-gems warning fires.
const DefaultLowThreshold = 600

// Decide picks the action for one run. Owning a freeze always wins over the
// balance check, so a rich account with a freeze equipped still skips.
func Decide(hasFreeze bool, balance, purchaseCost int) model.Decision {
	if hasFreeze {
		return model.DecisionSkipAlreadyOwned
	}
	if balance < purchaseCost {
		return model.DecisionSkipInsufficientFunds
	}
	return model.DecisionBuy
}

// ClassifyBalance grades the gem balance for warning purposes, independent
// of the buy/skip decision. The grade feeds the notification even when the
// decision is a skip.
func ClassifyBalance(balance, purchaseCost, lowThreshold int) model.Severity {
	switch {
	case balance < purchaseCost:
		return model.SeverityOut
	case balance < lowThreshold:
		return model.SeverityLow
	default:
		return model.SeverityHealthy
	}
}
