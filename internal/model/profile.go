package model

import "time"

// Language describes one entry in the account's learning-language list.
type Language struct {
	Code    string `json:"language"`
	Current bool   `json:"current_learning"`
}

// Profile is a snapshot of the remote account state. It is re-fetched on
// every run and never cached across process invocations.
type Profile struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	SiteStreak int    `json:"site_streak"`

	// Duolingo exposes the gem balance under several aliased keys depending
	// on account age and endpoint version. Pointers distinguish "absent"
	// from a genuine zero balance.
	GemBalance *int `json:"gem_balance"`
	Rupees     *int `json:"rupees"`
	Lingots    *int `json:"lingots"`

	StreakExtendedToday bool `json:"streak_extended_today"`

	// Inventory maps item name to a nullable acquisition timestamp.
	Inventory map[string]*int64 `json:"inventory"`

	Languages []Language `json:"languages"`
}

// LingotsToGems is the legacy unit conversion: one lingot is worth ten gems.
const LingotsToGems = 10

// Balance resolves the gem balance across the aliased fields. gem_balance is
// the primary key; rupees carries the same unit; lingots is the legacy unit
// and is converted. Absent everywhere resolves to zero.
func (p *Profile) Balance() int {
	switch {
	case p.GemBalance != nil:
		return *p.GemBalance
	case p.Rupees != nil:
		return *p.Rupees
	case p.Lingots != nil:
		return *p.Lingots * LingotsToGems
	default:
		return 0
	}
}

// HasItem reports whether the inventory holds the named item. The remote
// side keeps the key around with a null timestamp after an item is consumed,
// so only a non-null acquisition timestamp counts as owned.
func (p *Profile) HasItem(name string) bool {
	ts, ok := p.Inventory[name]
	return ok && ts != nil
}

// PurchaseResult records a successful shop purchase.
type PurchaseResult struct {
	ItemName    string
	PurchasedAt time.Time
}
