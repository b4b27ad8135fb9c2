// Package sponsor implements the sponsorship portal: tier catalog, checkout
// creation against the payment processor, and the webhook-driven subscription
// state machine.
package sponsor

import "github.com/triplegarycodes/vyral-test-sub000/internal/domain"

// Tier is a purchasable sponsorship level. PriceID is the processor-side
// recurring price backing the tier.
type Tier struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	PriceID       string   `json:"-"`
	MonthlyAmount int64    `json:"monthly_amount"`
	Perks         []string `json:"perks"`
}

// Tiers is a lookup table of sponsor tiers.
type Tiers struct {
	tiers map[string]Tier
	order []string
}

// NewTiers builds a tier table from a list.
func NewTiers(tiers []Tier) *Tiers {
	t := &Tiers{tiers: make(map[string]Tier, len(tiers))}
	for _, tier := range tiers {
		if _, seen := t.tiers[tier.ID]; !seen {
			t.order = append(t.order, tier.ID)
		}
		t.tiers[tier.ID] = tier
	}
	return t
}

// Lookup returns the tier with the given ID.
func (t *Tiers) Lookup(id string) (Tier, error) {
	tier, ok := t.tiers[id]
	if !ok {
		return Tier{}, domain.ErrUnknownTier
	}
	return tier, nil
}

// List returns the tiers in insertion order.
func (t *Tiers) List() []Tier {
	out := make([]Tier, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.tiers[id])
	}
	return out
}

// DefaultTiers returns the built-in sponsorship levels.
func DefaultTiers() *Tiers {
	return NewTiers([]Tier{
		{
			ID:            "tier-community",
			Name:          "Community Sponsor",
			PriceID:       "price_community_monthly",
			MonthlyAmount: 4900,
			Perks:         []string{"Logo on the sponsors page", "Monthly impact report"},
		},
		{
			ID:            "tier-growth",
			Name:          "Growth Sponsor",
			PriceID:       "price_growth_monthly",
			MonthlyAmount: 19900,
			Perks:         []string{"Everything in Community", "Sponsored study-group events", "Quarterly spotlight post"},
		},
		{
			ID:            "tier-champion",
			Name:          "Champion Sponsor",
			PriceID:       "price_champion_monthly",
			MonthlyAmount: 49900,
			Perks:         []string{"Everything in Growth", "Named scholarship fund", "Co-branded challenges"},
		},
	})
}
