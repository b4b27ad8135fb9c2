// Package shop implements the virtual shop: the item catalog and the purchase
// reconciler that validates affordability and ownership exclusivity before a
// wallet is debited.
package shop

import "github.com/triplegarycodes/vyral-test-sub000/internal/domain"

// Item is a purchasable shop entry. Non-stackable items may be owned at most
// once per user; stackable items accumulate quantity.
type Item struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Price     int64               `json:"price"`
	Category  domain.ItemCategory `json:"category"`
	Rarity    domain.ItemRarity   `json:"rarity"`
	Stackable bool                `json:"stackable"`
}

// Catalog is a lookup table of purchasable items.
type Catalog struct {
	items map[string]Item
	order []string
}

// NewCatalog builds a catalog from a list of items. Later duplicates win.
func NewCatalog(items []Item) *Catalog {
	c := &Catalog{items: make(map[string]Item, len(items))}
	for _, item := range items {
		if _, seen := c.items[item.ID]; !seen {
			c.order = append(c.order, item.ID)
		}
		c.items[item.ID] = item
	}
	return c
}

// Lookup returns the item with the given ID.
func (c *Catalog) Lookup(id string) (Item, error) {
	item, ok := c.items[id]
	if !ok {
		return Item{}, domain.ErrUnknownItem
	}
	return item, nil
}

// Items returns the catalog in insertion order.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// DefaultCatalog returns the built-in shop inventory.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Item{
		{ID: "avatar-neon-fox", Name: "Neon Fox Avatar", Price: 250, Category: domain.CategoryAvatar, Rarity: domain.RarityRare, Stackable: false},
		{ID: "avatar-holo-panda", Name: "Holo Panda Avatar", Price: 600, Category: domain.CategoryAvatar, Rarity: domain.RarityEpic, Stackable: false},
		{ID: "theme-midnight", Name: "Midnight Theme", Price: 150, Category: domain.CategoryTheme, Rarity: domain.RarityCommon, Stackable: false},
		{ID: "theme-sunset-drip", Name: "Sunset Drip Theme", Price: 400, Category: domain.CategoryTheme, Rarity: domain.RarityRare, Stackable: false},
		{ID: "badge-founder", Name: "Founder Badge", Price: 1200, Category: domain.CategoryBadge, Rarity: domain.RarityLegendary, Stackable: false},
		{ID: "boost-double-xp", Name: "Double XP Boost (1h)", Price: 100, Category: domain.CategoryBoost, Rarity: domain.RarityCommon, Stackable: true},
		{ID: "boost-focus-shield", Name: "Focus Shield (1 day)", Price: 180, Category: domain.CategoryBoost, Rarity: domain.RarityRare, Stackable: true},
		{ID: "sticker-hype-pack", Name: "Hype Sticker Pack", Price: 75, Category: domain.CategorySticker, Rarity: domain.RarityCommon, Stackable: true},
	})
}
