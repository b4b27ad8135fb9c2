package dto

import (
	"time"

	"github.com/triplegarycodes/vyral-test-sub000/internal/economy"
	"github.com/triplegarycodes/vyral-test-sub000/internal/shop"
)

// ProgressResponse is the player progression snapshot
type ProgressResponse struct {
	State            economy.State `json:"state"`
	NextLevelXP      int64         `json:"next_level_xp"`
	PrestigeEligible bool          `json:"prestige_eligible"`
}

// EventResponse is the result of applying an economy event
type EventResponse struct {
	State   economy.State   `json:"state"`
	Outcome economy.Outcome `json:"outcome"`
}

// PurchaseResponse is the result of a shop purchase
type PurchaseResponse struct {
	Coins int64            `json:"coins"`
	Owned map[string]int   `json:"owned"`
	Entry shop.LedgerEntry `json:"ledger_entry"`
}

// CatalogResponse lists the purchasable shop items
type CatalogResponse struct {
	Items []shop.Item `json:"items"`
}

// BoostResponse is one feed boost line
type BoostResponse struct {
	Category string `json:"category"`
	Line     string `json:"line"`
}

// TransactionEntry is one wallet ledger row on the support surface
type TransactionEntry struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id,omitempty"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// TransactionsResponse lists a player's recent wallet ledger entries
type TransactionsResponse struct {
	UserID       string             `json:"user_id"`
	Transactions []TransactionEntry `json:"transactions"`
}
