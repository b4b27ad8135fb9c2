package shop

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/triplegarycodes/vyral-test-sub000/internal/domain"
)

// Wallet holds the spendable balances involved in shop purchases. Shop items
// are priced in VybeCoins only.
type Wallet struct {
	Coins int64 `json:"coins"`
}

// LedgerEntry is one append-only wallet transaction record. Debits carry a
// negative signed amount.
type LedgerEntry struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// PurchaseResult is the post-purchase snapshot. Wallet, ownership and ledger
// entry are produced together; persistence must commit them as one unit.
type PurchaseResult struct {
	Wallet Wallet
	Owned  map[string]int
	Entry  LedgerEntry
}

// Purchase validates and applies a shop purchase against a wallet and an
// ownership map. Rules, in order: a non-stackable item already owned fails
// with ErrAlreadyOwned; a price above the balance fails with
// ErrInsufficientFunds. On failure the inputs are untouched and no ledger
// entry exists.
func Purchase(item Item, wallet Wallet, owned map[string]int, now time.Time) (PurchaseResult, error) {
	if !item.Stackable && owned[item.ID] > 0 {
		return PurchaseResult{}, domain.ErrAlreadyOwned
	}
	if wallet.Coins < item.Price {
		return PurchaseResult{}, domain.ErrInsufficientFunds
	}

	newOwned := make(map[string]int, len(owned)+1)
	for id, qty := range owned {
		newOwned[id] = qty
	}
	newOwned[item.ID]++

	entry := LedgerEntry{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		ItemID:    item.ID,
		Amount:    -item.Price,
		Reason:    fmt.Sprintf("Purchased %s", item.Name),
		Timestamp: now,
	}

	return PurchaseResult{
		Wallet: Wallet{Coins: wallet.Coins - item.Price},
		Owned:  newOwned,
		Entry:  entry,
	}, nil
}
