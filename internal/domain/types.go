package domain

// TrackID identifies an upgrade track in the progression economy
type TrackID string

const (
	TrackLyfeTree   TrackID = "lyfe_tree"
	TrackXPBooster  TrackID = "xp_booster"
	TrackFocusRegen TrackID = "focus_regen"
	TrackStudyCrit  TrackID = "study_crit"
)

// IsValidTrack checks if a track ID is one of the known upgrade tracks
func IsValidTrack(track TrackID) bool {
	return track == TrackLyfeTree ||
		track == TrackXPBooster ||
		track == TrackFocusRegen ||
		track == TrackStudyCrit
}

// PurchaseMode represents how many upgrade levels a single buy event requests
type PurchaseMode string

const (
	PurchaseModeBuy1   PurchaseMode = "buy1"
	PurchaseModeBuy10  PurchaseMode = "buy10"
	PurchaseModeBuyMax PurchaseMode = "buy_max"
)

// IsValidPurchaseMode checks if a purchase mode is recognized
func IsValidPurchaseMode(mode PurchaseMode) bool {
	return mode == PurchaseModeBuy1 ||
		mode == PurchaseModeBuy10 ||
		mode == PurchaseModeBuyMax
}

// SubscriptionStatus represents the lifecycle state of a sponsor subscription
type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionPaused   SubscriptionStatus = "paused"
)

// MapExternalSubscriptionStatus maps the payment processor's status vocabulary
// onto ours. Statuses outside the recognized set map to paused so an unknown
// upstream state never silently grants an active subscription.
func MapExternalSubscriptionStatus(external string) SubscriptionStatus {
	switch external {
	case "active", "trialing":
		return SubscriptionActive
	case "past_due", "unpaid":
		return SubscriptionPastDue
	case "canceled", "incomplete_expired":
		return SubscriptionCanceled
	default:
		return SubscriptionPaused
	}
}

// ItemRarity represents the rarity tier of a shop item
type ItemRarity string

const (
	RarityCommon    ItemRarity = "common"
	RarityRare      ItemRarity = "rare"
	RarityEpic      ItemRarity = "epic"
	RarityLegendary ItemRarity = "legendary"
)

// ItemCategory represents the category of a shop item
type ItemCategory string

const (
	CategoryAvatar  ItemCategory = "avatar"
	CategoryTheme   ItemCategory = "theme"
	CategoryBoost   ItemCategory = "boost"
	CategoryBadge   ItemCategory = "badge"
	CategorySticker ItemCategory = "sticker"
)
