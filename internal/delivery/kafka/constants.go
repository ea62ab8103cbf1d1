package kafka

// Inbound: pushed by confirmation providers.
const TopicPurchaseConfirmed = "nft.purchase.confirmed"

// Outbound: emitted after reconciliation.
const (
	TopicListingReconciled = "listing.reconciled"
	TopicListingSoldOut    = "listing.soldout"
)
