package kafka

import "time"

// PurchaseConfirmedEvent is the payload providers push when an on-chain
// purchase lands. Only the transaction hash is trusted; everything else is
// re-derived from the ledger.
type PurchaseConfirmedEvent struct {
	TransactionHash string    `json:"transaction_hash"`
	Timestamp       time.Time `json:"timestamp"`
}

type ListingReconciledEvent struct {
	TransactionHash string    `json:"transaction_hash"`
	TokenSeriesID   string    `json:"token_series_id"`
	ListingID       string    `json:"listing_id"`
	Available       *int64    `json:"available,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

type ListingSoldOutEvent struct {
	TokenSeriesID string    `json:"token_series_id"`
	ListingID     string    `json:"listing_id"`
	Timestamp     time.Time `json:"timestamp"`
}
