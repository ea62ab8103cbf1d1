package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Purchase records one applied on-chain purchase. The transaction hash is
// unique-indexed; it is the idempotency key that guarantees a confirmed
// purchase decrements inventory at most once no matter how many
// confirmation paths deliver it.
type Purchase struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TransactionHash string             `bson:"transactionHash" json:"transactionHash"`
	TokenSeriesID   string             `bson:"tokenSeriesId" json:"tokenSeriesId"`
	ListingID       primitive.ObjectID `bson:"listing" json:"listingId"`
	Source          string             `bson:"source" json:"source"`
	AppliedAt       time.Time          `bson:"appliedAt" json:"appliedAt"`
}

// Purchase confirmation sources.
const (
	PurchaseSourceClaim   = "claim"
	PurchaseSourceWebhook = "webhook"
	PurchaseSourceKafka   = "kafka"
)
