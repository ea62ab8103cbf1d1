package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeriesPlaceholderPrefix marks a listing that has been created off-chain
// but whose token series has not yet been minted. The placeholder is
// replaced with the ledger-assigned series id once the mint confirms.
const SeriesPlaceholderPrefix = "pending:"

type ListingKind string

const (
	ListingKindTicket      ListingKind = "ticket"
	ListingKindMerchandise ListingKind = "merchandise"
	ListingKindVenuePass   ListingKind = "venuePass"
)

// Royalty is one wallet's share of a listing's resale revenue.
// Percentages across a listing sum to at most 1.
type Royalty struct {
	WalletAccountID   string  `bson:"walletAccountId" json:"walletAccountId"`
	RoyaltyPercentage float64 `bson:"royaltyPercentage" json:"royaltyPercentage"`
}

type Ticket struct {
	Tier            string `bson:"tier,omitempty" json:"tier,omitempty"`
	AfterEventMedia string `bson:"afterEventMedia,omitempty" json:"afterEventMedia,omitempty"`
}

type Merchandise struct {
	Model string `bson:"model,omitempty" json:"model,omitempty"`
}

type VenuePass struct {
	DaysValid int `bson:"daysValid" json:"daysValid"`
}

// Listing is a purchasable unit backed by an on-chain token series.
// Exactly one of Ticket, Merchandise, VenuePass is populated.
type Listing struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Media       string             `bson:"media" json:"media"`

	Price              float64   `bson:"price,omitempty" json:"price,omitempty"`
	Stock              *int64    `bson:"stock,omitempty" json:"stock,omitempty"`
	Available          *int64    `bson:"available,omitempty" json:"available,omitempty"`
	MarketplaceRoyalty float64   `bson:"marketplaceRoyalty" json:"marketplaceRoyalty"`
	Royalties          []Royalty `bson:"royalties,omitempty" json:"royalties,omitempty"`

	StartDate time.Time  `bson:"startDate" json:"startDate"`
	EndDate   *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`

	Ticket      *Ticket      `bson:"ticket,omitempty" json:"ticket,omitempty"`
	Merchandise *Merchandise `bson:"merchandise,omitempty" json:"merchandise,omitempty"`
	VenuePass   *VenuePass   `bson:"venuePass,omitempty" json:"venuePass,omitempty"`

	EventID *primitive.ObjectID `bson:"event,omitempty" json:"eventId,omitempty"`
	VenueID *primitive.ObjectID `bson:"venue,omitempty" json:"venueId,omitempty"`

	TokenSeriesID  string `bson:"tokenSeriesId" json:"tokenSeriesId"`
	OwnerAccountID string `bson:"ownerAccountId" json:"ownerAccountId"`

	IsActive   bool      `bson:"isActive" json:"isActive"`
	IsCensored bool      `bson:"isCensored" json:"isCensored"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Kind reports which sub-kind payload is populated.
func (l *Listing) Kind() ListingKind {
	switch {
	case l.Merchandise != nil:
		return ListingKindMerchandise
	case l.VenuePass != nil:
		return ListingKindVenuePass
	case l.Ticket != nil:
		return ListingKindTicket
	}
	return ""
}

func (l *Listing) RoyaltySum() float64 {
	var sum float64
	for _, r := range l.Royalties {
		sum += r.RoyaltyPercentage
	}
	return sum
}

// IsSeriesBound reports whether the listing has been bound to a real
// on-chain series id.
func (l *Listing) IsSeriesBound() bool {
	return l.TokenSeriesID != "" && !strings.HasPrefix(l.TokenSeriesID, SeriesPlaceholderPrefix)
}

// NFTMetadata is the ledger-facing metadata document for a listing,
// following the NEP-177 token metadata shape.
type NFTMetadata struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Media       string         `json:"media"`
	MediaHash   *string        `json:"media_hash"`
	Copies      *int64         `json:"copies"`
	IssuedAt    *string        `json:"issued_at"`
	ExpiresAt   *string        `json:"expires_at"`
	StartsAt    *string        `json:"starts_at"`
	UpdatedAt   *string        `json:"updated_at"`
	Extra       map[string]any `json:"extra"`
	Reference   string         `json:"reference"`
	RefHash     *string        `json:"reference_hash"`
}

// NFTProjection derives the on-chain metadata document for a listing. It is
// a pure function of the listing and its resolved containers; persistence
// plays no part.
func NFTProjection(l *Listing, event *Event, venue *Venue, domain string) NFTMetadata {
	extra := map[string]any{
		"type": string(l.Kind()),
	}

	if event != nil {
		extra["event"] = event.Title
		extra["eventUrl"] = fmt.Sprintf("https://%s/event/%s", domain, event.Slug)
	}

	if venue != nil {
		extra["venue"] = venue.Title
		extra["venueUrl"] = fmt.Sprintf("https://%s/venue/%s", domain, venue.Slug)
	}

	switch l.Kind() {
	case ListingKindMerchandise:
		extra["model"] = l.Merchandise.Model
	case ListingKindVenuePass:
		extra["daysValid"] = l.VenuePass.DaysValid
	}

	return NFTMetadata{
		Title:       l.Title,
		Description: l.Description,
		Media:       l.Media,
		Copies:      l.Stock,
		Extra:       extra,
		Reference:   fmt.Sprintf("https://%s/listing/%s", domain, l.ID.Hex()),
	}
}
