package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theroundhq/marketplace/config"
	kafkaEvents "github.com/theroundhq/marketplace/internal/delivery/kafka"
	"github.com/theroundhq/marketplace/internal/delivery/kafka/producer"
	"github.com/theroundhq/marketplace/internal/models"
	"github.com/theroundhq/marketplace/internal/near"
	repo "github.com/theroundhq/marketplace/internal/repository/mongo"
	redisrepo "github.com/theroundhq/marketplace/internal/repository/redis"
	"github.com/theroundhq/marketplace/pkg/logger"
	"github.com/theroundhq/marketplace/pkg/slug"
)

// ChainReader is the ledger lookup the reconciler and mint confirmation
// depend on.
type ChainReader interface {
	GetTxStatus(ctx context.Context, txHash, senderID string) (*near.TxStatus, error)
}

type ListingService interface {
	Create(ctx context.Context, actor *models.User, listing *models.Listing) (*models.Listing, error)
	FindAll(ctx context.Context, includeHidden bool) ([]models.Listing, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	FindBySlug(ctx context.Context, slug string) (*models.Listing, error)
	FindBySeriesID(ctx context.Context, seriesID string) (*models.Listing, error)
	FindByEventID(ctx context.Context, eventID primitive.ObjectID) ([]models.Listing, error)
	FindByVenueID(ctx context.Context, venueID primitive.ObjectID) ([]models.Listing, error)
	FindByOwner(ctx context.Context, ownerAccountID string) ([]models.Listing, error)
	Update(ctx context.Context, actor *models.User, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, actor *models.User, id primitive.ObjectID) error

	// NFT derives the ledger-facing metadata document for a listing.
	NFT(ctx context.Context, slug string) (*models.NFTMetadata, error)

	// ConfirmMint binds a listing's placeholder series id to the
	// ledger-assigned one, taken from the mint transaction's receipts.
	ConfirmMint(ctx context.Context, actor *models.User, id primitive.ObjectID, txHash string) (*models.Listing, error)

	// ReconcilePurchase applies one confirmed on-chain purchase to the
	// matching listing's available counter, at most once per transaction.
	ReconcilePurchase(ctx context.Context, txHash, source string) (*models.Listing, error)
}

type implListingService struct {
	listings  repo.ListingRepository
	purchases repo.PurchaseRepository
	events    repo.EventRepository
	venues    repo.VenueRepository
	guard     redisrepo.ReconcileGuard
	chain     ChainReader
	prod      producer.Producer
	nearConf  config.NearConfig
	domain    string
	l         logger.Logger
}

func NewListingService(
	listings repo.ListingRepository,
	purchases repo.PurchaseRepository,
	events repo.EventRepository,
	venues repo.VenueRepository,
	guard redisrepo.ReconcileGuard,
	chain ChainReader,
	prod producer.Producer,
	nearConf config.NearConfig,
	domain string,
	l logger.Logger,
) ListingService {
	return &implListingService{
		listings:  listings,
		purchases: purchases,
		events:    events,
		venues:    venues,
		guard:     guard,
		chain:     chain,
		prod:      prod,
		nearConf:  nearConf,
		domain:    domain,
		l:         l,
	}
}

func (s *implListingService) Create(ctx context.Context, actor *models.User, listing *models.Listing) (*models.Listing, error) {
	if err := validateListing(listing); err != nil {
		return nil, err
	}

	listing.Slug = slug.Make(listing.Title)
	listing.OwnerAccountID = actor.NearWalletAccountID
	listing.Available = listing.Stock
	// The real series id arrives with the mint confirmation.
	listing.TokenSeriesID = models.SeriesPlaceholderPrefix + uuid.New().String()

	return s.listings.Create(ctx, listing)
}

func validateListing(listing *models.Listing) error {
	kinds := 0
	if listing.Ticket != nil {
		kinds++
	}
	if listing.Merchandise != nil {
		kinds++
	}
	if listing.VenuePass != nil {
		kinds++
	}
	if kinds != 1 {
		return ErrInvalidListingKind
	}

	if listing.RoyaltySum() > 1 {
		return ErrInvalidRoyalties
	}

	return nil
}

func (s *implListingService) FindAll(ctx context.Context, includeHidden bool) ([]models.Listing, error) {
	return s.listings.FindAll(ctx, includeHidden)
}

func (s *implListingService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	return s.mapNotFound(s.listings.FindByID(ctx, id))
}

func (s *implListingService) FindBySlug(ctx context.Context, slugStr string) (*models.Listing, error) {
	return s.mapNotFound(s.listings.FindBySlug(ctx, slugStr))
}

func (s *implListingService) FindBySeriesID(ctx context.Context, seriesID string) (*models.Listing, error) {
	return s.mapNotFound(s.listings.FindBySeriesID(ctx, seriesID))
}

func (s *implListingService) FindByEventID(ctx context.Context, eventID primitive.ObjectID) ([]models.Listing, error) {
	return s.listings.FindByEventID(ctx, eventID)
}

func (s *implListingService) FindByVenueID(ctx context.Context, venueID primitive.ObjectID) ([]models.Listing, error) {
	return s.listings.FindByVenueID(ctx, venueID)
}

func (s *implListingService) FindByOwner(ctx context.Context, ownerAccountID string) ([]models.Listing, error) {
	return s.listings.FindByOwner(ctx, ownerAccountID)
}

func (s *implListingService) Update(ctx context.Context, actor *models.User, id primitive.ObjectID, set bson.M) error {
	if _, err := s.requireOwnership(ctx, actor, id); err != nil {
		return err
	}

	err := s.listings.Update(ctx, id, set)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrListingNotFound
	}
	return err
}

func (s *implListingService) Delete(ctx context.Context, actor *models.User, id primitive.ObjectID) error {
	if _, err := s.requireOwnership(ctx, actor, id); err != nil {
		return err
	}

	err := s.listings.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrListingNotFound
	}
	return err
}

// requireOwnership admits the listing's owner wallet and admins.
func (s *implListingService) requireOwnership(ctx context.Context, actor *models.User, id primitive.ObjectID) (*models.Listing, error) {
	listing, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if listing.OwnerAccountID != actor.NearWalletAccountID && !actor.HasRole(models.RoleAdmin) {
		return nil, ErrNotOwner
	}

	return listing, nil
}

func (s *implListingService) NFT(ctx context.Context, slugStr string) (*models.NFTMetadata, error) {
	listing, err := s.FindBySlug(ctx, slugStr)
	if err != nil {
		return nil, err
	}

	var event *models.Event
	if listing.EventID != nil {
		if e, err := s.events.FindByID(ctx, *listing.EventID); err == nil {
			event = e
		}
	}

	var venue *models.Venue
	if listing.VenueID != nil {
		if v, err := s.venues.FindByID(ctx, *listing.VenueID); err == nil {
			venue = v
		}
	}

	nft := models.NFTProjection(listing, event, venue, s.domain)
	return &nft, nil
}

func (s *implListingService) ConfirmMint(ctx context.Context, actor *models.User, id primitive.ObjectID, txHash string) (*models.Listing, error) {
	listing, err := s.requireOwnership(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if listing.IsSeriesBound() {
		return nil, ErrSeriesAlreadyBound
	}

	ev, err := s.observe(ctx, txHash)
	if err != nil {
		return nil, err
	}

	if err := s.listings.BindSeries(ctx, id, ev.TokenSeriesID); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrSeriesAlreadyBound
		case errors.Is(err, repo.ErrDuplicate):
			return nil, fmt.Errorf("series %s is already bound to another listing: %w", ev.TokenSeriesID, err)
		}
		return nil, err
	}

	s.l.Infof(ctx, "listingService.ConfirmMint: listing %s bound to series %s", id.Hex(), ev.TokenSeriesID)
	listing.TokenSeriesID = ev.TokenSeriesID
	return listing, nil
}

// observe fetches the transaction's receipts and extracts its series event.
func (s *implListingService) observe(ctx context.Context, txHash string) (*near.SeriesEvent, error) {
	status, err := s.chain.GetTxStatus(ctx, txHash, s.nearConf.ContractID)
	if err != nil {
		if errors.Is(err, near.ErrTxNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	ev, err := near.ExtractSeriesEvent(status)
	if err != nil {
		return nil, ErrMalformedEvent
	}

	return ev, nil
}

func (s *implListingService) ReconcilePurchase(ctx context.Context, txHash, source string) (*models.Listing, error) {
	ok, err := s.guard.Acquire(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyReconciled
	}

	listing, err := s.reconcile(ctx, txHash, source)
	if err != nil && !errors.Is(err, ErrAlreadyReconciled) {
		// Free the guard so a transient failure can be retried; the
		// durable purchase record still blocks genuine replays.
		if relErr := s.guard.Release(ctx, txHash); relErr != nil {
			s.l.Errorf(ctx, "listingService.ReconcilePurchase: release guard: %v", relErr)
		}
	}
	return listing, err
}

func (s *implListingService) reconcile(ctx context.Context, txHash, source string) (*models.Listing, error) {
	ev, err := s.observe(ctx, txHash)
	if err != nil {
		return nil, err
	}

	listing, err := s.listings.FindBySeriesID(ctx, ev.TokenSeriesID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	// The durable idempotency record. Recording before decrementing means
	// a crash between the two leaves a unit unsold rather than oversold.
	record := &models.Purchase{
		TransactionHash: txHash,
		TokenSeriesID:   ev.TokenSeriesID,
		ListingID:       listing.ID,
		Source:          source,
	}
	if err := s.purchases.Record(ctx, record); err != nil {
		if errors.Is(err, repo.ErrAlreadyRecorded) {
			return nil, ErrAlreadyReconciled
		}
		return nil, err
	}

	// Unlimited listings have no counter to decrement.
	if listing.Available == nil {
		s.l.Infof(ctx, "listingService.reconcile: tx %s applied to unlimited series %s", txHash, ev.TokenSeriesID)
		return listing, nil
	}

	updated, err := s.listings.DecrementAvailable(ctx, ev.TokenSeriesID)
	if err != nil {
		if delErr := s.purchases.Delete(ctx, txHash); delErr != nil {
			s.l.Errorf(ctx, "listingService.reconcile: compensate purchase record: %v", delErr)
		}
		switch {
		case errors.Is(err, repo.ErrSoldOut):
			return nil, ErrListingSoldOut
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	s.l.Infof(ctx, "listingService.reconcile: tx %s decremented series %s to %d",
		txHash, ev.TokenSeriesID, *updated.Available)

	s.notify(ctx, txHash, updated)
	return updated, nil
}

// notify emits reconciliation events; delivery failures are logged, never
// surfaced, since the decrement has already been applied.
func (s *implListingService) notify(ctx context.Context, txHash string, listing *models.Listing) {
	if s.prod == nil {
		return
	}

	err := s.prod.PublishListingReconciled(ctx, kafkaEvents.ListingReconciledEvent{
		TransactionHash: txHash,
		TokenSeriesID:   listing.TokenSeriesID,
		ListingID:       listing.ID.Hex(),
		Available:       listing.Available,
	})
	if err != nil {
		s.l.Errorf(ctx, "listingService.notify: %v", err)
	}

	if listing.Available != nil && *listing.Available == 0 {
		err := s.prod.PublishListingSoldOut(ctx, kafkaEvents.ListingSoldOutEvent{
			TokenSeriesID: listing.TokenSeriesID,
			ListingID:     listing.ID.Hex(),
		})
		if err != nil {
			s.l.Errorf(ctx, "listingService.notify: %v", err)
		}
	}
}

func (s *implListingService) mapNotFound(listing *models.Listing, err error) (*models.Listing, error) {
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrListingNotFound
	}
	return listing, err
}
