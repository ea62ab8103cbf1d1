package http

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theroundhq/marketplace/internal/models"
	"github.com/theroundhq/marketplace/internal/service"
)

type fakeAuthService struct {
	loginNear      func(ctx context.Context, accountID string, signature, publicKey []byte) (string, error)
	loginFederated func(ctx context.Context, providerToken string) (string, error)
	verifyToken    func(ctx context.Context, token string) (*models.SessionUser, error)
}

func (f *fakeAuthService) LoginWithNear(ctx context.Context, accountID string, signature, publicKey []byte) (string, error) {
	if f.loginNear != nil {
		return f.loginNear(ctx, accountID, signature, publicKey)
	}
	return "", service.ErrInvalidCredentials
}

func (f *fakeAuthService) LoginWithFederated(ctx context.Context, providerToken string) (string, error) {
	if f.loginFederated != nil {
		return f.loginFederated(ctx, providerToken)
	}
	return "", service.ErrInvalidCredentials
}

func (f *fakeAuthService) VerifyToken(ctx context.Context, token string) (*models.SessionUser, error) {
	if f.verifyToken != nil {
		return f.verifyToken(ctx, token)
	}
	return nil, service.ErrInvalidCredentials
}

type fakeUserService struct {
	findByUID func(ctx context.Context, uid string) (*models.User, error)
	findByOTP func(ctx context.Context, otp string) (*models.User, error)
	whitelist func(ctx context.Context, id primitive.ObjectID) error
}

func (f *fakeUserService) Resolve(ctx context.Context, su *models.SessionUser) (*models.User, error) {
	return nil, service.ErrUserNotFound
}

func (f *fakeUserService) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	if f.findByUID != nil {
		return f.findByUID(ctx, uid)
	}
	return nil, service.ErrUserNotFound
}

func (f *fakeUserService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return nil, service.ErrUserNotFound
}

func (f *fakeUserService) FindAll(ctx context.Context) ([]models.User, error) { return nil, nil }

func (f *fakeUserService) Create(ctx context.Context, u *models.User) (*models.User, error) {
	return u, nil
}

func (f *fakeUserService) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return nil
}

func (f *fakeUserService) Delete(ctx context.Context, id primitive.ObjectID) error { return nil }

func (f *fakeUserService) Whitelist(ctx context.Context, id primitive.ObjectID) error {
	if f.whitelist != nil {
		return f.whitelist(ctx, id)
	}
	return nil
}

func (f *fakeUserService) RemoveFromWhitelist(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (f *fakeUserService) IssueOTP(ctx context.Context, id primitive.ObjectID) (string, time.Time, error) {
	return "123456", time.Now().Add(30 * time.Second), nil
}

func (f *fakeUserService) FindByOTP(ctx context.Context, otp string) (*models.User, error) {
	if f.findByOTP != nil {
		return f.findByOTP(ctx, otp)
	}
	return nil, service.ErrUserNotFound
}

func (f *fakeUserService) ToggleEventBookmark(ctx context.Context, userID, eventID primitive.ObjectID) error {
	return nil
}

func (f *fakeUserService) ToggleVenueBookmark(ctx context.Context, userID, venueID primitive.ObjectID) error {
	return nil
}

type fakeVenueService struct {
	findBySlug      func(ctx context.Context, slug string) (*models.Venue, error)
	findOwnedBySlug func(ctx context.Context, ownerID primitive.ObjectID, slug string) (*models.Venue, error)
	create          func(ctx context.Context, actor *models.User, venue *models.Venue) (*models.Venue, error)
}

func (f *fakeVenueService) Create(ctx context.Context, actor *models.User, venue *models.Venue) (*models.Venue, error) {
	if f.create != nil {
		return f.create(ctx, actor, venue)
	}
	venue.ID = primitive.NewObjectID()
	return venue, nil
}

func (f *fakeVenueService) FindAll(ctx context.Context, includeHidden bool) ([]models.Venue, error) {
	return nil, nil
}

func (f *fakeVenueService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Venue, error) {
	return nil, service.ErrVenueNotFound
}

func (f *fakeVenueService) FindBySlug(ctx context.Context, slug string) (*models.Venue, error) {
	if f.findBySlug != nil {
		return f.findBySlug(ctx, slug)
	}
	return nil, service.ErrVenueNotFound
}

func (f *fakeVenueService) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Venue, error) {
	return nil, nil
}

func (f *fakeVenueService) FindOwnedBySlug(ctx context.Context, ownerID primitive.ObjectID, slug string) (*models.Venue, error) {
	if f.findOwnedBySlug != nil {
		return f.findOwnedBySlug(ctx, ownerID, slug)
	}
	return nil, service.ErrVenueNotFound
}

func (f *fakeVenueService) Update(ctx context.Context, actor *models.User, id primitive.ObjectID, set bson.M) error {
	return nil
}

func (f *fakeVenueService) Delete(ctx context.Context, actor *models.User, id primitive.ObjectID) error {
	return nil
}

type fakeEventService struct {
	findBySlug func(ctx context.Context, slug string) (*models.Event, error)
}

func (f *fakeEventService) Create(ctx context.Context, actor *models.User, event *models.Event) (*models.Event, error) {
	event.ID = primitive.NewObjectID()
	return event, nil
}

func (f *fakeEventService) FindAll(ctx context.Context, includeHidden bool) ([]models.Event, error) {
	return nil, nil
}

func (f *fakeEventService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return nil, service.ErrEventNotFound
}

func (f *fakeEventService) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	if f.findBySlug != nil {
		return f.findBySlug(ctx, slug)
	}
	return nil, service.ErrEventNotFound
}

func (f *fakeEventService) FindByVenueID(ctx context.Context, venueID primitive.ObjectID) ([]models.Event, error) {
	return nil, nil
}

func (f *fakeEventService) Update(ctx context.Context, actor *models.User, id primitive.ObjectID, set bson.M) error {
	return nil
}

func (f *fakeEventService) Delete(ctx context.Context, actor *models.User, id primitive.ObjectID) error {
	return nil
}

type fakeListingService struct {
	create    func(ctx context.Context, actor *models.User, listing *models.Listing) (*models.Listing, error)
	nft       func(ctx context.Context, slug string) (*models.NFTMetadata, error)
	mint      func(ctx context.Context, actor *models.User, id primitive.ObjectID, txHash string) (*models.Listing, error)
	reconcile func(ctx context.Context, txHash, source string) (*models.Listing, error)
}

func (f *fakeListingService) Create(ctx context.Context, actor *models.User, listing *models.Listing) (*models.Listing, error) {
	if f.create != nil {
		return f.create(ctx, actor, listing)
	}
	listing.ID = primitive.NewObjectID()
	return listing, nil
}

func (f *fakeListingService) FindAll(ctx context.Context, includeHidden bool) ([]models.Listing, error) {
	return nil, nil
}

func (f *fakeListingService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	return nil, service.ErrListingNotFound
}

func (f *fakeListingService) FindBySlug(ctx context.Context, slug string) (*models.Listing, error) {
	return nil, service.ErrListingNotFound
}

func (f *fakeListingService) FindBySeriesID(ctx context.Context, seriesID string) (*models.Listing, error) {
	return nil, service.ErrListingNotFound
}

func (f *fakeListingService) FindByEventID(ctx context.Context, eventID primitive.ObjectID) ([]models.Listing, error) {
	return nil, nil
}

func (f *fakeListingService) FindByVenueID(ctx context.Context, venueID primitive.ObjectID) ([]models.Listing, error) {
	return nil, nil
}

func (f *fakeListingService) FindByOwner(ctx context.Context, ownerAccountID string) ([]models.Listing, error) {
	return nil, nil
}

func (f *fakeListingService) Update(ctx context.Context, actor *models.User, id primitive.ObjectID, set bson.M) error {
	return nil
}

func (f *fakeListingService) Delete(ctx context.Context, actor *models.User, id primitive.ObjectID) error {
	return nil
}

func (f *fakeListingService) NFT(ctx context.Context, slug string) (*models.NFTMetadata, error) {
	if f.nft != nil {
		return f.nft(ctx, slug)
	}
	return nil, service.ErrListingNotFound
}

func (f *fakeListingService) ConfirmMint(ctx context.Context, actor *models.User, id primitive.ObjectID, txHash string) (*models.Listing, error) {
	if f.mint != nil {
		return f.mint(ctx, actor, id, txHash)
	}
	return nil, service.ErrListingNotFound
}

func (f *fakeListingService) ReconcilePurchase(ctx context.Context, txHash, source string) (*models.Listing, error) {
	if f.reconcile != nil {
		return f.reconcile(ctx, txHash, source)
	}
	return nil, service.ErrListingNotFound
}
