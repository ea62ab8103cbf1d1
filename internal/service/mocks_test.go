package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	kafkaEvents "github.com/theroundhq/marketplace/internal/delivery/kafka"
	"github.com/theroundhq/marketplace/internal/identity"
	"github.com/theroundhq/marketplace/internal/models"
	"github.com/theroundhq/marketplace/internal/near"
	repo "github.com/theroundhq/marketplace/internal/repository/mongo"
)

// Function-field fakes. A test sets only the calls it expects; anything
// else falls through to a zero value.

type fakeUserRepo struct {
	create       func(ctx context.Context, u *models.User) (*models.User, error)
	findByUID    func(ctx context.Context, uid string) (*models.User, error)
	findByID     func(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	findByOTP    func(ctx context.Context, otp string) (*models.User, error)
	addRole      func(ctx context.Context, id primitive.ObjectID, role models.Role) error
	removeRole   func(ctx context.Context, id primitive.ObjectID, role models.Role) error
	setOTP       func(ctx context.Context, id primitive.ObjectID, otp string, expiresAt time.Time) error
	hasEventBmk  func(ctx context.Context, id, eventID primitive.ObjectID) (bool, error)
	addEventBmk  func(ctx context.Context, id, eventID primitive.ObjectID) error
	delEventBmk  func(ctx context.Context, id, eventID primitive.ObjectID) error
	hasVenueBmk  func(ctx context.Context, id, venueID primitive.ObjectID) (bool, error)
	addVenueBmk  func(ctx context.Context, id, venueID primitive.ObjectID) error
	delVenueBmk  func(ctx context.Context, id, venueID primitive.ObjectID) error
	updateCalled bool
}

func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.create != nil {
		return f.create(ctx, u)
	}
	return u, nil
}

func (f *fakeUserRepo) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	if f.findByUID != nil {
		return f.findByUID(ctx, uid)
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.findByID != nil {
		return f.findByID(ctx, id)
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) FindByOTP(ctx context.Context, otp string) (*models.User, error) {
	if f.findByOTP != nil {
		return f.findByOTP(ctx, otp)
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) FindAll(ctx context.Context) ([]models.User, error) { return nil, nil }

func (f *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	f.updateCalled = true
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error { return nil }

func (f *fakeUserRepo) AddRole(ctx context.Context, id primitive.ObjectID, role models.Role) error {
	if f.addRole != nil {
		return f.addRole(ctx, id, role)
	}
	return nil
}

func (f *fakeUserRepo) RemoveRole(ctx context.Context, id primitive.ObjectID, role models.Role) error {
	if f.removeRole != nil {
		return f.removeRole(ctx, id, role)
	}
	return nil
}

func (f *fakeUserRepo) SetOTP(ctx context.Context, id primitive.ObjectID, otp string, expiresAt time.Time) error {
	if f.setOTP != nil {
		return f.setOTP(ctx, id, otp, expiresAt)
	}
	return nil
}

func (f *fakeUserRepo) HasEventBookmark(ctx context.Context, id, eventID primitive.ObjectID) (bool, error) {
	if f.hasEventBmk != nil {
		return f.hasEventBmk(ctx, id, eventID)
	}
	return false, nil
}

func (f *fakeUserRepo) AddEventBookmark(ctx context.Context, id, eventID primitive.ObjectID) error {
	if f.addEventBmk != nil {
		return f.addEventBmk(ctx, id, eventID)
	}
	return nil
}

func (f *fakeUserRepo) RemoveEventBookmark(ctx context.Context, id, eventID primitive.ObjectID) error {
	if f.delEventBmk != nil {
		return f.delEventBmk(ctx, id, eventID)
	}
	return nil
}

func (f *fakeUserRepo) HasVenueBookmark(ctx context.Context, id, venueID primitive.ObjectID) (bool, error) {
	if f.hasVenueBmk != nil {
		return f.hasVenueBmk(ctx, id, venueID)
	}
	return false, nil
}

func (f *fakeUserRepo) AddVenueBookmark(ctx context.Context, id, venueID primitive.ObjectID) error {
	if f.addVenueBmk != nil {
		return f.addVenueBmk(ctx, id, venueID)
	}
	return nil
}

func (f *fakeUserRepo) RemoveVenueBookmark(ctx context.Context, id, venueID primitive.ObjectID) error {
	if f.delVenueBmk != nil {
		return f.delVenueBmk(ctx, id, venueID)
	}
	return nil
}

type fakeListingRepo struct {
	create         func(ctx context.Context, l *models.Listing) (*models.Listing, error)
	findByID       func(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	findBySlug     func(ctx context.Context, slug string) (*models.Listing, error)
	findBySeriesID func(ctx context.Context, seriesID string) (*models.Listing, error)
	bindSeries     func(ctx context.Context, id primitive.ObjectID, seriesID string) error
	decrement      func(ctx context.Context, seriesID string) (*models.Listing, error)
}

func (f *fakeListingRepo) Create(ctx context.Context, l *models.Listing) (*models.Listing, error) {
	if f.create != nil {
		return f.create(ctx, l)
	}
	return l, nil
}

func (f *fakeListingRepo) FindAll(ctx context.Context, includeHidden bool) ([]models.Listing, error) {
	return nil, nil
}

func (f *fakeListingRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	if f.findByID != nil {
		return f.findByID(ctx, id)
	}
	return nil, repo.ErrNotFound
}

func (f *fakeListingRepo) FindBySlug(ctx context.Context, slug string) (*models.Listing, error) {
	if f.findBySlug != nil {
		return f.findBySlug(ctx, slug)
	}
	return nil, repo.ErrNotFound
}

func (f *fakeListingRepo) FindBySeriesID(ctx context.Context, seriesID string) (*models.Listing, error) {
	if f.findBySeriesID != nil {
		return f.findBySeriesID(ctx, seriesID)
	}
	return nil, repo.ErrNotFound
}

func (f *fakeListingRepo) FindByEventID(ctx context.Context, eventID primitive.ObjectID) ([]models.Listing, error) {
	return nil, nil
}

func (f *fakeListingRepo) FindByVenueID(ctx context.Context, venueID primitive.ObjectID) ([]models.Listing, error) {
	return nil, nil
}

func (f *fakeListingRepo) FindByOwner(ctx context.Context, ownerAccountID string) ([]models.Listing, error) {
	return nil, nil
}

func (f *fakeListingRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return nil
}

func (f *fakeListingRepo) Delete(ctx context.Context, id primitive.ObjectID) error { return nil }

func (f *fakeListingRepo) BindSeries(ctx context.Context, id primitive.ObjectID, seriesID string) error {
	if f.bindSeries != nil {
		return f.bindSeries(ctx, id, seriesID)
	}
	return nil
}

func (f *fakeListingRepo) DecrementAvailable(ctx context.Context, seriesID string) (*models.Listing, error) {
	if f.decrement != nil {
		return f.decrement(ctx, seriesID)
	}
	return nil, repo.ErrNotFound
}

type fakePurchaseRepo struct {
	record   func(ctx context.Context, p *models.Purchase) error
	find     func(ctx context.Context, txHash string) (*models.Purchase, error)
	deleteFn func(ctx context.Context, txHash string) error
	deleted  []string
}

func (f *fakePurchaseRepo) Record(ctx context.Context, p *models.Purchase) error {
	if f.record != nil {
		return f.record(ctx, p)
	}
	return nil
}

func (f *fakePurchaseRepo) FindByTransactionHash(ctx context.Context, txHash string) (*models.Purchase, error) {
	if f.find != nil {
		return f.find(ctx, txHash)
	}
	return nil, repo.ErrNotFound
}

func (f *fakePurchaseRepo) Delete(ctx context.Context, txHash string) error {
	f.deleted = append(f.deleted, txHash)
	if f.deleteFn != nil {
		return f.deleteFn(ctx, txHash)
	}
	return nil
}

type fakeEventRepo struct {
	findByID func(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
}

func (f *fakeEventRepo) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	return e, nil
}

func (f *fakeEventRepo) FindAll(ctx context.Context, includeHidden bool) ([]models.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	if f.findByID != nil {
		return f.findByID(ctx, id)
	}
	return nil, repo.ErrNotFound
}

func (f *fakeEventRepo) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return nil, repo.ErrNotFound
}

func (f *fakeEventRepo) FindByVenueID(ctx context.Context, venueID primitive.ObjectID) ([]models.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id primitive.ObjectID) error { return nil }

type fakeVenueRepo struct {
	findByID           func(ctx context.Context, id primitive.ObjectID) (*models.Venue, error)
	findBySlugForOwner func(ctx context.Context, slug string, ownerID primitive.ObjectID) (*models.Venue, error)
}

func (f *fakeVenueRepo) Create(ctx context.Context, v *models.Venue) (*models.Venue, error) {
	return v, nil
}

func (f *fakeVenueRepo) FindAll(ctx context.Context, includeHidden bool) ([]models.Venue, error) {
	return nil, nil
}

func (f *fakeVenueRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Venue, error) {
	if f.findByID != nil {
		return f.findByID(ctx, id)
	}
	return nil, repo.ErrNotFound
}

func (f *fakeVenueRepo) FindBySlug(ctx context.Context, slug string) (*models.Venue, error) {
	return nil, repo.ErrNotFound
}

func (f *fakeVenueRepo) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Venue, error) {
	return nil, nil
}

func (f *fakeVenueRepo) FindBySlugForOwner(ctx context.Context, slug string, ownerID primitive.ObjectID) (*models.Venue, error) {
	if f.findBySlugForOwner != nil {
		return f.findBySlugForOwner(ctx, slug, ownerID)
	}
	return nil, repo.ErrNotFound
}

func (f *fakeVenueRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return nil
}

func (f *fakeVenueRepo) Delete(ctx context.Context, id primitive.ObjectID) error { return nil }

type fakeGuard struct {
	acquire  func(ctx context.Context, txHash string) (bool, error)
	released []string
}

func (f *fakeGuard) Acquire(ctx context.Context, txHash string) (bool, error) {
	if f.acquire != nil {
		return f.acquire(ctx, txHash)
	}
	return true, nil
}

func (f *fakeGuard) Release(ctx context.Context, txHash string) error {
	f.released = append(f.released, txHash)
	return nil
}

type fakeChain struct {
	getTxStatus func(ctx context.Context, txHash, senderID string) (*near.TxStatus, error)
}

func (f *fakeChain) GetTxStatus(ctx context.Context, txHash, senderID string) (*near.TxStatus, error) {
	if f.getTxStatus != nil {
		return f.getTxStatus(ctx, txHash, senderID)
	}
	return nil, near.ErrTxNotFound
}

type fakeProducer struct {
	reconciled []kafkaEvents.ListingReconciledEvent
	soldOut    []kafkaEvents.ListingSoldOutEvent
}

func (f *fakeProducer) PublishListingReconciled(ctx context.Context, event kafkaEvents.ListingReconciledEvent) error {
	f.reconciled = append(f.reconciled, event)
	return nil
}

func (f *fakeProducer) PublishListingSoldOut(ctx context.Context, event kafkaEvents.ListingSoldOutEvent) error {
	f.soldOut = append(f.soldOut, event)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

type fakeSignatureVerifier struct {
	verify func(ctx context.Context, accountID string, signature, publicKey []byte) error
}

func (f *fakeSignatureVerifier) Verify(ctx context.Context, accountID string, signature, publicKey []byte) error {
	if f.verify != nil {
		return f.verify(ctx, accountID, signature, publicKey)
	}
	return nil
}

type fakeFederatedVerifier struct {
	verify func(ctx context.Context, token string) (*identity.FederatedIdentity, error)
}

func (f *fakeFederatedVerifier) VerifyToken(ctx context.Context, token string) (*identity.FederatedIdentity, error) {
	if f.verify != nil {
		return f.verify(ctx, token)
	}
	return nil, ErrInvalidCredentials
}

// txStatusWithLog builds a transaction status whose second receipt carries
// the given log lines, mirroring how the contract emits events.
func txStatusWithLog(lines ...string) *near.TxStatus {
	return &near.TxStatus{
		ReceiptsOutcome: []near.ReceiptOutcome{
			{Outcome: near.ExecutionOutcome{Logs: nil}},
			{Outcome: near.ExecutionOutcome{Logs: lines}},
		},
	}
}
