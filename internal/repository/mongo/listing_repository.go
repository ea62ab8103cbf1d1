package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/theroundhq/marketplace/internal/models"
	"github.com/theroundhq/marketplace/pkg/logger"
)

// ErrSoldOut is returned when a listing exists but its available counter
// has already reached zero.
var ErrSoldOut = errors.New("listing sold out")

type ListingRepository interface {
	Create(ctx context.Context, l *models.Listing) (*models.Listing, error)
	FindAll(ctx context.Context, includeHidden bool) ([]models.Listing, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	FindBySlug(ctx context.Context, slug string) (*models.Listing, error)
	FindBySeriesID(ctx context.Context, seriesID string) (*models.Listing, error)
	FindByEventID(ctx context.Context, eventID primitive.ObjectID) ([]models.Listing, error)
	FindByVenueID(ctx context.Context, venueID primitive.ObjectID) ([]models.Listing, error)
	FindByOwner(ctx context.Context, ownerAccountID string) ([]models.Listing, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	BindSeries(ctx context.Context, id primitive.ObjectID, seriesID string) error
	DecrementAvailable(ctx context.Context, seriesID string) (*models.Listing, error)
}

type mongoListingRepository struct {
	coll *mongo.Collection
	l    logger.Logger
}

func NewMongoListingRepository(db *mongo.Database, l logger.Logger) ListingRepository {
	return &mongoListingRepository{
		coll: db.Collection("listings"),
		l:    l,
	}
}

// visible scopes a filter to listings the storefront may show.
func visible(filter bson.M) bson.M {
	filter["isActive"] = true
	filter["isCensored"] = false
	return filter
}

func (r *mongoListingRepository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	listing.IsActive = true

	res, err := r.coll.InsertOne(ctx, listing)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		r.l.Errorf(ctx, "mongoListingRepository.Create: %v", err)
		return nil, err
	}

	listing.ID = res.InsertedID.(primitive.ObjectID)
	return listing, nil
}

func (r *mongoListingRepository) FindAll(ctx context.Context, includeHidden bool) ([]models.Listing, error) {
	filter := bson.M{}
	if !includeHidden {
		filter = visible(filter)
	}
	return r.findMany(ctx, filter)
}

func (r *mongoListingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoListingRepository) FindBySlug(ctx context.Context, slug string) (*models.Listing, error) {
	return r.findOne(ctx, visible(bson.M{"slug": slug}))
}

func (r *mongoListingRepository) FindBySeriesID(ctx context.Context, seriesID string) (*models.Listing, error) {
	return r.findOne(ctx, visible(bson.M{"tokenSeriesId": seriesID}))
}

func (r *mongoListingRepository) FindByEventID(ctx context.Context, eventID primitive.ObjectID) ([]models.Listing, error) {
	return r.findMany(ctx, visible(bson.M{"event": eventID}))
}

func (r *mongoListingRepository) FindByVenueID(ctx context.Context, venueID primitive.ObjectID) ([]models.Listing, error) {
	return r.findMany(ctx, visible(bson.M{"venue": venueID}))
}

func (r *mongoListingRepository) FindByOwner(ctx context.Context, ownerAccountID string) ([]models.Listing, error) {
	return r.findMany(ctx, bson.M{"ownerAccountId": ownerAccountID})
}

func (r *mongoListingRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		r.l.Errorf(ctx, "mongoListingRepository.Update: %v", err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoListingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.l.Errorf(ctx, "mongoListingRepository.Delete: %v", err)
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// BindSeries replaces a listing's placeholder series id with the
// ledger-assigned one. Only unbound listings match, so a confirmed mint
// can never overwrite an already-bound series.
func (r *mongoListingRepository) BindSeries(ctx context.Context, id primitive.ObjectID, seriesID string) error {
	filter := bson.M{
		"_id":           id,
		"tokenSeriesId": bson.M{"$regex": "^" + models.SeriesPlaceholderPrefix},
	}
	update := bson.M{"$set": bson.M{
		"tokenSeriesId": seriesID,
		"updatedAt":     time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		r.l.Errorf(ctx, "mongoListingRepository.BindSeries: %v", err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementAvailable applies one confirmed purchase as a single atomic
// conditional update: the filter requires available > 0, so concurrent
// confirmations can never drive the counter negative.
func (r *mongoListingRepository) DecrementAvailable(ctx context.Context, seriesID string) (*models.Listing, error) {
	filter := bson.M{
		"tokenSeriesId": seriesID,
		"available":     bson.M{"$gt": 0},
	}
	update := bson.M{
		"$inc": bson.M{"available": -1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing models.Listing
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&listing)
	if err == nil {
		return &listing, nil
	}
	if err != mongo.ErrNoDocuments {
		r.l.Errorf(ctx, "mongoListingRepository.DecrementAvailable: %v", err)
		return nil, err
	}

	// No match: distinguish an unknown series from an exhausted one.
	if _, lookupErr := r.findOne(ctx, bson.M{"tokenSeriesId": seriesID}); lookupErr != nil {
		return nil, lookupErr
	}
	return nil, ErrSoldOut
}

func (r *mongoListingRepository) findOne(ctx context.Context, filter bson.M) (*models.Listing, error) {
	var listing models.Listing
	if err := r.coll.FindOne(ctx, filter).Decode(&listing); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		r.l.Errorf(ctx, "mongoListingRepository.findOne: %v", err)
		return nil, err
	}
	return &listing, nil
}

func (r *mongoListingRepository) findMany(ctx context.Context, filter bson.M) ([]models.Listing, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		r.l.Errorf(ctx, "mongoListingRepository.findMany: %v", err)
		return nil, err
	}

	var listings []models.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}
