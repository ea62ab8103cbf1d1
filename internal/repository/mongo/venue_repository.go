package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/theroundhq/marketplace/internal/models"
	"github.com/theroundhq/marketplace/pkg/logger"
)

type VenueRepository interface {
	Create(ctx context.Context, v *models.Venue) (*models.Venue, error)
	FindAll(ctx context.Context, includeHidden bool) ([]models.Venue, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Venue, error)
	FindBySlug(ctx context.Context, slug string) (*models.Venue, error)
	FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Venue, error)
	FindBySlugForOwner(ctx context.Context, slug string, ownerID primitive.ObjectID) (*models.Venue, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoVenueRepository struct {
	coll *mongo.Collection
	l    logger.Logger
}

func NewMongoVenueRepository(db *mongo.Database, l logger.Logger) VenueRepository {
	return &mongoVenueRepository{
		coll: db.Collection("venues"),
		l:    l,
	}
}

func (r *mongoVenueRepository) Create(ctx context.Context, v *models.Venue) (*models.Venue, error) {
	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now
	v.IsActive = true

	res, err := r.coll.InsertOne(ctx, v)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		r.l.Errorf(ctx, "mongoVenueRepository.Create: %v", err)
		return nil, err
	}

	v.ID = res.InsertedID.(primitive.ObjectID)
	return v, nil
}

func (r *mongoVenueRepository) FindAll(ctx context.Context, includeHidden bool) ([]models.Venue, error) {
	filter := bson.M{}
	if !includeHidden {
		filter = visible(filter)
	}
	return r.findMany(ctx, filter)
}

func (r *mongoVenueRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Venue, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoVenueRepository) FindBySlug(ctx context.Context, slug string) (*models.Venue, error) {
	return r.findOne(ctx, visible(bson.M{"slug": slug}))
}

func (r *mongoVenueRepository) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Venue, error) {
	return r.findMany(ctx, bson.M{"owner": ownerID})
}

func (r *mongoVenueRepository) FindBySlugForOwner(ctx context.Context, slug string, ownerID primitive.ObjectID) (*models.Venue, error) {
	return r.findOne(ctx, bson.M{"slug": slug, "owner": ownerID})
}

func (r *mongoVenueRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		r.l.Errorf(ctx, "mongoVenueRepository.Update: %v", err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoVenueRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.l.Errorf(ctx, "mongoVenueRepository.Delete: %v", err)
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoVenueRepository) findOne(ctx context.Context, filter bson.M) (*models.Venue, error) {
	var v models.Venue
	if err := r.coll.FindOne(ctx, filter).Decode(&v); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		r.l.Errorf(ctx, "mongoVenueRepository.findOne: %v", err)
		return nil, err
	}
	return &v, nil
}

func (r *mongoVenueRepository) findMany(ctx context.Context, filter bson.M) ([]models.Venue, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		r.l.Errorf(ctx, "mongoVenueRepository.findMany: %v", err)
		return nil, err
	}

	var venues []models.Venue
	if err := cursor.All(ctx, &venues); err != nil {
		return nil, err
	}
	return venues, nil
}
