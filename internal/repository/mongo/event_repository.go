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

type EventRepository interface {
	Create(ctx context.Context, e *models.Event) (*models.Event, error)
	FindAll(ctx context.Context, includeHidden bool) ([]models.Event, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	FindBySlug(ctx context.Context, slug string) (*models.Event, error)
	FindByVenueID(ctx context.Context, venueID primitive.ObjectID) ([]models.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoEventRepository struct {
	coll *mongo.Collection
	l    logger.Logger
}

func NewMongoEventRepository(db *mongo.Database, l logger.Logger) EventRepository {
	return &mongoEventRepository{
		coll: db.Collection("events"),
		l:    l,
	}
}

func (r *mongoEventRepository) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	e.IsActive = true

	res, err := r.coll.InsertOne(ctx, e)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		r.l.Errorf(ctx, "mongoEventRepository.Create: %v", err)
		return nil, err
	}

	e.ID = res.InsertedID.(primitive.ObjectID)
	return e, nil
}

func (r *mongoEventRepository) FindAll(ctx context.Context, includeHidden bool) ([]models.Event, error) {
	filter := bson.M{}
	if !includeHidden {
		filter = visible(filter)
	}
	return r.findMany(ctx, filter)
}

func (r *mongoEventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoEventRepository) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return r.findOne(ctx, visible(bson.M{"slug": slug}))
}

func (r *mongoEventRepository) FindByVenueID(ctx context.Context, venueID primitive.ObjectID) ([]models.Event, error) {
	return r.findMany(ctx, bson.M{"venue": venueID})
}

func (r *mongoEventRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		r.l.Errorf(ctx, "mongoEventRepository.Update: %v", err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoEventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.l.Errorf(ctx, "mongoEventRepository.Delete: %v", err)
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoEventRepository) findOne(ctx context.Context, filter bson.M) (*models.Event, error) {
	var e models.Event
	if err := r.coll.FindOne(ctx, filter).Decode(&e); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		r.l.Errorf(ctx, "mongoEventRepository.findOne: %v", err)
		return nil, err
	}
	return &e, nil
}

func (r *mongoEventRepository) findMany(ctx context.Context, filter bson.M) ([]models.Event, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		r.l.Errorf(ctx, "mongoEventRepository.findMany: %v", err)
		return nil, err
	}

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
