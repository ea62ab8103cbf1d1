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

type UserRepository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByUID(ctx context.Context, uid string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByOTP(ctx context.Context, otp string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	AddRole(ctx context.Context, id primitive.ObjectID, role models.Role) error
	RemoveRole(ctx context.Context, id primitive.ObjectID, role models.Role) error

	SetOTP(ctx context.Context, id primitive.ObjectID, otp string, expiresAt time.Time) error

	HasEventBookmark(ctx context.Context, id, eventID primitive.ObjectID) (bool, error)
	AddEventBookmark(ctx context.Context, id, eventID primitive.ObjectID) error
	RemoveEventBookmark(ctx context.Context, id, eventID primitive.ObjectID) error
	HasVenueBookmark(ctx context.Context, id, venueID primitive.ObjectID) (bool, error)
	AddVenueBookmark(ctx context.Context, id, venueID primitive.ObjectID) error
	RemoveVenueBookmark(ctx context.Context, id, venueID primitive.ObjectID) error
}

type mongoUserRepository struct {
	coll *mongo.Collection
	l    logger.Logger
}

func NewMongoUserRepository(db *mongo.Database, l logger.Logger) UserRepository {
	return &mongoUserRepository{
		coll: db.Collection("users"),
		l:    l,
	}
}

func (r *mongoUserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.IsActive = true

	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		r.l.Errorf(ctx, "mongoUserRepository.Create: %v", err)
		return nil, err
	}

	u.ID = res.InsertedID.(primitive.ObjectID)
	return u, nil
}

// FindByUID matches either the external identity or the linked wallet
// account, since claim endpoints identify users by wallet.
func (r *mongoUserRepository) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"uid": uid},
		bson.M{"nearWalletAccountId": uid},
	}}
	return r.findOne(ctx, filter)
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByOTP(ctx context.Context, otp string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"otp": otp})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		r.l.Errorf(ctx, "mongoUserRepository.findOne: %v", err)
		return nil, err
	}
	return &u, nil
}

func (r *mongoUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		r.l.Errorf(ctx, "mongoUserRepository.FindAll: %v", err)
		return nil, err
	}

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()
	return r.updateOne(ctx, id, bson.M{"$set": set})
}

func (r *mongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.l.Errorf(ctx, "mongoUserRepository.Delete: %v", err)
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) AddRole(ctx context.Context, id primitive.ObjectID, role models.Role) error {
	return r.updateOne(ctx, id, bson.M{"$addToSet": bson.M{"roles": role}})
}

func (r *mongoUserRepository) RemoveRole(ctx context.Context, id primitive.ObjectID, role models.Role) error {
	return r.updateOne(ctx, id, bson.M{"$pull": bson.M{"roles": role}})
}

func (r *mongoUserRepository) SetOTP(ctx context.Context, id primitive.ObjectID, otp string, expiresAt time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"otp":               otp,
		"otpExpirationDate": expiresAt,
		"updatedAt":         time.Now(),
	}})
}

func (r *mongoUserRepository) HasEventBookmark(ctx context.Context, id, eventID primitive.ObjectID) (bool, error) {
	return r.hasBookmark(ctx, id, "bookmarkedEvents", eventID)
}

func (r *mongoUserRepository) AddEventBookmark(ctx context.Context, id, eventID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$addToSet": bson.M{"bookmarkedEvents": eventID}})
}

func (r *mongoUserRepository) RemoveEventBookmark(ctx context.Context, id, eventID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$pull": bson.M{"bookmarkedEvents": eventID}})
}

func (r *mongoUserRepository) HasVenueBookmark(ctx context.Context, id, venueID primitive.ObjectID) (bool, error) {
	return r.hasBookmark(ctx, id, "bookmarkedVenues", venueID)
}

func (r *mongoUserRepository) AddVenueBookmark(ctx context.Context, id, venueID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$addToSet": bson.M{"bookmarkedVenues": venueID}})
}

func (r *mongoUserRepository) RemoveVenueBookmark(ctx context.Context, id, venueID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$pull": bson.M{"bookmarkedVenues": venueID}})
}

func (r *mongoUserRepository) hasBookmark(ctx context.Context, id primitive.ObjectID, field string, ref primitive.ObjectID) (bool, error) {
	err := r.coll.FindOne(ctx, bson.M{"_id": id, field: ref}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		r.l.Errorf(ctx, "mongoUserRepository.hasBookmark: %v", err)
		return false, err
	}
	return true, nil
}

func (r *mongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		r.l.Errorf(ctx, "mongoUserRepository.updateOne: %v", err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
