package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/theroundhq/marketplace/internal/models"
	"github.com/theroundhq/marketplace/pkg/logger"
)

// ErrAlreadyRecorded means this transaction hash has already been applied.
// The unique index on transactionHash makes the record the durable
// at-most-once authority for reconciliation.
var ErrAlreadyRecorded = errors.New("purchase already recorded")

type PurchaseRepository interface {
	Record(ctx context.Context, p *models.Purchase) error
	FindByTransactionHash(ctx context.Context, txHash string) (*models.Purchase, error)
	Delete(ctx context.Context, txHash string) error
}

type mongoPurchaseRepository struct {
	coll *mongo.Collection
	l    logger.Logger
}

func NewMongoPurchaseRepository(db *mongo.Database, l logger.Logger) PurchaseRepository {
	return &mongoPurchaseRepository{
		coll: db.Collection("purchases"),
		l:    l,
	}
}

func (r *mongoPurchaseRepository) Record(ctx context.Context, p *models.Purchase) error {
	p.AppliedAt = time.Now()

	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyRecorded
		}
		r.l.Errorf(ctx, "mongoPurchaseRepository.Record: %v", err)
		return err
	}

	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoPurchaseRepository) FindByTransactionHash(ctx context.Context, txHash string) (*models.Purchase, error) {
	var p models.Purchase
	if err := r.coll.FindOne(ctx, bson.M{"transactionHash": txHash}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		r.l.Errorf(ctx, "mongoPurchaseRepository.FindByTransactionHash: %v", err)
		return nil, err
	}
	return &p, nil
}

// Delete removes a purchase record as compensation when the decrement it
// was recorded for could not be applied.
func (r *mongoPurchaseRepository) Delete(ctx context.Context, txHash string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"transactionHash": txHash})
	if err != nil {
		r.l.Errorf(ctx, "mongoPurchaseRepository.Delete: %v", err)
	}
	return err
}
