package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theroundhq/marketplace/internal/models"
	repo "github.com/theroundhq/marketplace/internal/repository/mongo"
	"github.com/theroundhq/marketplace/pkg/logger"
	"github.com/theroundhq/marketplace/pkg/slug"
)

type VenueService interface {
	Create(ctx context.Context, actor *models.User, venue *models.Venue) (*models.Venue, error)
	FindAll(ctx context.Context, includeHidden bool) ([]models.Venue, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Venue, error)
	FindBySlug(ctx context.Context, slug string) (*models.Venue, error)
	FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Venue, error)
	FindOwnedBySlug(ctx context.Context, ownerID primitive.ObjectID, slug string) (*models.Venue, error)
	Update(ctx context.Context, actor *models.User, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, actor *models.User, id primitive.ObjectID) error
}

type implVenueService struct {
	venues repo.VenueRepository
	l      logger.Logger
}

func NewVenueService(venues repo.VenueRepository, l logger.Logger) VenueService {
	return &implVenueService{
		venues: venues,
		l:      l,
	}
}

func (s *implVenueService) Create(ctx context.Context, actor *models.User, venue *models.Venue) (*models.Venue, error) {
	venue.Slug = slug.Make(venue.Title)
	venue.OwnerID = actor.ID

	return s.venues.Create(ctx, venue)
}

func (s *implVenueService) FindAll(ctx context.Context, includeHidden bool) ([]models.Venue, error) {
	return s.venues.FindAll(ctx, includeHidden)
}

func (s *implVenueService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Venue, error) {
	return s.mapNotFound(s.venues.FindByID(ctx, id))
}

func (s *implVenueService) FindBySlug(ctx context.Context, slugStr string) (*models.Venue, error) {
	return s.mapNotFound(s.venues.FindBySlug(ctx, slugStr))
}

func (s *implVenueService) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Venue, error) {
	return s.venues.FindByOwner(ctx, ownerID)
}

// FindOwnedBySlug scopes the lookup to the owner so a hidden or inactive
// venue still resolves for its operator but stays invisible to everyone else.
func (s *implVenueService) FindOwnedBySlug(ctx context.Context, ownerID primitive.ObjectID, slugStr string) (*models.Venue, error) {
	return s.mapNotFound(s.venues.FindBySlugForOwner(ctx, slugStr, ownerID))
}

func (s *implVenueService) Update(ctx context.Context, actor *models.User, id primitive.ObjectID, set bson.M) error {
	if err := s.requireOwnership(ctx, actor, id); err != nil {
		return err
	}

	err := s.venues.Update(ctx, id, set)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrVenueNotFound
	}
	return err
}

func (s *implVenueService) Delete(ctx context.Context, actor *models.User, id primitive.ObjectID) error {
	if err := s.requireOwnership(ctx, actor, id); err != nil {
		return err
	}

	err := s.venues.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrVenueNotFound
	}
	return err
}

func (s *implVenueService) requireOwnership(ctx context.Context, actor *models.User, id primitive.ObjectID) error {
	venue, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if venue.OwnerID != actor.ID && !actor.HasRole(models.RoleAdmin) {
		return ErrNotOwner
	}
	return nil
}

func (s *implVenueService) mapNotFound(venue *models.Venue, err error) (*models.Venue, error) {
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrVenueNotFound
	}
	return venue, err
}
