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

type EventService interface {
	Create(ctx context.Context, actor *models.User, event *models.Event) (*models.Event, error)
	FindAll(ctx context.Context, includeHidden bool) ([]models.Event, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	FindBySlug(ctx context.Context, slug string) (*models.Event, error)
	FindByVenueID(ctx context.Context, venueID primitive.ObjectID) ([]models.Event, error)
	Update(ctx context.Context, actor *models.User, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, actor *models.User, id primitive.ObjectID) error
}

type implEventService struct {
	events repo.EventRepository
	venues repo.VenueRepository
	l      logger.Logger
}

func NewEventService(events repo.EventRepository, venues repo.VenueRepository, l logger.Logger) EventService {
	return &implEventService{
		events: events,
		venues: venues,
		l:      l,
	}
}

func (s *implEventService) Create(ctx context.Context, actor *models.User, event *models.Event) (*models.Event, error) {
	// Events belong to a venue; only that venue's owner or an admin may
	// attach one.
	if event.VenueID != nil {
		venue, err := s.venues.FindByID(ctx, *event.VenueID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrVenueNotFound
			}
			return nil, err
		}
		if venue.OwnerID != actor.ID && !actor.HasRole(models.RoleAdmin) {
			return nil, ErrNotOwner
		}
	}

	event.Slug = slug.Make(event.Title)
	event.OwnerID = actor.ID

	return s.events.Create(ctx, event)
}

func (s *implEventService) FindAll(ctx context.Context, includeHidden bool) ([]models.Event, error) {
	return s.events.FindAll(ctx, includeHidden)
}

func (s *implEventService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return s.mapNotFound(s.events.FindByID(ctx, id))
}

func (s *implEventService) FindBySlug(ctx context.Context, slugStr string) (*models.Event, error) {
	return s.mapNotFound(s.events.FindBySlug(ctx, slugStr))
}

func (s *implEventService) FindByVenueID(ctx context.Context, venueID primitive.ObjectID) ([]models.Event, error) {
	return s.events.FindByVenueID(ctx, venueID)
}

func (s *implEventService) Update(ctx context.Context, actor *models.User, id primitive.ObjectID, set bson.M) error {
	if err := s.requireOwnership(ctx, actor, id); err != nil {
		return err
	}

	err := s.events.Update(ctx, id, set)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrEventNotFound
	}
	return err
}

func (s *implEventService) Delete(ctx context.Context, actor *models.User, id primitive.ObjectID) error {
	if err := s.requireOwnership(ctx, actor, id); err != nil {
		return err
	}

	err := s.events.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrEventNotFound
	}
	return err
}

func (s *implEventService) requireOwnership(ctx context.Context, actor *models.User, id primitive.ObjectID) error {
	event, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if event.OwnerID != actor.ID && !actor.HasRole(models.RoleAdmin) {
		return ErrNotOwner
	}
	return nil
}

func (s *implEventService) mapNotFound(event *models.Event, err error) (*models.Event, error) {
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	return event, err
}
