package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theroundhq/marketplace/internal/models"
)

type createVenueRequest struct {
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description"`
	Media       string           `json:"media"`
	Location    *models.Location `json:"location"`
}

type updateVenueRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Media       *string          `json:"media"`
	Location    *models.Location `json:"location"`
	IsActive    *bool            `json:"isActive"`
}

func (h *HTTPHandler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}

	var req createVenueRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	venue, err := h.venueService.Create(r.Context(), user, &models.Venue{
		Title:       req.Title,
		Description: req.Description,
		Media:       req.Media,
		Location:    req.Location,
		IsActive:    true,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, venue)
}

func (h *HTTPHandler) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.venueService.FindAll(r.Context(), false)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, venues)
}

// ListOwnedVenues shows an operator the venues they administer.
func (h *HTTPHandler) ListOwnedVenues(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}

	venues, err := h.venueService.FindByOwner(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, venues)
}

// GetOwnedVenue resolves a venue by slug for its operator, including venues
// hidden from the public listing.
func (h *HTTPHandler) GetOwnedVenue(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}

	venue, err := h.venueService.FindOwnedBySlug(r.Context(), user.ID, chi.URLParam(r, "slug"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, venue)
}

func (h *HTTPHandler) GetVenue(w http.ResponseWriter, r *http.Request) {
	venue, err := h.venueService.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, venue)
}

// GetVenueEvents lists the events hosted at a venue.
func (h *HTTPHandler) GetVenueEvents(w http.ResponseWriter, r *http.Request) {
	venue, err := h.venueService.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	events, err := h.eventService.FindByVenueID(r.Context(), venue.ID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, events)
}

func (h *HTTPHandler) venueByIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid venue id", err)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *HTTPHandler) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}
	id, ok := h.venueByIDParam(w, r)
	if !ok {
		return
	}

	var req updateVenueRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	set := bson.M{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Media != nil {
		set["media"] = *req.Media
	}
	if req.Location != nil {
		set["location"] = req.Location
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}
	if len(set) == 0 {
		h.respondError(w, http.StatusBadRequest, "Nothing to update", nil)
		return
	}

	if err := h.venueService.Update(r.Context(), user, id, set); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"updated": true})
}

func (h *HTTPHandler) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}
	id, ok := h.venueByIDParam(w, r)
	if !ok {
		return
	}

	if err := h.venueService.Delete(r.Context(), user, id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
