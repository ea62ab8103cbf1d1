package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theroundhq/marketplace/internal/models"
)

type createEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Media       string    `json:"media"`
	Banner      string    `json:"banner"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
	Tags        []string  `json:"tags"`
	VenueID     *string   `json:"venueId"`
}

type updateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Media       *string    `json:"media"`
	Banner      *string    `json:"banner"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Tags        []string   `json:"tags"`
	IsFeatured  *bool      `json:"isFeatured"`
	IsActive    *bool      `json:"isActive"`
}

func (h *HTTPHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}

	var req createEventRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Media:       req.Media,
		Banner:      req.Banner,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Tags:        req.Tags,
		IsActive:    true,
	}
	if req.VenueID != nil {
		venueID, err := primitive.ObjectIDFromHex(*req.VenueID)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid venue id", err)
			return
		}
		event.VenueID = &venueID
	}

	created, err := h.eventService.Create(r.Context(), user, event)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.FindAll(r.Context(), false)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, events)
}

func (h *HTTPHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, event)
}

// GetEventListings lists the purchasable listings attached to an event.
func (h *HTTPHandler) GetEventListings(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	listings, err := h.listingService.FindByEventID(r.Context(), event.ID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, listings)
}

func (h *HTTPHandler) eventByIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid event id", err)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *HTTPHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}
	id, ok := h.eventByIDParam(w, r)
	if !ok {
		return
	}

	var req updateEventRequest
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
	if req.Banner != nil {
		set["banner"] = *req.Banner
	}
	if req.StartDate != nil {
		set["startDate"] = *req.StartDate
	}
	if req.EndDate != nil {
		set["endDate"] = *req.EndDate
	}
	if req.Tags != nil {
		set["tags"] = req.Tags
	}
	if req.IsFeatured != nil {
		set["isFeatured"] = *req.IsFeatured
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}
	if len(set) == 0 {
		h.respondError(w, http.StatusBadRequest, "Nothing to update", nil)
		return
	}

	if err := h.eventService.Update(r.Context(), user, id, set); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"updated": true})
}

func (h *HTTPHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}
	id, ok := h.eventByIDParam(w, r)
	if !ok {
		return
	}

	if err := h.eventService.Delete(r.Context(), user, id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
