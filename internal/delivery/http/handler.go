package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/theroundhq/marketplace/internal/models"
	"github.com/theroundhq/marketplace/internal/service"
	"github.com/theroundhq/marketplace/pkg/logger"
)

type HTTPHandler struct {
	authService    service.AuthService
	userService    service.UserService
	venueService   service.VenueService
	eventService   service.EventService
	listingService service.ListingService
	webhookToken   string
	logger         logger.Logger
	validator      *validator.Validate
}

func NewHTTPHandler(
	authService service.AuthService,
	userService service.UserService,
	venueService service.VenueService,
	eventService service.EventService,
	listingService service.ListingService,
	webhookToken string,
	l logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		authService:    authService,
		userService:    userService,
		venueService:   venueService,
		eventService:   eventService,
		listingService: listingService,
		webhookToken:   webhookToken,
		logger:         l,
		validator:      validator.New(),
	}
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "marketplace",
	})
}

// decodeAndValidate binds the JSON body into req and runs struct
// validation. It writes the error response itself; callers just return on
// false.
func (h *HTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// actor loads the full user record behind the session identity.
func (h *HTTPHandler) actor(ctx context.Context, w http.ResponseWriter) (*models.User, bool) {
	su, ok := SessionFromContext(ctx)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required", nil)
		return nil, false
	}

	user, err := h.userService.FindByUID(ctx, su.UID)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unknown session identity", err)
		return nil, false
	}
	return user, true
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Errorf(context.Background(), "http: failed to encode response: %v", err)
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	if err != nil {
		h.logger.Debugf(context.Background(), "http: %s: %v", message, err)
	}
	h.respondJSON(w, statusCode, map[string]interface{}{
		"error": message,
		"code":  statusCode,
	})
}

// respondServiceError maps the service sentinels shared by several
// handlers; anything unknown is a 500.
func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrListingNotFound),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrVenueNotFound):
		h.respondError(w, http.StatusNotFound, "Resource not found", err)
	case errors.Is(err, service.ErrNotOwner):
		h.respondError(w, http.StatusForbidden, "You do not own this resource", err)
	case errors.Is(err, service.ErrInvalidCredentials):
		h.respondError(w, http.StatusUnauthorized, "Invalid credentials", err)
	case errors.Is(err, service.ErrOTPExpired):
		h.respondError(w, http.StatusGone, "One-time password has expired", err)
	default:
		h.logger.Errorf(r.Context(), "http: unhandled service error: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Internal server error", err)
	}
}
