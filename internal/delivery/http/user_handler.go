package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theroundhq/marketplace/internal/models"
)

func (h *HTTPHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, user)
}

func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.FindAll(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, users)
}

func (h *HTTPHandler) userID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user id", err)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *HTTPHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, user)
}

type createUserRequest struct {
	UID                 string        `json:"uid" validate:"required"`
	Username            string        `json:"username" validate:"required"`
	AccountType         string        `json:"accountType" validate:"required,oneof=near firebase"`
	Roles               []models.Role `json:"roles"`
	NearWalletAccountID string        `json:"nearWalletAccountId"`
}

type updateUserRequest struct {
	Username   *string `json:"username"`
	IsActive   *bool   `json:"isActive"`
	IsCensored *bool   `json:"isCensored"`
}

func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Create(r.Context(), &models.User{
		UID:                 req.UID,
		Username:            req.Username,
		AccountType:         models.AccountType(req.AccountType),
		Roles:               req.Roles,
		NearWalletAccountID: req.NearWalletAccountID,
		IsActive:            true,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, user)
}

func (h *HTTPHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	set := bson.M{}
	if req.Username != nil {
		set["username"] = *req.Username
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}
	if req.IsCensored != nil {
		set["isCensored"] = *req.IsCensored
	}
	if len(set) == 0 {
		h.respondError(w, http.StatusBadRequest, "Nothing to update", nil)
		return
	}

	if err := h.userService.Update(r.Context(), id, set); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"updated": true})
}

func (h *HTTPHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

func (h *HTTPHandler) WhitelistUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.userService.Whitelist(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"whitelisted": true})
}

func (h *HTTPHandler) RemoveUserFromWhitelist(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.userService.RemoveFromWhitelist(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"whitelisted": false})
}

type otpResponse struct {
	OTP       string    `json:"otp"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IssueOTP mints a short-lived check-in code for the authenticated user.
func (h *HTTPHandler) IssueOTP(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}

	otp, expiresAt, err := h.userService.IssueOTP(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, otpResponse{OTP: otp, ExpiresAt: expiresAt})
}

// ResolveOTP looks an attendee up by their check-in code. Venue staff use
// this at the door.
func (h *HTTPHandler) ResolveOTP(w http.ResponseWriter, r *http.Request) {
	otp := chi.URLParam(r, "otp")
	if otp == "" {
		h.respondError(w, http.StatusBadRequest, "OTP is required", nil)
		return
	}

	user, err := h.userService.FindByOTP(r.Context(), otp)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, user)
}

func (h *HTTPHandler) ToggleEventBookmark(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}

	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid event id", err)
		return
	}

	if err := h.userService.ToggleEventBookmark(r.Context(), user.ID, eventID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"toggled": true})
}

func (h *HTTPHandler) ToggleVenueBookmark(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}

	venueID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid venue id", err)
		return
	}

	if err := h.userService.ToggleVenueBookmark(r.Context(), user.ID, venueID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"toggled": true})
}
