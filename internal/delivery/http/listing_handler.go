package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theroundhq/marketplace/internal/models"
	"github.com/theroundhq/marketplace/internal/service"
)

type createListingRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Media       string  `json:"media" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	// Stock omitted means unlimited supply.
	Stock              *int64           `json:"stock" validate:"omitempty,gt=0"`
	MarketplaceRoyalty float64          `json:"marketplaceRoyalty" validate:"gte=0,lte=1"`
	Royalties          []models.Royalty `json:"royalties" validate:"dive"`
	StartDate          time.Time        `json:"startDate" validate:"required"`
	EndDate            *time.Time       `json:"endDate"`

	Ticket      *models.Ticket      `json:"ticket"`
	Merchandise *models.Merchandise `json:"merchandise"`
	VenuePass   *models.VenuePass   `json:"venuePass"`

	EventID *string `json:"eventId"`
	VenueID *string `json:"venueId"`
}

type updateListingRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Media       *string    `json:"media"`
	Price       *float64   `json:"price"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	IsActive    *bool      `json:"isActive"`
}

type confirmMintRequest struct {
	TransactionHash string `json:"transactionHash" validate:"required"`
}

type claimPurchaseRequest struct {
	TransactionHash string `json:"transactionHash" validate:"required"`
}

// webhookPayload is the shape the chain-watcher provider posts: a single
// confirmed transaction under payload.Events. A flat batch form is also
// accepted for manual replays. Only the transaction hashes are consumed;
// everything else is re-derived from the ledger.
type webhookPayload struct {
	Payload struct {
		Events struct {
			TransactionHash string `json:"transaction_hash"`
		} `json:"Events"`
	} `json:"payload"`
	Events []struct {
		TransactionHash string `json:"transaction_hash"`
	} `json:"events"`
}

func (p *webhookPayload) transactionHashes() []string {
	hashes := make([]string, 0, len(p.Events)+1)
	if p.Payload.Events.TransactionHash != "" {
		hashes = append(hashes, p.Payload.Events.TransactionHash)
	}
	for _, ev := range p.Events {
		hashes = append(hashes, ev.TransactionHash)
	}
	return hashes
}

func (h *HTTPHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}

	var req createListingRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	listing := &models.Listing{
		Title:              req.Title,
		Description:        req.Description,
		Media:              req.Media,
		Price:              req.Price,
		Stock:              req.Stock,
		MarketplaceRoyalty: req.MarketplaceRoyalty,
		Royalties:          req.Royalties,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Ticket:             req.Ticket,
		Merchandise:        req.Merchandise,
		VenuePass:          req.VenuePass,
		IsActive:           true,
	}
	if req.EventID != nil {
		eventID, err := primitive.ObjectIDFromHex(*req.EventID)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid event id", err)
			return
		}
		listing.EventID = &eventID
	}
	if req.VenueID != nil {
		venueID, err := primitive.ObjectIDFromHex(*req.VenueID)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid venue id", err)
			return
		}
		listing.VenueID = &venueID
	}

	created, err := h.listingService.Create(r.Context(), user, listing)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidListingKind):
			h.respondError(w, http.StatusBadRequest, "Listing must carry exactly one of ticket, merchandise, venue pass", err)
		case errors.Is(err, service.ErrInvalidRoyalties):
			h.respondError(w, http.StatusBadRequest, "Royalty percentages must sum to at most 1", err)
		default:
			h.respondServiceError(w, r, err)
		}
		return
	}
	h.respondJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingService.FindAll(r.Context(), false)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, listings)
}

// ListOwnedListings shows a venue operator their own listings, hidden ones
// included.
func (h *HTTPHandler) ListOwnedListings(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}

	listings, err := h.listingService.FindByOwner(r.Context(), user.NearWalletAccountID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, listings)
}

func (h *HTTPHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listingService.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, listing)
}

// GetListingNFT serves the token metadata document the contract references.
func (h *HTTPHandler) GetListingNFT(w http.ResponseWriter, r *http.Request) {
	nft, err := h.listingService.NFT(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, nft)
}

func (h *HTTPHandler) listingByIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid listing id", err)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *HTTPHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}
	id, ok := h.listingByIDParam(w, r)
	if !ok {
		return
	}

	var req updateListingRequest
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
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.StartDate != nil {
		set["startDate"] = *req.StartDate
	}
	if req.EndDate != nil {
		set["endDate"] = *req.EndDate
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}
	if len(set) == 0 {
		h.respondError(w, http.StatusBadRequest, "Nothing to update", nil)
		return
	}

	if err := h.listingService.Update(r.Context(), user, id, set); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"updated": true})
}

func (h *HTTPHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}
	id, ok := h.listingByIDParam(w, r)
	if !ok {
		return
	}

	if err := h.listingService.Delete(r.Context(), user, id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// ConfirmMint binds a freshly created listing to the token series its mint
// transaction produced on chain.
func (h *HTTPHandler) ConfirmMint(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(r.Context(), w)
	if !ok {
		return
	}
	id, ok := h.listingByIDParam(w, r)
	if !ok {
		return
	}

	var req confirmMintRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	listing, err := h.listingService.ConfirmMint(r.Context(), user, id, req.TransactionHash)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeriesAlreadyBound):
			h.respondError(w, http.StatusConflict, "Listing is already bound to a token series", err)
		case errors.Is(err, service.ErrTransactionNotFound):
			h.respondError(w, http.StatusNotFound, "Transaction not found on ledger, retry once it finalizes", err)
		case errors.Is(err, service.ErrMalformedEvent):
			h.respondError(w, http.StatusUnprocessableEntity, "Transaction carries no valid series event", err)
		default:
			h.respondServiceError(w, r, err)
		}
		return
	}
	h.respondJSON(w, http.StatusOK, listing)
}

// ClaimPurchase lets a buyer push their own purchase transaction for
// reconciliation instead of waiting for the watcher.
func (h *HTTPHandler) ClaimPurchase(w http.ResponseWriter, r *http.Request) {
	var req claimPurchaseRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	listing, err := h.listingService.ReconcilePurchase(r.Context(), req.TransactionHash, models.PurchaseSourceClaim)
	if err != nil {
		h.respondReconcileError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, listing)
}

// PurchaseWebhook receives batches of confirmed purchases from the chain
// watcher. Each hash is reconciled independently; a duplicate inside the
// batch is not an error.
func (h *HTTPHandler) PurchaseWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if !h.decodeAndValidate(w, r, &payload) {
		return
	}

	applied, skipped := 0, 0
	for _, hash := range payload.transactionHashes() {
		if hash == "" {
			skipped++
			continue
		}
		_, err := h.listingService.ReconcilePurchase(r.Context(), hash, models.PurchaseSourceWebhook)
		switch {
		case err == nil:
			applied++
		case errors.Is(err, service.ErrAlreadyReconciled):
			skipped++
		default:
			h.logger.Warnf(r.Context(), "http: webhook reconcile %s: %v", hash, err)
			skipped++
		}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"applied": applied,
		"skipped": skipped,
	})
}

func (h *HTTPHandler) respondReconcileError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyReconciled):
		h.respondError(w, http.StatusConflict, "Purchase already reconciled", err)
	case errors.Is(err, service.ErrTransactionNotFound):
		h.respondError(w, http.StatusNotFound, "Transaction not found on ledger, retry once it finalizes", err)
	case errors.Is(err, service.ErrMalformedEvent):
		h.respondError(w, http.StatusUnprocessableEntity, "Transaction carries no valid purchase event", err)
	case errors.Is(err, service.ErrListingSoldOut):
		h.respondError(w, http.StatusConflict, "Listing has no available units", err)
	default:
		h.respondServiceError(w, r, err)
	}
}
