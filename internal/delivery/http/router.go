package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/theroundhq/marketplace/internal/models"
)

// NewRouter wires the full HTTP surface. Reads are public; writes require
// a session, and administrative routes require the matching role.
func NewRouter(h *HTTPHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/near", h.LoginWithNear)
		r.Post("/firebase", h.LoginWithFederated)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(h.Authenticate)

		r.Get("/me", h.GetProfile)
		r.Post("/me/otp", h.IssueOTP)
		r.Post("/me/bookmarks/events/{id}", h.ToggleEventBookmark)
		r.Post("/me/bookmarks/venues/{id}", h.ToggleVenueBookmark)

		r.With(h.RequireRoles(models.RoleVenue, models.RoleAdmin)).
			Get("/otp/{otp}", h.ResolveOTP)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireRoles(models.RoleAdmin))
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
			r.Patch("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
			r.Post("/{id}/whitelist", h.WhitelistUser)
			r.Delete("/{id}/whitelist", h.RemoveUserFromWhitelist)
		})
	})

	r.Route("/venues", func(r chi.Router) {
		r.Get("/", h.ListVenues)
		r.With(h.Authenticate, h.RequireRoles(models.RoleVenue, models.RoleAdmin)).
			Get("/owned", h.ListOwnedVenues)
		r.With(h.Authenticate, h.RequireRoles(models.RoleVenue, models.RoleAdmin)).
			Get("/owned/{slug}", h.GetOwnedVenue)
		r.Get("/{slug}", h.GetVenue)
		r.Get("/{slug}/events", h.GetVenueEvents)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate, h.RequireRoles(models.RoleVenue, models.RoleAdmin))
			r.Post("/", h.CreateVenue)
			r.Patch("/{id}", h.UpdateVenue)
			r.Delete("/{id}", h.DeleteVenue)
		})
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Get("/{slug}", h.GetEvent)
		r.Get("/{slug}/listings", h.GetEventListings)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate, h.RequireRoles(models.RoleVenue, models.RoleAdmin))
			r.Post("/", h.CreateEvent)
			r.Patch("/{id}", h.UpdateEvent)
			r.Delete("/{id}", h.DeleteEvent)
		})
	})

	r.Route("/listings", func(r chi.Router) {
		r.Get("/", h.ListListings)
		r.With(h.Authenticate, h.RequireRoles(models.RoleVenue, models.RoleAdmin)).
			Get("/owned", h.ListOwnedListings)
		r.Get("/{slug}", h.GetListing)
		r.Get("/{slug}/nft", h.GetListingNFT)

		// The watcher callback carries its own shared secret.
		r.With(h.RequireWebhookToken).Post("/claimed", h.PurchaseWebhook)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Post("/claim", h.ClaimPurchase)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireRoles(models.RoleVenue, models.RoleAdmin))
				r.Post("/", h.CreateListing)
				r.Post("/{id}/mint", h.ConfirmMint)
				r.Patch("/{id}", h.UpdateListing)
				r.Delete("/{id}", h.DeleteListing)
			})
		})
	})

	return r
}
