package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theroundhq/marketplace/internal/models"
	"github.com/theroundhq/marketplace/internal/service"
	"github.com/theroundhq/marketplace/pkg/logger"
)

type testDeps struct {
	auth     *fakeAuthService
	users    *fakeUserService
	venues   *fakeVenueService
	events   *fakeEventService
	listings *fakeListingService
}

func newTestHandler(d *testDeps) (*HTTPHandler, http.Handler) {
	h := NewHTTPHandler(d.auth, d.users, d.venues, d.events, d.listings, "hook-secret", logger.InitializeTestZapLogger())
	return h, NewRouter(h)
}

func newTestDeps() *testDeps {
	return &testDeps{
		auth:     &fakeAuthService{},
		users:    &fakeUserService{},
		venues:   &fakeVenueService{},
		events:   &fakeEventService{},
		listings: &fakeListingService{},
	}
}

// sessionFor wires the auth fake so that the given token resolves to the
// given identity, and the user fake resolves the backing record.
func (d *testDeps) sessionFor(token string, user *models.User) {
	d.auth.verifyToken = func(ctx context.Context, got string) (*models.SessionUser, error) {
		if got != token {
			return nil, service.ErrInvalidCredentials
		}
		return &models.SessionUser{
			UID:         user.UID,
			Username:    user.Username,
			AccountType: user.AccountType,
			Roles:       user.Roles,
		}, nil
	}
	d.users.findByUID = func(ctx context.Context, uid string) (*models.User, error) {
		if uid != user.UID {
			return nil, service.ErrUserNotFound
		}
		return user, nil
	}
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	_, router := newTestHandler(newTestDeps())

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginWithNear(t *testing.T) {
	d := newTestDeps()
	d.auth.loginNear = func(ctx context.Context, accountID string, signature, publicKey []byte) (string, error) {
		assert.Equal(t, "alice.testnet", accountID)
		assert.Equal(t, []byte("sig-bytes"), signature)
		assert.Equal(t, []byte("pk-bytes"), publicKey)
		return "session-token", nil
	}
	_, router := newTestHandler(d)

	body, _ := json.Marshal(map[string]string{
		"accountId": "alice.testnet",
		"signature": base64.StdEncoding.EncodeToString([]byte("sig-bytes")),
		"publicKey": base64.StdEncoding.EncodeToString([]byte("pk-bytes")),
	})

	rec := doJSON(t, router, http.MethodPost, "/auth/near", "", string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "session-token", resp.AccessToken)
}

func TestLoginWithNear_BadBase64(t *testing.T) {
	_, router := newTestHandler(newTestDeps())

	rec := doJSON(t, router, http.MethodPost, "/auth/near", "", `{
		"accountId": "alice.testnet",
		"signature": "not base64!!",
		"publicKey": "also not!!"
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWithNear_RejectedCredentials(t *testing.T) {
	_, router := newTestHandler(newTestDeps())

	body, _ := json.Marshal(map[string]string{
		"accountId": "alice.testnet",
		"signature": base64.StdEncoding.EncodeToString([]byte("bad")),
		"publicKey": base64.StdEncoding.EncodeToString([]byte("bad")),
	})
	rec := doJSON(t, router, http.MethodPost, "/auth/near", "", string(body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoute_RequiresToken(t *testing.T) {
	_, router := newTestHandler(newTestDeps())

	rec := doJSON(t, router, http.MethodGet, "/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/users/me", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGuard(t *testing.T) {
	d := newTestDeps()
	d.sessionFor("tok", &models.User{
		ID:    primitive.NewObjectID(),
		UID:   "alice.testnet",
		Roles: []models.Role{models.RoleCustomer},
	})
	_, router := newTestHandler(d)

	// A plain customer cannot create venues.
	rec := doJSON(t, router, http.MethodPost, "/venues/", "tok", `{"title":"Hall"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An admin-only route is likewise closed.
	rec = doJSON(t, router, http.MethodGet, "/users/", "tok", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateVenue_AsVenueRole(t *testing.T) {
	d := newTestDeps()
	d.sessionFor("tok", &models.User{
		ID:    primitive.NewObjectID(),
		UID:   "alice.testnet",
		Roles: []models.Role{models.RoleCustomer, models.RoleVenue},
	})
	_, router := newTestHandler(d)

	rec := doJSON(t, router, http.MethodPost, "/venues/", "tok", `{"title":"Hall"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGetOwnedVenue(t *testing.T) {
	d := newTestDeps()
	owner := &models.User{
		ID:    primitive.NewObjectID(),
		UID:   "alice.testnet",
		Roles: []models.Role{models.RoleVenue},
	}
	d.sessionFor("tok", owner)
	d.venues.findOwnedBySlug = func(ctx context.Context, ownerID primitive.ObjectID, slug string) (*models.Venue, error) {
		assert.Equal(t, owner.ID, ownerID)
		assert.Equal(t, "hidden-hall-a1b2", slug)
		return &models.Venue{Title: "Hidden Hall", Slug: slug, IsActive: false}, nil
	}
	_, router := newTestHandler(d)

	rec := doJSON(t, router, http.MethodGet, "/venues/owned/hidden-hall-a1b2", "tok", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var venue models.Venue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &venue))
	assert.Equal(t, "Hidden Hall", venue.Title)
}

func TestClaimPurchase(t *testing.T) {
	d := newTestDeps()
	d.sessionFor("tok", &models.User{
		ID:    primitive.NewObjectID(),
		UID:   "alice.testnet",
		Roles: []models.Role{models.RoleCustomer},
	})
	available := int64(2)
	d.listings.reconcile = func(ctx context.Context, txHash, source string) (*models.Listing, error) {
		assert.Equal(t, "tx-abc", txHash)
		assert.Equal(t, models.PurchaseSourceClaim, source)
		return &models.Listing{TokenSeriesID: "7", Available: &available}, nil
	}
	_, router := newTestHandler(d)

	rec := doJSON(t, router, http.MethodPost, "/listings/claim", "tok", `{"transactionHash":"tx-abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestClaimPurchase_Duplicate(t *testing.T) {
	d := newTestDeps()
	d.sessionFor("tok", &models.User{
		ID:    primitive.NewObjectID(),
		UID:   "alice.testnet",
		Roles: []models.Role{models.RoleCustomer},
	})
	d.listings.reconcile = func(ctx context.Context, txHash, source string) (*models.Listing, error) {
		return nil, service.ErrAlreadyReconciled
	}
	_, router := newTestHandler(d)

	rec := doJSON(t, router, http.MethodPost, "/listings/claim", "tok", `{"transactionHash":"tx-abc"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestClaimPurchase_PendingTransaction(t *testing.T) {
	d := newTestDeps()
	d.sessionFor("tok", &models.User{
		ID:    primitive.NewObjectID(),
		UID:   "alice.testnet",
		Roles: []models.Role{models.RoleCustomer},
	})
	d.listings.reconcile = func(ctx context.Context, txHash, source string) (*models.Listing, error) {
		return nil, service.ErrTransactionNotFound
	}
	_, router := newTestHandler(d)

	rec := doJSON(t, router, http.MethodPost, "/listings/claim", "tok", `{"transactionHash":"tx-early"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPurchaseWebhook(t *testing.T) {
	d := newTestDeps()
	calls := map[string]int{}
	d.listings.reconcile = func(ctx context.Context, txHash, source string) (*models.Listing, error) {
		assert.Equal(t, models.PurchaseSourceWebhook, source)
		calls[txHash]++
		if txHash == "tx-dup" {
			return nil, service.ErrAlreadyReconciled
		}
		return &models.Listing{TokenSeriesID: "7"}, nil
	}
	_, router := newTestHandler(d)

	body := `{"events":[
		{"transaction_hash":"tx-1"},
		{"transaction_hash":"tx-dup"},
		{"transaction_hash":""}
	]}`
	rec := doJSON(t, router, http.MethodPost, "/listings/claimed", "hook-secret", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Applied int `json:"applied"`
		Skipped int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Applied)
	assert.Equal(t, 2, resp.Skipped)
	assert.Equal(t, 1, calls["tx-1"])
	assert.Equal(t, 1, calls["tx-dup"])
}

func TestPurchaseWebhook_ProviderShape(t *testing.T) {
	d := newTestDeps()
	var reconciled []string
	d.listings.reconcile = func(ctx context.Context, txHash, source string) (*models.Listing, error) {
		assert.Equal(t, models.PurchaseSourceWebhook, source)
		reconciled = append(reconciled, txHash)
		return &models.Listing{TokenSeriesID: "7"}, nil
	}
	_, router := newTestHandler(d)

	body := `{"payload":{"Events":{"transaction_hash":"tx-provider"}}}`
	rec := doJSON(t, router, http.MethodPost, "/listings/claimed", "hook-secret", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Applied int `json:"applied"`
		Skipped int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Applied)
	assert.Equal(t, 0, resp.Skipped)
	assert.Equal(t, []string{"tx-provider"}, reconciled)
}

func TestPurchaseWebhook_BadToken(t *testing.T) {
	_, router := newTestHandler(newTestDeps())

	rec := doJSON(t, router, http.MethodPost, "/listings/claimed", "wrong-secret", `{"events":[]}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/listings/claimed", "", `{"events":[]}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConfirmMint_MapsConflicts(t *testing.T) {
	d := newTestDeps()
	d.sessionFor("tok", &models.User{
		ID:    primitive.NewObjectID(),
		UID:   "alice.testnet",
		Roles: []models.Role{models.RoleVenue},
	})
	d.listings.mint = func(ctx context.Context, actor *models.User, id primitive.ObjectID, txHash string) (*models.Listing, error) {
		return nil, service.ErrSeriesAlreadyBound
	}
	_, router := newTestHandler(d)

	id := primitive.NewObjectID().Hex()
	rec := doJSON(t, router, http.MethodPost, "/listings/"+id+"/mint", "tok", `{"transactionHash":"tx-m"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetListingNFT(t *testing.T) {
	d := newTestDeps()
	copies := int64(10)
	d.listings.nft = func(ctx context.Context, slug string) (*models.NFTMetadata, error) {
		require.Equal(t, "front-row-x1y2", slug)
		return &models.NFTMetadata{Title: "Front Row", Copies: &copies}, nil
	}
	_, router := newTestHandler(d)

	rec := doJSON(t, router, http.MethodGet, "/listings/front-row-x1y2/nft", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var nft models.NFTMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nft))
	assert.Equal(t, "Front Row", nft.Title)
	require.NotNil(t, nft.Copies)
	assert.EqualValues(t, 10, *nft.Copies)
	// NEP-177 omits nothing; absent fields serialize as null.
	assert.Contains(t, rec.Body.String(), `"media_hash":null`)
}
