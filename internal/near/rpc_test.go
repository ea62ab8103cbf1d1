package near

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theroundhq/marketplace/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.NearConfig{
		RPCURL:         srv.URL,
		ArchivalRPCURL: srv.URL,
		ContractID:     "round.testnet",
		RequestTimeout: 2 * time.Second,
	}), srv
}

func TestViewAccessKeys(t *testing.T) {
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "query", req.Method)

		params, ok := req.Params.([]any)
		require.True(t, ok)
		assert.Equal(t, "access_key/alice.near", params[0])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result": map[string]any{
				"keys": []map[string]any{
					{"public_key": "ed25519:abc"},
					{"public_key": "ed25519:def"},
				},
			},
		})
	})

	keys, err := cli.ViewAccessKeys(context.Background(), "alice.near")
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "ed25519:abc", keys[0].PublicKey)
}

func TestGetTxStatus(t *testing.T) {
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "EXPERIMENTAL_tx_status", req.Method)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result": map[string]any{
				"receipts_outcome": []map[string]any{
					{"outcome": map[string]any{"logs": []string{"a", "b"}}},
				},
			},
		})
	})

	status, err := cli.GetTxStatus(context.Background(), "9xH7...", "round.testnet")
	require.NoError(t, err)
	require.Len(t, status.ReceiptsOutcome, 1)
	assert.Equal(t, []string{"a", "b"}, status.ReceiptsOutcome[0].Outcome.Logs)
}

func TestGetTxStatusUnknownTransaction(t *testing.T) {
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"error": map[string]any{
				"name":    "HANDLER_ERROR",
				"cause":   map[string]any{"name": "UNKNOWN_TRANSACTION"},
				"code":    -32000,
				"message": "Transaction not found",
			},
		})
	})

	_, err := cli.GetTxStatus(context.Background(), "missing", "round.testnet")
	assert.ErrorIs(t, err, ErrTxNotFound)
}

func TestCallSurfacesOtherRPCErrors(t *testing.T) {
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"error": map[string]any{
				"name":    "INTERNAL_ERROR",
				"cause":   map[string]any{"name": "INTERNAL_ERROR"},
				"message": "node on fire",
			},
		})
	})

	_, err := cli.ViewAccessKeys(context.Background(), "alice.near")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTxNotFound)
	assert.Contains(t, err.Error(), "INTERNAL_ERROR")
}

func TestCallRejectsBadHTTPStatus(t *testing.T) {
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := cli.ViewAccessKeys(context.Background(), "alice.near")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
