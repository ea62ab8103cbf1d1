package near

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/theroundhq/marketplace/config"
)

var (
	// ErrTxNotFound covers both a bad hash and a transaction the ledger
	// has not finalized yet; callers may retry later.
	ErrTxNotFound = errors.New("transaction not found")

	// ErrInvalidCredentials is the single rejection for every signature
	// verification failure. Bad signature and unknown key are deliberately
	// indistinguishable so account state cannot be probed.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Client talks JSON-RPC 2.0 to a NEAR node. Access-key lookups go to the
// regular endpoint; transaction status goes to the archival endpoint.
type Client struct {
	httpCli     *http.Client
	rpcURL      string
	archivalURL string
}

func NewClient(cfg config.NearConfig) *Client {
	return &Client{
		httpCli:     &http.Client{Timeout: cfg.RequestTimeout},
		rpcURL:      cfg.RPCURL,
		archivalURL: cfg.ArchivalRPCURL,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcErrorCause struct {
	Name string `json:"name"`
}

type rpcError struct {
	Name    string        `json:"name"`
	Cause   rpcErrorCause `json:"cause"`
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    string        `json:"data"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("near rpc error %s/%s: %s", e.Name, e.Cause.Name, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, url, method string, params any, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("near rpc call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("near rpc returned status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode rpc response: %w", err)
	}

	if rpcResp.Error != nil {
		if isUnknownTx(rpcResp.Error) {
			return fmt.Errorf("%w: %s", ErrTxNotFound, rpcResp.Error.Cause.Name)
		}
		return rpcResp.Error
	}

	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("failed to decode rpc result: %w", err)
	}

	return nil
}

// isUnknownTx classifies RPC errors that mean the transaction is either
// invalid or simply not final yet, both of which the caller treats as
// retryable not-found.
func isUnknownTx(e *rpcError) bool {
	for _, name := range []string{e.Cause.Name, e.Name, e.Data} {
		if strings.Contains(name, "UNKNOWN_TRANSACTION") || strings.Contains(name, "UNKNOWN_RECEIPT") {
			return true
		}
	}
	return false
}

// AccessKey is one entry of an account's on-chain access-key registry.
type AccessKey struct {
	PublicKey string `json:"public_key"`
}

type accessKeyListResult struct {
	Keys []struct {
		PublicKey string `json:"public_key"`
	} `json:"keys"`
}

// ViewAccessKeys returns the public keys currently authorized to act for
// the account.
func (c *Client) ViewAccessKeys(ctx context.Context, accountID string) ([]AccessKey, error) {
	var result accessKeyListResult
	params := []any{fmt.Sprintf("access_key/%s", accountID), ""}
	if err := c.call(ctx, c.rpcURL, "query", params, &result); err != nil {
		return nil, err
	}

	keys := make([]AccessKey, 0, len(result.Keys))
	for _, k := range result.Keys {
		keys = append(keys, AccessKey{PublicKey: k.PublicKey})
	}
	return keys, nil
}

// ExecutionOutcome carries the log lines a receipt produced.
type ExecutionOutcome struct {
	Logs []string `json:"logs"`
}

type ReceiptOutcome struct {
	Outcome ExecutionOutcome `json:"outcome"`
}

// TxStatus is the slice of a transaction-status response the bridge
// depends on.
type TxStatus struct {
	ReceiptsOutcome []ReceiptOutcome `json:"receipts_outcome"`
}

// GetTxStatus fetches a transaction's execution receipts from the archival
// endpoint. senderID is the account the ledger uses to route the lookup.
func (c *Client) GetTxStatus(ctx context.Context, txHash, senderID string) (*TxStatus, error) {
	var result TxStatus
	params := []any{txHash, senderID}
	if err := c.call(ctx, c.archivalURL, "EXPERIMENTAL_tx_status", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
