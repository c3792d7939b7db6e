// Package node provides the concrete clients behind the ledger interfaces:
// the HTTP RPC client for a live node, and an in-memory mock applying the
// managed token semantics for tests and the behavioral suites.
package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/helios-labs/tokenops/internal/errors"
	"github.com/helios-labs/tokenops/internal/ledger"
	"github.com/helios-labs/tokenops/internal/operation"
)

// RPCClient is the HTTP client for a token ledger node. It implements
// QueryClient plus transaction submission. The CLI is a client of the real
// ledger, not an emulator: every response shown to the operator is the
// node's own answer.
type RPCClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewRPCClient creates a client for the given node endpoint.
func NewRPCClient(endpoint string, timeout time.Duration) *RPCClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RPCClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the configured node endpoint.
func (c *RPCClient) Endpoint() string {
	return c.endpoint
}

// OwnedObjects lists all objects owned by the address.
func (c *RPCClient) OwnedObjects(ctx context.Context, owner string) ([]ledger.ObjectInfo, error) {
	var result struct {
		Objects []ledger.ObjectInfo `json:"objects"`
	}
	path := "/v1/objects/owned?owner=" + url.QueryEscape(owner)
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result.Objects, nil
}

// ObjectsByType lists shared objects of the given full struct type.
func (c *RPCClient) ObjectsByType(ctx context.Context, objectType string) ([]ledger.ObjectInfo, error) {
	var result struct {
		Objects []ledger.ObjectInfo `json:"objects"`
	}
	path := "/v1/objects/by-type?type=" + url.QueryEscape(objectType)
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result.Objects, nil
}

// GetObject fetches a single object by id, including its fields.
func (c *RPCClient) GetObject(ctx context.Context, objectID string) (*ledger.ObjectInfo, error) {
	var result ledger.ObjectInfo
	if err := c.get(ctx, "/v1/objects/"+url.PathEscape(objectID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Coins lists coins of the given type owned by the address.
func (c *RPCClient) Coins(ctx context.Context, owner, coinType string) ([]ledger.Coin, error) {
	var result struct {
		Coins []ledger.Coin `json:"coins"`
	}
	path := fmt.Sprintf("/v1/coins?owner=%s&type=%s", url.QueryEscape(owner), url.QueryEscape(coinType))
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result.Coins, nil
}

// Balance returns the total balance of the given coin type for the address.
func (c *RPCClient) Balance(ctx context.Context, owner, coinType string) (uint64, error) {
	var result struct {
		Balance uint64 `json:"balance"`
	}
	path := fmt.Sprintf("/v1/balance?owner=%s&type=%s", url.QueryEscape(owner), url.QueryEscape(coinType))
	if err := c.get(ctx, path, &result); err != nil {
		return 0, err
	}
	return result.Balance, nil
}

// submitEnvelope is the wire form of a signed submission.
type submitEnvelope struct {
	Signer  string             `json:"signer"`
	Request *operation.Request `json:"request"`
	GasID   string             `json:"gas_id,omitempty"`
}

// Execute signs and executes the request as the given signer, blocking
// until the ledger reports finality. One round trip; the node's raw error
// message is preserved in the response.
func (c *RPCClient) Execute(ctx context.Context, signer string, req *operation.Request, gasID string) (*ledger.ExecutionResponse, error) {
	return c.submit(ctx, "/v1/transactions", signer, req, gasID)
}

// DryRun executes the request without committing effects. Used to confirm
// the call layout against the live deployed interface.
func (c *RPCClient) DryRun(ctx context.Context, signer string, req *operation.Request) (*ledger.ExecutionResponse, error) {
	return c.submit(ctx, "/v1/transactions/dry-run", signer, req, "")
}

func (c *RPCClient) submit(ctx context.Context, path, signer string, req *operation.Request, gasID string) (*ledger.ExecutionResponse, error) {
	body, err := json.Marshal(submitEnvelope{Signer: signer, Request: req, GasID: gasID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var result ledger.ExecutionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

func (c *RPCClient) get(ctx context.Context, path string, out interface{}) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseErrorResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *RPCClient) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	if c.endpoint == "" {
		return nil, errors.NewNodeUnavailable("", "no node endpoint configured")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNodeUnavailable(c.endpoint, err.Error())
	}
	return resp, nil
}

func (c *RPCClient) parseErrorResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var nodeErr struct {
		Error  string `json:"error"`
		Reason string `json:"reason,omitempty"`
	}
	if err := json.Unmarshal(data, &nodeErr); err == nil && nodeErr.Error != "" {
		msg := nodeErr.Error
		if nodeErr.Reason != "" {
			msg = msg + ": " + nodeErr.Reason
		}
		return errors.NewNodeUnavailable(c.endpoint, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, msg))
	}
	return errors.NewNodeUnavailable(c.endpoint, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(data)))
}
