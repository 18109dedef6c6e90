package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"decentpay/codec"
)

// Ledger is the RPC surface the contract-interaction layer consumes. The
// lifecycle and discovery code depend on this interface, never on the HTTP
// transport directly.
type Ledger interface {
	Simulate(ctx context.Context, env *Envelope) (*SimulateResult, error)
	Prepare(ctx context.Context, env *Envelope) (*Envelope, error)
	Submit(ctx context.Context, env *Envelope) (*SubmitResult, error)
	GetStatus(ctx context.Context, hash string) (*StatusResult, error)
	ReadLedgerEntry(ctx context.Context, key codec.Value) (*LedgerEntry, error)
	AccountSequence(ctx context.Context, account string) (uint64, error)
}

// Client implements Ledger against the node's JSON-RPC endpoint.
type Client struct {
	endpoint  string
	authToken string
	http      *http.Client
	limiter   *rate.Limiter
	nextID    atomic.Int64
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for RPC calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithAuthToken sets the bearer token attached to RPC requests.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = strings.TrimSpace(token)
	}
}

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithRateLimit bounds outbound RPC load. Discovery probes and status polls
// share the same limiter, keeping concurrent search traffic predictable.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithTracing wraps the HTTP transport with OpenTelemetry instrumentation.
func WithTracing() Option {
	return func(c *Client) {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.http.Transport = otelhttp.NewTransport(base)
	}
}

// NewClient initialises a client bound to the provided JSON-RPC endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("rpc: endpoint required")
	}
	c := &Client{
		endpoint: trimmed,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Simulate runs a read-only trial execution of the envelope. A node-reported
// simulation failure is delivered inside the result, not as a transport
// error, so callers can distinguish protocol rejection from RPC failure.
func (c *Client) Simulate(ctx context.Context, env *Envelope) (*SimulateResult, error) {
	var result SimulateResult
	if err := c.call(ctx, "contract_simulate", []interface{}{env}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Prepare attaches resource and fee metadata derived from simulation.
func (c *Client) Prepare(ctx context.Context, env *Envelope) (*Envelope, error) {
	var result Envelope
	if err := c.call(ctx, "contract_prepare", []interface{}{env}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Submit broadcasts a signed envelope.
func (c *Client) Submit(ctx context.Context, env *Envelope) (*SubmitResult, error) {
	var result SubmitResult
	if err := c.call(ctx, "contract_submit", []interface{}{env}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetStatus fetches the current status of a submitted transaction.
func (c *Client) GetStatus(ctx context.Context, hash string) (*StatusResult, error) {
	params := map[string]string{"hash": hash}
	var result StatusResult
	if err := c.call(ctx, "contract_getTransaction", []interface{}{params}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReadLedgerEntry fetches one raw storage record by key. A missing entry is
// (nil, nil), not an error.
func (c *Client) ReadLedgerEntry(ctx context.Context, key codec.Value) (*LedgerEntry, error) {
	var result *LedgerEntry
	if err := c.call(ctx, "ledger_getEntry", []interface{}{map[string]codec.Value{"key": key}}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// AccountSequence fetches the current sequencing state for an identity. The
// lifecycle refetches this between the first simulation and a signed
// resubmission because the identity may have advanced in the meantime.
func (c *Client) AccountSequence(ctx context.Context, account string) (uint64, error) {
	params := map[string]string{"account": account}
	var result struct {
		Sequence uint64 `json:"sequence"`
	}
	if err := c.call(ctx, "ledger_getAccount", []interface{}{params}, &result); err != nil {
		return 0, err
	}
	return result.Sequence, nil
}

type jsonRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      int64       `json:"id"`
}

type jsonRPCResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      int64            `json:"id"`
	Result  json.RawMessage  `json:"result"`
	Error   *jsonRPCErrorObj `json:"error"`
}

type jsonRPCErrorObj struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	requestsTotal.WithLabelValues(method).Inc()
	id := c.nextID.Add(1)
	buf, err := json.Marshal(jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      id,
	})
	if err != nil {
		return fmt.Errorf("rpc: encode %s payload: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("rpc: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		failuresTotal.WithLabelValues(method).Inc()
		return fmt.Errorf("rpc: %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		failuresTotal.WithLabelValues(method).Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("rpc: %s failed: status=%d body=%s", method, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var rpcResp jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		failuresTotal.WithLabelValues(method).Inc()
		return fmt.Errorf("rpc: decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		failuresTotal.WithLabelValues(method).Inc()
		return fmt.Errorf("rpc: %s error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if out == nil {
		return nil
	}
	if len(rpcResp.Result) == 0 || bytes.Equal(rpcResp.Result, []byte("null")) {
		if isPointerToPointer(out) {
			return nil
		}
		return errors.New("rpc: node returned empty result")
	}
	return json.Unmarshal(rpcResp.Result, out)
}

// isPointerToPointer reports whether out can represent "no value" (e.g.
// **LedgerEntry for a missing entry).
func isPointerToPointer(out interface{}) bool {
	switch out.(type) {
	case **LedgerEntry:
		return true
	default:
		return false
	}
}
