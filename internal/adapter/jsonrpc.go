package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/protocol-parity/parity-go/internal/domain"
	"github.com/protocol-parity/parity-go/internal/normalize"
	"github.com/protocol-parity/parity-go/internal/ratelimit"
)

// RPCAdapter speaks JSON-RPC 2.0 over HTTP to a backend node. Canonical
// method names are translated through the normalization registry, and
// responses are normalized with the same registry's rules.
type RPCAdapter struct {
	kind     domain.AdapterKind
	endpoint string
	registry *normalize.Registry
	limiter  *ratelimit.BackendLimiter
	client   *http.Client
}

// RPCOption configures an RPCAdapter.
type RPCOption func(*RPCAdapter)

// WithLimiter attaches a per-backend rate limiter.
func WithLimiter(l *ratelimit.BackendLimiter) RPCOption {
	return func(a *RPCAdapter) { a.limiter = l }
}

// WithHTTPClient replaces the default instrumented client (for testing).
func WithHTTPClient(c *http.Client) RPCOption {
	return func(a *RPCAdapter) { a.client = c }
}

// NewRPCAdapter creates an adapter for the given backend kind and endpoint.
func NewRPCAdapter(kind domain.AdapterKind, endpoint string, registry *normalize.Registry, opts ...RPCOption) *RPCAdapter {
	a := &RPCAdapter{
		kind:     kind,
		endpoint: endpoint,
		registry: registry,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements ProtocolAdapter.
func (a *RPCAdapter) Name() string { return string(a.kind) }

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ApplyFuzzCase implements ProtocolAdapter. JSON-RPC error responses become
// failed FuzzResults; only transport and decoding failures return an error.
func (a *RPCAdapter) ApplyFuzzCase(ctx context.Context, c *domain.FuzzCase) (domain.FuzzResult, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, a.Name()); err != nil {
			return domain.FuzzResult{}, err
		}
	}

	method := a.registry.ToAdapterMethod(a.kind, c.MethodName)
	params := c.Parameters
	if params == nil {
		params = map[string]any{}
	}

	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return domain.FuzzResult{}, fmt.Errorf("%s: marshal request: %w", a.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.FuzzResult{}, fmt.Errorf("%s: build request: %w", a.Name(), err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.FuzzResult{}, fmt.Errorf("%s: %s: %w", a.Name(), method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.FuzzResult{}, fmt.Errorf("%s: read response: %w", a.Name(), err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return domain.FuzzResult{}, fmt.Errorf("%s: decode response: %w", a.Name(), err)
	}

	if rpcResp.Error != nil {
		// Render the error so the code survives for classification.
		return domain.FuzzResult{
			AdapterName: a.Name(),
			Success:     false,
			Error:       fmt.Sprintf(`RPC error: {"code":%d,"message":%q}`, rpcResp.Error.Code, rpcResp.Error.Message),
		}, nil
	}

	var result any
	if len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
			return domain.FuzzResult{}, fmt.Errorf("%s: decode result: %w", a.Name(), err)
		}
	}

	return domain.FuzzResult{
		AdapterName: a.Name(),
		RawResponse: result,
		Success:     true,
	}, nil
}

// NormalizeOutput implements ProtocolAdapter.
func (a *RPCAdapter) NormalizeOutput(v any) any {
	normalized, _ := a.registry.Normalize(v)
	return normalized
}
