package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// rpcTimeout bounds a single JSON-RPC round trip.
const rpcTimeout = 10 * time.Second

// rpcClient is a minimal Ethereum JSON-RPC 2.0 client for read calls. The
// notary only probes chain state, so no batching or subscription support
// is needed.
type rpcClient struct {
	url        string
	httpClient *http.Client
}

func newRPCClient(url string) *rpcClient {
	return &rpcClient{
		url: url,
		httpClient: &http.Client{
			Timeout: rpcTimeout,
		},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// callString invokes a method returning a string result.
func (c *rpcClient) callString(ctx context.Context, method string, params ...any) (string, error) {
	raw, err := c.call(ctx, method, params...)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("unexpected %s result: %w", method, err)
	}
	return s, nil
}

// callUint invokes a method returning a hex quantity.
func (c *rpcClient) callUint(ctx context.Context, method string, params ...any) (int64, error) {
	s, err := c.callString(ctx, method, params...)
	if err != nil {
		return 0, err
	}
	return parseQuantity(method, s)
}

// parseQuantity decodes an 0x-prefixed hex quantity.
func parseQuantity(method, s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected %s quantity %q: %w", method, s, err)
	}
	return v, nil
}

func (c *rpcClient) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to encode rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call rpc endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read rpc response: %w", err)
	}

	var parsed rpcResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode rpc response: %w", err)
	}
	if parsed.Error != nil {
		return nil, parsed.Error
	}
	return parsed.Result, nil
}
