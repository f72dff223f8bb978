package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NilFoundation/abigate/abigate/common/version"
	"github.com/NilFoundation/abigate/abigate/internal/types"
)

const (
	DefaultEndpoint = "https://api.etherscan.io/api"

	statusOk = "1"

	maxResponseSize = 16 << 20
)

var (
	ErrNoApiKey    = errors.New("etherscan API key is required")
	ErrRateLimited = errors.New("etherscan rate limit reached")
	ErrNotFound    = errors.New("contract ABI is not published")
	ErrUpstream    = errors.New("etherscan request failed")
)

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Client fetches verified contract ABIs from the Etherscan API.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoApiKey
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// FetchAbi returns the verbatim ABI JSON published for the address.
func (c *Client) FetchAbi(ctx context.Context, address types.Address) ([]byte, error) {
	query := url.Values{}
	query.Set("module", "contract")
	query.Set("action", "getabi")
	query.Set("address", address.Hex())
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", c.redact(err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "abigate/"+version.GetGitRevision())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %w", ErrUpstream, c.redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrUpstream, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code: %d, body: %s", ErrUpstream, resp.StatusCode, body)
	}

	var res response
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal response: %w", ErrUpstream, err)
	}

	// The ABI itself is delivered as a JSON-encoded string.
	var result string
	if err := json.Unmarshal(res.Result, &result); err != nil {
		return nil, fmt.Errorf("%w: unexpected result: %s", ErrUpstream, res.Result)
	}

	if res.Status != statusOk {
		return nil, classify(res.Message, result)
	}
	return []byte(result), nil
}

// redact drops the query string, which carries the API key, from URLs embedded in err.
func (c *Client) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = c.endpoint
	}
	return err
}

func classify(message, result string) error {
	lower := strings.ToLower(result)
	switch {
	case strings.Contains(lower, "rate limit"):
		return fmt.Errorf("%w: %s", ErrRateLimited, result)
	case strings.Contains(lower, "not verified"):
		return fmt.Errorf("%w: %s", ErrNotFound, result)
	}
	return fmt.Errorf("%w: %s: %s", ErrUpstream, message, result)
}
