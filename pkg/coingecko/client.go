package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL          = "https://api.coingecko.com/api/v3"
	defaultHTTPTimeout      = 10 * time.Second
	defaultMaxRetries       = 2
	defaultRetryBackoffBase = 200 * time.Millisecond

	apiKeyHeader = "x-cg-demo-api-key"
)

// ErrMissingSeries indicates a market chart response without the prices field.
var ErrMissingSeries = errors.New("coingecko: response has no prices field")

// Client wraps access to the CoinGecko v3 REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	logger     *log.Logger
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithAPIKey sets the demo API key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithMaxRetries adjusts the retry budget.
func WithMaxRetries(max int) Option {
	return func(c *Client) {
		if max >= 0 {
			c.maxRetries = max
		}
	}
}

// WithLogger injects a custom logger (defaults to log.Default()).
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient constructs a CoinGecko API client.
func NewClient(opts ...Option) *Client {
	httpClient := &http.Client{Timeout: defaultHTTPTimeout}
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		maxRetries: defaultMaxRetries,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = httpClient
	}
	if client.logger == nil {
		client.logger = log.Default()
	}
	return client
}

// SimplePrices fetches spot prices for a batch of coin ids in the given
// currencies. Coins missing from the result had no quote upstream; that is not
// an error.
func (c *Client) SimplePrices(ctx context.Context, ids, currencies []string) (SimplePrices, error) {
	if len(ids) == 0 {
		return SimplePrices{}, nil
	}
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", strings.Join(currencies, ","))

	var prices SimplePrices
	if err := c.doGet(ctx, "/simple/price", query, &prices); err != nil {
		return nil, err
	}
	if prices == nil {
		prices = SimplePrices{}
	}
	return prices, nil
}

// MarketChart fetches the historical price series for one coin over a window
// of days, ordered oldest to newest.
func (c *Client) MarketChart(ctx context.Context, id, currency, days string) ([]PricePoint, error) {
	query := url.Values{}
	query.Set("vs_currency", strings.ToLower(strings.TrimSpace(currency)))
	query.Set("days", strings.TrimSpace(days))

	var chart marketChartResponse
	path := fmt.Sprintf("/coins/%s/market_chart", url.PathEscape(strings.TrimSpace(id)))
	if err := c.doGet(ctx, path, query, &chart); err != nil {
		return nil, err
	}
	if chart.Prices == nil {
		return nil, ErrMissingSeries
	}
	return chart.Prices, nil
}

// Search runs a fuzzy lookup over coin ids, names and symbols. An empty query
// returns an empty result without hitting the API.
func (c *Client) Search(ctx context.Context, query string) ([]Coin, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []Coin{}, nil
	}
	params := url.Values{}
	params.Set("query", trimmed)

	var resp searchResponse
	if err := c.doGet(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}
	if resp.Coins == nil {
		return []Coin{}, nil
	}
	return resp.Coins, nil
}

// doGet issues a GET with retries and decodes the JSON response into result.
func (c *Client) doGet(ctx context.Context, path string, query url.Values, result interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	backoff := defaultRetryBackoffBase
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("coingecko: build request: %w", err)
		}
		httpReq.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			httpReq.Header.Set(apiKeyHeader, c.apiKey)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("coingecko: read response: %w", readErr)
			} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				lastErr = fmt.Errorf("coingecko: http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
				// Client errors are not retryable; 429 and 5xx are.
				if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
					return lastErr
				}
			} else {
				if result != nil {
					if err := json.Unmarshal(body, result); err != nil {
						return fmt.Errorf("coingecko: decode response: %w", err)
					}
				}
				return nil
			}
		}

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}
	if lastErr != nil {
		return lastErr
	}
	return errors.New("coingecko: request failed without error detail")
}
