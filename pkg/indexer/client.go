package indexer

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/iov-one/block-explorer/pkg/metrics"
	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/weave/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Client talks to the remote indexer and node REST API. Failed requests are
// never retried.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  zerolog.Logger

	priceURL             string
	circulatingSupplyURL string
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is the number of requests per second, zero means unlimited.
	RateLimit            float64
	PriceURL             string
	CirculatingSupplyURL string
	Logger               zerolog.Logger
	// HTTPClient replaces the underlying transport, used by tests.
	HTTPClient *http.Client
}

func NewClient(opts Options) *Client {
	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &Client{
		http:                 rc,
		limiter:              rate.NewLimiter(limit, 1),
		logger:               opts.Logger,
		priceURL:             opts.PriceURL,
		circulatingSupplyURL: opts.CirculatingSupplyURL,
	}
}

// Rounds returns one page of blocks, newest first.
func (c *Client) Rounds(ctx context.Context, page, limit int) (*models.Page[models.Block], error) {
	var out models.Page[models.Block]
	err := c.get(ctx, "rounds", "/v1/rounds", pageParams(page, limit), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Transactions returns one page of transactions, newest first.
func (c *Client) Transactions(ctx context.Context, page, limit int) (*models.Page[models.Transaction], error) {
	var out models.Page[models.Transaction]
	err := c.get(ctx, "transactions", "/v1/transactions", pageParams(page, limit), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Transaction(ctx context.Context, id string) (*models.Transaction, error) {
	var out models.Transaction
	err := c.get(ctx, "transaction", "/v1/transactions/{id}", nil, map[string]string{"id": id}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Account(ctx context.Context, address string) (*models.Account, error) {
	var out models.Account
	err := c.get(ctx, "account", "/v1/accounts/{address}", nil, map[string]string{"address": address}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Asset(ctx context.Context, id uint64) (*models.Asset, error) {
	var out models.Asset
	path := map[string]string{"id": strconv.FormatUint(id, 10)}
	err := c.get(ctx, "asset", "/v1/algod/assets/{id}", nil, path, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Supply(ctx context.Context) (*models.Supply, error) {
	var out models.Supply
	err := c.get(ctx, "supply", "/v1/algod/ledger/supply", nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Round returns a single block straight from the node.
func (c *Client) Round(ctx context.Context, round uint64) (*models.Block, error) {
	var out models.Block
	path := map[string]string{"round": strconv.FormatUint(round, 10)}
	err := c.get(ctx, "round", "/v1/algod/rounds/{round}", nil, path, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Price returns the USD price of the native currency. ErrNotConfigured is
// returned when no price endpoint is set.
func (c *Client) Price(ctx context.Context) (float64, error) {
	if c.priceURL == "" {
		return 0, ErrNotConfigured
	}
	var out struct {
		Algorand struct {
			USD float64 `json:"usd"`
		} `json:"algorand"`
	}
	if err := c.get(ctx, "price", c.priceURL, nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Algorand.USD, nil
}

// CirculatingSupply returns the circulating supply as reported by the third
// party endpoint, as a decimal string.
func (c *Client) CirculatingSupply(ctx context.Context) (string, error) {
	if c.circulatingSupplyURL == "" {
		return "", ErrNotConfigured
	}
	var raw json.RawMessage
	if err := c.get(ctx, "circulating_supply", c.circulatingSupplyURL, nil, nil, &raw); err != nil {
		return "", err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", errors.Wrap(ErrDecode, "circulating supply")
		}
		n = json.Number(strings.TrimSpace(s))
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return "", errors.Wrapf(ErrDecode, "circulating supply %q", n)
	}
	return n.String(), nil
}

func pageParams(page, limit int) map[string]string {
	if page < 1 {
		page = 1
	}
	return map[string]string{
		"page":  strconv.Itoa(page),
		"limit": strconv.Itoa(limit),
	}
}

func (c *Client) get(ctx context.Context, endpoint, path string, query, pathParams map[string]string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limit")
	}

	req := c.http.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParams(query)
	}
	if pathParams != nil {
		req.SetPathParams(pathParams)
	}

	start := time.Now()
	resp, err := req.Get(path)
	metrics.IndexerLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.IndexerRequests.WithLabelValues(endpoint, "error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("indexer request failed")
		return errors.Wrapf(ErrUnavailable, "%s: %s", endpoint, err)
	}
	metrics.IndexerRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode())).Inc()

	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound:
		return errors.Wrapf(errors.ErrNotFound, "%s", endpoint)
	case code >= 400:
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", code).
			Str("body", truncate(resp.String(), 256)).
			Msg("indexer returned an error")
		return errors.Wrapf(ErrFailedResponse, "%s: status %d", endpoint, code)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("cannot decode indexer response")
		return errors.Wrapf(ErrDecode, "%s: %s", endpoint, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
