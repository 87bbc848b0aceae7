// Package fetcher ingests raw signals from the upstream feed service, FTP
// review-export drops, and spreadsheet files.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/foundersignal/validate-cli/internal/config"
	"github.com/foundersignal/validate-cli/internal/model"
	"github.com/foundersignal/validate-cli/internal/resilience"
)

const defaultUserAgent = "validate-cli/1.0"

// FeedClient pulls signal batches from the ingestion feed over HTTP. Requests
// are rate limited client-side and retried on transient failures.
type FeedClient struct {
	baseURL string
	key     string
	client  *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewFeedClient creates a feed client from configuration.
func NewFeedClient(cfg config.FeedConfig) *FeedClient {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 2.0
	}

	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("feed", "fetch_signals")

	return &FeedClient{
		baseURL: cfg.BaseURL,
		key:     cfg.Key,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   retry,
	}
}

// FetchSignals pulls up to limit signals for one community from the feed.
func (c *FeedClient) FetchSignals(ctx context.Context, source model.SignalSource, community string, limit int) ([]model.Signal, error) {
	if c.baseURL == "" {
		return nil, eris.New("fetcher: feed base URL is not configured")
	}
	if limit <= 0 {
		limit = 200
	}

	endpoint := fmt.Sprintf("%s/signals?%s", c.baseURL, url.Values{
		"source":    {string(source)},
		"community": {community},
		"limit":     {strconv.Itoa(limit)},
	}.Encode())

	signals, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]model.Signal, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limit wait")
		}
		return c.fetch(ctx, endpoint)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("fetcher: signals fetched",
		zap.String("source", string(source)),
		zap.String("community", community),
		zap.Int("count", len(signals)),
	)
	return signals, nil
}

func (c *FeedClient) fetch(ctx context.Context, endpoint string) ([]model.Signal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "fetcher: send request"), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("fetcher: feed returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var payload struct {
		Signals []model.Signal `json:"signals"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(err, "fetcher: unmarshal feed response")
	}
	return payload.Signals, nil
}
