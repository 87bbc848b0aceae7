package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundersignal/validate-cli/internal/config"
	"github.com/foundersignal/validate-cli/internal/model"
	"github.com/foundersignal/validate-cli/internal/resilience"
)

func fastRetry() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.Jitter = 0
	return cfg
}

func feedFixture() []model.Signal {
	return []model.Signal{
		{ID: "s-1", Source: model.SourceForum, Community: "r/freelance", Body: "invoicing is a pain"},
		{ID: "s-2", Source: model.SourceForum, Community: "r/freelance", Body: "chasing late payments again"},
	}
}

func TestFeedClient_FetchSignals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/signals", r.URL.Path)
		assert.Equal(t, "forum", r.URL.Query().Get("source"))
		assert.Equal(t, "r/freelance", r.URL.Query().Get("community"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{"signals": feedFixture()}) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewFeedClient(config.FeedConfig{BaseURL: srv.URL, Key: "test-key"})
	c.retry = fastRetry()

	signals, err := c.FetchSignals(context.Background(), model.SourceForum, "r/freelance", 50)
	require.NoError(t, err)
	require.Len(t, signals, 2)
	assert.Equal(t, "s-1", signals[0].ID)
	assert.Equal(t, model.SourceForum, signals[0].Source)
}

func TestFeedClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"signals": feedFixture()}) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewFeedClient(config.FeedConfig{BaseURL: srv.URL, RatePerSecond: 100})
	c.retry = fastRetry()

	signals, err := c.FetchSignals(context.Background(), model.SourceForum, "r/freelance", 10)
	require.NoError(t, err)
	assert.Len(t, signals, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFeedClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewFeedClient(config.FeedConfig{BaseURL: srv.URL, RatePerSecond: 100})
	c.retry = fastRetry()

	_, err := c.FetchSignals(context.Background(), model.SourceForum, "r/freelance", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFeedClient_MissingBaseURL(t *testing.T) {
	c := NewFeedClient(config.FeedConfig{})
	_, err := c.FetchSignals(context.Background(), model.SourceForum, "r/freelance", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL")
}
