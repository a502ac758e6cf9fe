// Package zulip is a small client for the parts of the Zulip REST API the
// archive reads: public streams, their topics and their messages.
package zulip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/zulip-archive/zulip-archive/internal/config"
	"github.com/zulip-archive/zulip-archive/internal/metrics"
	"github.com/zulip-archive/zulip-archive/internal/retry"
)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 30 * time.Second

	// BatchSize is the number of messages requested per GET /messages call,
	// the maximum the Zulip docs recommend.
	BatchSize = 1000

	codeRateLimitHit = "RATE_LIMIT_HIT"
)

// Client talks to one Zulip server with one bot account.
type Client struct {
	site       *url.URL
	email      string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     retry.Policy
}

// Option customizes a Client.
type Option func(*Client)

// WithClock sets the clock used while waiting out rate limits.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.policy.Clock = clock }
}

// New creates a client from the [zulip] settings.
func New(cfg config.Zulip, opts ...Option) (*Client, error) {
	if cfg.Site == "" || cfg.Email == "" || cfg.APIKey == "" {
		return nil, ErrMissingCredentials
	}

	site, err := url.Parse(strings.TrimRight(cfg.Site, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid zulip site %q", cfg.Site)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	c := &Client{
		site:       site,
		email:      cfg.Email,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		policy: retry.Policy{
			MaxAttempts:      cfg.MaxAttempts,
			InitialBackoff:   time.Second,
			RateLimitBackoff: time.Second,
			OnRetry: func(attempt int, err error, wait time.Duration) {
				log.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("zulip request failed, retrying")
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GetStreams lists the public streams of the organization.
func (c *Client) GetStreams(ctx context.Context) ([]Stream, error) {
	var out struct {
		Streams []Stream `json:"streams"`
	}

	query := url.Values{}
	query.Set("include_public", "true")
	query.Set("include_subscribed", "false")

	if err := c.get(ctx, "streams", "/streams", query, &out); err != nil {
		return nil, err
	}

	return out.Streams, nil
}

// GetStreamTopics lists the topics of a stream.
func (c *Client) GetStreamTopics(ctx context.Context, streamID int64) ([]Topic, error) {
	var out struct {
		Topics []Topic `json:"topics"`
	}

	if err := c.get(ctx, "topics", fmt.Sprintf("/users/me/%d/topics", streamID), nil, &out); err != nil {
		return nil, err
	}

	return out.Topics, nil
}

// GetMessages fetches one page of messages.
func (c *Client) GetMessages(ctx context.Context, req MessagesRequest) (*MessagesResponse, error) {
	narrow, err := json.Marshal(req.Narrow)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode narrow")
	}

	query := url.Values{}
	query.Set("anchor", strconv.FormatInt(req.Anchor, 10))
	query.Set("num_before", strconv.Itoa(req.NumBefore))
	query.Set("num_after", strconv.Itoa(req.NumAfter))
	query.Set("narrow", string(narrow))
	query.Set("client_gravatar", strconv.FormatBool(req.ClientGravatar))
	query.Set("apply_markdown", strconv.FormatBool(req.ApplyMarkdown))

	var out MessagesResponse
	if err := c.get(ctx, "messages", "/messages", query, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	_, err := retry.Do(ctx, c.policy, classify, func() (struct{}, error) {
		return struct{}{}, c.do(ctx, endpoint, path, query, out)
	})

	return err
}

func classify(err error) retry.Action {
	var (
		rateLimit *RateLimitError
		apiErr    *APIError
	)

	switch {
	case errors.As(err, &rateLimit):
		return retry.After
	case errors.As(err, &apiErr):
		if apiErr.Status >= http.StatusInternalServerError {
			return retry.Retry
		}

		return retry.Stop
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retry.Stop
	default:
		return retry.Retry
	}
}

func (c *Client) do(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter")
	}

	u := *c.site
	u.Path = strings.TrimRight(u.Path, "/") + apiPrefix + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}

	req.SetBasicAuth(c.email, c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "zulip-archive")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return errors.Wrapf(err, "zulip %s", endpoint)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return errors.Wrapf(err, "zulip %s: failed to read response", endpoint)
	}

	var env envelope
	_ = json.Unmarshal(body, &env)

	if resp.StatusCode == http.StatusTooManyRequests || env.Code == codeRateLimitHit {
		metrics.APIRequests.WithLabelValues(endpoint, "rate_limited").Inc()
		metrics.RateLimitWaits.Inc()

		return &RateLimitError{Endpoint: endpoint, Wait: retryAfter(env, resp.Header)}
	}

	if resp.StatusCode != http.StatusOK || env.Result != "success" {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()

		msg := env.Msg
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}

		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Code: env.Code, Msg: msg}
	}

	metrics.APIRequests.WithLabelValues(endpoint, "success").Inc()

	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Code: "BAD_JSON", Msg: err.Error()}
	}

	return nil
}

// retryAfter prefers the JSON retry-after field and falls back to the header.
func retryAfter(env envelope, h http.Header) time.Duration {
	if env.RetryAfter > 0 {
		return time.Duration(env.RetryAfter * float64(time.Second))
	}

	if s, err := strconv.ParseFloat(h.Get("Retry-After"), 64); err == nil && s > 0 {
		return time.Duration(s * float64(time.Second))
	}

	return 0
}
