package zulip

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zulip-archive/zulip-archive/internal/config"
	"github.com/zulip-archive/zulip-archive/internal/retry"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(config.Zulip{
		Site:        srv.URL,
		Email:       "bot@example.org",
		APIKey:      "key",
		MaxAttempts: 3,
	}, opts...)
	require.NoError(t, err)

	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(config.Zulip{Site: "https://chat.example.org", Email: "bot@example.org"})
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestGetStreams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/streams", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("include_public"))
		assert.Equal(t, "false", r.URL.Query().Get("include_subscribed"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bot@example.org", user)
		assert.Equal(t, "key", pass)

		writeJSON(t, w, http.StatusOK, map[string]any{
			"result": "success",
			"streams": []map[string]any{
				{"stream_id": 7, "name": "general"},
				{"stream_id": 9, "name": "design"},
			},
		})
	})

	streams, err := c.GetStreams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Stream{{StreamID: 7, Name: "general"}, {StreamID: 9, Name: "design"}}, streams)
}

func TestGetStreamTopics(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/me/7/topics", r.URL.Path)

		writeJSON(t, w, http.StatusOK, map[string]any{
			"result": "success",
			"topics": []map[string]any{{"name": "hello", "max_id": 12}},
		})
	})

	topics, err := c.GetStreamTopics(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []Topic{{Name: "hello", MaxID: 12}}, topics)
}

func TestGetMessages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/v1/messages", r.URL.Path)
		assert.Equal(t, "5", q.Get("anchor"))
		assert.Equal(t, "0", q.Get("num_before"))
		assert.Equal(t, "1000", q.Get("num_after"))
		assert.Equal(t, "true", q.Get("apply_markdown"))
		assert.Equal(t, "true", q.Get("client_gravatar"))

		var narrow []NarrowTerm
		require.NoError(t, json.Unmarshal([]byte(q.Get("narrow")), &narrow))
		assert.Equal(t, TopicNarrow("general", "hello"), narrow)

		writeJSON(t, w, http.StatusOK, map[string]any{
			"result":       "success",
			"found_newest": true,
			"messages": []map[string]any{
				{"id": 5, "sender_full_name": "Ada", "timestamp": 1500000000, "content": "<p>hi</p>", "subject": "hello"},
			},
		})
	})

	resp, err := c.GetMessages(context.Background(), MessagesRequest{
		Narrow:         TopicNarrow("general", "hello"),
		Anchor:         5,
		NumAfter:       BatchSize,
		ClientGravatar: true,
		ApplyMarkdown:  true,
	})
	require.NoError(t, err)
	assert.True(t, resp.FoundNewest)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "Ada", resp.Messages[0].SenderFullName)
	assert.Equal(t, "<p>hi</p>", resp.Messages[0].Content)
}

func TestRateLimitIsWaitedOut(t *testing.T) {
	var calls atomic.Int32

	clock := clockwork.NewFakeClock()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(t, w, http.StatusTooManyRequests, map[string]any{
				"result":      "error",
				"code":        "RATE_LIMIT_HIT",
				"msg":         "API usage exceeded rate limit",
				"retry-after": 2.5,
			})

			return
		}

		writeJSON(t, w, http.StatusOK, map[string]any{"result": "success", "streams": []any{}})
	}, WithClock(clock))

	done := make(chan error, 1)

	go func() {
		_, err := c.GetStreams(context.Background())
		done <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(3500 * time.Millisecond)

	require.NoError(t, <-done)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAPIErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusBadRequest, map[string]any{
			"result": "error",
			"code":   "BAD_REQUEST",
			"msg":    "Invalid stream ID",
		})
	})

	_, err := c.GetStreamTopics(context.Background(), 999)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid stream ID", apiErr.Msg)

	var permErr *retry.PermanentError
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryAfter(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "4")

	assert.Equal(t, 1500*time.Millisecond, retryAfter(envelope{RetryAfter: 1.5}, h))
	assert.Equal(t, 4*time.Second, retryAfter(envelope{}, h))
	assert.Equal(t, time.Duration(0), retryAfter(envelope{}, http.Header{}))

	rl := &RateLimitError{Wait: 2 * time.Second}
	assert.Equal(t, 3*time.Second, rl.RetryAfter())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, retry.After, classify(&RateLimitError{}))
	assert.Equal(t, retry.Stop, classify(&APIError{Status: http.StatusUnauthorized}))
	assert.Equal(t, retry.Retry, classify(&APIError{Status: http.StatusBadGateway}))
	assert.Equal(t, retry.Stop, classify(context.Canceled))
	assert.Equal(t, retry.Retry, classify(assert.AnError))
}
