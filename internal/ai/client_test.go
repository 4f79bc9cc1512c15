package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"investopaper/internal/apperr"
	"investopaper/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(&config.AI{APIKey: "test-key"}, zap.NewNop())
	client.client.SetBaseURL(server.URL)
	return client
}

func TestComplete_ParsesChoiceContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"sentiment\":\"bullish\"}"}}]}`))
	})

	out, err := client.Complete(context.Background(), BuildNewsSummaryMessages("SPY", nil))
	require.NoError(t, err)
	assert.Equal(t, "bullish", out["sentiment"])
}

func TestComplete_EmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), nil)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestComplete_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), nil)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestComplete_MissingAPIKey(t *testing.T) {
	client := NewClient(&config.AI{}, zap.NewNop())
	_, err := client.Complete(context.Background(), nil)
	assert.Equal(t, apperr.KindNotImplemented, apperr.KindOf(err))
}

func TestParseJSONContent(t *testing.T) {
	out, err := parseJSONContent(`{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, out["a"])

	// Object embedded in prose.
	out, err = parseJSONContent("Here is the result:\n```json\n{\"a\": \"b\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "b", out["a"])

	_, err = parseJSONContent("no json here")
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}
