package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicClient(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		_, err := newAnthropicClient(Config{})
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})

	t.Run("sends message and reads text", func(t *testing.T) {
		var got anthropicRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/messages", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
			assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"id":"msg_1","content":[{"type":"text","text":"New pneumatic rubber tires"}]}`))
		}))
		defer server.Close()

		client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL, MaxTokens: 50})
		require.NoError(t, err)

		text, err := client.Complete(context.Background(), Request{System: "sys", Prompt: "tires", MaxTokens: 100})
		require.NoError(t, err)
		assert.Equal(t, "New pneumatic rubber tires", text)
		assert.Equal(t, defaultAnthropicModel, got.Model)
		assert.Equal(t, "sys", got.System)
		assert.Equal(t, 100, got.MaxTokens)
		require.Len(t, got.Messages, 1)
		assert.Equal(t, "tires", got.Messages[0].Content)
	})

	t.Run("status codes classify for retry", func(t *testing.T) {
		tests := []struct {
			name          string
			status        int
			wantRateLimit bool
			wantPermanent bool
		}{
			{"rate limited", http.StatusTooManyRequests, true, false},
			{"server error", http.StatusBadGateway, false, false},
			{"bad request", http.StatusBadRequest, false, true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(`{"error":"nope"}`))
				}))
				defer server.Close()

				client, err := newAnthropicClient(Config{APIKey: "k", BaseURL: server.URL})
				require.NoError(t, err)

				_, err = client.Complete(context.Background(), Request{Prompt: "x"})
				require.Error(t, err)
				assert.Equal(t, tt.wantRateLimit, errors.Is(err, common.ErrRateLimit))

				var re *common.RetryableError
				isPermanent := errors.As(err, &re) && !re.Retryable
				assert.Equal(t, tt.wantPermanent, isPermanent)
			})
		}
	})

	t.Run("empty content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"msg_1","content":[]}`))
		}))
		defer server.Close()

		client, err := newAnthropicClient(Config{APIKey: "k", BaseURL: server.URL})
		require.NoError(t, err)
		_, err = client.Complete(context.Background(), Request{Prompt: "x"})
		assert.ErrorIs(t, err, common.ErrEmptyResponse)
	})
}
