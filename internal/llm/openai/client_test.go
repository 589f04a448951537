package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billex/internal/config"
	"billex/internal/llm"
	"billex/internal/llm/openai"
)

func newTestClient(serverURL string) *openai.Client {
	cfg := &config.LLMProviderConfig{
		Provider:     "openai",
		APIKey:       "test-openai-key",
		DefaultModel: "gpt-4o-mini",
		TimeoutSecs:  30,
	}
	return openai.NewClientWithEndpoint(cfg, serverURL)
}

func successResponse(content string, withUsage bool) map[string]interface{} {
	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
	if withUsage {
		resp["usage"] = map[string]interface{}{
			"prompt_tokens":     50,
			"completion_tokens": 20,
			"total_tokens":      70,
		}
	}
	return resp
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", reqBody["model"])
		assert.Equal(t, float64(0), reqBody["temperature"])

		respFormat := reqBody["response_format"].(map[string]interface{})
		assert.Equal(t, "json_object", respFormat["type"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])
		assert.Equal(t, "extract the items", msg["content"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(successResponse(`{"items":[]}`, true))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	result, err := c.Complete(context.Background(), "extract the items")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, `{"items":[]}`, result.Text)
	assert.Equal(t, "gpt-4o-mini", result.Model)
	assert.Equal(t, 70, result.Usage.TotalTokens)
	assert.Equal(t, 50, result.Usage.InputTokens)
	assert.Equal(t, 20, result.Usage.OutputTokens)
}

func TestComplete_MissingUsageDefaultsToZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(successResponse("hello", false))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	result, err := c.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, 0, result.Usage.TotalTokens)
	assert.Equal(t, 0, result.Usage.InputTokens)
	assert.Equal(t, 0, result.Usage.OutputTokens)
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Complete(context.Background(), "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestComplete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Complete(context.Background(), "prompt")

	require.Error(t, err)
	var rateLimited *llm.RateLimitError
	require.True(t, errors.As(err, &rateLimited))
	assert.Equal(t, "openai", rateLimited.Provider)
	assert.Equal(t, float64(30), rateLimited.RetryAfter.Seconds())
}

func TestComplete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Complete(context.Background(), "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
