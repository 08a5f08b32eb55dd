package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionReply = `{
	"id": "gen-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "google/gemini-2.0-flash-lite-preview-02-05:free",
	"choices": [
		{"index": 0, "message": {"role": "assistant", "content": "### Question 1 ..."}, "finish_reason": "stop"}
	],
	"usage": {"prompt_tokens": 42, "completion_tokens": 128, "total_tokens": 170}
}`

func TestOpenRouterComplete(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionReply))
	}))
	defer srv.Close()

	c := NewOpenRouterClientWithBaseURL("sk-test", "google/gemini-2.0-flash-lite-preview-02-05:free", srv.URL)
	resp, err := c.Complete(context.Background(), CompletionRequest{
		System: "You are a professional teacher.",
		Messages: []Message{
			{Role: RoleUser, Content: "Generate a quiz"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "### Question 1 ...", resp.Content)
	assert.Equal(t, 42, resp.Usage.InputTokens)
	assert.Equal(t, 128, resp.Usage.OutputTokens)

	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "google/gemini-2.0-flash-lite-preview-02-05:free", gotBody["model"])

	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
}

func TestOpenRouterCompleteModelOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "override-model", body["model"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionReply))
	}))
	defer srv.Close()

	c := NewOpenRouterClientWithBaseURL("sk-test", "default-model", srv.URL)
	_, err := c.Complete(context.Background(), CompletionRequest{
		Model:    "override-model",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
}

func TestOpenRouterCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"gen-1","object":"chat.completion","choices":[],"usage":{}}`))
	}))
	defer srv.Close()

	c := NewOpenRouterClientWithBaseURL("sk-test", "m", srv.URL)
	_, err := c.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "openrouter", perr.Provider)
}

func TestOpenRouterCompleteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"insufficient credits"}}`))
	}))
	defer srv.Close()

	c := NewOpenRouterClientWithBaseURL("sk-test", "m", srv.URL)
	_, err := c.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "openrouter completion")
}

func TestOpenRouterName(t *testing.T) {
	c := NewOpenRouterClient("sk-test", "m")
	assert.Equal(t, "openrouter", c.Name())
	assert.Equal(t, "m", c.Model())
}
