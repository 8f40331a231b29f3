package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete_SendsTranscriptAndParsesReply(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "Here is your schedule."}}],
			"sources": [{"id": "42", "kind": "events", "title": "Board sync"}]
		}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key", "gpt-4o-mini")
	res, err := c.Complete(context.Background(), Request{
		Message:      "What is on my calendar?",
		History:      []Turn{{Role: RoleUser, Content: "hi"}, {Role: RoleAssistant, Content: "hello"}},
		SystemPrompt: "You are a scheduling assistant.",
	})

	require.NoError(t, err)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	require.Len(t, gotBody.Messages, 4)
	assert.Equal(t, RoleSystem, gotBody.Messages[0].Role)
	assert.Equal(t, "What is on my calendar?", gotBody.Messages[3].Content)
	assert.Equal(t, "Here is your schedule.", res.Content)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "Board sync", res.Sources[0].Title)
}

func TestComplete_OverridesModelPerRequest(t *testing.T) {
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", "gpt-4o-mini")
	_, err := c.Complete(context.Background(), Request{Message: "hi", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", gotBody.Model)
}

func TestComplete_OmitsSystemTurnWhenEmpty(t *testing.T) {
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", "m")
	_, err := c.Complete(context.Background(), Request{Message: "hi"})
	require.NoError(t, err)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, RoleUser, gotBody.Messages[0].Role)
}

func TestComplete_SurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid api key", "type": "auth_error"}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "bad", "m")
	_, err := c.Complete(context.Background(), Request{Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
	assert.Contains(t, err.Error(), "401")
}

func TestComplete_ErrorsOnEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", "m")
	_, err := c.Complete(context.Background(), Request{Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestComplete_RespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewHTTPClient(srv.URL, "k", "m")
	_, err := c.Complete(ctx, Request{Message: "hi"})
	require.Error(t, err)
}
