package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdesk-backend/internal/assist"
	"workdesk-backend/internal/auth"
	"workdesk-backend/internal/models"
)

func authedRequest(method, target string, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(r.Context(), auth.UserIDKey, uuid.New())
	ctx = context.WithValue(ctx, auth.OrgIDKey, uuid.New())
	return r.WithContext(ctx)
}

func TestHandleRender_ProseOnly(t *testing.T) {
	h := NewAssistantHandler(nil) // render path never touches the service

	body, _ := json.Marshal(models.RenderRequest{Content: "# Today\n\nAll clear."})
	w := httptest.NewRecorder()
	h.HandleRender(w, authedRequest(http.MethodPost, "/v1/assist/render", string(body)))

	require.Equal(t, http.StatusOK, w.Code)
	var res assist.RenderResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Nodes, 3)
	assert.Equal(t, assist.NodeHeading, res.Nodes[0].Type)
	assert.Equal(t, assist.NodeSpacer, res.Nodes[1].Type)
	assert.Equal(t, assist.NodeParagraph, res.Nodes[2].Type)
	assert.Empty(t, res.Cards)
	assert.Empty(t, res.Citations)
}

func TestHandleRender_EmbeddedBlockYieldsCards(t *testing.T) {
	h := NewAssistantHandler(nil)

	content := "Here you go.\n```workdesk-data\n{\"kind\":\"events\",\"items\":[{\"id\":1,\"title\":\"Board sync\"}]}\n```"
	body, _ := json.Marshal(models.RenderRequest{Content: content})
	w := httptest.NewRecorder()
	h.HandleRender(w, authedRequest(http.MethodPost, "/v1/assist/render", string(body)))

	require.Equal(t, http.StatusOK, w.Code)
	var res assist.RenderResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Cards, 1)
	assert.Equal(t, "Board sync", res.Cards[0].Title)
	assert.Empty(t, res.Citations)
}

func TestHandleRender_ContactSourcesFallBackToCitations(t *testing.T) {
	h := NewAssistantHandler(nil)

	body, _ := json.Marshal(models.RenderRequest{
		Content: "I found one contact.",
		Sources: []models.Source{{ID: "9", Kind: "contact", Title: "Dana Reyes"}},
	})
	w := httptest.NewRecorder()
	h.HandleRender(w, authedRequest(http.MethodPost, "/v1/assist/render", string(body)))

	require.Equal(t, http.StatusOK, w.Code)
	var res assist.RenderResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Empty(t, res.Cards)
	require.Len(t, res.Citations, 1)
	assert.Equal(t, "Dana Reyes", res.Citations[0].Title)
}

func TestHandleRender_InvalidBody(t *testing.T) {
	h := NewAssistantHandler(nil)

	w := httptest.NewRecorder()
	h.HandleRender(w, authedRequest(http.MethodPost, "/v1/assist/render", "{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRender_RequiresAuthContext(t *testing.T) {
	h := NewAssistantHandler(nil)

	r := httptest.NewRequest(http.MethodPost, "/v1/assist/render", strings.NewReader(`{"content":"hi"}`))
	w := httptest.NewRecorder()
	h.HandleRender(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
