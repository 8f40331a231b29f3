package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"workdesk-backend/internal/auth"
	"workdesk-backend/pkg/httputil"
)

// requestIdentity pulls the authenticated user and org from the request
// context, writing a 401 and returning false when either is missing.
func requestIdentity(w http.ResponseWriter, r *http.Request) (userID, orgID uuid.UUID, ok bool) {
	userID, uok := auth.GetUserIDFromContext(r.Context())
	orgID, ook := auth.GetOrgIDFromContext(r.Context())
	if !uok || !ook {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication context missing")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, orgID, true
}

// parseUUIDParam parses a chi URL parameter as a UUID, writing a 400 on failure.
func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
