package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"workdesk-backend/internal/models"
	"workdesk-backend/internal/services"
	"workdesk-backend/pkg/httputil"
)

// CredentialsHandler exposes integration credential management.
type CredentialsHandler struct {
	credService services.CredentialsService
}

func NewCredentialsHandler(credSvc services.CredentialsService) *CredentialsHandler {
	return &CredentialsHandler{credService: credSvc}
}

// HandleCreateCredential handles POST /v1/credentials.
func (h *CredentialsHandler) HandleCreateCredential(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var req models.CreateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	resp, err := h.credService.CreateCredential(r.Context(), req, orgID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCredentialValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrUnsupportedServiceType):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrCredentialTestFailed):
			httputil.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			log.Printf("CreateCredential handler failed: %v", err)
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to create credential")
		}
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, resp)
}

// HandleListCredentials handles GET /v1/credentials?service_type=SLACK.
func (h *CredentialsHandler) HandleListCredentials(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var serviceType *string
	if st := r.URL.Query().Get("service_type"); st != "" {
		serviceType = &st
	}

	creds, err := h.credService.ListCredentials(r.Context(), orgID, serviceType)
	if err != nil {
		log.Printf("ListCredentials handler failed: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list credentials")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.ListCredentialsResponse{Credentials: creds})
}

// HandleGetCredential handles GET /v1/credentials/{credentialID}.
func (h *CredentialsHandler) HandleGetCredential(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	credID, ok := parseUUIDParam(w, r, "credentialID")
	if !ok {
		return
	}

	resp, err := h.credService.GetCredential(r.Context(), credID, orgID)
	if err != nil {
		if errors.Is(err, services.ErrCredentialNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "Credential not found")
			return
		}
		log.Printf("GetCredential handler failed for %s: %v", credID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to get credential")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleDeleteCredential handles DELETE /v1/credentials/{credentialID}.
func (h *CredentialsHandler) HandleDeleteCredential(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	credID, ok := parseUUIDParam(w, r, "credentialID")
	if !ok {
		return
	}

	if err := h.credService.DeleteCredential(r.Context(), credID, orgID); err != nil {
		switch {
		case errors.Is(err, services.ErrCredentialNotFound):
			httputil.RespondError(w, http.StatusNotFound, "Credential not found")
		case errors.Is(err, services.ErrCredentialInUse):
			httputil.RespondError(w, http.StatusConflict, err.Error())
		default:
			log.Printf("DeleteCredential handler failed for %s: %v", credID, err)
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to delete credential")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleTestCredential handles POST /v1/credentials/{credentialID}/test.
func (h *CredentialsHandler) HandleTestCredential(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requestIdentity(w, r)
	if !ok {
		return
	}
	credID, ok := parseUUIDParam(w, r, "credentialID")
	if !ok {
		return
	}

	resp, err := h.credService.TestCredential(r.Context(), credID, orgID)
	if err != nil {
		if errors.Is(err, services.ErrCredentialNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "Credential not found")
			return
		}
		log.Printf("TestCredential handler failed for %s: %v", credID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to test credential")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}
