package services

import (
	"context"
	"crypto/cipher"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	appcrypto "workdesk-backend/internal/crypto"
	"workdesk-backend/internal/integrations"
	"workdesk-backend/internal/models"
	integration_models "workdesk-backend/internal/models/integrations"
	"workdesk-backend/internal/store"
)

// Custom errors for Credentials service
var (
	ErrCredentialNotFound     = errors.New("credential not found")
	ErrCredentialValidation   = errors.New("credential validation failed")
	ErrCredentialEncryption   = errors.New("credential encryption failed")
	ErrCredentialDecryption   = errors.New("credential decryption failed")
	ErrCredentialInUse        = errors.New("credential is in use and cannot be deleted")
	ErrCredentialTestFailed   = errors.New("credential test failed")
	ErrUnsupportedServiceType = errors.New("unsupported service type")
)

// CredentialsService defines the interface for credential operations.
type CredentialsService interface {
	CreateCredential(ctx context.Context, req models.CreateCredentialRequest, orgID uuid.UUID) (*models.CredentialResponse, error)
	GetCredential(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (*models.CredentialResponse, error)
	ListCredentials(ctx context.Context, orgID uuid.UUID, serviceType *string) ([]models.CredentialResponse, error)
	DeleteCredential(ctx context.Context, id uuid.UUID, orgID uuid.UUID) error
	TestCredential(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (*models.TestCredentialResponse, error)
	// GetDecryptedCredentials is used internally by the webhook path to
	// recover the raw secrets for a stored credential.
	GetDecryptedCredentials(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (integration_models.DecryptedCredentials, error)
}

type credentialsService struct {
	store    store.Store
	aead     cipher.AEAD
	registry *integrations.Registry
}

// NewCredentialsService creates a new CredentialsService.
func NewCredentialsService(s store.Store, aeadCipher cipher.AEAD, reg *integrations.Registry) CredentialsService {
	return &credentialsService{
		store:    s,
		aead:     aeadCipher,
		registry: reg,
	}
}

func mapDbCredentialToResponse(dbCred *models.IntegrationCredential) *models.CredentialResponse {
	return &models.CredentialResponse{
		ID:             dbCred.ID,
		OrganizationID: dbCred.OrganizationID,
		ServiceType:    dbCred.ServiceType,
		CredentialName: dbCred.CredentialName,
		Status:         dbCred.Status,
		CreatedAt:      dbCred.CreatedAt,
		UpdatedAt:      dbCred.UpdatedAt,
	}
}

// CreateCredential validates, tests, encrypts, and stores new integration credentials.
// The pre-save connection test rejects secrets that do not work, so a saved
// credential is known-good at creation time.
func (s *credentialsService) CreateCredential(ctx context.Context, req models.CreateCredentialRequest, orgID uuid.UUID) (*models.CredentialResponse, error) {
	if req.ServiceType == "" {
		return nil, fmt.Errorf("%w: service type cannot be empty", ErrCredentialValidation)
	}
	if len(req.Credentials) == 0 {
		return nil, fmt.Errorf("%w: credentials map cannot be empty", ErrCredentialValidation)
	}

	integration, err := s.registry.Get(string(req.ServiceType))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedServiceType, req.ServiceType)
	}

	var finalCredentialName string
	if req.CredentialName != nil {
		finalCredentialName = *req.CredentialName
	}

	log.Printf("[CredService] CreateCredential: performing pre-save test for service %s, OrgID %s", req.ServiceType, orgID)
	testResult, err := integration.TestConnection(ctx, req.Credentials)
	if err != nil {
		log.Printf("ERROR [CredService] CreateCredential: %s TestConnection system error for OrgID %s: %v", req.ServiceType, orgID, err)
		return nil, fmt.Errorf("failed to test %s connection: %w", req.ServiceType, err)
	}
	if !testResult.Success {
		log.Printf("WARN [CredService] CreateCredential: %s pre-save test failed for OrgID %s: %s", req.ServiceType, orgID, testResult.Message)
		return nil, fmt.Errorf("%w: %s", ErrCredentialTestFailed, testResult.Message)
	}

	// Prefer the name reported by the external service when no name was given.
	if finalCredentialName == "" {
		if botName, ok := testResult.Details["bot_name"].(string); ok && botName != "" {
			finalCredentialName = botName
			log.Printf("[CredService] CreateCredential: using fetched bot name '%s' for OrgID %s", finalCredentialName, orgID)
		}
	}

	plaintextBytes, err := json.Marshal(req.Credentials)
	if err != nil {
		log.Printf("ERROR [CredService] CreateCredential: Failed marshal credentials for OrgID %s: %v", orgID, err)
		return nil, fmt.Errorf("failed to process credentials data: %w", err)
	}

	encryptedBytes, err := appcrypto.Encrypt(s.aead, plaintextBytes)
	if err != nil {
		log.Printf("ERROR [CredService] CreateCredential: Encryption failed for OrgID %s: %v", orgID, err)
		return nil, ErrCredentialEncryption
	}

	params := store.CreateIntegrationCredentialParams{
		ID:                   uuid.New(),
		OrganizationID:       orgID,
		ServiceType:          string(req.ServiceType),
		CredentialName:       finalCredentialName,
		EncryptedCredentials: encryptedBytes,
		Status:               "ACTIVE",
	}

	dbCred, err := s.store.CreateIntegrationCredential(ctx, params)
	if err != nil {
		log.Printf("ERROR [CredService] CreateCredential: Store call failed for OrgID %s: %v", orgID, err)
		return nil, fmt.Errorf("failed to save credential: %w", err)
	}

	resp := mapDbCredentialToResponse(dbCred)
	log.Printf("[CredService] CreateCredential: Successfully created CredID %s for OrgID %s with Name '%s'", resp.ID, orgID, resp.CredentialName)
	return resp, nil
}

// GetCredential retrieves a credential by ID for the specified organization.
func (s *credentialsService) GetCredential(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (*models.CredentialResponse, error) {
	dbCred, err := s.store.GetIntegrationCredentialByID(ctx, id, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCredentialNotFound
		}
		log.Printf("ERROR [CredService] GetCredential: Store call failed for ID %s, OrgID %s: %v", id, orgID, err)
		return nil, fmt.Errorf("failed to retrieve credential: %w", err)
	}
	return mapDbCredentialToResponse(dbCred), nil
}

// ListCredentials retrieves all credentials for the specified organization,
// optionally filtered by service type.
func (s *credentialsService) ListCredentials(ctx context.Context, orgID uuid.UUID, serviceType *string) ([]models.CredentialResponse, error) {
	dbCreds, err := s.store.ListIntegrationCredentialsByOrg(ctx, orgID, serviceType)
	if err != nil {
		log.Printf("ERROR [CredService] ListCredentials: Store call failed for OrgID %s: %v", orgID, err)
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}

	resp := make([]models.CredentialResponse, len(dbCreds))
	for i := range dbCreds {
		resp[i] = *mapDbCredentialToResponse(&dbCreds[i])
	}
	return resp, nil
}

// DeleteCredential deletes a credential by ID for the specified organization.
func (s *credentialsService) DeleteCredential(ctx context.Context, id uuid.UUID, orgID uuid.UUID) error {
	err := s.store.DeleteIntegrationCredential(ctx, id, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCredentialNotFound
		}
		if errors.Is(err, store.ErrCredentialInUse) {
			return ErrCredentialInUse
		}
		log.Printf("ERROR [CredService] DeleteCredential: Store call failed for ID %s, OrgID %s: %v", id, orgID, err)
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	log.Printf("[CredService] DeleteCredential: Successfully deleted CredID %s for OrgID %s", id, orgID)
	return nil
}

// GetDecryptedCredentials fetches and decrypts a credential's secrets.
// Callers must never log or return the values.
func (s *credentialsService) GetDecryptedCredentials(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (integration_models.DecryptedCredentials, error) {
	dbCred, err := s.store.GetIntegrationCredentialByID(ctx, id, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to retrieve credential: %w", err)
	}
	return s.decryptCredentials(dbCred.EncryptedCredentials)
}

func (s *credentialsService) decryptCredentials(encrypted []byte) (integration_models.DecryptedCredentials, error) {
	decryptedJSON, err := appcrypto.Decrypt(s.aead, encrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialDecryption, err)
	}

	var decryptedCreds integration_models.DecryptedCredentials
	if err := json.Unmarshal(decryptedJSON, &decryptedCreds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted credentials JSON: %w", err)
	}
	return decryptedCreds, nil
}

// TestCredential attempts to verify the credential by connecting to the external service.
func (s *credentialsService) TestCredential(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (*models.TestCredentialResponse, error) {
	log.Printf("[CredService] TestCredential - Starting test for CredID: %s, OrgID: %s", id, orgID)

	dbCred, err := s.store.GetIntegrationCredentialByID(ctx, id, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCredentialNotFound
		}
		log.Printf("ERROR [CredService] TestCredential - GetByID failed for ID %s, OrgID %s: %v", id, orgID, err)
		return nil, fmt.Errorf("failed to retrieve credential: %w", err)
	}

	integration, err := s.registry.Get(string(dbCred.ServiceType))
	if err != nil {
		log.Printf("ERROR [CredService] TestCredential - Registry lookup failed for type %s, ID %s: %v", dbCred.ServiceType, id, err)
		return nil, fmt.Errorf("internal error: unsupported service type '%s'", dbCred.ServiceType)
	}

	decryptedCredsMap, err := s.decryptCredentials(dbCred.EncryptedCredentials)
	if err != nil {
		log.Printf("ERROR [CredService] TestCredential - Decryption failed for ID %s: %v", id, err)
		return &models.TestCredentialResponse{
			Success: false,
			Message: "Failed to decrypt credentials for testing.",
		}, nil
	}

	// Log only the keys, never the values.
	decryptedKeys := make([]string, 0, len(decryptedCredsMap))
	for k := range decryptedCredsMap {
		decryptedKeys = append(decryptedKeys, k)
	}
	log.Printf("[CredService] TestCredential - Decrypted credential keys: %v for ID: %s", decryptedKeys, id)

	testResult, err := integration.TestConnection(ctx, decryptedCredsMap)
	if err != nil {
		log.Printf("ERROR [CredService] TestCredential - integration.TestConnection failed for ID %s: %v", id, err)
		return nil, fmt.Errorf("error occurred during connection test: %w", err)
	}
	log.Printf("[CredService] TestCredential - Completed for ID: %s. Success: %v, Message: '%s'", id, testResult.Success, testResult.Message)

	// Record the outcome so stale credentials surface in listings.
	newStatus := "ACTIVE"
	if !testResult.Success {
		newStatus = "INVALID"
	}
	if dbCred.Status != newStatus {
		if err := s.store.UpdateIntegrationCredentialStatus(ctx, id, orgID, newStatus); err != nil {
			log.Printf("WARN [CredService] TestCredential - Failed to update status for ID %s: %v", id, err)
		}
	}

	return &models.TestCredentialResponse{
		Success: testResult.Success,
		Message: testResult.Message,
	}, nil
}
