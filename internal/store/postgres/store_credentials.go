package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"workdesk-backend/internal/models"
	"workdesk-backend/internal/store"
)

const credentialColumns = `id, organization_id, service_type, credential_name, encrypted_credentials, status, created_at, updated_at`

func scanCredential(row pgx.Row) (*models.IntegrationCredential, error) {
	cred := &models.IntegrationCredential{}
	err := row.Scan(
		&cred.ID,
		&cred.OrganizationID,
		&cred.ServiceType,
		&cred.CredentialName,
		&cred.EncryptedCredentials,
		&cred.Status,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cred, nil
}

// CreateIntegrationCredential inserts a new encrypted credential record.
// The encrypted payload is stored as BYTEA; only sealed bytes ever reach
// the database.
func (s *PostgresStore) CreateIntegrationCredential(ctx context.Context, arg store.CreateIntegrationCredentialParams) (*models.IntegrationCredential, error) {
	query := `
		INSERT INTO integration_credentials (id, organization_id, service_type, credential_name, encrypted_credentials, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + credentialColumns

	cred, err := scanCredential(s.db.QueryRow(ctx, query,
		arg.ID,
		arg.OrganizationID,
		arg.ServiceType,
		arg.CredentialName,
		arg.EncryptedCredentials,
		arg.Status,
	))
	if err != nil {
		log.Printf("ERROR [PostgresStore] CreateIntegrationCredential: insert failed for OrgID %s: %v", arg.OrganizationID, err)
		return nil, fmt.Errorf("database error creating integration credential: %w", err)
	}

	log.Printf("[PostgresStore] CreateIntegrationCredential: Successfully inserted CredID %s for OrgID %s", cred.ID, cred.OrganizationID)
	return cred, nil
}

// GetIntegrationCredentialByID retrieves a credential ensuring it belongs to the org.
func (s *PostgresStore) GetIntegrationCredentialByID(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (*models.IntegrationCredential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM integration_credentials
		WHERE id = $1 AND organization_id = $2`

	cred, err := scanCredential(s.db.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] GetIntegrationCredentialByID: query failed for %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching integration credential: %w", err)
	}
	return cred, nil
}

// ListIntegrationCredentialsByOrg lists an org's credentials, optionally
// filtered by service type.
func (s *PostgresStore) ListIntegrationCredentialsByOrg(ctx context.Context, orgID uuid.UUID, serviceType *string) ([]models.IntegrationCredential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM integration_credentials
		WHERE organization_id = $1 AND ($2::text IS NULL OR service_type = $2)
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, orgID, serviceType)
	if err != nil {
		log.Printf("ERROR [PostgresStore] ListIntegrationCredentialsByOrg: query failed for OrgID %s: %v", orgID, err)
		return nil, fmt.Errorf("database error listing integration credentials: %w", err)
	}
	defer rows.Close()

	var creds []models.IntegrationCredential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("database error scanning credential row: %w", err)
		}
		creds = append(creds, *cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating credentials: %w", err)
	}
	return creds, nil
}

// UpdateIntegrationCredentialStatus updates a credential's status field.
func (s *PostgresStore) UpdateIntegrationCredentialStatus(ctx context.Context, id uuid.UUID, orgID uuid.UUID, status string) error {
	query := `
		UPDATE integration_credentials
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2`

	tag, err := s.db.Exec(ctx, query, id, orgID, status)
	if err != nil {
		log.Printf("ERROR [PostgresStore] UpdateIntegrationCredentialStatus: update failed for %s: %v", id, err)
		return fmt.Errorf("database error updating credential status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteIntegrationCredential removes a credential record.
func (s *PostgresStore) DeleteIntegrationCredential(ctx context.Context, id uuid.UUID, orgID uuid.UUID) error {
	query := `DELETE FROM integration_credentials WHERE id = $1 AND organization_id = $2`

	tag, err := s.db.Exec(ctx, query, id, orgID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return store.ErrCredentialInUse
		}
		log.Printf("ERROR [PostgresStore] DeleteIntegrationCredential: delete failed for %s: %v", id, err)
		return fmt.Errorf("database error deleting integration credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
