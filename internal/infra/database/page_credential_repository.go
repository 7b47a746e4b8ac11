package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type PageCredentialRepository struct {
	DB *sql.DB
}

func NewPageCredentialRepository(db *sql.DB) *PageCredentialRepository {
	return &PageCredentialRepository{DB: db}
}

func (r *PageCredentialRepository) FindByCompanyID(ctx context.Context, companyID string) ([]entity.PageCredential, error) {
	const query = `
		SELECT id, company_id, page_id, COALESCE(access_token, ''), subscribed, created_at, updated_at
		FROM page_credentials
		WHERE company_id = $1
		ORDER BY id
	`

	rows, err := r.DB.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []entity.PageCredential
	for rows.Next() {
		var c entity.PageCredential
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.PageID, &c.AccessToken,
			&c.Subscribed, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

// FindCandidatesByPageID: todos os vínculos conhecidos da página, já na
// ordem de tentativa do webhook — inscritos primeiro, depois token mais
// fresco, empate pelo id de inserção.
func (r *PageCredentialRepository) FindCandidatesByPageID(ctx context.Context, pageID string) ([]entity.CredentialCandidate, error) {
	const query = `
		SELECT company_id, COALESCE(access_token, ''), subscribed, updated_at
		FROM page_credentials
		WHERE page_id = $1 AND access_token IS NOT NULL AND access_token <> ''
		ORDER BY subscribed DESC, updated_at DESC, id ASC
	`

	rows, err := r.DB.QueryContext(ctx, query, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []entity.CredentialCandidate
	for rows.Next() {
		var c entity.CredentialCandidate
		var subscribed bool
		if err := rows.Scan(&c.CompanyID, &c.AccessToken, &subscribed, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.SourceTag = entity.CandidateSourceConnected
		if subscribed {
			c.SourceTag = entity.CandidateSourceSubscribed
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
