package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB

	// Detecção de layout do schema: deploys antigos guardam o leadgen_id
	// só dentro do raw_payload; os novos têm coluna indexada. Decidimos
	// uma vez por processo e pronto.
	layoutOnce       sync.Once
	hasLeadgenColumn bool
	layoutErr        error
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) hasFastPath(ctx context.Context) (bool, error) {
	r.layoutOnce.Do(func() {
		const query = `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_name = 'leads' AND column_name = 'leadgen_id'
			)
		`
		r.layoutErr = r.DB.QueryRowContext(ctx, query).Scan(&r.hasLeadgenColumn)
		if r.layoutErr == nil && !r.hasLeadgenColumn {
			log.Println("⚠️ Tabela leads sem coluna leadgen_id, usando busca pelo raw_payload (lenta)")
		}
	})
	return r.hasLeadgenColumn, r.layoutErr
}

// Insert grava o lead. Devolve false quando a unique (source, leadgen_id)
// segurou uma duplicata — esse é o sinal autoritativo de dedup, a checagem
// de existência que vem antes é só otimização.
func (r *LeadRepository) Insert(ctx context.Context, lead *entity.Lead) (bool, error) {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now
	if lead.Status == "" {
		lead.Status = entity.LeadStatusNew
	}

	var customFields []byte
	if len(lead.CustomFields) > 0 {
		var err error
		customFields, err = json.Marshal(lead.CustomFields)
		if err != nil {
			return false, err
		}
	}

	fast, err := r.hasFastPath(ctx)
	if err != nil {
		return false, err
	}

	if !fast {
		// Schema antigo: sem coluna dedicada, sem constraint. A checagem
		// de existência do chamador é a única proteção aqui.
		query := `
			INSERT INTO leads
				(id, company_id, name, email, phone, address, custom_fields,
				 source, form_name, status, raw_payload, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		_, err := r.DB.ExecContext(ctx, query,
			lead.ID, lead.CompanyID,
			nullString(lead.Name), nullString(lead.Email),
			nullString(lead.Phone), nullString(lead.Address),
			nullBytes(customFields),
			lead.Source, nullString(lead.FormName), lead.Status,
			nullBytes(lead.RawPayload),
			lead.CreatedAt, lead.UpdatedAt,
		)
		if isUniqueViolation(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}

	query := `
		INSERT INTO leads
			(id, company_id, leadgen_id, name, email, phone, address, custom_fields,
			 source, form_name, status, raw_payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (source, leadgen_id) WHERE leadgen_id IS NOT NULL DO NOTHING
	`
	res, err := r.DB.ExecContext(ctx, query,
		lead.ID, lead.CompanyID, nullString(lead.LeadgenID),
		nullString(lead.Name), nullString(lead.Email),
		nullString(lead.Phone), nullString(lead.Address),
		nullBytes(customFields),
		lead.Source, nullString(lead.FormName), lead.Status,
		nullBytes(lead.RawPayload),
		lead.CreatedAt, lead.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *LeadRepository) Exists(ctx context.Context, leadgenID string) (bool, error) {
	known, err := r.ExistsBatch(ctx, []string{leadgenID})
	if err != nil {
		return false, err
	}
	return known[leadgenID], nil
}

// ExistsBatch checa todos os IDs numa ida só ao banco e devolve o
// conjunto dos que já existem.
func (r *LeadRepository) ExistsBatch(ctx context.Context, leadgenIDs []string) (map[string]bool, error) {
	known := make(map[string]bool, len(leadgenIDs))
	if len(leadgenIDs) == 0 {
		return known, nil
	}

	fast, err := r.hasFastPath(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT leadgen_id FROM leads
		WHERE source = $1 AND leadgen_id = ANY($2)
	`
	if !fast {
		// Caminho lento: o ID mora dentro do JSONB
		query = `
			SELECT raw_payload->>'id' FROM leads
			WHERE source = $1 AND raw_payload->>'id' = ANY($2)
		`
	}

	rows, err := r.DB.QueryContext(ctx, query, entity.LeadSourceFacebook, pq.Array(leadgenIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		known[id] = true
	}
	return known, rows.Err()
}

// LatestFacebookLeadTime: marca d'água pro sync não re-buscar histórico.
// Nil quando a empresa ainda não tem lead do Facebook.
func (r *LeadRepository) LatestFacebookLeadTime(ctx context.Context, companyID string) (*time.Time, error) {
	const query = `
		SELECT MAX(created_at) FROM leads
		WHERE company_id = $1 AND source = $2
	`

	var latest sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, companyID, entity.LeadSourceFacebook).Scan(&latest)
	if err != nil {
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
