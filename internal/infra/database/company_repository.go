package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CompanyRepository struct {
	DB *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	const query = `
		SELECT id, name, email, COALESCE(phone, '')
		FROM companies
		WHERE id = $1
	`

	var c entity.Company
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
