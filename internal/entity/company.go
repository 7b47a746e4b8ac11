package entity

import (
	"context"
	"errors"
)

var ErrCompanyNotFound = errors.New("empresa não encontrada")

// Entidade: Company (tenant). Cadastro e permissões ficam em outro
// serviço; aqui só precisamos do contato do admin para avisar de leads.
type Company struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type CompanyRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*Company, error)
}
