package entity

import (
	"context"
	"time"
)

// PageCredential: vínculo entre uma empresa e uma página do Facebook,
// com o token de acesso escopado à página. Alimentado pelo fluxo de
// conexão OAuth (fora deste serviço); aqui é somente leitura.
// A mesma página pode ter vínculos de mais de uma empresa (reconexão,
// troca de agência etc). Isso é esperado, não é erro.
type PageCredential struct {
	ID          int64     `json:"id"`
	CompanyID   string    `json:"company_id"`
	PageID      string    `json:"page_id"`
	AccessToken string    `json:"-"` // nunca serializar o token
	Subscribed  bool      `json:"subscribed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	CandidateSourceSubscribed = "SUBSCRIBED"
	CandidateSourceConnected  = "CONNECTED"
)

// CredentialCandidate: um par (empresa, token) que PODE autorizar a
// leitura dos leads de uma página. O webhook tenta os candidatos em
// ordem até um funcionar.
type CredentialCandidate struct {
	CompanyID   string
	AccessToken string
	SourceTag   string // SUBSCRIBED ou CONNECTED
	UpdatedAt   time.Time
}

type PageCredentialRepositoryInterface interface {
	FindByCompanyID(ctx context.Context, companyID string) ([]PageCredential, error)

	// FindCandidatesByPageID devolve os candidatos já ordenados:
	// páginas inscritas primeiro, depois token mais recente. A ordem é
	// só heurística para errar menos chamadas; o chamador esgota a lista.
	FindCandidatesByPageID(ctx context.Context, pageID string) ([]CredentialCandidate, error)
}
