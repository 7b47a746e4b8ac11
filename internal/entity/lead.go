package entity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	// IMPORTANTE: NÃO adicione imports de usecase ou infra aqui!
)

const (
	LeadSourceFacebook = "FACEBOOK"
	LeadSourceManual   = "MANUAL"
	LeadSourceOther    = "OTHER"

	LeadStatusNew = "NEW"
)

// Entidade: Lead (prospecto capturado por formulário)
type Lead struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`

	// ID do lead no Facebook. Vazio para leads MANUAL/OTHER.
	LeadgenID string `json:"leadgen_id,omitempty"`

	Name         string            `json:"name,omitempty"`
	Email        string            `json:"email,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Address      string            `json:"address,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`

	Source   string `json:"source"`              // FACEBOOK, MANUAL, OTHER
	FormName string `json:"form_name,omitempty"` // Só no caminho de sync (o webhook não sabe o formulário)
	Status   string `json:"status"`              // NEW, CONTACTED, CONVERTED, LOST

	// Payload original do Graph, guardado para auditoria/replay
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Factory para leads capturados manualmente (formulário do painel)
func NewManualLead(companyID, name, email, phone, address string) *Lead {
	return &Lead{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		Address:   address,
		Source:    LeadSourceManual,
		Status:    LeadStatusNew,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

type LeadRepositoryInterface interface {

	// Insert grava o lead e devolve false quando a constraint de unicidade
	// (source, leadgen_id) segurou uma duplicata. Nunca sobrescreve.
	Insert(ctx context.Context, lead *Lead) (bool, error)

	Exists(ctx context.Context, leadgenID string) (bool, error)
	ExistsBatch(ctx context.Context, leadgenIDs []string) (map[string]bool, error)

	// Marca d'água do sync: horário do lead FACEBOOK mais recente da empresa
	LatestFacebookLeadTime(ctx context.Context, companyID string) (*time.Time, error)
}
