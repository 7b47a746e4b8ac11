package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/integration/meta"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
)

// LeadPlatformGateway: as três chamadas que fazemos no Graph.
type LeadPlatformGateway interface {
	ListForms(ctx context.Context, pageID, token string) ([]meta.FormSummary, error)
	ListLeads(ctx context.Context, formID, token string, since *time.Time) ([]meta.RawLead, error)
	GetLead(ctx context.Context, leadgenID, token string) (*meta.RawLead, error)
}

// LeadNotifierInterface: aviso de lead novo. O contrato é dispara-e-esquece:
// NÃO bloqueia e NÃO devolve erro — falha de notificação vira log, nunca
// afeta a ingestão.
type LeadNotifierInterface interface {
	NotifyLeadCaptured(lead *entity.Lead)
}

// FetchScheduler: o pool de buscas com limite de concorrência.
type FetchScheduler interface {
	Submit(fn func() error) *worker.Future
}
