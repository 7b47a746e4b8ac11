package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/integration/meta"
)

// LeadgenEvent: um change de leadgen como vem no webhook do Facebook.
type LeadgenEvent struct {
	LeadgenID   string `json:"leadgen_id"`
	PageID      string `json:"page_id"`
	FormID      string `json:"form_id,omitempty"`
	CreatedTime int64  `json:"created_time,omitempty"`
}

// IngestWebhookLeadUseCase: o caminho de push. Recebe um evento por vez,
// tenta cada credencial candidata da página até uma funcionar e persiste
// o lead. Nunca devolve erro: o webhook já respondeu 200 pro Facebook,
// daqui pra frente tudo é log + a reentrega deles.
type IngestWebhookLeadUseCase struct {
	LeadRepo entity.LeadRepositoryInterface
	PageRepo entity.PageCredentialRepositoryInterface
	Gateway  LeadPlatformGateway
	Notifier LeadNotifierInterface
}

func NewIngestWebhookLeadUseCase(
	leadRepo entity.LeadRepositoryInterface,
	pageRepo entity.PageCredentialRepositoryInterface,
	gateway LeadPlatformGateway,
	notifier LeadNotifierInterface,
) *IngestWebhookLeadUseCase {
	return &IngestWebhookLeadUseCase{
		LeadRepo: leadRepo,
		PageRepo: pageRepo,
		Gateway:  gateway,
		Notifier: notifier,
	}
}

func (uc *IngestWebhookLeadUseCase) ProcessEvent(ctx context.Context, event LeadgenEvent) {
	// 1. Evento sem os campos mínimos: descarta. Retentar não conserta
	// payload quebrado.
	if event.LeadgenID == "" {
		middleware.RecordWebhookEvent("malformed")
		log.Printf("⚠️ Webhook descartado: %v", &MalformedEventError{Field: "leadgen_id"})
		return
	}
	if event.PageID == "" {
		middleware.RecordWebhookEvent("malformed")
		log.Printf("⚠️ Webhook descartado: %v", &MalformedEventError{Field: "page_id"})
		return
	}

	// 2. Credenciais candidatas da página, já ordenadas
	candidates, err := uc.PageRepo.FindCandidatesByPageID(ctx, event.PageID)
	if err != nil {
		middleware.RecordWebhookEvent("error")
		log.Printf("❌ Erro ao buscar credenciais da página %s: %v", event.PageID, err)
		return
	}
	if len(candidates) == 0 {
		middleware.RecordWebhookEvent("no_credentials")
		log.Printf("⚠️ Webhook descartado: nenhuma credencial para a página %s (lead %s)", event.PageID, event.LeadgenID)
		return
	}

	// 3. Tenta cada token distinto na ordem até um funcionar
	winner, raw := uc.fetchWithFallback(ctx, event, candidates)
	if winner == nil {
		middleware.RecordWebhookEvent("exhausted")
		return
	}

	// 4. Dedup: o Facebook reentrega webhook, duplicata aqui é rotina
	exists, err := uc.LeadRepo.Exists(ctx, event.LeadgenID)
	if err != nil {
		middleware.RecordWebhookEvent("error")
		log.Printf("❌ Erro ao checar duplicidade do lead %s: %v", event.LeadgenID, err)
		return
	}
	if exists {
		middleware.RecordWebhookEvent("duplicate")
		return
	}

	// 5. Normaliza e persiste com a empresa do candidato vencedor.
	// Nome do formulário fica vazio: o push não traz essa informação.
	lead := meta.MapLead(*raw)
	lead.CompanyID = winner.CompanyID

	inserted, err := uc.LeadRepo.Insert(ctx, lead)
	if err != nil {
		middleware.RecordWebhookEvent("error")
		log.Printf("❌ Erro ao salvar lead %s do webhook: %v", event.LeadgenID, err)
		return
	}
	if !inserted {
		// Corrida com o sync: os dois viram "não existe" quase juntos e a
		// constraint decidiu. Tudo certo, o lead está no banco.
		middleware.RecordWebhookEvent("duplicate")
		return
	}

	middleware.RecordWebhookEvent("ingested")
	middleware.RecordLeadIngested(entity.LeadSourceFacebook)
	log.Printf("✅ Webhook: lead %s salvo para a empresa %s (%s)", event.LeadgenID, winner.CompanyID, winner.SourceTag)

	uc.Notifier.NotifyLeadCaptured(lead)
}

// fetchWithFallback itera os candidatos em ordem. Token repetido entre
// candidatos é tentado uma vez só. Erro do Graph (token podre) e erro de
// rede contam igual: anota e vai pro próximo. O primeiro sucesso ganha.
func (uc *IngestWebhookLeadUseCase) fetchWithFallback(ctx context.Context, event LeadgenEvent, candidates []entity.CredentialCandidate) (*entity.CredentialCandidate, *meta.RawLead) {
	tried := make(map[string]bool, len(candidates))
	var attemptErrs []error

	for i := range candidates {
		cand := candidates[i]
		if tried[cand.AccessToken] {
			continue
		}
		tried[cand.AccessToken] = true

		raw, err := uc.Gateway.GetLead(ctx, event.LeadgenID, cand.AccessToken)
		if err != nil {
			kind := "rede"
			if meta.IsGraphError(err) {
				kind = "graph"
			}
			attemptErrs = append(attemptErrs,
				fmt.Errorf("empresa %s (%s, erro de %s): %w", cand.CompanyID, cand.SourceTag, kind, err))
			continue
		}
		return &cand, raw
	}

	// Esgotou a lista: descarta o evento e loga tudo que foi tentado.
	// Se foi transiente, a reentrega do Facebook faz a segunda chance.
	log.Printf("❌ Webhook: nenhum token funcionou para o lead %s da página %s (%d tentativa(s)):",
		event.LeadgenID, event.PageID, len(attemptErrs))
	for _, err := range attemptErrs {
		log.Printf("   ↳ %v", err)
	}
	return nil, nil
}
