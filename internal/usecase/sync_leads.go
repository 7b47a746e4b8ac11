package usecase

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/integration/meta"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
)

// SyncLeadsUseCase: o caminho de pull. Varre as páginas conectadas da
// empresa, busca os formulários e os leads novos de cada um, e persiste
// o que ainda não temos. Página/formulário que falha vira log e conta
// zero — o resto do sync segue.
type SyncLeadsUseCase struct {
	LeadRepo entity.LeadRepositoryInterface
	PageRepo entity.PageCredentialRepositoryInterface
	Gateway  LeadPlatformGateway
	Notifier LeadNotifierInterface
	Pool     FetchScheduler
}

func NewSyncLeadsUseCase(
	leadRepo entity.LeadRepositoryInterface,
	pageRepo entity.PageCredentialRepositoryInterface,
	gateway LeadPlatformGateway,
	notifier LeadNotifierInterface,
	pool FetchScheduler,
) *SyncLeadsUseCase {
	return &SyncLeadsUseCase{
		LeadRepo: leadRepo,
		PageRepo: pageRepo,
		Gateway:  gateway,
		Notifier: notifier,
		Pool:     pool,
	}
}

// Execute devolve quantos leads novos entraram. Erro só quando a empresa
// não tem nenhuma página utilizável (ConfigurationError) ou o banco caiu
// (PersistenceError).
func (uc *SyncLeadsUseCase) Execute(ctx context.Context, companyID string) (int, error) {
	// 1. Páginas conectadas da empresa
	pages, err := uc.PageRepo.FindByCompanyID(ctx, companyID)
	if err != nil {
		return 0, &PersistenceError{Code: "PAGE_LOOKUP_FAILED", Message: "erro ao buscar páginas conectadas", Err: err}
	}

	usable := make([]entity.PageCredential, 0, len(pages))
	for _, page := range pages {
		if page.AccessToken == "" {
			// Token perdido numa página não derruba as outras
			log.Printf("⚠️ Página %s sem token de acesso, pulando", page.PageID)
			continue
		}
		usable = append(usable, page)
	}
	if len(usable) == 0 {
		return 0, &ConfigurationError{Code: "NO_PAGE_SELECTIONS", Message: "no page selections found"}
	}

	// 2. Marca d'água da empresa (lead FACEBOOK mais recente já salvo)
	watermark, err := uc.LeadRepo.LatestFacebookLeadTime(ctx, companyID)
	if err != nil {
		return 0, &PersistenceError{Code: "WATERMARK_FAILED", Message: "erro ao calcular marca d'água", Err: err}
	}

	// 3. Fan-out por página. A tarefa de página NÃO espera as tarefas de
	// formulário que ela submete (senão as vagas do pool travam); ela só
	// registra os futures no grupo e o orquestrador espera tudo no final.
	var inserted atomic.Int64
	formTasks := worker.NewFutureGroup()
	pageTasks := worker.NewFutureGroup()

	for _, page := range usable {
		page := page
		since := effectiveSince(watermark, page.CreatedAt)

		pageTasks.Add(uc.Pool.Submit(func() error {
			forms, err := uc.Gateway.ListForms(ctx, page.PageID, page.AccessToken)
			if err != nil {
				middleware.RecordIntegrationError("graph")
				log.Printf("❌ Erro ao listar formulários da página %s: %v", page.PageID, err)
				return err
			}

			for _, form := range forms {
				form := form
				formTasks.Add(uc.Pool.Submit(func() error {
					n, err := uc.syncForm(ctx, companyID, page, form, since)
					if err != nil {
						middleware.RecordIntegrationError("graph")
						log.Printf("❌ Erro no formulário %s (%s): %v", form.ID, form.Name, err)
						return err
					}
					inserted.Add(int64(n))
					return nil
				}))
			}
			return nil
		}))
	}

	// 4. Espera: primeiro as páginas (que ainda submetem formulários),
	// depois os formulários. Falhas já foram logadas, o resultado é "soft".
	pageTasks.WaitAll()
	formTasks.WaitAll()

	total := int(inserted.Load())
	log.Printf("✅ Sync da empresa %s: %d lead(s) novo(s)", companyID, total)
	return total, nil
}

func (uc *SyncLeadsUseCase) syncForm(ctx context.Context, companyID string, page entity.PageCredential, form meta.FormSummary, since *time.Time) (int, error) {
	rawLeads, err := uc.Gateway.ListLeads(ctx, form.ID, page.AccessToken, since)
	if err != nil {
		return 0, err
	}
	if len(rawLeads) == 0 {
		return 0, nil
	}

	// Checagem de dedup em lote: uma ida só ao banco pro formulário inteiro
	ids := make([]string, 0, len(rawLeads))
	for _, raw := range rawLeads {
		ids = append(ids, raw.ID)
	}
	known, err := uc.LeadRepo.ExistsBatch(ctx, ids)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, raw := range rawLeads {
		if known[raw.ID] {
			continue
		}

		lead := meta.MapLead(raw)
		lead.CompanyID = companyID
		lead.FormName = form.Name

		ok, err := uc.LeadRepo.Insert(ctx, lead)
		if err != nil {
			log.Printf("❌ Erro ao salvar lead %s: %v", raw.ID, err)
			continue
		}
		if !ok {
			// A constraint segurou: o webhook chegou primeiro nesse lead
			continue
		}

		count++
		middleware.RecordLeadIngested(entity.LeadSourceFacebook)
		uc.Notifier.NotifyLeadCaptured(lead)
	}
	return count, nil
}

// effectiveSince: início efetivo da janela de busca da página.
// max(marca d'água da empresa, registro da credencial); se só um existe,
// usa ele; se nenhum, busca tudo (nil).
func effectiveSince(watermark *time.Time, credentialSince time.Time) *time.Time {
	switch {
	case watermark == nil && credentialSince.IsZero():
		return nil
	case watermark == nil:
		return &credentialSince
	case credentialSince.IsZero():
		return watermark
	case credentialSince.After(*watermark):
		return &credentialSince
	default:
		return watermark
	}
}
