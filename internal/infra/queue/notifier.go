package queue

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// LeadNotifier publica o aviso de lead novo na fila SEM bloquear o fluxo
// de ingestão. O contrato é dispara-e-esquece de verdade: a publicação
// roda em goroutine própria e falha vira só log — o lead já está salvo,
// avisar a empresa é melhor-esforço.
type LeadNotifier struct {
	Producer QueueProducerInterface
}

func NewLeadNotifier(producer QueueProducerInterface) *LeadNotifier {
	return &LeadNotifier{Producer: producer}
}

func (n *LeadNotifier) NotifyLeadCaptured(lead *entity.Lead) {
	payload := LeadCapturedPayload{
		LeadID:    lead.ID,
		CompanyID: lead.CompanyID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Source:    lead.Source,
		FormName:  lead.FormName,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := n.Producer.PublishLeadCaptured(ctx, payload); err != nil {
			log.Printf("⚠️ Notificação do lead %s falhou (ingestão não afetada): %v", payload.LeadID, err)
		}
	}()
}
