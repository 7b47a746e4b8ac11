package mail

import (
	"log"

	"github.com/xavierca1/ligue-crm/internal/infra/integration/whatsapp"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

type WhatsAppSender struct {
	client *whatsapp.Client
}

func NewWhatsAppSender(client *whatsapp.Client) *WhatsAppSender {
	return &WhatsAppSender{
		client: client,
	}
}

// SendLeadAlert manda o template de lead novo pro WhatsApp do admin.
// Canal melhor-esforço: dado incompleto ou falha de envio vira log, não erro.
func (s *WhatsAppSender) SendLeadAlert(to, companyName string, payload queue.LeadCapturedPayload) error {
	if to == "" {
		log.Printf("⚠️ WhatsApp: empresa %s sem telefone cadastrado", companyName)
		return nil
	}

	leadName := payload.Name
	if leadName == "" {
		leadName = "(sem nome)"
	}

	input := whatsapp.SendMessageInput{
		PhoneNumber:  to,
		TemplateName: "novo_lead",
		Parameters:   []string{companyName, leadName, payload.Source},
	}

	if err := s.client.SendMessage(input); err != nil {
		log.Printf("⚠️ WhatsApp: falha ao avisar %s do lead %s: %v", to, payload.LeadID, err)
		return nil
	}

	return nil
}
