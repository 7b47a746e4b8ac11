package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

// LeadAlertSender define o contrato dos canais de aviso (email, WhatsApp)
type LeadAlertSender interface {
	SendLeadAlert(to, companyName string, payload LeadCapturedPayload) error
}

type Worker struct {
	Channel     *amqp.Channel
	CompanyRepo entity.CompanyRepositoryInterface
	Mail        LeadAlertSender
	WhatsApp    LeadAlertSender // opcional, pode ser nil
}

func NewWorker(ch *amqp.Channel, companyRepo entity.CompanyRepositoryInterface, mail, whatsApp LeadAlertSender) *Worker {
	return &Worker{
		Channel:     ch,
		CompanyRepo: companyRepo,
		Mail:        mail,
		WhatsApp:    whatsApp,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		log.Fatalf("❌ Falha ao registrar consumidor RabbitMQ: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload LeadCapturedPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] JSON Inválido: %s", err)
				// Mensagem podre (malformada). Rejeita sem requeue para não travar a fila.
				d.Nack(false, false)
				continue
			}

			log.Printf("📥 [WORKER] Avisando empresa %s do lead %s", payload.CompanyID, payload.LeadID)

			if err := w.processMessage(context.Background(), payload); err != nil {
				log.Printf("❌ [WORKER] Erro ao notificar: %s", err)
				d.Nack(false, false) // vai pra DLQ
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Worker rodando e aguardando na fila '%s'", queueName)
	<-forever
}

func (w *Worker) processMessage(ctx context.Context, payload LeadCapturedPayload) error {
	company, err := w.CompanyRepo.FindByID(ctx, payload.CompanyID)
	if err != nil {
		return err
	}

	if err := w.Mail.SendLeadAlert(company.Email, company.Name, payload); err != nil {
		return err
	}

	// WhatsApp é canal extra: falha não manda a mensagem pra DLQ,
	// o email já saiu
	if w.WhatsApp != nil && company.Phone != "" {
		if err := w.WhatsApp.SendLeadAlert(company.Phone, company.Name, payload); err != nil {
			log.Printf("⚠️ [WORKER] WhatsApp falhou para %s: %v", company.Phone, err)
		}
	}

	return nil
}
