package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// LeadgenEventProcessor: o caso de uso de ingestão, visto pelo contrato
type LeadgenEventProcessor interface {
	ProcessEvent(ctx context.Context, event usecase.LeadgenEvent)
}

// WebhookHandler recebe os webhooks de leadgen do Facebook. Regra de ouro:
// responder 200 SEMPRE e rápido — se o Facebook vê erro ele entra em
// retry/backoff e piora tudo. O processamento acontece depois do ack.
type WebhookHandler struct {
	Ingest      LeadgenEventProcessor
	VerifyToken string
}

func NewWebhookHandler(ingest LeadgenEventProcessor, verifyToken string) *WebhookHandler {
	return &WebhookHandler{
		Ingest:      ingest,
		VerifyToken: verifyToken,
	}
}

// HandleVerify: handshake de verificação do Facebook (GET com challenge)
func (h *WebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.VerifyToken && h.VerifyToken != "" {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(q.Get("hub.challenge")))
		return
	}

	log.Printf("⚠️ Webhook: verificação recusada (mode=%s)", q.Get("hub.mode"))
	http.Error(w, "Forbidden", http.StatusForbidden)
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Object string `json:"object"`
		Entry  []struct {
			ID      string `json:"id"`
			Changes []struct {
				Field string               `json:"field"`
				Value usecase.LeadgenEvent `json:"value"`
			} `json:"changes"`
		} `json:"entry"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		// Payload quebrado: loga e confirma mesmo assim, retry não conserta
		log.Printf("⚠️ Webhook: JSON ilegível: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "leadgen" {
				continue
			}
			// O ack não espera a ingestão: o request context morre junto
			// com a resposta, por isso Background aqui
			event := change.Value
			go h.Ingest.ProcessEvent(context.Background(), event)
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("EVENT_RECEIVED"))
}
