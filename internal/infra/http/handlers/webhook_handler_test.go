package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// stubProcessor manda os eventos recebidos pra um canal, já que o handler
// processa em goroutine depois do ack
type stubProcessor struct {
	events chan usecase.LeadgenEvent
}

func newStubProcessor() *stubProcessor {
	return &stubProcessor{events: make(chan usecase.LeadgenEvent, 10)}
}

func (s *stubProcessor) ProcessEvent(ctx context.Context, event usecase.LeadgenEvent) {
	s.events <- event
}

func (s *stubProcessor) waitEvent(t *testing.T) usecase.LeadgenEvent {
	t.Helper()
	select {
	case event := <-s.events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("nenhum evento chegou no processador")
		return usecase.LeadgenEvent{}
	}
}

// TestWebhookVerificacaoAceita - Handshake com o token certo devolve o challenge
func TestWebhookVerificacaoAceita(t *testing.T) {
	handler := NewWebhookHandler(newStubProcessor(), "meu-token-secreto")

	req := httptest.NewRequest("GET", "/webhook/facebook?hub.mode=subscribe&hub.verify_token=meu-token-secreto&hub.challenge=desafio-123", nil)
	rec := httptest.NewRecorder()
	handler.HandleVerify(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "desafio-123", rec.Body.String())
}

// TestWebhookVerificacaoRecusada - Token errado ou vazio: 403
func TestWebhookVerificacaoRecusada(t *testing.T) {
	handler := NewWebhookHandler(newStubProcessor(), "meu-token-secreto")

	req := httptest.NewRequest("GET", "/webhook/facebook?hub.mode=subscribe&hub.verify_token=token-errado&hub.challenge=desafio-123", nil)
	rec := httptest.NewRecorder()
	handler.HandleVerify(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Servidor sem token configurado recusa qualquer handshake
	semToken := NewWebhookHandler(newStubProcessor(), "")
	req = httptest.NewRequest("GET", "/webhook/facebook?hub.mode=subscribe&hub.verify_token=&hub.challenge=x", nil)
	rec = httptest.NewRecorder()
	semToken.HandleVerify(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// TestWebhookEventoDespachado - POST com change de leadgen: 200 na hora e o
// evento chega no processador
func TestWebhookEventoDespachado(t *testing.T) {
	processor := newStubProcessor()
	handler := NewWebhookHandler(processor, "meu-token-secreto")

	body := `{
		"object": "page",
		"entry": [{
			"id": "page-1",
			"changes": [{
				"field": "leadgen",
				"value": {"leadgen_id": "lead-1", "page_id": "page-1", "form_id": "form-1", "created_time": 1709900000}
			}]
		}]
	}`
	req := httptest.NewRequest("POST", "/webhook/facebook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EVENT_RECEIVED", rec.Body.String())

	event := processor.waitEvent(t)
	assert.Equal(t, "lead-1", event.LeadgenID)
	assert.Equal(t, "page-1", event.PageID)
	assert.Equal(t, "form-1", event.FormID)
	assert.Equal(t, int64(1709900000), event.CreatedTime)
}

// TestWebhookIgnoraOutrosCampos - Change que não é leadgen não vira evento
func TestWebhookIgnoraOutrosCampos(t *testing.T) {
	processor := newStubProcessor()
	handler := NewWebhookHandler(processor, "meu-token-secreto")

	body := `{
		"object": "page",
		"entry": [{
			"id": "page-1",
			"changes": [{"field": "feed", "value": {}}]
		}]
	}`
	req := httptest.NewRequest("POST", "/webhook/facebook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	select {
	case event := <-processor.events:
		t.Fatalf("evento inesperado: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

// TestWebhookJSONQuebrado - Payload ilegível ainda recebe 200: retry do
// Facebook não conserta JSON quebrado
func TestWebhookJSONQuebrado(t *testing.T) {
	handler := NewWebhookHandler(newStubProcessor(), "meu-token-secreto")

	req := httptest.NewRequest("POST", "/webhook/facebook", strings.NewReader(`{isso não é json`))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestWebhookVariosEventosNoMesmoPost - Batch do Facebook: cada change de
// leadgen vira um evento
func TestWebhookVariosEventosNoMesmoPost(t *testing.T) {
	processor := newStubProcessor()
	handler := NewWebhookHandler(processor, "meu-token-secreto")

	body := `{
		"object": "page",
		"entry": [
			{"id": "page-1", "changes": [{"field": "leadgen", "value": {"leadgen_id": "lead-1", "page_id": "page-1"}}]},
			{"id": "page-2", "changes": [{"field": "leadgen", "value": {"leadgen_id": "lead-2", "page_id": "page-2"}}]}
		]
	}`
	req := httptest.NewRequest("POST", "/webhook/facebook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	got := map[string]bool{}
	got[processor.waitEvent(t).LeadgenID] = true
	got[processor.waitEvent(t).LeadgenID] = true
	assert.Equal(t, map[string]bool{"lead-1": true, "lead-2": true}, got)
}
