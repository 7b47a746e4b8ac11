package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type LeadSyncExecutor interface {
	Execute(ctx context.Context, companyID string) (int, error)
}

// SyncHandler: disparo manual do sync de leads pelo painel
type SyncHandler struct {
	UseCase LeadSyncExecutor
}

func NewSyncHandler(uc LeadSyncExecutor) *SyncHandler {
	return &SyncHandler{UseCase: uc}
}

type SyncLeadsResponse struct {
	Message  string `json:"message"`
	NewLeads int    `json:"new_leads"`
}

func (h *SyncHandler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyId")
	if companyID == "" {
		http.Error(w, "companyId é obrigatório", http.StatusBadRequest)
		return
	}

	newLeads, err := h.UseCase.Execute(r.Context(), companyID)
	if err != nil {
		if usecase.IsConfigurationError(err) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
			return
		}

		log.Printf("❌ Sync da empresa %s falhou: %v", companyID, err)
		http.Error(w, "erro interno ao sincronizar leads", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(SyncLeadsResponse{
		Message:  "Leads sincronizados com sucesso",
		NewLeads: newLeads,
	})
}
