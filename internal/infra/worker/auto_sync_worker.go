package worker

import (
	"context"
	"database/sql"
	"log"
	"time"
)

// LeadSyncer: o caso de uso de sync, visto daqui só pelo contrato.
type LeadSyncer interface {
	Execute(ctx context.Context, companyID string) (int, error)
}

// AutoSyncWorker roda o sync de leads periodicamente para toda empresa
// com página conectada, sem depender de alguém apertar o botão no painel.
type AutoSyncWorker struct {
	db           *sql.DB
	syncer       LeadSyncer
	tickInterval time.Duration
}

func NewAutoSyncWorker(db *sql.DB, syncer LeadSyncer, tickInterval time.Duration) *AutoSyncWorker {
	if tickInterval <= 0 {
		tickInterval = 30 * time.Minute
	}
	return &AutoSyncWorker{
		db:           db,
		syncer:       syncer,
		tickInterval: tickInterval,
	}
}

func (w *AutoSyncWorker) Start(ctx context.Context) {
	log.Printf("🕒 Auto Sync Worker iniciado (intervalo %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.syncAll(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Auto Sync Worker encerrado")
			return
		case <-ticker.C:
			w.syncAll(ctx)
		}
	}
}

func (w *AutoSyncWorker) syncAll(ctx context.Context) {
	const query = `SELECT DISTINCT company_id FROM page_credentials`

	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		log.Printf("❌ Erro ao listar empresas com página conectada: %v", err)
		return
	}
	defer rows.Close()

	var companyIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			log.Printf("⚠️ Erro ao escanear empresa: %v", err)
			continue
		}
		companyIDs = append(companyIDs, id)
	}

	total := 0
	for _, companyID := range companyIDs {
		n, err := w.syncer.Execute(ctx, companyID)
		if err != nil {
			// Empresa sem token utilizável não derruba as outras
			log.Printf("⚠️ Sync automático falhou para empresa %s: %v", companyID, err)
			continue
		}
		total += n
	}

	if total > 0 {
		log.Printf("✅ Sync automático: %d lead(s) novo(s)", total)
	}
}
