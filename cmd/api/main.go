package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/integration/meta"
	"github.com/xavierca1/ligue-crm/internal/infra/integration/whatsapp"
	"github.com/xavierca1/ligue-crm/internal/infra/mail"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		envOr("RABBITMQ_USER", "user"),
		envOr("RABBITMQ_PASS", "password"),
		envOr("RABBITMQ_HOST", "localhost"),
		envOr("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		panic(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositórios
	leadRepo := database.NewLeadRepository(db)
	pageRepo := database.NewPageCredentialRepository(db)
	companyRepo := database.NewCompanyRepository(db)

	// 2. Gateways e Adapters
	graph := meta.NewClient(os.Getenv("FB_GRAPH_URL"))
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	notifier := queue.NewLeadNotifier(producer)
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), 587, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
	)
	waSender := mail.NewWhatsAppSender(whatsapp.NewClient())

	// 3. Worker de notificação (consome a fila e avisa a empresa)
	notifWorker := queue.NewWorker(rabbitMQ.Ch, companyRepo, mailSender, waSender)
	go notifWorker.Start(queue.QueueName)

	// 4. UseCases
	// Pool compartilhado: o limite vale pro fan-out de páginas E formulários
	fetchPool := worker.NewFetchPool(intEnvOr("FETCH_CONCURRENCY", 5))

	syncUC := usecase.NewSyncLeadsUseCase(leadRepo, pageRepo, graph, notifier, fetchPool)
	ingestUC := usecase.NewIngestWebhookLeadUseCase(leadRepo, pageRepo, graph, notifier)

	// Sync automático de tempos em tempos, além do botão no painel
	autoSync := worker.NewAutoSyncWorker(db, syncUC,
		time.Duration(intEnvOr("LEAD_SYNC_INTERVAL_MIN", 30))*time.Minute)
	go autoSync.Start(context.Background())

	// 5. Handlers
	syncHandler := handlers.NewSyncHandler(syncUC)
	webhookHandler := handlers.NewWebhookHandler(ingestUC, os.Getenv("FB_VERIFY_TOKEN"))
	leadHandler := handlers.NewLeadHandler(leadRepo, notifier)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Post("/leads/facebook/sync/{companyId}", syncHandler.Handle)
	r.Get("/webhook/facebook", webhookHandler.HandleVerify)
	r.Post("/webhook/facebook", webhookHandler.Handle)
	r.Post("/leads", leadHandler.CaptureLead)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":8080"
	log.Printf("🔥 Server CoreCRM rodando na porta %s", port)
	http.ListenAndServe(port, r)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnvOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
