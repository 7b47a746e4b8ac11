package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/xavierca1/ligue-crm/internal/infra/integration/meta"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Aviso: arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	pageID := os.Getenv("FB_PAGE_ID")
	token := os.Getenv("FB_ACCESS_TOKEN")
	if pageID == "" || token == "" {
		log.Fatal("❌ FB_PAGE_ID e FB_ACCESS_TOKEN devem estar configurados no .env")
	}

	client := meta.NewClient(os.Getenv("FB_GRAPH_URL"))
	ctx := context.Background()

	fmt.Printf("🔄 Buscando formulários da página %s...\n", pageID)
	forms, err := client.ListForms(ctx, pageID, token)
	if err != nil {
		log.Fatalf("Erro ao listar formulários: %v", err)
	}

	fmt.Printf("📋 %d formulário(s) encontrado(s):\n", len(forms))
	for _, form := range forms {
		fmt.Printf("   #%s — %s\n", form.ID, form.Name)
	}

	if len(forms) == 0 {
		return
	}

	fmt.Printf("\n🔄 Buscando leads do formulário %q...\n", forms[0].Name)
	leads, err := client.ListLeads(ctx, forms[0].ID, token, nil)
	if err != nil {
		log.Fatalf("Erro ao listar leads: %v", err)
	}

	fmt.Printf("✅ %d lead(s):\n", len(leads))
	for _, raw := range leads {
		lead := meta.MapLead(raw)
		fmt.Printf("   %s — %s / %s / %s\n", raw.ID, lead.Name, lead.Email, lead.Phone)
	}
}
