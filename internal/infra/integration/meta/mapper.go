package meta

import (
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Campos do formulário que viram coluna própria. O resto cai no
// custom_fields como veio.
var knownFields = map[string]bool{
	"full_name":      true,
	"first_name":     true,
	"last_name":      true,
	"email":          true,
	"phone_number":   true,
	"phone":          true,
	"street_address": true,
	"address":        true,
}

// MapLead converte o payload cru do Graph em entity.Lead. Função pura:
// sem efeito colateral, mesma entrada gera sempre a mesma saída (fora o
// fallback de data pra agora). Campo ausente vira vazio, nunca erro.
func MapLead(raw RawLead) *entity.Lead {
	fields := indexFields(raw.FieldData)

	name := firstValue(fields, "full_name")
	if name == "" {
		// Sem full_name: monta com first + last se existirem
		name = strings.TrimSpace(firstValue(fields, "first_name") + " " + firstValue(fields, "last_name"))
	}

	custom := make(map[string]string)
	for _, f := range raw.FieldData {
		if knownFields[f.Name] || len(f.Values) == 0 {
			continue
		}
		if _, ok := custom[f.Name]; !ok {
			custom[f.Name] = f.Values[0]
		}
	}
	if len(custom) == 0 {
		custom = nil
	}

	return &entity.Lead{
		LeadgenID:    raw.ID,
		Name:         name,
		Email:        firstValue(fields, "email"),
		Phone:        firstValue(fields, "phone_number", "phone"),
		Address:      firstValue(fields, "street_address", "address"),
		CustomFields: custom,
		Source:       entity.LeadSourceFacebook,
		Status:       entity.LeadStatusNew,
		RawPayload:   raw.Raw,
		CreatedAt:    parseGraphTime(raw.CreatedTime),
	}
}

func indexFields(data []FieldValue) map[string][]string {
	fields := make(map[string][]string, len(data))
	for _, f := range data {
		if _, ok := fields[f.Name]; ok {
			continue // campo repetido: vale a primeira ocorrência
		}
		fields[f.Name] = f.Values
	}
	return fields
}

// firstValue devolve o primeiro valor do primeiro campo presente, na
// ordem de prioridade dos nomes passados.
func firstValue(fields map[string][]string, names ...string) string {
	for _, name := range names {
		if values, ok := fields[name]; ok && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// O Graph manda created_time tipo "2024-03-08T11:24:36-0300". Se não der
// pra entender a data, usamos agora — melhor um horário aproximado do que
// perder o lead.
func parseGraphTime(value string) time.Time {
	if value == "" {
		return time.Now()
	}
	for _, layout := range []string{"2006-01-02T15:04:05-0700", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Now()
}
