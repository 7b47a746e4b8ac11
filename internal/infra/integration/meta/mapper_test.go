package meta

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

// TestMapLeadCamposCompletos - Lead com todos os campos conhecidos preenchidos
func TestMapLeadCamposCompletos(t *testing.T) {
	raw := RawLead{
		ID:          "lead-123",
		CreatedTime: "2024-03-08T11:24:36-0300",
		FieldData: []FieldValue{
			{Name: "full_name", Values: []string{"João Silva"}},
			{Name: "email", Values: []string{"joao@example.com"}},
			{Name: "phone_number", Values: []string{"+5511999999999"}},
			{Name: "street_address", Values: []string{"Rua A, 123"}},
		},
		Raw: json.RawMessage(`{"id":"lead-123"}`),
	}

	lead := MapLead(raw)

	assert.Equal(t, "lead-123", lead.LeadgenID)
	assert.Equal(t, "João Silva", lead.Name)
	assert.Equal(t, "joao@example.com", lead.Email)
	assert.Equal(t, "+5511999999999", lead.Phone)
	assert.Equal(t, "Rua A, 123", lead.Address)
	assert.Equal(t, entity.LeadSourceFacebook, lead.Source)
	assert.Equal(t, entity.LeadStatusNew, lead.Status)
	assert.Equal(t, json.RawMessage(`{"id":"lead-123"}`), lead.RawPayload)

	expected := time.Date(2024, 3, 8, 11, 24, 36, 0, time.FixedZone("", -3*3600))
	assert.True(t, lead.CreatedAt.Equal(expected), "created_time do Graph deve ser respeitado")
}

// TestMapLeadNomeCompostoFallback - Sem full_name, monta first + last
func TestMapLeadNomeCompostoFallback(t *testing.T) {
	raw := RawLead{
		ID: "lead-456",
		FieldData: []FieldValue{
			{Name: "first_name", Values: []string{"Maria"}},
			{Name: "last_name", Values: []string{"Santos"}},
		},
	}

	lead := MapLead(raw)
	assert.Equal(t, "Maria Santos", lead.Name)
}

// TestMapLeadSemNome - Nenhum campo de nome vira string vazia, nunca erro
func TestMapLeadSemNome(t *testing.T) {
	raw := RawLead{
		ID: "lead-789",
		FieldData: []FieldValue{
			{Name: "email", Values: []string{"anon@example.com"}},
		},
	}

	lead := MapLead(raw)
	assert.Equal(t, "", lead.Name)
	assert.Equal(t, "anon@example.com", lead.Email)
}

// TestMapLeadSoPrimeiroNome - first_name sozinho não deixa espaço sobrando
func TestMapLeadSoPrimeiroNome(t *testing.T) {
	raw := RawLead{
		ID: "lead-790",
		FieldData: []FieldValue{
			{Name: "first_name", Values: []string{"Maria"}},
		},
	}

	assert.Equal(t, "Maria", MapLead(raw).Name)
}

// TestMapLeadPrioridadeTelefoneEndereco - phone_number ganha de phone,
// street_address ganha de address
func TestMapLeadPrioridadeTelefoneEndereco(t *testing.T) {
	raw := RawLead{
		ID: "lead-800",
		FieldData: []FieldValue{
			{Name: "phone", Values: []string{"11 3333-3333"}},
			{Name: "phone_number", Values: []string{"+5511999999999"}},
			{Name: "address", Values: []string{"bairro centro"}},
			{Name: "street_address", Values: []string{"Rua B, 45"}},
		},
	}

	lead := MapLead(raw)
	assert.Equal(t, "+5511999999999", lead.Phone)
	assert.Equal(t, "Rua B, 45", lead.Address)
}

// TestMapLeadMultiplosValores - Campo com vários valores usa o primeiro
func TestMapLeadMultiplosValores(t *testing.T) {
	raw := RawLead{
		ID: "lead-801",
		FieldData: []FieldValue{
			{Name: "email", Values: []string{"primeiro@example.com", "segundo@example.com"}},
			{Name: "qual_horario", Values: []string{"manhã", "tarde"}},
		},
	}

	lead := MapLead(raw)
	assert.Equal(t, "primeiro@example.com", lead.Email)
	assert.Equal(t, "manhã", lead.CustomFields["qual_horario"])
}

// TestMapLeadCamposCustomizados - Campo desconhecido do formulário vai pro custom_fields
func TestMapLeadCamposCustomizados(t *testing.T) {
	raw := RawLead{
		ID: "lead-802",
		FieldData: []FieldValue{
			{Name: "full_name", Values: []string{"Ana"}},
			{Name: "melhor_dia", Values: []string{"sábado"}},
			{Name: "ja_e_cliente", Values: []string{"não"}},
		},
	}

	lead := MapLead(raw)
	assert.Equal(t, map[string]string{
		"melhor_dia":   "sábado",
		"ja_e_cliente": "não",
	}, lead.CustomFields)
}

// TestMapLeadSemCamposCustomizados - Só campos conhecidos: custom_fields fica nil
func TestMapLeadSemCamposCustomizados(t *testing.T) {
	raw := RawLead{
		ID: "lead-803",
		FieldData: []FieldValue{
			{Name: "full_name", Values: []string{"Ana"}},
			{Name: "email", Values: []string{"ana@example.com"}},
		},
	}

	assert.Nil(t, MapLead(raw).CustomFields)
}

// TestMapLeadCampoRepetido - Campo duplicado no payload: vale a primeira ocorrência
func TestMapLeadCampoRepetido(t *testing.T) {
	raw := RawLead{
		ID: "lead-804",
		FieldData: []FieldValue{
			{Name: "email", Values: []string{"primeiro@example.com"}},
			{Name: "email", Values: []string{"segundo@example.com"}},
		},
	}

	assert.Equal(t, "primeiro@example.com", MapLead(raw).Email)
}

// TestMapLeadDataIlegivel - Data que não parseia cai em "agora"
func TestMapLeadDataIlegivel(t *testing.T) {
	before := time.Now()
	lead := MapLead(RawLead{ID: "lead-805", CreatedTime: "ontem de tarde"})
	after := time.Now()

	assert.False(t, lead.CreatedAt.Before(before))
	assert.False(t, lead.CreatedAt.After(after))
}

// TestMapLeadDataRFC3339 - Também aceita o formato RFC3339 com dois pontos no fuso
func TestMapLeadDataRFC3339(t *testing.T) {
	lead := MapLead(RawLead{ID: "lead-806", CreatedTime: "2024-03-08T11:24:36-03:00"})
	expected := time.Date(2024, 3, 8, 11, 24, 36, 0, time.FixedZone("", -3*3600))
	assert.True(t, lead.CreatedAt.Equal(expected))
}

// TestMapLeadDeterministico - Mesma entrada, mesma saída
func TestMapLeadDeterministico(t *testing.T) {
	raw := RawLead{
		ID:          "lead-807",
		CreatedTime: "2024-03-08T11:24:36-0300",
		FieldData: []FieldValue{
			{Name: "full_name", Values: []string{"João Silva"}},
			{Name: "melhor_dia", Values: []string{"sábado"}},
		},
	}

	assert.Equal(t, MapLead(raw), MapLead(raw))
}
