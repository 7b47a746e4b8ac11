package meta

import (
	"encoding/json"
	"fmt"
)

// FormSummary: formulário de captação de uma página (id + nome de exibição)
type FormSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FieldValue: um campo do formulário como o Graph devolve. O usuário pode
// responder mais de uma vez; a gente sempre usa o primeiro valor.
type FieldValue struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// RawLead: lead cru como veio do Graph. Raw guarda os bytes originais
// para auditoria (vai direto pro raw_payload do banco).
type RawLead struct {
	ID          string       `json:"id"`
	CreatedTime string       `json:"created_time"`
	FieldData   []FieldValue `json:"field_data"`

	Raw json.RawMessage `json:"-"`
}

// GraphError: o Graph adora devolver HTTP 200 com um erro dentro do body
// (token expirado, permissão revogada...). Precisa ser distinguível de
// falha de transporte, por isso é um tipo próprio.
type GraphError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	TraceID   string `json:"fbtrace_id"`
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph api: %s (type=%s, code=%d)", e.Message, e.Type, e.Code)
}

type paging struct {
	Next string `json:"next"`
}

type listFormsResponse struct {
	Data   []FormSummary `json:"data"`
	Paging paging        `json:"paging"`
	Error  *GraphError   `json:"error"`
}

type listLeadsResponse struct {
	Data   []json.RawMessage `json:"data"`
	Paging paging            `json:"paging"`
	Error  *GraphError       `json:"error"`
}

type leadDetailResponse struct {
	RawLead
	Error *GraphError `json:"error"`
}
