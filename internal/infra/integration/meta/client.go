package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultGraphURL = "https://graph.facebook.com/v18.0"

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultGraphURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// ListForms busca os formulários de captação da página, seguindo a
// paginação por cursor do Graph.
func (c *Client) ListForms(ctx context.Context, pageID, token string) ([]FormSummary, error) {
	endpoint := fmt.Sprintf("%s/%s/leadgen_forms?fields=id,name&access_token=%s",
		c.baseURL, url.PathEscape(pageID), url.QueryEscape(token))

	var forms []FormSummary
	for endpoint != "" {
		body, status, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		var out listFormsResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, decodeFailure(status, body, err)
		}
		if out.Error != nil {
			return nil, out.Error
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("graph respondeu status %d ao listar formulários", status)
		}

		forms = append(forms, out.Data...)
		endpoint = out.Paging.Next // o next já vem com o token embutido
	}
	return forms, nil
}

// ListLeads busca os leads de um formulário criados a partir de `since`.
// since nil = busca tudo.
func (c *Client) ListLeads(ctx context.Context, formID, token string, since *time.Time) ([]RawLead, error) {
	endpoint := fmt.Sprintf("%s/%s/leads?fields=id,created_time,field_data&access_token=%s",
		c.baseURL, url.PathEscape(formID), url.QueryEscape(token))

	if since != nil {
		filtering := fmt.Sprintf(`[{"field":"time_created","operator":"GREATER_THAN_OR_EQUAL","value":%d}]`,
			since.Unix())
		endpoint += "&filtering=" + url.QueryEscape(filtering)
	}

	var leads []RawLead
	for endpoint != "" {
		body, status, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		var out listLeadsResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, decodeFailure(status, body, err)
		}
		if out.Error != nil {
			return nil, out.Error
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("graph respondeu status %d ao listar leads", status)
		}

		for _, raw := range out.Data {
			var lead RawLead
			if err := json.Unmarshal(raw, &lead); err != nil {
				return nil, fmt.Errorf("lead ilegível na resposta do graph: %w", err)
			}
			lead.Raw = raw
			leads = append(leads, lead)
		}
		endpoint = out.Paging.Next
	}
	return leads, nil
}

// GetLead busca o detalhe de um único lead (caminho do webhook).
func (c *Client) GetLead(ctx context.Context, leadgenID, token string) (*RawLead, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=id,created_time,field_data&access_token=%s",
		c.baseURL, url.PathEscape(leadgenID), url.QueryEscape(token))

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var out leadDetailResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, decodeFailure(status, body, err)
	}
	if out.Error != nil {
		return nil, out.Error
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("graph respondeu status %d ao buscar lead %s", status, leadgenID)
	}

	lead := out.RawLead
	lead.Raw = body
	return &lead, nil
}

// IsGraphError separa "o Graph recusou a chamada" (token podre, permissão
// revogada) de falha de rede. Os dois são recuperáveis por unidade, mas o
// log precisa dizer qual foi.
func IsGraphError(err error) bool {
	var target *GraphError
	return errors.As(err, &target)
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("erro de conexão com o graph: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao ler resposta do graph: %w", err)
	}
	return body, resp.StatusCode, nil
}

func decodeFailure(status int, body []byte, err error) error {
	if status != http.StatusOK {
		return fmt.Errorf("graph respondeu status %d: %s", status, truncate(body, 200))
	}
	return fmt.Errorf("resposta inválida do graph: %w", err)
}

func truncate(b []byte, max int) string {
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
