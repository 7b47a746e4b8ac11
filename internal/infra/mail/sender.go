package mail

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
	}
}

// SendLeadAlert avisa o admin da empresa que chegou lead novo.
func (s *EmailSender) SendLeadAlert(to, companyName string, payload queue.LeadCapturedPayload) error {
	leadName := payload.Name
	if leadName == "" {
		leadName = "(sem nome)"
	}

	data := LeadAlertEmailData{
		CompanyName: companyName,
		LeadName:    leadName,
		LeadEmail:   payload.Email,
		LeadPhone:   payload.Phone,
		Source:      payload.Source,
		FormName:    payload.FormName,
	}

	tmplPath := filepath.Join("templates", "new_lead.html")
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("erro ao ler template de email: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", "nao-responda@liguecrm.com")
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("🎯 Novo lead para %s: %s", companyName, leadName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}
