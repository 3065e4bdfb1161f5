package infra

import (
	"fmt"
	"net/smtp"

	"pdv/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending receipts with PDF attachments.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

// NewMailer returns nil when SMTP_HOST is empty; callers treat a nil Mailer as
// "email disabled".
func NewMailer(cfg *config.Config) *Mailer {
	if cfg.SMTPHost == "" {
		return nil
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// EnviarRecibo sends the sale receipt to the customer.
func (m *Mailer) EnviarRecibo(to string, vendaID int64, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Recibo da venda #%d", vendaID)
	e.Text = []byte(fmt.Sprintf("Olá,\n\nSegue em anexo o recibo da venda #%d.\n\nObrigado pela preferência!", vendaID))

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
