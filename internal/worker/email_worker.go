package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends the PDF receipt over SMTP.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	VendaID int64  `json:"venda_id"`
	PDFPath string `json:"pdf_path"`
}

// ReciboMailer is satisfied by *infra.Mailer.
type ReciboMailer interface {
	EnviarRecibo(to string, vendaID int64, pdfPath string) error
}

type EmailWorker struct {
	mailer ReciboMailer
}

func NewEmailWorker(mailer ReciboMailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Int64("venda_id", payload.VendaID).Msg("email_worker: empty to_email, skipping")
		return nil
	}

	if err := w.mailer.EnviarRecibo(payload.ToEmail, payload.VendaID, payload.PDFPath); err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Int64("venda_id", payload.VendaID).Msg("email_worker: recibo enviado")
	return nil
}
