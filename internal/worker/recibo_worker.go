package worker

// recibo_worker.go
// Processes QueueRecibo: renders the PDF receipt of a committed sale and, when
// the customer left an email, hands it to QueueEmail.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pdv/internal/infra"
	"pdv/internal/model"
	"pdv/internal/repository"

	"github.com/rs/zerolog/log"
)

// ReciboPayload is the job body sent to QueueRecibo.
type ReciboPayload struct {
	VendaID      int64  `json:"venda_id"`
	ClienteEmail string `json:"cliente_email,omitempty"`
}

// EmailEnqueuer is satisfied by *Dispatcher.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type ReciboWorker struct {
	vendas      repository.VendaRepository
	produtos    repository.ProdutoRepository
	storagePath string
	emails      EmailEnqueuer // nil disables email delivery
	metrics     *infra.Metrics
}

func NewReciboWorker(repos *repository.Repositories, storagePath string, emails EmailEnqueuer, metrics *infra.Metrics) *ReciboWorker {
	return &ReciboWorker{
		vendas:      repos.Vendas,
		produtos:    repos.Produtos,
		storagePath: storagePath,
		emails:      emails,
		metrics:     metrics,
	}
}

func (w *ReciboWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReciboPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("recibo_worker: invalid payload: %w", err)
	}

	venda, err := w.vendas.FindByID(ctx, payload.VendaID)
	if err != nil {
		w.metrics.RecordRecibo("erro")
		return fmt.Errorf("recibo_worker: venda %d: %w", payload.VendaID, err)
	}
	if venda.Itens, err = w.vendas.ListItens(ctx, venda.ID); err != nil {
		w.metrics.RecordRecibo("erro")
		return fmt.Errorf("recibo_worker: itens da venda %d: %w", venda.ID, err)
	}

	path, err := infra.GerarReciboPDF(venda, w.nomes(ctx, venda.Itens), w.storagePath)
	if err != nil {
		w.metrics.RecordRecibo("erro")
		return err
	}
	log.Info().Int64("venda_id", venda.ID).Str("pdf", path).Msg("recibo_worker: recibo gerado")

	if payload.ClienteEmail != "" && w.emails != nil {
		err := w.emails.EnqueueEmail(ctx, EmailJobPayload{
			ToEmail: payload.ClienteEmail,
			VendaID: venda.ID,
			PDFPath: path,
		})
		if err != nil {
			w.metrics.RecordRecibo("erro")
			return fmt.Errorf("recibo_worker: enqueue email: %w", err)
		}
	}
	w.metrics.RecordRecibo("ok")
	return nil
}

// nomes resolves product names for the receipt. Products deleted since the
// sale are simply left out.
func (w *ReciboWorker) nomes(ctx context.Context, itens []model.ItemVenda) map[int64]string {
	out := make(map[int64]string, len(itens))
	for _, it := range itens {
		if _, ok := out[it.ProdutoID]; ok {
			continue
		}
		p, err := w.produtos.FindByID(ctx, it.ProdutoID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Warn().Err(err).Int64("produto_id", it.ProdutoID).Msg("recibo_worker: nome do produto indisponivel")
			}
			continue
		}
		out[it.ProdutoID] = p.Nome
	}
	return out
}
