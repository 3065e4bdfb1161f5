package service

import (
	"context"
	"errors"
	"fmt"

	"pdv/internal/config"
	"pdv/internal/dto"
	"pdv/internal/infra"
	"pdv/internal/model"
	"pdv/internal/repository"
	"pdv/internal/store"
	"pdv/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const MensagemVendaRegistrada = "Venda registrada com sucesso"

type VendaService interface {
	CriarVenda(ctx context.Context, req dto.CriarVendaRequest) (*dto.CriarVendaResponse, error)
	ListarVendas(ctx context.Context) ([]dto.VendaResponse, error)
	ObterVenda(ctx context.Context, id int64) (*dto.VendaDetalheResponse, error)
}

// ReciboDispatcher is satisfied by *worker.Dispatcher.
type ReciboDispatcher interface {
	EnqueueRecibo(ctx context.Context, payload worker.ReciboPayload) error
}

// VendaConfig tunes the sale workflow.
type VendaConfig struct {
	// Modo is config.ModoSequencial (independent writes) or config.ModoAtomica (one transaction).
	Modo string
	// TentativasEstoque bounds the compare-and-set retries per item.
	TentativasEstoque int
}

type vendaService struct {
	st         store.Store
	repos      *repository.Repositories
	cfg        VendaConfig
	dispatcher ReciboDispatcher // nil disables receipts
	metrics    *infra.Metrics
}

// NewVendaService fails when atomica mode is requested on a store that cannot
// run transactions.
func NewVendaService(st store.Store, cfg VendaConfig, dispatcher ReciboDispatcher, metrics *infra.Metrics) (VendaService, error) {
	if cfg.Modo == "" {
		cfg.Modo = config.ModoSequencial
	}
	if cfg.TentativasEstoque < 1 {
		cfg.TentativasEstoque = 1
	}
	switch cfg.Modo {
	case config.ModoSequencial:
	case config.ModoAtomica:
		if _, ok := st.(store.Transactional); !ok {
			return nil, fmt.Errorf("venda: modo %s exige um store transacional", config.ModoAtomica)
		}
	default:
		return nil, fmt.Errorf("venda: modo desconhecido %q", cfg.Modo)
	}
	return &vendaService{
		st:         st,
		repos:      repository.New(st),
		cfg:        cfg,
		dispatcher: dispatcher,
		metrics:    metrics,
	}, nil
}

// ── CriarVenda ────────────────────────────────────────────────────────────────
//   1. Reject empty or malformed items (including sub-cent prices) before any write
//   2. total = Σ quantidade × precoUnitario
//   3. Insert Venda header
//   4. Per item, in input order: insert ItemVenda, then decrement stock (CAS)
//   5. Insert one MovimentacaoCaixa entrada for the total
//
// In sequencial mode every write commits on its own: a failure at item k leaves
// the header, items 1..k and decrements 1..k-1 behind and writes no ledger
// entry. Atomica mode wraps 3–5 in a single transaction.

func (s *vendaService) CriarVenda(ctx context.Context, req dto.CriarVendaRequest) (*dto.CriarVendaResponse, error) {
	if len(req.Itens) == 0 {
		s.metrics.RecordVendaFalha("sem_itens")
		return nil, ErrVendaSemItens
	}
	total := decimal.Zero
	for i, it := range req.Itens {
		if it.Quantidade <= 0 {
			s.metrics.RecordVendaFalha("item_invalido")
			return nil, fmt.Errorf("%w: item %d com quantidade %d", ErrItemInvalido, i+1, it.Quantidade)
		}
		if it.PrecoUnitario.IsNegative() {
			s.metrics.RecordVendaFalha("item_invalido")
			return nil, fmt.Errorf("%w: item %d com preco negativo", ErrItemInvalido, i+1)
		}
		if !emCentavos(it.PrecoUnitario) {
			s.metrics.RecordVendaFalha("item_invalido")
			return nil, fmt.Errorf("%w: item %d com mais de duas casas decimais", ErrItemInvalido, i+1)
		}
		total = total.Add(it.PrecoUnitario.Mul(decimal.NewFromInt(int64(it.Quantidade))))
	}

	var venda *model.Venda
	var err error
	if s.cfg.Modo == config.ModoAtomica {
		err = s.st.(store.Transactional).InTx(ctx, func(tx store.Store) error {
			var txErr error
			venda, txErr = s.registrar(ctx, repository.New(tx), req, total)
			return txErr
		})
	} else {
		venda, err = s.registrar(ctx, s.repos, req, total)
	}
	if err != nil {
		s.metrics.RecordVendaFalha(motivoFalha(err))
		ev := log.Warn().Err(err).Str("modo", s.cfg.Modo)
		if venda != nil && s.cfg.Modo == config.ModoSequencial {
			// header and some items/decrements are already committed
			ev = ev.Int64("venda_id_parcial", venda.ID)
		}
		ev.Msg("venda nao registrada")
		return nil, err
	}

	f, _ := total.Float64()
	s.metrics.RecordVenda(f)
	log.Info().Int64("venda_id", venda.ID).Str("total", total.StringFixed(2)).
		Int("itens", len(req.Itens)).Str("modo", s.cfg.Modo).Msg("venda registrada")

	s.enfileirarRecibo(ctx, venda.ID, req.ClienteEmail)

	return &dto.CriarVendaResponse{Mensagem: MensagemVendaRegistrada, VendaID: venda.ID}, nil
}

// registrar performs steps 3–5 against repos. On failure the returned venda is
// non-nil once the header exists.
func (s *vendaService) registrar(ctx context.Context, repos *repository.Repositories, req dto.CriarVendaRequest, total decimal.Decimal) (*model.Venda, error) {
	venda := &model.Venda{Total: total, FormaPagamento: req.FormaPagamento}
	if err := repos.Vendas.Create(ctx, venda); err != nil {
		return nil, err
	}

	for _, it := range req.Itens {
		item := &model.ItemVenda{
			VendaID:       venda.ID,
			ProdutoID:     it.ProdutoID,
			Quantidade:    it.Quantidade,
			PrecoUnitario: it.PrecoUnitario,
		}
		if err := repos.Vendas.CreateItem(ctx, item); err != nil {
			return venda, err
		}
		if err := s.descontarEstoque(ctx, repos.Produtos, it.ProdutoID, it.Quantidade); err != nil {
			return venda, err
		}
	}

	categoria := model.CategoriaVenda
	mov := &model.MovimentacaoCaixa{
		Tipo:      model.TipoEntrada,
		Valor:     total,
		Descricao: fmt.Sprintf("Venda #%d", venda.ID),
		Categoria: &categoria,
	}
	if err := repos.Caixa.Create(ctx, mov); err != nil {
		return venda, err
	}
	return venda, nil
}

// descontarEstoque reads the current stock and writes atual-quantidade only if
// the stock is still atual. A lost race re-reads and retries.
func (s *vendaService) descontarEstoque(ctx context.Context, produtos repository.ProdutoRepository, produtoID int64, quantidade int) error {
	for tentativa := 1; tentativa <= s.cfg.TentativasEstoque; tentativa++ {
		p, err := produtos.FindByID(ctx, produtoID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &NaoEncontradoError{Entidade: "Produto", ID: produtoID}
			}
			return err
		}

		novo := p.QuantidadeEstoque - quantidade
		if novo < 0 {
			return &EstoqueInsuficienteError{
				ProdutoID:  produtoID,
				Disponivel: p.QuantidadeEstoque,
				Solicitado: quantidade,
			}
		}

		ok, err := produtos.CompareAndSetEstoque(ctx, produtoID, p.QuantidadeEstoque, novo)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		s.metrics.RecordConflitoEstoque()
		log.Debug().Int64("produto_id", produtoID).Int("tentativa", tentativa).Msg("conflito de estoque, relendo")
	}
	return ErrConflitoEstoque
}

// enfileirarRecibo is best-effort: the sale is already committed.
func (s *vendaService) enfileirarRecibo(ctx context.Context, vendaID int64, clienteEmail *string) {
	if s.dispatcher == nil {
		return
	}
	payload := worker.ReciboPayload{VendaID: vendaID}
	if clienteEmail != nil {
		payload.ClienteEmail = *clienteEmail
	}
	if err := s.dispatcher.EnqueueRecibo(ctx, payload); err != nil {
		log.Warn().Err(err).Int64("venda_id", vendaID).Msg("falha ao enfileirar recibo")
	}
}

// emCentavos reports whether d fits the NUMERIC(12,2) money columns without
// rounding.
func emCentavos(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

func motivoFalha(err error) string {
	var se *store.Error
	switch {
	case errors.Is(err, ErrEstoqueInsuficiente):
		return "estoque_insuficiente"
	case errors.Is(err, ErrConflitoEstoque):
		return "conflito_estoque"
	case errors.Is(err, ErrNaoEncontrado):
		return "produto_nao_encontrado"
	case errors.As(err, &se):
		return "store"
	default:
		return "outro"
	}
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *vendaService) ListarVendas(ctx context.Context) ([]dto.VendaResponse, error) {
	vendas, err := s.repos.Vendas.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VendaResponse, 0, len(vendas))
	for i := range vendas {
		out = append(out, *vendaToResponse(&vendas[i]))
	}
	return out, nil
}

func (s *vendaService) ObterVenda(ctx context.Context, id int64) (*dto.VendaDetalheResponse, error) {
	v, err := s.repos.Vendas.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NaoEncontradoError{Entidade: "Venda", ID: id}
		}
		return nil, err
	}
	itens, err := s.repos.Vendas.ListItens(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.VendaDetalheResponse{
		VendaResponse: *vendaToResponse(v),
		Itens:         make([]dto.ItemVendaResponse, 0, len(itens)),
	}
	for _, it := range itens {
		resp.Itens = append(resp.Itens, dto.ItemVendaResponse{
			ID:            it.ID,
			ProdutoID:     it.ProdutoID,
			Quantidade:    it.Quantidade,
			PrecoUnitario: it.PrecoUnitario,
			Subtotal:      it.Subtotal(),
		})
	}
	return resp, nil
}

func vendaToResponse(v *model.Venda) *dto.VendaResponse {
	return &dto.VendaResponse{
		ID:             v.ID,
		Total:          v.Total,
		FormaPagamento: v.FormaPagamento,
		DataVenda:      v.DataVenda,
	}
}
