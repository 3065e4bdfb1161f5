package service

import (
	"context"

	"pdv/internal/dto"
	"pdv/internal/model"
	"pdv/internal/repository"

	"github.com/shopspring/decimal"
)

type CaixaService interface {
	RegistrarMovimentacao(ctx context.Context, req dto.MovimentacaoRequest) (*dto.MovimentacaoResponse, error)
	ListarMovimentacoes(ctx context.Context, f dto.FiltroMovimentacoes) ([]dto.MovimentacaoResponse, error)
	// Saldo sums entrada entries and subtracts every other tipo.
	Saldo(ctx context.Context) (*dto.SaldoResponse, error)
}

type caixaService struct {
	repo repository.CaixaRepository
}

func NewCaixaService(repo repository.CaixaRepository) CaixaService {
	return &caixaService{repo: repo}
}

func (s *caixaService) RegistrarMovimentacao(ctx context.Context, req dto.MovimentacaoRequest) (*dto.MovimentacaoResponse, error) {
	if req.Valor.IsNegative() || !emCentavos(req.Valor) {
		return nil, ErrValorInvalido
	}
	m := &model.MovimentacaoCaixa{
		Tipo:      req.Tipo,
		Valor:     req.Valor,
		Descricao: req.Descricao,
		Categoria: req.Categoria,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return movToResponse(m), nil
}

func (s *caixaService) ListarMovimentacoes(ctx context.Context, f dto.FiltroMovimentacoes) ([]dto.MovimentacaoResponse, error) {
	movs, err := s.repo.List(ctx, repository.FiltroMovimentacao{Tipo: f.Tipo, Categoria: f.Categoria})
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimentacaoResponse, 0, len(movs))
	for i := range movs {
		out = append(out, *movToResponse(&movs[i]))
	}
	return out, nil
}

func (s *caixaService) Saldo(ctx context.Context) (*dto.SaldoResponse, error) {
	movs, err := s.repo.List(ctx, repository.FiltroMovimentacao{})
	if err != nil {
		return nil, err
	}
	saldo := decimal.Zero
	for _, m := range movs {
		saldo = saldo.Add(m.Assinado())
	}
	return &dto.SaldoResponse{Saldo: saldo}, nil
}

func movToResponse(m *model.MovimentacaoCaixa) *dto.MovimentacaoResponse {
	return &dto.MovimentacaoResponse{
		ID:        m.ID,
		Tipo:      m.Tipo,
		Valor:     m.Valor,
		Descricao: m.Descricao,
		Categoria: m.Categoria,
		Data:      m.Data,
	}
}
