package repository

import (
	"context"

	"pdv/internal/model"
	"pdv/internal/store"
)

// FiltroMovimentacao narrows ListMovimentacoes; empty fields are ignored.
type FiltroMovimentacao struct {
	Tipo      string
	Categoria string
}

type CaixaRepository interface {
	Create(ctx context.Context, m *model.MovimentacaoCaixa) error
	// List returns entries newest first.
	List(ctx context.Context, f FiltroMovimentacao) ([]model.MovimentacaoCaixa, error)
}

type caixaRepo struct{ s store.Store }

func NewCaixaRepository(s store.Store) CaixaRepository { return &caixaRepo{s: s} }

func (r *caixaRepo) Create(ctx context.Context, m *model.MovimentacaoCaixa) error {
	row, err := r.s.Insert(ctx, TabelaMovimentacaoCaixa, store.Row{
		"tipo":      m.Tipo,
		"valor":     m.Valor,
		"descricao": m.Descricao,
		"categoria": m.Categoria,
	})
	if err != nil {
		return err
	}
	return decodeRow(TabelaMovimentacaoCaixa, row, m)
}

func (r *caixaRepo) List(ctx context.Context, f FiltroMovimentacao) ([]model.MovimentacaoCaixa, error) {
	q := store.Query{OrderBy: "data", Desc: true}
	if f.Tipo != "" {
		q.Where = append(q.Where, store.Eq{Field: "tipo", Value: f.Tipo})
	}
	if f.Categoria != "" {
		q.Where = append(q.Where, store.Eq{Field: "categoria", Value: f.Categoria})
	}
	rows, err := r.s.Select(ctx, TabelaMovimentacaoCaixa, q)
	if err != nil {
		return nil, err
	}
	return decodeRows[model.MovimentacaoCaixa](TabelaMovimentacaoCaixa, rows)
}
