package repository

import (
	"context"

	"pdv/internal/model"
	"pdv/internal/store"
)

type VendaRepository interface {
	// Create inserts the header only; items are written one by one.
	Create(ctx context.Context, v *model.Venda) error
	CreateItem(ctx context.Context, item *model.ItemVenda) error
	FindByID(ctx context.Context, id int64) (*model.Venda, error)
	List(ctx context.Context) ([]model.Venda, error)
	ListItens(ctx context.Context, vendaID int64) ([]model.ItemVenda, error)
}

type vendaRepo struct{ s store.Store }

func NewVendaRepository(s store.Store) VendaRepository { return &vendaRepo{s: s} }

func (r *vendaRepo) Create(ctx context.Context, v *model.Venda) error {
	row, err := r.s.Insert(ctx, TabelaVenda, store.Row{
		"total":          v.Total,
		"formaPagamento": v.FormaPagamento,
	})
	if err != nil {
		return err
	}
	itens := v.Itens
	if err := decodeRow(TabelaVenda, row, v); err != nil {
		return err
	}
	v.Itens = itens
	return nil
}

func (r *vendaRepo) CreateItem(ctx context.Context, item *model.ItemVenda) error {
	row, err := r.s.Insert(ctx, TabelaItemVenda, store.Row{
		"vendaId":       item.VendaID,
		"produtoId":     item.ProdutoID,
		"quantidade":    item.Quantidade,
		"precoUnitario": item.PrecoUnitario,
	})
	if err != nil {
		return err
	}
	return decodeRow(TabelaItemVenda, row, item)
}

func (r *vendaRepo) FindByID(ctx context.Context, id int64) (*model.Venda, error) {
	rows, err := store.SelectByField(ctx, r.s, TabelaVenda, "id", id)
	if err != nil {
		return nil, err
	}
	return first[model.Venda](TabelaVenda, rows)
}

func (r *vendaRepo) List(ctx context.Context) ([]model.Venda, error) {
	rows, err := r.s.Select(ctx, TabelaVenda, store.Query{OrderBy: "dataVenda", Desc: true})
	if err != nil {
		return nil, err
	}
	return decodeRows[model.Venda](TabelaVenda, rows)
}

func (r *vendaRepo) ListItens(ctx context.Context, vendaID int64) ([]model.ItemVenda, error) {
	rows, err := r.s.Select(ctx, TabelaItemVenda, store.Query{
		Where:   []store.Eq{{Field: "vendaId", Value: vendaID}},
		OrderBy: "id",
	})
	if err != nil {
		return nil, err
	}
	return decodeRows[model.ItemVenda](TabelaItemVenda, rows)
}
