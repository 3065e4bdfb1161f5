package repository

import (
	"context"

	"pdv/internal/model"
	"pdv/internal/store"
)

// ProdutoRepository defines the data access contract for the catalog.
// Services depend on this interface, not on a concrete store backend.
type ProdutoRepository interface {
	Create(ctx context.Context, p *model.Produto) error
	FindByID(ctx context.Context, id int64) (*model.Produto, error)
	List(ctx context.Context) ([]model.Produto, error)
	Update(ctx context.Context, p *model.Produto) error
	Delete(ctx context.Context, id int64) error

	// CompareAndSetEstoque writes novo only if the stored stock still equals
	// atual. ok=false means another writer got there first.
	CompareAndSetEstoque(ctx context.Context, id int64, atual, novo int) (ok bool, err error)
}

type produtoRepo struct{ s store.Store }

func NewProdutoRepository(s store.Store) ProdutoRepository { return &produtoRepo{s: s} }

func produtoRow(p *model.Produto) store.Row {
	return store.Row{
		"nome":              p.Nome,
		"marca":             p.Marca,
		"tipo":              p.Tipo,
		"tamanho":           p.Tamanho,
		"preco":             p.Preco,
		"quantidadeEstoque": p.QuantidadeEstoque,
	}
}

func (r *produtoRepo) Create(ctx context.Context, p *model.Produto) error {
	row, err := r.s.Insert(ctx, TabelaProduto, produtoRow(p))
	if err != nil {
		return err
	}
	return decodeRow(TabelaProduto, row, p)
}

func (r *produtoRepo) FindByID(ctx context.Context, id int64) (*model.Produto, error) {
	rows, err := store.SelectByField(ctx, r.s, TabelaProduto, "id", id)
	if err != nil {
		return nil, err
	}
	return first[model.Produto](TabelaProduto, rows)
}

func (r *produtoRepo) List(ctx context.Context) ([]model.Produto, error) {
	rows, err := r.s.Select(ctx, TabelaProduto, store.Query{OrderBy: "id"})
	if err != nil {
		return nil, err
	}
	return decodeRows[model.Produto](TabelaProduto, rows)
}

func (r *produtoRepo) Update(ctx context.Context, p *model.Produto) error {
	return store.UpdateByField(ctx, r.s, TabelaProduto, "id", p.ID, produtoRow(p))
}

func (r *produtoRepo) Delete(ctx context.Context, id int64) error {
	return store.DeleteByField(ctx, r.s, TabelaProduto, "id", id)
}

func (r *produtoRepo) CompareAndSetEstoque(ctx context.Context, id int64, atual, novo int) (bool, error) {
	n, err := r.s.Update(ctx, TabelaProduto,
		[]store.Eq{{Field: "id", Value: id}, {Field: "quantidadeEstoque", Value: atual}},
		store.Row{"quantidadeEstoque": novo})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
