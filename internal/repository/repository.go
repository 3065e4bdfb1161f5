package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"pdv/internal/store"
)

// Table names as they exist in the store.
const (
	TabelaUsuario           = "Usuario"
	TabelaProduto           = "Produto"
	TabelaVenda             = "Venda"
	TabelaItemVenda         = "ItemVenda"
	TabelaMovimentacaoCaixa = "MovimentacaoCaixa"
)

// Tables lists the store-assigned columns of every table, for backends that
// have to emulate them.
var Tables = []store.TableSpec{
	{Name: TabelaUsuario, CreatedAt: "criadoEm"},
	{Name: TabelaProduto, AutoID: true, CreatedAt: "criadoEm"},
	{Name: TabelaVenda, AutoID: true, CreatedAt: "dataVenda"},
	{Name: TabelaItemVenda, AutoID: true},
	{Name: TabelaMovimentacaoCaixa, AutoID: true, CreatedAt: "data"},
}

// ErrNotFound is returned by Find* methods when no row matches.
var ErrNotFound = errors.New("registro nao encontrado")

// Repositories groups every repository bound to the same store, so a service
// can rebuild the whole set on top of a transaction.
type Repositories struct {
	Usuarios UsuarioRepository
	Produtos ProdutoRepository
	Vendas   VendaRepository
	Caixa    CaixaRepository
}

// New binds every repository to s.
func New(s store.Store) *Repositories {
	return &Repositories{
		Usuarios: NewUsuarioRepository(s),
		Produtos: NewProdutoRepository(s),
		Vendas:   NewVendaRepository(s),
		Caixa:    NewCaixaRepository(s),
	}
}

// decodeRow copies a store row into a model through its json tags, so numeric
// columns may arrive as numbers or strings depending on the backend.
func decodeRow(table string, row store.Row, dst any) error {
	b, err := json.Marshal(row)
	if err != nil {
		return store.Wrap("decode", table, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return store.Wrap("decode", table, fmt.Errorf("linha invalida: %w", err))
	}
	return nil
}

func decodeRows[T any](table string, rows []store.Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		var v T
		if err := decodeRow(table, r, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func first[T any](table string, rows []store.Row) (*T, error) {
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	var v T
	if err := decodeRow(table, rows[0], &v); err != nil {
		return nil, err
	}
	return &v, nil
}
