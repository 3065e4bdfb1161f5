package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venda is a sale header. Total is Σ quantidade × precoUnitario of its items,
// fixed before anything is written.
type Venda struct {
	ID             int64           `json:"id"`
	Total          decimal.Decimal `json:"total"`
	FormaPagamento *string         `json:"formaPagamento"`
	DataVenda      time.Time       `json:"dataVenda"`

	Itens []ItemVenda `json:"itens,omitempty"`
}

// ItemVenda is one sale line. PrecoUnitario is the price agreed at sale time,
// not the catalog price.
type ItemVenda struct {
	ID            int64           `json:"id"`
	VendaID       int64           `json:"vendaId"`
	ProdutoID     int64           `json:"produtoId"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"precoUnitario"`
}

// Subtotal returns Quantidade × PrecoUnitario.
func (i ItemVenda) Subtotal() decimal.Decimal {
	return i.PrecoUnitario.Mul(decimal.NewFromInt(int64(i.Quantidade)))
}
