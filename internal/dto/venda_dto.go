package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVendaRequest struct {
	ProdutoID     int64           `json:"produtoId"     validate:"required,gt=0"`
	Quantidade    int             `json:"quantidade"    validate:"required,min=1"`
	PrecoUnitario decimal.Decimal `json:"precoUnitario" validate:"min=0,centavos"`
}

type CriarVendaRequest struct {
	FormaPagamento *string            `json:"formaPagamento" validate:"omitempty,max=50"`
	Itens          []ItemVendaRequest `json:"itens"          validate:"required,min=1,dive"`
	// ClienteEmail, when set, receives the PDF receipt.
	ClienteEmail *string `json:"clienteEmail" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CriarVendaResponse struct {
	Mensagem string `json:"mensagem"`
	VendaID  int64  `json:"vendaId"`
}

type ItemVendaResponse struct {
	ID            int64           `json:"id"`
	ProdutoID     int64           `json:"produtoId"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"precoUnitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type VendaResponse struct {
	ID             int64           `json:"id"`
	Total          decimal.Decimal `json:"total"`
	FormaPagamento *string         `json:"formaPagamento"`
	DataVenda      time.Time       `json:"dataVenda"`
}

type VendaDetalheResponse struct {
	VendaResponse
	Itens []ItemVendaResponse `json:"itens"`
}
