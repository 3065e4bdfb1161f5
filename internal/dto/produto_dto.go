package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ProdutoRequest struct {
	Nome              string          `json:"nome"              validate:"required,min=1,max=200"`
	Marca             *string         `json:"marca"             validate:"omitempty,max=100"`
	Tipo              *string         `json:"tipo"              validate:"omitempty,max=100"`
	Tamanho           *string         `json:"tamanho"           validate:"omitempty,max=50"`
	Preco             decimal.Decimal `json:"preco"             validate:"min=0,centavos"`
	QuantidadeEstoque int             `json:"quantidadeEstoque" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProdutoResponse struct {
	ID                int64           `json:"id"`
	Nome              string          `json:"nome"`
	Marca             *string         `json:"marca"`
	Tipo              *string         `json:"tipo"`
	Tamanho           *string         `json:"tamanho"`
	Preco             decimal.Decimal `json:"preco"`
	QuantidadeEstoque int             `json:"quantidadeEstoque"`
	CriadoEm          time.Time       `json:"criadoEm"`
}

type ProdutoCriadoResponse struct {
	Mensagem string          `json:"mensagem"`
	Produto  ProdutoResponse `json:"produto"`
}
