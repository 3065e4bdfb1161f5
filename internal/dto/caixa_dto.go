package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type MovimentacaoRequest struct {
	Tipo      string          `json:"tipo"      validate:"required,oneof=entrada saida"`
	Valor     decimal.Decimal `json:"valor"     validate:"min=0,centavos"`
	Descricao string          `json:"descricao" validate:"required,min=1,max=255"`
	Categoria *string         `json:"categoria" validate:"omitempty,max=50"`
}

type FiltroMovimentacoes struct {
	Tipo      string `form:"tipo"      validate:"omitempty,oneof=entrada saida"`
	Categoria string `form:"categoria" validate:"omitempty,max=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimentacaoResponse struct {
	ID        int64           `json:"id"`
	Tipo      string          `json:"tipo"`
	Valor     decimal.Decimal `json:"valor"`
	Descricao string          `json:"descricao"`
	Categoria *string         `json:"categoria"`
	Data      time.Time       `json:"data"`
}

type SaldoResponse struct {
	Saldo decimal.Decimal `json:"saldo"`
}
