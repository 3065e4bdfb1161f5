package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimentação. Anything other than entrada counts as an outflow.
const (
	TipoEntrada = "entrada"
	TipoSaida   = "saida"
)

// CategoriaVenda tags ledger entries written by the sale workflow.
const CategoriaVenda = "venda"

// MovimentacaoCaixa is a cash ledger entry.
type MovimentacaoCaixa struct {
	ID        int64           `json:"id"`
	Tipo      string          `json:"tipo"`
	Valor     decimal.Decimal `json:"valor"`
	Descricao string          `json:"descricao"`
	Categoria *string         `json:"categoria"`
	Data      time.Time       `json:"data"`
}

// Assinado returns Valor for inflows and -Valor for everything else.
func (m MovimentacaoCaixa) Assinado() decimal.Decimal {
	if m.Tipo == TipoEntrada {
		return m.Valor
	}
	return m.Valor.Neg()
}
