package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Produto is a catalog entry. QuantidadeEstoque must never go negative.
type Produto struct {
	ID                int64           `json:"id"`
	Nome              string          `json:"nome"`
	Marca             *string         `json:"marca"`
	Tipo              *string         `json:"tipo"`
	Tamanho           *string         `json:"tamanho"`
	Preco             decimal.Decimal `json:"preco"`
	QuantidadeEstoque int             `json:"quantidadeEstoque"`
	CriadoEm          time.Time       `json:"criadoEm"`
}
