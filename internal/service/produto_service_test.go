package service

import (
	"context"
	"testing"

	"pdv/internal/dto"
	"pdv/internal/repository"
	"pdv/internal/store/memstore"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProdutoService() ProdutoService {
	repos := repository.New(memstore.New(repository.Tables...))
	return NewProdutoService(repos.Produtos)
}

func TestProdutoService_CRUD(t *testing.T) {
	svc := newProdutoService()
	ctx := context.Background()
	marca := "Acme"

	criado, err := svc.Criar(ctx, dto.ProdutoRequest{
		Nome: "Camiseta", Marca: &marca, Preco: decimal.RequireFromString("39.90"), QuantidadeEstoque: 12,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, criado.ID)
	assert.False(t, criado.CriadoEm.IsZero())

	got, err := svc.ObterPorID(ctx, criado.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Marca)
	assert.Equal(t, "Acme", *got.Marca)
	assert.True(t, got.Preco.Equal(decimal.RequireFromString("39.90")))

	atualizado, err := svc.Atualizar(ctx, criado.ID, dto.ProdutoRequest{
		Nome: "Camiseta P", Preco: decimal.RequireFromString("35"), QuantidadeEstoque: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, "Camiseta P", atualizado.Nome)
	assert.Nil(t, atualizado.Marca)

	list, err := svc.Listar(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 8, list[0].QuantidadeEstoque)

	require.NoError(t, svc.Excluir(ctx, criado.ID))
	_, err = svc.ObterPorID(ctx, criado.ID)
	assert.ErrorIs(t, err, ErrNaoEncontrado)
}

func TestProdutoService_Inexistente(t *testing.T) {
	svc := newProdutoService()
	ctx := context.Background()

	_, err := svc.ObterPorID(ctx, 7)
	assert.EqualError(t, err, "Produto não encontrado")
	_, err = svc.Atualizar(ctx, 7, dto.ProdutoRequest{Nome: "x"})
	assert.ErrorIs(t, err, ErrNaoEncontrado)
	assert.ErrorIs(t, svc.Excluir(ctx, 7), ErrNaoEncontrado)
}

func TestProdutoService_ListaVazia(t *testing.T) {
	list, err := newProdutoService().Listar(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
