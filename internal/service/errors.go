package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAutenticacao        = errors.New("Email ou senha incorretos")
	ErrNaoEncontrado       = errors.New("registro nao encontrado")
	ErrEstoqueInsuficiente = errors.New("estoque insuficiente")
	ErrVendaSemItens       = errors.New("a venda deve ter ao menos um item")
	ErrItemInvalido        = errors.New("item de venda invalido")
	ErrValorInvalido       = errors.New("valor da movimentacao invalido")
	ErrConflitoEstoque     = errors.New("conflito de concorrencia ao atualizar o estoque, tente novamente")
	ErrSenhaAtualIncorreta = errors.New("Senha atual incorreta")
	ErrEmailEmUso          = errors.New("Email ja cadastrado")
)

// EstoqueInsuficienteError names the product whose stock could not cover the
// requested quantity. errors.Is(err, ErrEstoqueInsuficiente) holds.
type EstoqueInsuficienteError struct {
	ProdutoID  int64
	Disponivel int
	Solicitado int
}

func (e *EstoqueInsuficienteError) Error() string {
	return fmt.Sprintf("Estoque insuficiente para o produto %d", e.ProdutoID)
}

func (e *EstoqueInsuficienteError) Is(target error) bool {
	return target == ErrEstoqueInsuficiente
}

// NaoEncontradoError names the missing entity; errors.Is(err, ErrNaoEncontrado) holds.
type NaoEncontradoError struct {
	Entidade string // display name, e.g. "Produto", "Venda"
	ID       any
}

func (e *NaoEncontradoError) Error() string {
	if strings.HasSuffix(e.Entidade, "a") {
		return e.Entidade + " não encontrada"
	}
	return e.Entidade + " não encontrado"
}

func (e *NaoEncontradoError) Is(target error) bool {
	return target == ErrNaoEncontrado
}
