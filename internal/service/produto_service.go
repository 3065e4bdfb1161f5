package service

import (
	"context"
	"errors"

	"pdv/internal/dto"
	"pdv/internal/model"
	"pdv/internal/repository"
)

type ProdutoService interface {
	Criar(ctx context.Context, req dto.ProdutoRequest) (*dto.ProdutoResponse, error)
	Listar(ctx context.Context) ([]dto.ProdutoResponse, error)
	ObterPorID(ctx context.Context, id int64) (*dto.ProdutoResponse, error)
	Atualizar(ctx context.Context, id int64, req dto.ProdutoRequest) (*dto.ProdutoResponse, error)
	Excluir(ctx context.Context, id int64) error
}

type produtoService struct {
	repo repository.ProdutoRepository
}

func NewProdutoService(repo repository.ProdutoRepository) ProdutoService {
	return &produtoService{repo: repo}
}

func (s *produtoService) Criar(ctx context.Context, req dto.ProdutoRequest) (*dto.ProdutoResponse, error) {
	p := &model.Produto{}
	aplicarProduto(p, req)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) Listar(ctx context.Context) ([]dto.ProdutoResponse, error) {
	produtos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProdutoResponse, 0, len(produtos))
	for i := range produtos {
		out = append(out, *produtoToResponse(&produtos[i]))
	}
	return out, nil
}

func (s *produtoService) ObterPorID(ctx context.Context, id int64) (*dto.ProdutoResponse, error) {
	p, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) Atualizar(ctx context.Context, id int64, req dto.ProdutoRequest) (*dto.ProdutoResponse, error) {
	p, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	aplicarProduto(p, req)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) Excluir(ctx context.Context, id int64) error {
	if _, err := s.buscar(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *produtoService) buscar(ctx context.Context, id int64) (*model.Produto, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NaoEncontradoError{Entidade: "Produto", ID: id}
	}
	return p, err
}

func aplicarProduto(p *model.Produto, req dto.ProdutoRequest) {
	p.Nome = req.Nome
	p.Marca = req.Marca
	p.Tipo = req.Tipo
	p.Tamanho = req.Tamanho
	p.Preco = req.Preco
	p.QuantidadeEstoque = req.QuantidadeEstoque
}

func produtoToResponse(p *model.Produto) *dto.ProdutoResponse {
	return &dto.ProdutoResponse{
		ID:                p.ID,
		Nome:              p.Nome,
		Marca:             p.Marca,
		Tipo:              p.Tipo,
		Tamanho:           p.Tamanho,
		Preco:             p.Preco,
		QuantidadeEstoque: p.QuantidadeEstoque,
		CriadoEm:          p.CriadoEm,
	}
}
