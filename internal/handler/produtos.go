package handler

import (
	"net/http"

	"pdv/internal/dto"
	"pdv/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgProdutoCriado     = "Produto criado com sucesso"
	msgProdutoAtualizado = "Produto atualizado com sucesso"
	msgProdutoDeletado   = "Produto deletado com sucesso"
)

type ProdutosHandler struct{ svc service.ProdutoService }

func NewProdutosHandler(svc service.ProdutoService) *ProdutosHandler {
	return &ProdutosHandler{svc: svc}
}

// Criar godoc
// @Summary Cria um produto
// @Tags produtos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ProdutoRequest true "Produto"
// @Success 201 {object} dto.ProdutoCriadoResponse
// @Failure 400 {object} apierror.APIError
// @Router /produtos [post]
func (h *ProdutosHandler) Criar(c *gin.Context) {
	var req dto.ProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ProdutoCriadoResponse{Mensagem: msgProdutoCriado, Produto: *resp})
}

// Listar godoc
// @Summary Lista produtos
// @Tags produtos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ProdutoResponse
// @Router /produtos [get]
func (h *ProdutosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObterPorID godoc
// @Summary Obtem um produto
// @Tags produtos
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do produto"
// @Success 200 {object} dto.ProdutoResponse
// @Failure 404 {object} apierror.APIError
// @Router /produtos/{id} [get]
func (h *ProdutosHandler) ObterPorID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObterPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Atualizar godoc
// @Summary Atualiza um produto
// @Tags produtos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do produto"
// @Param body body dto.ProdutoRequest true "Produto"
// @Success 200 {object} dto.MensagemResponse
// @Failure 404 {object} apierror.APIError
// @Router /produtos/{id} [put]
func (h *ProdutosHandler) Atualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if _, err := h.svc.Atualizar(c.Request.Context(), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MensagemResponse{Mensagem: msgProdutoAtualizado})
}

// Excluir godoc
// @Summary Remove um produto
// @Tags produtos
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do produto"
// @Success 200 {object} dto.MensagemResponse
// @Failure 404 {object} apierror.APIError
// @Router /produtos/{id} [delete]
func (h *ProdutosHandler) Excluir(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MensagemResponse{Mensagem: msgProdutoDeletado})
}
