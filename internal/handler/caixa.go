package handler

import (
	"net/http"

	"pdv/internal/apierror"
	"pdv/internal/dto"
	"pdv/internal/service"

	"github.com/gin-gonic/gin"
)

const msgMovimentacaoRegistrada = "Movimentação registrada com sucesso"

type CaixaHandler struct{ svc service.CaixaService }

func NewCaixaHandler(svc service.CaixaService) *CaixaHandler { return &CaixaHandler{svc: svc} }

// RegistrarMovimentacao godoc
// @Summary Registra uma movimentacao de caixa
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimentacaoRequest true "Movimentacao"
// @Success 201 {object} dto.MensagemResponse
// @Failure 400 {object} apierror.APIError
// @Router /caixa/movimentacao [post]
func (h *CaixaHandler) RegistrarMovimentacao(c *gin.Context) {
	var req dto.MovimentacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if _, err := h.svc.RegistrarMovimentacao(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MensagemResponse{Mensagem: msgMovimentacaoRegistrada})
}

// ListarMovimentacoes godoc
// @Summary Lista movimentacoes, mais recentes primeiro
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param tipo      query string false "entrada | saida"
// @Param categoria query string false "Categoria"
// @Success 200 {array} dto.MovimentacaoResponse
// @Router /caixa/movimentacoes [get]
func (h *CaixaHandler) ListarMovimentacoes(c *gin.Context) {
	var filtro dto.FiltroMovimentacoes
	if err := c.ShouldBindQuery(&filtro); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if !validateStruct(c, &filtro) {
		return
	}
	resp, err := h.svc.ListarMovimentacoes(c.Request.Context(), filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Saldo godoc
// @Summary Saldo do caixa (entradas menos saidas)
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SaldoResponse
// @Router /caixa/saldo [get]
func (h *CaixaHandler) Saldo(c *gin.Context) {
	resp, err := h.svc.Saldo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
