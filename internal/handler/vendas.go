package handler

import (
	"context"
	"errors"
	"net/http"

	"pdv/internal/apierror"
	"pdv/internal/dto"
	"pdv/internal/infra"
	"pdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"

	msgIdempotenciaIndisponivel = "Idempotency-Key indisponivel no momento, tente novamente"
)

// IdempotencyStore is satisfied by *infra.IdempotencyStore.
type IdempotencyStore interface {
	Reservar(ctx context.Context, key string) (vendaID int64, concluida bool, err error)
	Concluir(ctx context.Context, key string, vendaID int64) error
	Liberar(ctx context.Context, key string) error
}

type VendasHandler struct {
	svc   service.VendaService
	idems IdempotencyStore // nil: Idempotency-Key is ignored
}

func NewVendasHandler(svc service.VendaService, idems IdempotencyStore) *VendasHandler {
	return &VendasHandler{svc: svc, idems: idems}
}

// CriarVenda godoc
// @Summary      Registra uma venda
// @Description  Grava a venda, os itens, desconta o estoque e lanca a entrada no caixa.
// @Description  Sem Idempotency-Key cada chamada cria uma venda nova.
// @Tags         vendas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key header string false "Chave de idempotencia"
// @Param        body body dto.CriarVendaRequest true "Itens da venda"
// @Success      201  {object} dto.CriarVendaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /vendas [post]
func (h *VendasHandler) CriarVenda(c *gin.Context) {
	var req dto.CriarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()

	key := c.GetHeader(IdempotencyKeyHeader)
	if key != "" && h.idems != nil {
		vendaID, concluida, err := h.idems.Reservar(ctx, key)
		if err != nil {
			if errors.Is(err, infra.ErrIdempotencyEmAndamento) {
				respondError(c, err)
				return
			}
			// no sale is attempted: the client asked for at-most-once
			log.Error().Err(err).Str("key", key).Msg("falha ao reservar Idempotency-Key")
			c.JSON(http.StatusServiceUnavailable, apierror.New(msgIdempotenciaIndisponivel))
			return
		}
		if concluida {
			c.JSON(http.StatusCreated, dto.CriarVendaResponse{Mensagem: service.MensagemVendaRegistrada, VendaID: vendaID})
			return
		}
	} else {
		key = ""
	}

	resp, err := h.svc.CriarVenda(ctx, req)
	if err != nil {
		if key != "" {
			if relErr := h.idems.Liberar(context.WithoutCancel(ctx), key); relErr != nil {
				log.Warn().Err(relErr).Str("key", key).Msg("falha ao liberar Idempotency-Key")
			}
		}
		respondError(c, err)
		return
	}
	if key != "" {
		if err := h.idems.Concluir(context.WithoutCancel(ctx), key, resp.VendaID); err != nil {
			log.Warn().Err(err).Str("key", key).Int64("venda_id", resp.VendaID).Msg("falha ao registrar Idempotency-Key")
		}
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarVendas godoc
// @Summary      Lista vendas
// @Tags         vendas
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.VendaResponse
// @Router       /vendas [get]
func (h *VendasHandler) ListarVendas(c *gin.Context) {
	resp, err := h.svc.ListarVendas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObterVenda godoc
// @Summary      Detalha uma venda com seus itens
// @Tags         vendas
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID da venda"
// @Success      200  {object} dto.VendaDetalheResponse
// @Failure      404  {object} apierror.APIError
// @Router       /vendas/{id} [get]
func (h *VendasHandler) ObterVenda(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObterVenda(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
