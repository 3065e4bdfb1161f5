package handler

import (
	"net/http"

	"pdv/internal/apierror"
	"pdv/internal/dto"
	"pdv/internal/middleware"
	"pdv/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgUsuarioCadastrado = "Usuário cadastrado com sucesso"
	msgSenhaAlterada     = "Senha alterada com sucesso"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Cadastrar godoc
// @Summary Cadastro de usuario
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.CadastroRequest true "Dados do usuario"
// @Success 201 {object} dto.MensagemResponse
// @Failure 400 {object} apierror.APIError
// @Router /cadastro [post]
func (h *AuthHandler) Cadastrar(c *gin.Context) {
	var req dto.CadastroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Cadastrar(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MensagemResponse{Mensagem: msgUsuarioCadastrado})
}

// Login godoc
// @Summary Login de usuario
// @Description Aceita o formulario OAuth2 password (username = email) ou JSON.
// @Tags auth
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param username formData string true "Email"
// @Param password formData string true "Senha"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	// ShouldBind picks form or JSON binding from Content-Type.
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Requisicao invalida: "+err.Error()))
		return
	}
	if !validateStruct(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Perfil godoc
// @Summary Perfil do usuario autenticado
// @Tags usuario
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PerfilResponse
// @Failure 404 {object} apierror.APIError
// @Router /usuario/perfil [get]
func (h *AuthHandler) Perfil(c *gin.Context) {
	resp, err := h.svc.Perfil(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AlterarSenha godoc
// @Summary Altera a senha do usuario autenticado
// @Tags usuario
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AlterarSenhaRequest true "Senha atual e nova"
// @Success 200 {object} dto.MensagemResponse
// @Failure 400 {object} apierror.APIError
// @Router /usuario/senha [put]
func (h *AuthHandler) AlterarSenha(c *gin.Context) {
	var req dto.AlterarSenhaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AlterarSenha(c.Request.Context(), middleware.GetEmail(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MensagemResponse{Mensagem: msgSenhaAlterada})
}
