package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CadastroRequest struct {
	Nome  string `json:"nome"  validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required,min=4"`
}

// LoginRequest accepts the OAuth2 password form (username/password) as well
// as JSON. Username carries the email.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type AlterarSenhaRequest struct {
	SenhaAtual string `json:"senha_atual" validate:"required"`
	NovaSenha  string `json:"nova_senha"  validate:"required,min=4"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type PerfilResponse struct {
	ID       string    `json:"id"`
	Nome     string    `json:"nome"`
	Email    string    `json:"email"`
	CriadoEm time.Time `json:"criadoEm"`
}

// MensagemResponse is the plain acknowledgement body.
type MensagemResponse struct {
	Mensagem string `json:"mensagem"`
}
