package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pdv/internal/dto"
	"pdv/internal/model"
	"pdv/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

type AuthService interface {
	Cadastrar(ctx context.Context, req dto.CadastroRequest) error
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Perfil(ctx context.Context, email string) (*dto.PerfilResponse, error)
	AlterarSenha(ctx context.Context, email string, req dto.AlterarSenhaRequest) error
	// ValidarToken returns the subject (email) of a valid, unexpired token.
	ValidarToken(token string) (string, error)
}

type authService struct {
	repo      repository.UsuarioRepository
	secret    []byte
	expiracao time.Duration
	now       func() time.Time
}

func NewAuthService(repo repository.UsuarioRepository, secret string, expiracao time.Duration) AuthService {
	return &authService{repo: repo, secret: []byte(secret), expiracao: expiracao, now: time.Now}
}

func (s *authService) Cadastrar(ctx context.Context, req dto.CadastroRequest) error {
	_, err := s.repo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return ErrEmailEmUso
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash da senha: %w", err)
	}
	return s.repo.Create(ctx, &model.Usuario{
		Nome:  req.Nome,
		Email: req.Email,
		Senha: string(hash),
	})
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAutenticacao
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Senha), []byte(req.Password)); err != nil {
		return nil, ErrAutenticacao
	}

	token, err := s.gerarToken(user.Email)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{AccessToken: token, TokenType: "bearer"}, nil
}

func (s *authService) Perfil(ctx context.Context, email string) (*dto.PerfilResponse, error) {
	user, err := s.buscar(ctx, email)
	if err != nil {
		return nil, err
	}
	return &dto.PerfilResponse{ID: user.ID, Nome: user.Nome, Email: user.Email, CriadoEm: user.CriadoEm}, nil
}

func (s *authService) AlterarSenha(ctx context.Context, email string, req dto.AlterarSenhaRequest) error {
	user, err := s.buscar(ctx, email)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Senha), []byte(req.SenhaAtual)); err != nil {
		return ErrSenhaAtualIncorreta
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NovaSenha), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash da senha: %w", err)
	}
	return s.repo.UpdateSenha(ctx, user.ID, string(hash))
}

func (s *authService) ValidarToken(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrAutenticacao
	}
	return claims.Subject, nil
}

func (s *authService) buscar(ctx context.Context, email string) (*model.Usuario, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NaoEncontradoError{Entidade: "Usuário", ID: email}
	}
	return user, err
}

func (s *authService) gerarToken(email string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiracao)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
