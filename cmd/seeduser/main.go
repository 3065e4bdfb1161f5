// cmd/seeduser creates the demo user through the configured store, or resets
// its password when it already exists.
// Uso: go run ./cmd/seeduser
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"pdv/internal/config"
	"pdv/internal/dto"
	"pdv/internal/infra"
	"pdv/internal/repository"
	"pdv/internal/service"
	"pdv/internal/store"
	"pdv/internal/store/postgrest"
	"pdv/internal/store/sqlstore"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	nome  = "Admin Demo"
	email = "admin@pdv.com"
	senha = "1234"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	var st store.Store
	switch cfg.StoreDriver {
	case config.DriverPostgREST:
		st = postgrest.New(postgrest.Config{URL: cfg.SupabaseURL, Key: cfg.SupabaseKey}, nil)
	case config.DriverPostgres:
		db, err := infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("db connect")
		}
		s := sqlstore.New(db)
		defer s.Close()
		st = s
	default:
		log.Fatal().Str("driver", cfg.StoreDriver).Msg("seeduser precisa de um store persistente")
	}

	ctx := context.Background()
	repos := repository.New(st)
	auth := service.NewAuthService(repos.Usuarios, cfg.JWTSecret, time.Minute)

	err = auth.Cadastrar(ctx, dto.CadastroRequest{Nome: nome, Email: email, Senha: senha})
	switch {
	case err == nil:
		fmt.Printf("Usuario '%s' criado com senha '%s'\n", email, senha)
	case errors.Is(err, service.ErrEmailEmUso):
		u, err := repos.Usuarios.FindByEmail(ctx, email)
		if err != nil {
			log.Fatal().Err(err).Msg("buscar usuario")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(senha), 12)
		if err != nil {
			log.Fatal().Err(err).Msg("bcrypt")
		}
		if err := repos.Usuarios.UpdateSenha(ctx, u.ID, string(hash)); err != nil {
			log.Fatal().Err(err).Msg("atualizar senha")
		}
		fmt.Printf("Usuario '%s' atualizado com senha '%s'\n", email, senha)
	default:
		log.Fatal().Err(err).Msg("cadastrar usuario")
	}
}
