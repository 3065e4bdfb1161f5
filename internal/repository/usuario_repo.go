package repository

import (
	"context"

	"pdv/internal/model"
	"pdv/internal/store"

	"github.com/google/uuid"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByEmail(ctx context.Context, email string) (*model.Usuario, error)
	UpdateSenha(ctx context.Context, id, hash string) error
}

type usuarioRepo struct{ s store.Store }

func NewUsuarioRepository(s store.Store) UsuarioRepository { return &usuarioRepo{s: s} }

// Create assigns a uuid when u.ID is empty and refreshes u from the stored row.
func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row, err := r.s.Insert(ctx, TabelaUsuario, store.Row{
		"id":    u.ID,
		"nome":  u.Nome,
		"email": u.Email,
		"senha": u.Senha,
	})
	if err != nil {
		return err
	}
	return decodeRow(TabelaUsuario, row, u)
}

func (r *usuarioRepo) FindByEmail(ctx context.Context, email string) (*model.Usuario, error) {
	rows, err := store.SelectByField(ctx, r.s, TabelaUsuario, "email", email)
	if err != nil {
		return nil, err
	}
	return first[model.Usuario](TabelaUsuario, rows)
}

func (r *usuarioRepo) UpdateSenha(ctx context.Context, id, hash string) error {
	return store.UpdateByField(ctx, r.s, TabelaUsuario, "id", id, store.Row{"senha": hash})
}
