package model

import "time"

// Usuario is an operator account. Email is the login identifier and the
// subject of issued tokens; Senha holds the bcrypt hash, never the password.
type Usuario struct {
	ID       string    `json:"id"`
	Nome     string    `json:"nome"`
	Email    string    `json:"email"`
	Senha    string    `json:"senha"`
	CriadoEm time.Time `json:"criadoEm"`
}
