// Package store defines the table/query contract the application uses to reach
// its relational data store. Backends live in subpackages: postgrest (hosted
// Supabase REST API), sqlstore (Postgres through GORM) and memstore.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Row is a single table row keyed by column name.
type Row map[string]any

// Eq is an equality condition on one column.
type Eq struct {
	Field string
	Value any
}

// Query selects rows matching every condition in Where.
// OrderBy is optional; Desc reverses it.
type Query struct {
	Where   []Eq
	OrderBy string
	Desc    bool
}

// Store is the opaque persistence capability. Each call is independently
// durable unless it runs inside Transactional.InTx.
type Store interface {
	// Insert writes row and returns it as stored, including store-assigned
	// columns (id, timestamps).
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	// Update applies patch to every row matching where and reports how many
	// rows were changed.
	Update(ctx context.Context, table string, where []Eq, patch Row) (int64, error)
	Delete(ctx context.Context, table string, where []Eq) (int64, error)
}

// Transactional is implemented by stores able to run several calls atomically.
// fn receives a Store bound to the transaction; a non-nil return rolls back.
type Transactional interface {
	Store
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// TableSpec describes store-assigned columns for backends that must emulate
// them (memstore).
type TableSpec struct {
	Name string
	// AutoID assigns a sequential integer "id" when the row has none.
	AutoID bool
	// CreatedAt names a timestamp column filled on insert, if any.
	CreatedAt string
}

// ErrNoRows is returned by Insert when the backend did not echo a row back.
var ErrNoRows = errors.New("store: nenhuma linha retornada")

// Error is the StoreError kind: any failure coming from a backend.
type Error struct {
	Op    string
	Table string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns err as a *Error unless it already is one or is nil.
func Wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Table: table, Err: err}
}

// SelectByField returns every row of table whose field equals value.
func SelectByField(ctx context.Context, s Store, table, field string, value any) ([]Row, error) {
	return s.Select(ctx, table, Query{Where: []Eq{{Field: field, Value: value}}})
}

// UpdateByField patches every row of table whose field equals value.
func UpdateByField(ctx context.Context, s Store, table, field string, value any, patch Row) error {
	_, err := s.Update(ctx, table, []Eq{{Field: field, Value: value}}, patch)
	return err
}

// DeleteByField removes every row of table whose field equals value.
func DeleteByField(ctx context.Context, s Store, table, field string, value any) error {
	_, err := s.Delete(ctx, table, []Eq{{Field: field, Value: value}})
	return err
}
