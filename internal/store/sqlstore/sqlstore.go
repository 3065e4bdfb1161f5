// Package sqlstore implements store.Transactional on Postgres through GORM.
// Queries are raw parameterised SQL so rows keep the table's own column names.
package sqlstore

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"pdv/internal/store"

	"gorm.io/gorm"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a store.Transactional backed by a *gorm.DB.
type Store struct {
	db *gorm.DB
}

var _ store.Transactional = (*Store)(nil)

// New wraps an open connection; see infra.NewDatabase.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks the underlying connection pool.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Insert(ctx context.Context, table string, row store.Row) (store.Row, error) {
	t, err := quote(table)
	if err != nil {
		return nil, store.Wrap("insert", table, err)
	}

	var sql string
	var args []any
	if len(row) == 0 {
		sql = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", t)
	} else {
		cols := sortedKeys(row)
		names := make([]string, len(cols))
		marks := make([]string, len(cols))
		for i, c := range cols {
			if names[i], err = quote(c); err != nil {
				return nil, store.Wrap("insert", table, err)
			}
			marks[i] = "?"
			args = append(args, row[c])
		}
		sql = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
			t, strings.Join(names, ", "), strings.Join(marks, ", "))
	}

	rows, err := s.query(ctx, sql, args)
	if err != nil {
		return nil, store.Wrap("insert", table, err)
	}
	if len(rows) == 0 {
		return nil, store.Wrap("insert", table, store.ErrNoRows)
	}
	return rows[0], nil
}

func (s *Store) Select(ctx context.Context, table string, q store.Query) ([]store.Row, error) {
	t, err := quote(table)
	if err != nil {
		return nil, store.Wrap("select", table, err)
	}
	where, args, err := whereClause(q.Where)
	if err != nil {
		return nil, store.Wrap("select", table, err)
	}

	sql := "SELECT * FROM " + t + where
	if q.OrderBy != "" {
		col, err := quote(q.OrderBy)
		if err != nil {
			return nil, store.Wrap("select", table, err)
		}
		sql += " ORDER BY " + col
		if q.Desc {
			sql += " DESC"
		}
	}

	rows, err := s.query(ctx, sql, args)
	if err != nil {
		return nil, store.Wrap("select", table, err)
	}
	return rows, nil
}

func (s *Store) Update(ctx context.Context, table string, where []store.Eq, patch store.Row) (int64, error) {
	t, err := quote(table)
	if err != nil {
		return 0, store.Wrap("update", table, err)
	}
	if len(patch) == 0 {
		return 0, nil
	}

	cols := sortedKeys(patch)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(where))
	for i, c := range cols {
		name, err := quote(c)
		if err != nil {
			return 0, store.Wrap("update", table, err)
		}
		sets[i] = name + " = ?"
		args = append(args, patch[c])
	}
	cond, condArgs, err := whereClause(where)
	if err != nil {
		return 0, store.Wrap("update", table, err)
	}
	args = append(args, condArgs...)

	res := s.db.WithContext(ctx).Exec("UPDATE "+t+" SET "+strings.Join(sets, ", ")+cond, args...)
	if res.Error != nil {
		return 0, store.Wrap("update", table, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) Delete(ctx context.Context, table string, where []store.Eq) (int64, error) {
	t, err := quote(table)
	if err != nil {
		return 0, store.Wrap("delete", table, err)
	}
	cond, args, err := whereClause(where)
	if err != nil {
		return 0, store.Wrap("delete", table, err)
	}

	res := s.db.WithContext(ctx).Exec("DELETE FROM "+t+cond, args...)
	if res.Error != nil {
		return 0, store.Wrap("delete", table, res.Error)
	}
	return res.RowsAffected, nil
}

// InTx runs fn inside a database transaction; a non-nil error rolls back.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) query(ctx context.Context, sql string, args []any) ([]store.Row, error) {
	var raw []map[string]any
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&raw).Error; err != nil {
		return nil, err
	}
	rows := make([]store.Row, len(raw))
	for i, r := range raw {
		rows[i] = store.Row(r)
	}
	return rows, nil
}

func whereClause(where []store.Eq) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}
	parts := make([]string, len(where))
	args := make([]any, len(where))
	for i, cond := range where {
		col, err := quote(cond.Field)
		if err != nil {
			return "", nil, err
		}
		parts[i] = col + " = ?"
		args[i] = cond.Value
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func quote(ident string) (string, error) {
	if !identRe.MatchString(ident) {
		return "", fmt.Errorf("identificador invalido %q", ident)
	}
	return `"` + ident + `"`, nil
}

func sortedKeys(r store.Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
