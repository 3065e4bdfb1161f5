// Package memstore is an in-process store.Store used for local development and
// as the store double in tests. Tables emulate store-assigned ids and
// timestamps according to their store.TableSpec.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"pdv/internal/store"

	"github.com/shopspring/decimal"
)

type table struct {
	spec   store.TableSpec
	rows   []store.Row
	nextID int64
}

type fault struct {
	op, table string
}

// Store keeps every table in memory.
type Store struct {
	// gate serialises transactions against every other caller.
	gate sync.Mutex
	mu   sync.Mutex

	tables map[string]*table
	faults map[fault]error
	now    func() time.Time
}

var _ store.Transactional = (*Store)(nil)

// New creates an empty store. Tables not listed in specs are created on first
// insert without id or timestamp emulation.
func New(specs ...store.TableSpec) *Store {
	s := &Store{
		tables: make(map[string]*table),
		faults: make(map[fault]error),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, spec := range specs {
		s.tables[spec.Name] = &table{spec: spec}
	}
	return s
}

// FailOn makes every subsequent op ("insert", "select", "update", "delete")
// on table return err. A nil err clears the fault.
func (s *Store) FailOn(op, tableName string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := fault{op: op, table: tableName}
	if err == nil {
		delete(s.faults, k)
		return
	}
	s.faults[k] = err
}

// Rows returns a copy of every row currently stored in tableName.
func (s *Store) Rows(tableName string) []store.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableName]
	if !ok {
		return nil
	}
	out := make([]store.Row, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, copyRow(r))
	}
	return out
}

func (s *Store) Insert(ctx context.Context, tableName string, row store.Row) (store.Row, error) {
	s.gate.Lock()
	defer s.gate.Unlock()
	return s.insert(ctx, tableName, row)
}

func (s *Store) Select(ctx context.Context, tableName string, q store.Query) ([]store.Row, error) {
	s.gate.Lock()
	defer s.gate.Unlock()
	return s.selectRows(ctx, tableName, q)
}

func (s *Store) Update(ctx context.Context, tableName string, where []store.Eq, patch store.Row) (int64, error) {
	s.gate.Lock()
	defer s.gate.Unlock()
	return s.update(ctx, tableName, where, patch)
}

func (s *Store) Delete(ctx context.Context, tableName string, where []store.Eq) (int64, error) {
	s.gate.Lock()
	defer s.gate.Unlock()
	return s.delete(ctx, tableName, where)
}

// InTx runs fn against a snapshot-protected view of the store. Any error
// returned by fn restores every table to its state before the call.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	s.gate.Lock()
	defer s.gate.Unlock()

	snapshot := s.snapshot()
	if err := fn(txStore{s: s}); err != nil {
		s.restore(snapshot)
		return err
	}
	if err := ctx.Err(); err != nil {
		s.restore(snapshot)
		return store.Wrap("commit", "", err)
	}
	return nil
}

// txStore is the Store handed to InTx callbacks; the gate is already held.
type txStore struct{ s *Store }

func (t txStore) Insert(ctx context.Context, tableName string, row store.Row) (store.Row, error) {
	return t.s.insert(ctx, tableName, row)
}

func (t txStore) Select(ctx context.Context, tableName string, q store.Query) ([]store.Row, error) {
	return t.s.selectRows(ctx, tableName, q)
}

func (t txStore) Update(ctx context.Context, tableName string, where []store.Eq, patch store.Row) (int64, error) {
	return t.s.update(ctx, tableName, where, patch)
}

func (t txStore) Delete(ctx context.Context, tableName string, where []store.Eq) (int64, error) {
	return t.s.delete(ctx, tableName, where)
}

// ── internals (caller holds gate) ────────────────────────────────────────────

func (s *Store) check(ctx context.Context, op, tableName string) error {
	if err := ctx.Err(); err != nil {
		return store.Wrap(op, tableName, err)
	}
	if err, ok := s.faults[fault{op: op, table: tableName}]; ok {
		return store.Wrap(op, tableName, err)
	}
	return nil
}

func (s *Store) table(name string) *table {
	t, ok := s.tables[name]
	if !ok {
		t = &table{spec: store.TableSpec{Name: name}}
		s.tables[name] = t
	}
	return t
}

func (s *Store) insert(ctx context.Context, tableName string, row store.Row) (store.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "insert", tableName); err != nil {
		return nil, err
	}

	t := s.table(tableName)
	stored := make(store.Row, len(row))
	for k, v := range row {
		stored[k] = deref(v)
	}
	if t.spec.AutoID {
		if _, ok := stored["id"]; !ok {
			t.nextID++
			stored["id"] = t.nextID
		}
	}
	if t.spec.CreatedAt != "" {
		if _, ok := stored[t.spec.CreatedAt]; !ok {
			stored[t.spec.CreatedAt] = s.now()
		}
	}
	t.rows = append(t.rows, stored)
	return copyRow(stored), nil
}

func (s *Store) selectRows(ctx context.Context, tableName string, q store.Query) ([]store.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "select", tableName); err != nil {
		return nil, err
	}

	t := s.table(tableName)
	out := make([]store.Row, 0)
	for _, r := range t.rows {
		if matches(r, q.Where) {
			out = append(out, copyRow(r))
		}
	}
	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			if q.Desc {
				return less(out[j][q.OrderBy], out[i][q.OrderBy])
			}
			return less(out[i][q.OrderBy], out[j][q.OrderBy])
		})
	}
	return out, nil
}

func (s *Store) update(ctx context.Context, tableName string, where []store.Eq, patch store.Row) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "update", tableName); err != nil {
		return 0, err
	}

	t := s.table(tableName)
	var n int64
	for _, r := range t.rows {
		if !matches(r, where) {
			continue
		}
		for k, v := range patch {
			r[k] = deref(v)
		}
		n++
	}
	return n, nil
}

func (s *Store) delete(ctx context.Context, tableName string, where []store.Eq) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "delete", tableName); err != nil {
		return 0, err
	}

	t := s.table(tableName)
	kept := t.rows[:0]
	var n int64
	for _, r := range t.rows {
		if matches(r, where) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	t.rows = kept
	return n, nil
}

func (s *Store) snapshot() map[string]table {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(map[string]table, len(s.tables))
	for name, t := range s.tables {
		rows := make([]store.Row, len(t.rows))
		for i, r := range t.rows {
			rows[i] = copyRow(r)
		}
		snap[name] = table{spec: t.spec, rows: rows, nextID: t.nextID}
	}
	return snap
}

func (s *Store) restore(snap map[string]table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string]*table, len(snap))
	for name, t := range snap {
		t := t
		s.tables[name] = &t
	}
}

// ── helpers ──────────────────────────────────────────────────────────────────

func copyRow(r store.Row) store.Row {
	out := make(store.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// deref stores pointed-to values so nullable model fields compare by value.
func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return v
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}

func matches(r store.Row, where []store.Eq) bool {
	for _, cond := range where {
		v, ok := r[cond.Field]
		if !ok || !equal(v, cond.Value) {
			return false
		}
	}
	return true
}

// equal compares loosely so int, int64 and string ids from different callers
// match each other.
func equal(a, b any) bool {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return fa.Equal(fb)
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func less(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Before(tb)
		}
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return fa.LessThan(fb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b)) < 0
}

func number(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case decimal.Decimal:
		return n, true
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	}
	return decimal.Zero, false
}

// ErrFault is a convenience error for FailOn in tests.
var ErrFault = errors.New("memstore: falha injetada")
