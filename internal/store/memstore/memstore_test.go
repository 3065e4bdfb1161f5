package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pdv/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var specs = []store.TableSpec{
	{Name: "Produto", AutoID: true, CreatedAt: "criadoEm"},
	{Name: "Usuario"},
}

func TestInsert_AssignsIDAndTimestamp(t *testing.T) {
	s := New(specs...)
	ctx := context.Background()

	a, err := s.Insert(ctx, "Produto", store.Row{"nome": "Cafe"})
	require.NoError(t, err)
	b, err := s.Insert(ctx, "Produto", store.Row{"nome": "Pao"})
	require.NoError(t, err)

	assert.EqualValues(t, 1, a["id"])
	assert.EqualValues(t, 2, b["id"])
	assert.NotNil(t, a["criadoEm"])

	u, err := s.Insert(ctx, "Usuario", store.Row{"id": "abc", "email": "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "abc", u["id"])
	assert.NotContains(t, u, "criadoEm")
}

func TestInsert_ReturnsCopy(t *testing.T) {
	s := New(specs...)
	row, err := s.Insert(context.Background(), "Produto", store.Row{"nome": "Cafe"})
	require.NoError(t, err)

	row["nome"] = "alterado"
	rows := s.Rows("Produto")
	require.Len(t, rows, 1)
	assert.Equal(t, "Cafe", rows[0]["nome"])
}

func TestSelect_FiltersLooselyAndOrders(t *testing.T) {
	s := New(specs...)
	ctx := context.Background()
	for _, q := range []int{7, 3, 9} {
		_, err := s.Insert(ctx, "Produto", store.Row{"categoria": "bebida", "quantidadeEstoque": q})
		require.NoError(t, err)
	}
	_, err := s.Insert(ctx, "Produto", store.Row{"categoria": "padaria", "quantidadeEstoque": 1})
	require.NoError(t, err)

	rows, err := s.Select(ctx, "Produto", store.Query{
		Where:   []store.Eq{{Field: "categoria", Value: "bebida"}},
		OrderBy: "quantidadeEstoque",
		Desc:    true,
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 9, rows[0]["quantidadeEstoque"])
	assert.Equal(t, 3, rows[2]["quantidadeEstoque"])

	// int64 id stored, string id queried
	rows, err = store.SelectByField(ctx, s, "Produto", "id", "2")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0]["quantidadeEstoque"])
}

func TestUpdate_CompareAndSet(t *testing.T) {
	s := New(specs...)
	ctx := context.Background()
	_, err := s.Insert(ctx, "Produto", store.Row{"quantidadeEstoque": 5})
	require.NoError(t, err)

	n, err := s.Update(ctx, "Produto",
		[]store.Eq{{Field: "id", Value: 1}, {Field: "quantidadeEstoque", Value: 4}},
		store.Row{"quantidadeEstoque": 3})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.Update(ctx, "Produto",
		[]store.Eq{{Field: "id", Value: 1}, {Field: "quantidadeEstoque", Value: 5}},
		store.Row{"quantidadeEstoque": 3})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 3, s.Rows("Produto")[0]["quantidadeEstoque"])
}

func TestDelete(t *testing.T) {
	s := New(specs...)
	ctx := context.Background()
	_, _ = s.Insert(ctx, "Produto", store.Row{"nome": "a"})
	_, _ = s.Insert(ctx, "Produto", store.Row{"nome": "b"})

	n, err := s.Delete(ctx, "Produto", []store.Eq{{Field: "id", Value: 1}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	rows := s.Rows("Produto")
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0]["nome"])
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := New(specs...)
	ctx := context.Background()
	_, err := s.Insert(ctx, "Produto", store.Row{"nome": "a"})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Insert(ctx, "Produto", store.Row{"nome": "b"}); err != nil {
			return err
		}
		if err := store.DeleteByField(ctx, tx, "Produto", "id", 1); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows := s.Rows("Produto")
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0]["nome"])

	// ids handed out inside the rolled back tx are reused
	row, err := s.Insert(ctx, "Produto", store.Row{"nome": "c"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, row["id"])
}

func TestInTx_Commits(t *testing.T) {
	s := New(specs...)
	ctx := context.Background()
	err := s.InTx(ctx, func(tx store.Store) error {
		_, err := tx.Insert(ctx, "Produto", store.Row{"nome": "a"})
		return err
	})
	require.NoError(t, err)
	assert.Len(t, s.Rows("Produto"), 1)
}

func TestFailOn(t *testing.T) {
	s := New(specs...)
	ctx := context.Background()
	s.FailOn("insert", "Produto", ErrFault)

	_, err := s.Insert(ctx, "Produto", store.Row{"nome": "a"})
	var se *store.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert", se.Op)
	assert.ErrorIs(t, err, ErrFault)

	s.FailOn("insert", "Produto", nil)
	_, err = s.Insert(ctx, "Produto", store.Row{"nome": "a"})
	assert.NoError(t, err)
}

func TestCanceledContext(t *testing.T) {
	s := New(specs...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Select(ctx, "Produto", store.Query{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentInserts(t *testing.T) {
	s := New(specs...)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Insert(ctx, "Produto", store.Row{"nome": "x"})
		}()
	}
	wg.Wait()

	seen := map[any]bool{}
	for _, r := range s.Rows("Produto") {
		seen[r["id"]] = true
	}
	assert.Len(t, seen, 50)
}
