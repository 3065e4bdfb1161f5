package infra

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyPrefix = "idem:venda:"
	// pendente marks a key whose sale is still being registered.
	pendente = "pendente"
)

// ErrIdempotencyEmAndamento is returned by Reservar while another request
// holding the same key has not finished.
var ErrIdempotencyEmAndamento = errors.New("requisicao com a mesma Idempotency-Key em andamento")

// IdempotencyStore remembers which sale an Idempotency-Key produced.
type IdempotencyStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewIdempotencyStore(rdb redis.Cmdable, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

// Reservar claims key. It returns the sale id when the key already completed,
// ErrIdempotencyEmAndamento when it is held by an in-flight request, and
// (0, false, nil) when the caller now owns the key.
func (s *IdempotencyStore) Reservar(ctx context.Context, key string) (int64, bool, error) {
	k := idempotencyPrefix + key
	for tentativa := 0; tentativa < 2; tentativa++ {
		ok, err := s.rdb.SetNX(ctx, k, pendente, s.ttl).Result()
		if err != nil {
			return 0, false, err
		}
		if ok {
			return 0, false, nil
		}

		val, err := s.rdb.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue // expired between SETNX and GET
		}
		if err != nil {
			return 0, false, err
		}
		if val == pendente {
			return 0, false, ErrIdempotencyEmAndamento
		}
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false, err
		}
		return id, true, nil
	}
	return 0, false, ErrIdempotencyEmAndamento
}

// Concluir records the sale created under key.
func (s *IdempotencyStore) Concluir(ctx context.Context, key string, vendaID int64) error {
	return s.rdb.Set(ctx, idempotencyPrefix+key, strconv.FormatInt(vendaID, 10), s.ttl).Err()
}

// Liberar drops a reservation whose sale failed so the client may retry.
func (s *IdempotencyStore) Liberar(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, idempotencyPrefix+key).Err()
}
