package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// DLQPrefix namespaces the dead-letter list of each queue: dlq:jobs:recibo.
const DLQPrefix = "dlq:"

// DeadLetter is a job that will not be retried again. VendaID is copied out of
// the payload so a missing receipt can be traced to its sale without decoding
// the job.
type DeadLetter struct {
	Queue    string    `json:"queue"`
	Job      Job       `json:"job"`
	VendaID  int64     `json:"venda_id,omitempty"`
	Motivo   string    `json:"motivo"`
	FalhouEm time.Time `json:"falhou_em"`
}

// vendaIDDe reads venda_id from recibo and email payloads; 0 when absent.
func vendaIDDe(payload json.RawMessage) int64 {
	var ref struct {
		VendaID int64 `json:"venda_id"`
	}
	if json.Unmarshal(payload, &ref) != nil {
		return 0
	}
	return ref.VendaID
}

func (p *Pool) deadLetter(ctx context.Context, queue string, job Job, motivo string) {
	if len(job.Payload) == 0 {
		job.Payload = json.RawMessage("null")
	}
	dl := DeadLetter{
		Queue:    queue,
		Job:      job,
		VendaID:  vendaIDDe(job.Payload),
		Motivo:   motivo,
		FalhouEm: time.Now().UTC(),
	}
	data, err := json.Marshal(dl)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Int64("venda_id", dl.VendaID).Msg("dlq: marshal failed")
		return
	}

	key := DLQPrefix + queue
	if err := p.rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Int64("venda_id", dl.VendaID).Msg("dlq: push failed, job lost")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Int64("venda_id", dl.VendaID).
		Int("attempts", job.Attempts).
		Str("motivo", motivo).
		Msg("dlq: job abandonado")
}

// DLQLength returns how many jobs of queue were abandoned.
func DLQLength(ctx context.Context, rdb ListClient, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// DeadLetters returns up to limit abandoned jobs of queue, newest first.
func DeadLetters(ctx context.Context, rdb ListClient, queue string, limit int64) ([]DeadLetter, error) {
	raws, err := rdb.LRange(ctx, DLQPrefix+queue, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadLetter, 0, len(raws))
	for _, raw := range raws {
		var dl DeadLetter
		if err := json.Unmarshal([]byte(raw), &dl); err != nil {
			log.Warn().Err(err).Str("queue", queue).Msg("dlq: entrada ilegivel ignorada")
			continue
		}
		out = append(out, dl)
	}
	return out, nil
}
