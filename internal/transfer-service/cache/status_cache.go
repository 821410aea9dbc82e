package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "transfer:status:"

// Status guarda transfer_id -> status no Redis como atalho de leitura na frente
// do Postgres. O TTL é ancorado no created_at do registro, então a entrada
// expira junto com o registro purgado pela retenção mesmo quando recacheada
// numa leitura. Sempre best-effort: erro de cache é logado e ignorado.
type Status struct {
	rdb    *redis.Client
	maxAge time.Duration
	log    *zap.Logger
}

func NewStatus(rdb *redis.Client, maxAge time.Duration, log *zap.Logger) *Status {
	return &Status{rdb: rdb, maxAge: maxAge, log: log}
}

// Get retorna o status cacheado, se houver
func (s *Status) Get(ctx context.Context, transferID string) (string, bool) {
	val, err := s.rdb.Get(ctx, keyPrefix+transferID).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		s.log.Warn("status cache get", zap.String("transferId", transferID), zap.Error(err))
		return "", false
	}
	return val, true
}

// Set grava o status com o TTL que resta até o registro sair do horizonte de
// retenção; registro já além do horizonte não entra no cache
func (s *Status) Set(ctx context.Context, transferID, status string, createdAt time.Time) {
	ttl := s.remaining(createdAt)
	if ttl <= 0 {
		return
	}
	if err := s.rdb.Set(ctx, keyPrefix+transferID, status, ttl).Err(); err != nil {
		s.log.Warn("status cache set", zap.String("transferId", transferID), zap.Error(err))
	}
}

// remaining calcula quanto do horizonte de retenção ainda resta pro registro
func (s *Status) remaining(createdAt time.Time) time.Duration {
	return time.Until(createdAt.Add(s.maxAge))
}
