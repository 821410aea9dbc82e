package retention

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/wallet-transfer-service/internal/transfer-service/metrics"
)

// Store é o contrato mínimo de purga usado pelo sweeper
type Store interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper remove periodicamente registros de transferência além do horizonte
// de retenção. Erro em uma varredura é logado e a próxima tenta de novo.
type Sweeper struct {
	log      *zap.Logger
	store    Store
	maxAge   time.Duration
	interval time.Duration
}

func NewSweeper(log *zap.Logger, store Store, maxAge, interval time.Duration) *Sweeper {
	return &Sweeper{log: log, store: store, maxAge: maxAge, interval: interval}
}

// Run roda o loop de varredura até o contexto ser cancelado.
// Executável numa goroutine no main do serviço.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	s.log.Info("retention sweeper started",
		zap.Duration("maxAge", s.maxAge),
		zap.Duration("interval", s.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("retention sweeper stopped")
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.maxAge)

	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.log.Error("retention sweep failed", zap.Error(err))
		return
	}

	metrics.RetentionDeleted.Add(float64(deleted))
	s.log.Info("old transfers deleted",
		zap.Int64("count", deleted),
		zap.Time("cutoff", cutoff),
	)
}
