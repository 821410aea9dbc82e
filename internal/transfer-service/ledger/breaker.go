package ledger

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/radieske/wallet-transfer-service/internal/transfer-service/dto"
	"github.com/radieske/wallet-transfer-service/internal/transfer-service/metrics"
)

// Breaker decora o Client com circuit breaker.
// Abre com 5 falhas consecutivas ou taxa de falha >= 50% em 10+ chamadas;
// depois de 30s aberto permite uma chamada de sondagem (half-open).
type Breaker struct {
	cb     *gobreaker.CircuitBreaker
	client *Client
	log    *zap.Logger
}

func NewBreaker(client *Client, log *zap.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        "ledger",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 10 && ratio >= 0.5)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("ledger breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.BreakerState.Set(stateValue(to))
		},
	}

	return &Breaker{
		cb:     gobreaker.NewCircuitBreaker(settings),
		client: client,
		log:    log,
	}
}

// Transfer executa a chamada guardada pelo breaker.
// Com circuito aberto retorna gobreaker.ErrOpenState sem tocar a rede.
func (b *Breaker) Transfer(ctx context.Context, r *dto.TransferRequest, idempotencyKey string) (string, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.client.Transfer(ctx, r, idempotencyKey)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State expõe o estado corrente do breaker
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 2
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 0
	}
}
