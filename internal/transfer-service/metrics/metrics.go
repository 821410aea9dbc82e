package metrics

import "github.com/prometheus/client_golang/prometheus"

// Métricas Prometheus do motor de transferências
var (
	Processed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transfer_processed_total",
		Help: "transferências com registro terminal persistido, por outcome",
	}, []string{"outcome"})

	Duplicates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "transfer_duplicates_total",
		Help: "requisições colapsadas em registro já existente (replay idempotente)",
	})

	Fallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "transfer_fallback_total",
		Help: "chamadas ao ledger convertidas em failure local (erro, timeout ou circuito aberto)",
	})

	RetentionDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "transfer_retention_deleted_total",
		Help: "registros removidos pelo sweeper de retenção",
	})

	BreakerState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_breaker_state",
		Help: "estado do circuit breaker do ledger (0=closed, 1=half-open, 2=open)",
	})
)

func init() {
	prometheus.MustRegister(Processed, Duplicates, Fallbacks, RetentionDeleted, BreakerState)
}
