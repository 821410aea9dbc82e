package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/wallet-transfer-service/internal/shared/config"
	"github.com/radieske/wallet-transfer-service/internal/shared/logger"
	"github.com/radieske/wallet-transfer-service/internal/shared/metrics"
)

// Métricas Prometheus do simulador de ledger
var (
	transfersServed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_sim_transfers_total",
		Help: "Transferências atendidas pelo simulador",
	})
	failuresInjected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_sim_failures_injected_total",
		Help: "Falhas 5xx injetadas via FAILURE_RATE",
	})
)

type transferReq struct {
	FromAccountID *int64   `json:"fromAccountId"`
	ToAccountID   *int64   `json:"toAccountId"`
	Amount        *float64 `json:"amount"`
}

// server simula o endpoint de transferência atômica do ledger.
// FAILURE_RATE injeta 5xx pra exercitar o circuit breaker do transfer-service.
type server struct {
	log         *zap.Logger
	failureRate float64
}

func newServer(log *zap.Logger, failureRate float64) *server {
	return &server{log: log, failureRate: failureRate}
}

// transferHandler valida o shape do payload e responde o status da operação
func (s *server) transferHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req transferReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.FromAccountID == nil || req.ToAccountID == nil || req.Amount == nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if s.failureRate > 0 && rand.Float64() < s.failureRate {
		failuresInjected.Inc()
		s.log.Warn("injected ledger failure",
			zap.String("idempotencyKey", r.Header.Get("Idempotency-Key")),
		)
		http.Error(w, "ledger unavailable", http.StatusServiceUnavailable)
		return
	}

	transfersServed.Inc()
	s.log.Info("transfer executed",
		zap.Int64("from", *req.FromAccountID),
		zap.Int64("to", *req.ToAccountID),
		zap.Float64("amount", *req.Amount),
		zap.String("idempotencyKey", r.Header.Get("Idempotency-Key")),
	)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"success"}`))
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	prometheus.MustRegister(transfersServed, failuresInjected)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })

	srv := newServer(log, cfg.FailureRate)
	mux := http.NewServeMux()
	mux.HandleFunc("/ledger/transfer", srv.transferHandler)

	addr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("ledger-simulator listening",
		zap.String("addr", addr),
		zap.Float64("failureRate", cfg.FailureRate),
	)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("api", zap.Error(err))
	}
}
