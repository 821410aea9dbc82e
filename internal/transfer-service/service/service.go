package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/wallet-transfer-service/internal/transfer-service/dto"
	"github.com/radieske/wallet-transfer-service/internal/transfer-service/metrics"
	"github.com/radieske/wallet-transfer-service/internal/transfer-service/repo"
	"github.com/radieske/wallet-transfer-service/internal/transfer-service/validator"
	"github.com/radieske/wallet-transfer-service/pkg/contracts/events"
)

// StatusFailure e StatusError são atribuídos pelo serviço; qualquer outra
// string de status vem do ledger e é repassada como está.
const (
	// StatusSuccess é o status que o ledger reporta em transferência efetivada
	StatusSuccess = "success"

	// StatusFailure marca transferência executada (ou tentada) que terminou em falha;
	// existe registro persistido com esse status
	StatusFailure = "failure"

	// StatusError marca item de batch que o coordenador não conseguiu executar;
	// nada foi persistido pra essa chave
	StatusError = "error"
)

// ErrNotFound é o erro de consulta por id inexistente, repassado do store
var ErrNotFound = repo.ErrNotFound

// Store é o contrato de persistência dos registros de transferência
type Store interface {
	FindByTransferID(ctx context.Context, transferID string) (*repo.Record, error)
	InsertOrFetch(ctx context.Context, rec *repo.Record) (*repo.Record, bool, error)
	Save(ctx context.Context, rec *repo.Record) (*repo.Record, error)
}

// Ledger é o contrato da chamada de transferência atômica externa
type Ledger interface {
	Transfer(ctx context.Context, r *dto.TransferRequest, idempotencyKey string) (string, error)
}

// StatusCache é o atalho de leitura transfer_id -> status (best-effort).
// createdAt ancora a expiração da entrada no horizonte de retenção do registro.
type StatusCache interface {
	Get(ctx context.Context, transferID string) (string, bool)
	Set(ctx context.Context, transferID, status string, createdAt time.Time)
}

// Publisher publica o evento de transferência concluída
type Publisher interface {
	PublishTransferCompleted(ctx context.Context, e events.TransferCompleted) error
}

// Service orquestra o ciclo de vida de uma transferência:
// validação -> checagem de duplicata -> chamada ao ledger guardada por breaker ->
// persistência write-once -> resultado.
type Service struct {
	log    *zap.Logger
	store  Store
	ledger Ledger // decorado com circuit breaker
	direct Ledger // sem breaker, usado só pelo fluxo sem chave
	cache  StatusCache
	publ   Publisher
}

func New(log *zap.Logger, store Store, guarded, direct Ledger, cache StatusCache, publ Publisher) *Service {
	return &Service{
		log:    log,
		store:  store,
		ledger: guarded,
		direct: direct,
		cache:  cache,
		publ:   publ,
	}
}

// Transfer processa uma transferência idempotente.
// Replays da mesma chave devolvem o registro existente sem novo efeito colateral.
// Falha do ledger (erro, timeout ou circuito aberto) vira registro com status
// "failure" e nunca sobe como erro pro caller.
func (s *Service) Transfer(ctx context.Context, correlationID string, req *dto.TransferRequest, idempotencyKey string) (*dto.TransferResult, error) {
	if strings.TrimSpace(idempotencyKey) == "" {
		return nil, validator.Errors{{Field: "idempotencyKey", Message: "idempotency key is required"}}
	}
	if errs := validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	s.log.Info("processing transfer",
		zap.String("correlationId", correlationID),
		zap.String("transferId", idempotencyKey),
		zap.Int64("from", *req.FromAccountID),
		zap.Int64("to", *req.ToAccountID),
	)

	if status, ok := s.cache.Get(ctx, idempotencyKey); ok {
		metrics.Duplicates.Inc()
		s.log.Info("duplicate transfer (cache hit)",
			zap.String("correlationId", correlationID),
			zap.String("transferId", idempotencyKey),
		)
		return &dto.TransferResult{TransferID: idempotencyKey, Status: status}, nil
	}

	existing, err := s.store.FindByTransferID(ctx, idempotencyKey)
	if err == nil {
		metrics.Duplicates.Inc()
		s.log.Info("duplicate transfer, returning existing result",
			zap.String("correlationId", correlationID),
			zap.String("transferId", idempotencyKey),
		)
		s.cache.Set(ctx, existing.TransferID, existing.Status, existing.CreatedAt)
		return &dto.TransferResult{TransferID: existing.TransferID, Status: existing.Status}, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup transfer %s: %w", idempotencyKey, err)
	}

	status, lerr := s.ledger.Transfer(ctx, req, idempotencyKey)
	if lerr != nil {
		metrics.Fallbacks.Inc()
		s.log.Warn("ledger unavailable, recording failure outcome",
			zap.String("correlationId", correlationID),
			zap.String("transferId", idempotencyKey),
			zap.Error(lerr),
		)
		status = StatusFailure
	}

	rec := &repo.Record{
		TransferID:    idempotencyKey,
		FromAccountID: *req.FromAccountID,
		ToAccountID:   *req.ToAccountID,
		Amount:        *req.Amount,
		Status:        status,
	}
	saved, created, err := s.store.InsertOrFetch(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("persist transfer %s: %w", idempotencyKey, err)
	}
	if !created {
		// Perdeu a corrida de insert pra outro request com a mesma chave;
		// o registro vencedor é a verdade
		s.log.Info("concurrent duplicate reconciled",
			zap.String("correlationId", correlationID),
			zap.String("transferId", saved.TransferID),
			zap.String("status", saved.Status),
		)
	}

	metrics.Processed.WithLabelValues(saved.Status).Inc()
	s.cache.Set(ctx, saved.TransferID, saved.Status, saved.CreatedAt)
	if created {
		s.publish(ctx, correlationID, saved)
	}

	return &dto.TransferResult{TransferID: saved.TransferID, Status: saved.Status}, nil
}

// TransferOnce é o fluxo sem chave de idempotência: sem lookup, sem breaker,
// sem fallback. Sempre chama o ledger e sempre persiste registro novo com id
// gerado. Sem proteção contra submissão duplicada (at-least-once).
func (s *Service) TransferOnce(ctx context.Context, correlationID string, req *dto.TransferRequest) (*dto.TransferResult, error) {
	if errs := validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	status, err := s.direct.Transfer(ctx, req, "")
	if err != nil {
		return nil, fmt.Errorf("ledger transfer: %w", err)
	}

	rec := &repo.Record{
		TransferID:    uuid.New().String(),
		FromAccountID: *req.FromAccountID,
		ToAccountID:   *req.ToAccountID,
		Amount:        *req.Amount,
		Status:        status,
	}
	saved, err := s.store.Save(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("persist transfer: %w", err)
	}

	metrics.Processed.WithLabelValues(saved.Status).Inc()
	s.cache.Set(ctx, saved.TransferID, saved.Status, saved.CreatedAt)
	s.publish(ctx, correlationID, saved)

	return &dto.TransferResult{TransferID: saved.TransferID, Status: saved.Status}, nil
}

// GetTransferByID retorna o status de uma transferência pela chave
func (s *Service) GetTransferByID(ctx context.Context, correlationID, transferID string) (string, error) {
	if strings.TrimSpace(transferID) == "" {
		return "", validator.Errors{{Field: "transferId", Message: "transferId cannot be null or empty"}}
	}

	if status, ok := s.cache.Get(ctx, transferID); ok {
		return status, nil
	}

	rec, err := s.store.FindByTransferID(ctx, transferID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", repo.ErrNotFound
		}
		return "", fmt.Errorf("lookup transfer %s: %w", transferID, err)
	}

	s.cache.Set(ctx, rec.TransferID, rec.Status, rec.CreatedAt)
	return rec.Status, nil
}

// publish emite transfer_completed; falha de publicação não derruba a operação
func (s *Service) publish(ctx context.Context, correlationID string, saved *repo.Record) {
	err := s.publ.PublishTransferCompleted(ctx, events.TransferCompleted{
		TransferID:    saved.TransferID,
		FromAccountID: saved.FromAccountID,
		ToAccountID:   saved.ToAccountID,
		Amount:        saved.Amount,
		Status:        saved.Status,
		CorrelationID: correlationID,
	})
	if err != nil {
		s.log.Warn("publish transfer_completed",
			zap.String("correlationId", correlationID),
			zap.String("transferId", saved.TransferID),
			zap.Error(err),
		)
	}
}
