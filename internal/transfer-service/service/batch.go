package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/radieske/wallet-transfer-service/internal/transfer-service/dto"
	"github.com/radieske/wallet-transfer-service/internal/transfer-service/validator"
)

// MaxBatchSize é o limite de pares (request, key) por batch
const MaxBatchSize = 20

// TransferBatch processa cada par (request[i], key[i]) de forma concorrente e
// independente, aguarda todos terminarem e devolve os resultados na ordem de
// entrada. Falha de um item nunca aborta o batch: vira resultado de falha
// daquele item. Itens que não puderam ser executados (erro interno, panic,
// requisição inválida) saem com status "error"; falha de ledger registrada sai
// com "failure" como no fluxo unitário.
func (s *Service) TransferBatch(ctx context.Context, correlationID string, reqs []*dto.TransferRequest, keys []string) ([]dto.TransferResult, error) {
	if len(reqs) == 0 {
		return nil, validator.Errors{{Field: "requests", Message: "transfer requests must be non-empty"}}
	}
	if len(reqs) > MaxBatchSize {
		return nil, validator.Errors{{Field: "requests", Message: "batch size must not exceed 20"}}
	}
	if len(reqs) != len(keys) {
		return nil, validator.Errors{{Field: "idempotencyKeys", Message: "the number of idempotency keys must match the number of transfer requests"}}
	}

	results := make([]dto.TransferResult, len(reqs))

	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.processBatchItem(ctx, correlationID, reqs[i], keys[i])
		}(i)
	}
	wg.Wait()

	return results, nil
}

// processBatchItem isola a execução de um item: qualquer erro ou panic vira
// resultado de falha local em vez de derrubar o batch
func (s *Service) processBatchItem(ctx context.Context, correlationID string, req *dto.TransferRequest, key string) (out dto.TransferResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("transfer batch item panic",
				zap.String("correlationId", correlationID),
				zap.String("transferId", key),
				zap.Any("panic", r),
			)
			out = dto.TransferResult{TransferID: key, Status: StatusError}
		}
	}()

	res, err := s.Transfer(ctx, correlationID, req, key)
	if err != nil {
		s.log.Error("transfer batch item failed",
			zap.String("correlationId", correlationID),
			zap.String("transferId", key),
			zap.Error(err),
		)
		return dto.TransferResult{TransferID: key, Status: StatusError}
	}
	return *res
}
