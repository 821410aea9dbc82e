package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/wallet-transfer-service/internal/transfer-service/dto"
	"github.com/radieske/wallet-transfer-service/internal/transfer-service/validator"
)

func batchRequests(n int) ([]*dto.TransferRequest, []string) {
	reqs := make([]*dto.TransferRequest, n)
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		reqs[i] = &dto.TransferRequest{
			FromAccountID: int64p(int64(1001 + i)),
			ToAccountID:   int64p(int64(2001 + i)),
			Amount:        float64p(100),
		}
		keys[i] = "key-" + string(rune('a'+i))
	}
	return reqs, keys
}

func TestTransferBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("results preserve input order even when the middle item is slowest", func(t *testing.T) {
		svc, d := newService(t)
		d.ledger.fn = func(key string) (string, error) {
			if key == "key-b" {
				time.Sleep(50 * time.Millisecond)
			}
			return StatusSuccess, nil
		}

		reqs, keys := batchRequests(3)
		results, err := svc.TransferBatch(ctx, "corr-1", reqs, keys)
		require.NoError(t, err)
		require.Len(t, results, 3)
		for i, res := range results {
			assert.Equal(t, keys[i], res.TransferID)
			assert.Equal(t, StatusSuccess, res.Status)
		}
	})

	t.Run("unexpected failure in one item does not affect the others", func(t *testing.T) {
		svc, d := newService(t)
		d.ledger.fn = func(key string) (string, error) {
			if key == "key-b" {
				panic("boom")
			}
			return StatusSuccess, nil
		}

		reqs, keys := batchRequests(3)
		results, err := svc.TransferBatch(ctx, "corr-1", reqs, keys)
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, dto.TransferResult{TransferID: "key-a", Status: StatusSuccess}, results[0])
		assert.Equal(t, dto.TransferResult{TransferID: "key-b", Status: StatusError}, results[1])
		assert.Equal(t, dto.TransferResult{TransferID: "key-c", Status: StatusSuccess}, results[2])
	})

	t.Run("ledger failure items carry the recorded failure status", func(t *testing.T) {
		svc, d := newService(t)
		d.ledger.fn = func(key string) (string, error) {
			if key == "key-b" {
				return "", context.DeadlineExceeded
			}
			return StatusSuccess, nil
		}

		reqs, keys := batchRequests(3)
		results, err := svc.TransferBatch(ctx, "corr-1", reqs, keys)
		require.NoError(t, err)
		assert.Equal(t, StatusFailure, results[1].Status)
		assert.Equal(t, "key-b", results[1].TransferID)

		// falha de ledger é registrada, diferente do item não executado
		rec, ferr := d.store.FindByTransferID(ctx, "key-b")
		require.NoError(t, ferr)
		assert.Equal(t, StatusFailure, rec.Status)
	})

	t.Run("mismatched key count is a caller error", func(t *testing.T) {
		svc, _ := newService(t)
		reqs, keys := batchRequests(3)
		_, err := svc.TransferBatch(ctx, "corr-1", reqs, keys[:2])
		var verrs validator.Errors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("oversized batch is a caller error", func(t *testing.T) {
		svc, _ := newService(t)
		reqs, keys := batchRequests(MaxBatchSize + 1)
		_, err := svc.TransferBatch(ctx, "corr-1", reqs, keys)
		var verrs validator.Errors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("empty batch is a caller error", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.TransferBatch(ctx, "corr-1", nil, nil)
		var verrs validator.Errors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("duplicate keys inside a batch collapse into one record", func(t *testing.T) {
		svc, d := newService(t)
		reqs, _ := batchRequests(2)
		results, err := svc.TransferBatch(ctx, "corr-1", reqs, []string{"same", "same"})
		require.NoError(t, err)
		assert.Equal(t, results[0].Status, results[1].Status)
		assert.Equal(t, 1, d.store.count())
	})
}
