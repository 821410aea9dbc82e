package ledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/wallet-transfer-service/internal/transfer-service/dto"
)

func int64p(v int64) *int64       { return &v }
func float64p(v float64) *float64 { return &v }

func testRequest() *dto.TransferRequest {
	return &dto.TransferRequest{
		FromAccountID: int64p(1001),
		ToAccountID:   int64p(1002),
		Amount:        float64p(250.00),
	}
}

func TestClientTransfer(t *testing.T) {
	t.Run("sends idempotency key and returns ledger status", func(t *testing.T) {
		var gotKey, gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get(IdempotencyHeader)
			gotPath = r.URL.Path
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_, _ = w.Write([]byte(`{"status":"success"}`))
		}))
		defer srv.Close()

		c := New(srv.URL, time.Second)
		status, err := c.Transfer(context.Background(), testRequest(), "abc-1")
		require.NoError(t, err)
		assert.Equal(t, "success", status)
		assert.Equal(t, "abc-1", gotKey)
		assert.Equal(t, "/ledger/transfer", gotPath)
	})

	t.Run("omits header when key is empty", func(t *testing.T) {
		var hasHeader bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasHeader = r.Header[IdempotencyHeader]
			_, _ = w.Write([]byte(`{"status":"success"}`))
		}))
		defer srv.Close()

		c := New(srv.URL, time.Second)
		_, err := c.Transfer(context.Background(), testRequest(), "")
		require.NoError(t, err)
		assert.False(t, hasHeader)
	})

	t.Run("5xx surfaces as error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := New(srv.URL, time.Second)
		_, err := c.Transfer(context.Background(), testRequest(), "abc-1")
		assert.ErrorContains(t, err, "ledger transfer http 503")
	})

	t.Run("slow ledger hits client timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			_, _ = w.Write([]byte(`{"status":"success"}`))
		}))
		defer srv.Close()

		c := New(srv.URL, 30*time.Millisecond)
		_, err := c.Transfer(context.Background(), testRequest(), "abc-1")
		assert.Error(t, err)
	})
}
