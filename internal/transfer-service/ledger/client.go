package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/radieske/wallet-transfer-service/internal/transfer-service/dto"
)

// IdempotencyHeader é repassado ao ledger pra deduplicação também do lado dele
const IdempotencyHeader = "Idempotency-Key"

// Client encapsula a chamada de transferência atômica do ledger externo.
// Não faz retry nem guarda estado; erro de rede/timeout/5xx sobe pro caller.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type transferResponse struct {
	Status string `json:"status"`
}

// Transfer executa o débito/crédito atômico no ledger e retorna o status reportado.
// idempotencyKey vazio omite o header (fluxo sem deduplicação).
func (c *Client) Transfer(ctx context.Context, r *dto.TransferRequest, idempotencyKey string) (string, error) {
	body, _ := json.Marshal(r)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/ledger/transfer", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set(IdempotencyHeader, idempotencyKey)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return "", fmt.Errorf("ledger transfer http %d", res.StatusCode)
	}

	var out transferResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Status, nil
}
