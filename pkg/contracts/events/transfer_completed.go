package events

// TransferCompleted é publicado após cada transferência atingir estado terminal
// (sucesso ou falha registrada via fallback).
type TransferCompleted struct {
	TransferID    string  `json:"transfer_id"` // idempotency key (ou id gerado no fluxo sem chave)
	FromAccountID int64   `json:"from_account_id"`
	ToAccountID   int64   `json:"to_account_id"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	CorrelationID string  `json:"correlation_id"`
	TsUnixMs      int64   `json:"ts_unix_ms"`
}
