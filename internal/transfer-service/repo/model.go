package repo

import "time"

// Record é o registro persistido de uma transferência com estado terminal.
// Escrito uma única vez; nunca atualizado; removido só pelo sweeper de retenção.
type Record struct {
	ID            int64
	TransferID    string // idempotency key, único
	FromAccountID int64
	ToAccountID   int64
	Amount        float64
	Status        string
	Version       int64
	CreatedAt     time.Time
}
