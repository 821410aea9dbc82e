package dto

// TransferRequest é o payload de criação de transferência
// Campos são ponteiros pra distinguir ausente de inválido na validação
type TransferRequest struct {
	FromAccountID *int64   `json:"fromAccountId"`
	ToAccountID   *int64   `json:"toAccountId"`
	Amount        *float64 `json:"amount"`
}
