package validator

import (
	"strings"

	"github.com/radieske/wallet-transfer-service/internal/transfer-service/dto"
)

// FieldError descreve uma violação de validação em um campo da requisição
type FieldError struct {
	Field   string
	Message string
}

// Errors acumula violações; é o erro retornado ao caller em requisições inválidas
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "invalid transfer request: " + strings.Join(msgs, "; ")
}

// Validate checa a requisição de transferência e acumula todas as violações.
// Não tem efeito colateral; requisição nula encerra a checagem de imediato.
func Validate(req *dto.TransferRequest) Errors {
	var errs Errors

	if req == nil {
		return Errors{{Field: "request", Message: "request must not be null"}}
	}

	if req.FromAccountID == nil || *req.FromAccountID <= 0 {
		errs = append(errs, FieldError{Field: "fromAccountId", Message: "fromAccountId is required and must be greater than zero"})
	}
	if req.ToAccountID == nil || *req.ToAccountID <= 0 {
		errs = append(errs, FieldError{Field: "toAccountId", Message: "toAccountId is required and must be greater than zero"})
	}
	if accountsEqual(req.FromAccountID, req.ToAccountID) {
		errs = append(errs, FieldError{Field: "fromAccountId", Message: "fromAccountId and toAccountId must be different"})
	}
	if req.Amount == nil {
		errs = append(errs, FieldError{Field: "amount", Message: "amount is required"})
	}
	if req.Amount != nil && *req.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "amount must be greater than zero"})
	}

	return errs
}

// accountsEqual compara contas tratando ausência dos dois lados como igualdade
func accountsEqual(a, b *int64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
