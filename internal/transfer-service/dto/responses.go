package dto

// TransferResult é a resposta de uma transferência processada
type TransferResult struct {
	TransferID string `json:"transferId"`
	Status     string `json:"status"`
}

// ErrorResponse padroniza respostas de erro da API
type ErrorResponse struct {
	Error  string      `json:"error"`
	Fields []FieldItem `json:"fields,omitempty"`
}

// FieldItem descreve um erro de validação de campo
type FieldItem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
