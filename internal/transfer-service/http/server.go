package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/wallet-transfer-service/internal/transfer-service/dto"
	"github.com/radieske/wallet-transfer-service/internal/transfer-service/service"
	"github.com/radieske/wallet-transfer-service/internal/transfer-service/validator"
)

const (
	idempotencyHeader = "Idempotency-Key"
	correlationHeader = "X-Correlation-Id"
)

// Service define as operações de transferência usadas pelos handlers HTTP
type Service interface {
	Transfer(ctx context.Context, correlationID string, req *dto.TransferRequest, idempotencyKey string) (*dto.TransferResult, error)
	TransferOnce(ctx context.Context, correlationID string, req *dto.TransferRequest) (*dto.TransferResult, error)
	TransferBatch(ctx context.Context, correlationID string, reqs []*dto.TransferRequest, keys []string) ([]dto.TransferResult, error)
	GetTransferByID(ctx context.Context, correlationID, transferID string) (string, error)
}

// Server expõe a API HTTP de transferências
type Server struct {
	log *zap.Logger
	svc Service
}

// NewServer instancia o servidor HTTP de transferências
func NewServer(log *zap.Logger, svc Service) *Server { return &Server{log: log, svc: svc} }

// Router retorna o mux HTTP com as rotas da API
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/transfers", s.createTransfer)          // POST, header Idempotency-Key obrigatório
	mux.HandleFunc("/transfers/once", s.createTransferOnce) // POST, sem deduplicação
	mux.HandleFunc("/transfers/batch", s.createBatch)       // POST, até 20 pares
	mux.HandleFunc("/transfers/", s.getTransferStatus)      // GET /transfers/{id}
	return mux
}

// createTransfer processa uma transferência idempotente
func (s *Server) createTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cid := correlationID(w, r)

	key := r.Header.Get(idempotencyHeader)
	if strings.TrimSpace(key) == "" {
		writeError(w, http.StatusBadRequest, "missing Idempotency-Key header", nil)
		return
	}

	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json", nil)
		return
	}

	res, err := s.svc.Transfer(r.Context(), cid, &req, key)
	if err != nil {
		s.respondError(w, cid, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// createTransferOnce processa uma transferência sem chave de idempotência
// (best effort, at-least-once)
func (s *Server) createTransferOnce(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cid := correlationID(w, r)

	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json", nil)
		return
	}

	res, err := s.svc.TransferOnce(r.Context(), cid, &req)
	if err != nil {
		s.respondError(w, cid, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// createBatch processa até 20 transferências concorrentes, preservando a ordem
func (s *Server) createBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cid := correlationID(w, r)

	var reqs []*dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "bad json", nil)
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "transfer requests must be non-empty", nil)
		return
	}
	if len(reqs) > service.MaxBatchSize {
		writeError(w, http.StatusRequestEntityTooLarge, "batch size must not exceed 20", nil)
		return
	}

	keys := headerList(r, idempotencyHeader)
	if len(keys) != len(reqs) {
		writeError(w, http.StatusBadRequest, "the number of idempotency keys must match the number of transfer requests", nil)
		return
	}

	results, err := s.svc.TransferBatch(r.Context(), cid, reqs, keys)
	if err != nil {
		s.respondError(w, cid, err)
		return
	}
	writeJSON(w, http.StatusCreated, results)
}

// getTransferStatus retorna o status de uma transferência pelo id
func (s *Server) getTransferStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cid := correlationID(w, r)

	// path: /transfers/{id}
	id := strings.TrimPrefix(r.URL.Path, "/transfers/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "transferId required", nil)
		return
	}

	status, err := s.svc.GetTransferByID(r.Context(), cid, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transfer not found with id: "+id, nil)
			return
		}
		s.respondError(w, cid, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferResult{TransferID: id, Status: status})
}

// respondError mapeia erros do serviço pra resposta HTTP:
// erro de validação vira 400 com os campos; o resto vira 500 genérico
func (s *Server) respondError(w http.ResponseWriter, correlationID string, err error) {
	var verrs validator.Errors
	if errors.As(err, &verrs) {
		fields := make([]dto.FieldItem, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, dto.FieldItem{Field: fe.Field, Message: fe.Message})
		}
		writeError(w, http.StatusBadRequest, "invalid transfer request", fields)
		return
	}

	s.log.Error("transfer request failed", zap.String("correlationId", correlationID), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error", nil)
}

// correlationID honra o X-Correlation-Id recebido ou gera um novo,
// sempre ecoando no response
func correlationID(w http.ResponseWriter, r *http.Request) string {
	cid := r.Header.Get(correlationHeader)
	if cid == "" {
		cid = uuid.New().String()
	}
	w.Header().Set(correlationHeader, cid)
	return cid
}

// headerList coleta valores repetidos e/ou separados por vírgula de um header
func headerList(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.Header.Values(name) {
		for _, part := range strings.Split(raw, ",") {
			if v := strings.TrimSpace(part); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError envia resposta de erro padronizada
func writeError(w http.ResponseWriter, code int, msg string, fields []dto.FieldItem) {
	writeJSON(w, code, dto.ErrorResponse{Error: msg, Fields: fields})
}
