package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"gastos/internal/api"
	"gastos/internal/core"
	"gastos/internal/services"
)

// transactionView is the JSON shape a transaction is served as.
type transactionView struct {
	ID                  int64      `json:"id"`
	TenantID            int64      `json:"tenantId"`
	UserID              int64      `json:"userId"`
	CategoryID          int64      `json:"categoryId,omitempty"`
	PaymentMethodID     int64      `json:"paymentMethodId"`
	DestinationMethodID int64      `json:"destinationPaymentMethodId,omitempty"`
	Description         string     `json:"description"`
	Amount              core.Money `json:"amount"`
	Date                string     `json:"date,omitempty"`
	IsShared            bool       `json:"isShared"`
	Type                string     `json:"transactionType"`
	HasInstallments     bool       `json:"hasInstallments"`
	TotalInstallments   int        `json:"totalInstallments,omitempty"`
}

func toTransactionView(t core.Transaction) transactionView {
	v := transactionView{
		ID:                  t.ID,
		TenantID:            t.TenantID,
		UserID:              t.UserID,
		CategoryID:          t.CategoryID,
		PaymentMethodID:     t.PaymentMethodID,
		DestinationMethodID: t.DestinationMethodID,
		Description:         t.Description,
		Amount:              t.Amount,
		IsShared:            t.IsShared,
		Type:                string(t.Type),
		HasInstallments:     t.HasInstallments,
		TotalInstallments:   t.TotalInstallments,
	}
	if !t.Date.IsZero() {
		v.Date = t.Date.Format("2006-01-02")
	}
	return v
}

type transactionListResponse struct {
	Transactions []transactionView `json:"transactions"`
}

// handleTransactions serves GET and POST /api/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "método no permitido")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	tenantID := s.tenantID(r)
	q := r.URL.Query()
	filters := services.TransactionListFilters{
		StartDate:        q.Get("startDate"),
		EndDate:          q.Get("endDate"),
		SharedOnly:       q.Get("shared") == "true",
		WithInstallments: q.Get("installments") == "true",
	}

	txs, err := s.transactions.List(r.Context(), tenantID, filters)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list failed", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusBadGateway, "no se pudieron cargar los movimientos")
		return
	}

	resp := transactionListResponse{Transactions: make([]transactionView, len(txs))}
	for i, t := range txs {
		resp.Transactions[i] = toTransactionView(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req api.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de petición no válido")
		return
	}

	tenantID := s.tenantID(r)
	tx, err := s.transactions.Create(r.Context(), tenantID, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransaction) {
			writeError(w, http.StatusBadRequest, "movimiento no válido")
			return
		}
		slog.ErrorContext(r.Context(), "Transaction create failed", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusBadGateway, "no se pudo registrar el movimiento")
		return
	}

	s.flushViewCaches()
	writeJSON(w, http.StatusCreated, toTransactionView(tx))
}

// handleTransactionByID serves PUT and DELETE /api/transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "recurso no encontrado")
		return
	}

	tenantID := s.tenantID(r)
	switch r.Method {
	case http.MethodPut:
		var req api.TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "cuerpo de petición no válido")
			return
		}
		tx, err := s.transactions.Update(r.Context(), tenantID, id, req)
		if err != nil {
			if errors.Is(err, services.ErrInvalidTransaction) {
				writeError(w, http.StatusBadRequest, "movimiento no válido")
				return
			}
			slog.ErrorContext(r.Context(), "Transaction update failed",
				"tenant_id", tenantID,
				"transaction_id", id,
				"error", err)
			writeError(w, http.StatusBadGateway, "no se pudo actualizar el movimiento")
			return
		}
		s.flushViewCaches()
		writeJSON(w, http.StatusOK, toTransactionView(tx))

	case http.MethodDelete:
		if err := s.transactions.Delete(r.Context(), tenantID, id); err != nil {
			slog.ErrorContext(r.Context(), "Transaction delete failed",
				"tenant_id", tenantID,
				"transaction_id", id,
				"error", err)
			writeError(w, http.StatusBadGateway, "no se pudo eliminar el movimiento")
			return
		}
		s.flushViewCaches()
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})

	default:
		w.Header().Set("Allow", "PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "método no permitido")
	}
}
