package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gastos/internal/core"
	"gastos/internal/services"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "método no permitido")
		return
	}

	tenantID := s.tenantID(r)
	key := fmt.Sprintf("dashboard:%d", tenantID)
	if d, ok := s.dashCache.Get(key); ok {
		writeJSON(w, http.StatusOK, d)
		return
	}

	d, err := s.dashboards.Load(r.Context(), tenantID, time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard load failed", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusBadGateway, "no se pudo cargar el tablero")
		return
	}

	// Stale fallbacks are not cached so recovery is picked up immediately.
	if !d.Stale {
		s.dashCache.Set(key, d)
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "método no permitido")
		return
	}

	tenantID := s.tenantID(r)
	key := fmt.Sprintf("cards:%d", tenantID)
	if v, ok := s.cardsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, v)
		return
	}

	view, err := s.reports.Cards(r.Context(), tenantID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Cards load failed", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusBadGateway, "no se pudieron cargar las tarjetas")
		return
	}

	if !view.Stale {
		s.cardsCache.Set(key, view)
	}
	writeJSON(w, http.StatusOK, view)
}

type settlementRequest struct {
	CurrentUserID int64            `json:"currentUserId"`
	Periods       []core.PeriodRef `json:"periods"`
}

type settlementResponse struct {
	HasSelection bool                 `json:"hasSelection"`
	Settlement   *core.CardSettlement `json:"settlement,omitempty"`
}

func (s *Server) handleSettlement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "método no permitido")
		return
	}

	var req settlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de petición no válido")
		return
	}
	if req.CurrentUserID == 0 {
		writeError(w, http.StatusBadRequest, "falta currentUserId")
		return
	}

	tenantID := s.tenantID(r)
	settlement, ok, err := s.reports.Settle(r.Context(), tenantID, req.CurrentUserID, req.Periods)
	if err != nil {
		slog.ErrorContext(r.Context(), "Settlement failed", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusBadGateway, "no se pudo calcular la liquidación")
		return
	}

	resp := settlementResponse{HasSelection: ok}
	if ok {
		resp.Settlement = &settlement
	}
	writeJSON(w, http.StatusOK, resp)
}

type pairSettlementResponse struct {
	HasMembers bool                 `json:"hasMembers"`
	Settlement *core.PairSettlement `json:"settlement,omitempty"`
}

func (s *Server) handlePairSettlement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "método no permitido")
		return
	}

	tenantID := s.tenantID(r)
	q := r.URL.Query()
	pair, ok, err := s.reports.PairSettlement(r.Context(), tenantID, q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		slog.ErrorContext(r.Context(), "Pair settlement failed", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusBadGateway, "no se pudo calcular la liquidación")
		return
	}

	resp := pairSettlementResponse{HasMembers: ok}
	if ok {
		resp.Settlement = &pair
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDebit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "método no permitido")
		return
	}

	tenantID := s.tenantID(r)
	q := r.URL.Query()
	filters := services.DebitFilters{
		StartDate:   q.Get("startDate"),
		EndDate:     q.Get("endDate"),
		OwnerID:     queryInt64(r, "ownerId"),
		AccountType: core.AccountType(strings.ToUpper(strings.TrimSpace(q.Get("type")))),
	}

	key := fmt.Sprintf("debit:%d:%s:%s:%d:%s", tenantID, filters.StartDate, filters.EndDate, filters.OwnerID, filters.AccountType)
	if v, ok := s.debitCache.Get(key); ok {
		writeJSON(w, http.StatusOK, v)
		return
	}

	view, err := s.reports.Debit(r.Context(), tenantID, filters)
	if err != nil {
		slog.ErrorContext(r.Context(), "Debit load failed", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusBadGateway, "no se pudieron cargar los saldos")
		return
	}

	if !view.Stale {
		s.debitCache.Set(key, view)
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleMSI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "método no permitido")
		return
	}

	tenantID := s.tenantID(r)
	months := queryInt(r, "months")

	key := fmt.Sprintf("msi:%d:%d", tenantID, months)
	if v, ok := s.msiCache.Get(key); ok {
		writeJSON(w, http.StatusOK, v)
		return
	}

	view, err := s.reports.MSI(r.Context(), tenantID, months)
	if err != nil {
		slog.ErrorContext(r.Context(), "MSI load failed", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusBadGateway, "no se pudieron cargar las mensualidades")
		return
	}

	if !view.Stale {
		s.msiCache.Set(key, view)
	}
	writeJSON(w, http.StatusOK, view)
}

type markPaidRequest struct {
	PeriodID string `json:"periodId"`
}

// handleMarkPaid serves POST /api/cards/{id}/mark-paid.
func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "método no permitido")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/cards/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "mark-paid" {
		writeError(w, http.StatusNotFound, "recurso no encontrado")
		return
	}
	methodID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || methodID <= 0 {
		writeError(w, http.StatusBadRequest, "id de tarjeta no válido")
		return
	}

	var req markPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de petición no válido")
		return
	}
	if strings.TrimSpace(req.PeriodID) == "" {
		writeError(w, http.StatusBadRequest, "falta periodId")
		return
	}

	tenantID := s.tenantID(r)
	ref := core.PeriodRef{PaymentMethodID: methodID, PeriodID: req.PeriodID}
	if err := s.reports.MarkPaid(r.Context(), tenantID, ref); err != nil {
		slog.ErrorContext(r.Context(), "Mark paid failed",
			"tenant_id", tenantID,
			"payment_method_id", methodID,
			"period_id", req.PeriodID,
			"error", err)
		writeError(w, http.StatusBadGateway, "no se pudo marcar el periodo como pagado")
		return
	}

	s.flushViewCaches()
	writeJSON(w, http.StatusOK, map[string]bool{"paid": true})
}
