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

type paymentMethodView struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	BankName    string `json:"bankName"`
	Alias       string `json:"alias,omitempty"`
	AccountType string `json:"accountType"`
	CutDay      int    `json:"cutDay,omitempty"`
	PaymentDay  int    `json:"paymentDay,omitempty"`
	IsActive    bool   `json:"isActive"`
}

func toPaymentMethodView(m core.PaymentMethod) paymentMethodView {
	return paymentMethodView{
		ID:          m.ID,
		UserID:      m.UserID,
		BankName:    m.BankName,
		Alias:       m.Alias,
		AccountType: string(m.Type),
		CutDay:      m.CutDay,
		PaymentDay:  m.PaymentDay,
		IsActive:    m.IsActive,
	}
}

type paymentMethodPage struct {
	Items    []paymentMethodView `json:"items"`
	Page     int                 `json:"page"`
	Size     int                 `json:"size"`
	Elements int                 `json:"elements"`
}

type userView struct {
	ID                     int64   `json:"id"`
	TenantID               int64   `json:"tenantId"`
	Name                   string  `json:"name"`
	Email                  string  `json:"email"`
	ContributionPercentage float64 `json:"contributionPercentage"`
	IsActive               bool    `json:"isActive"`
}

// handlePaymentMethods serves GET and POST /api/payment-methods.
func (s *Server) handlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listPaymentMethods(w, r)
	case http.MethodPost:
		s.createPaymentMethod(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "método no permitido")
	}
}

func (s *Server) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	tenantID := s.tenantID(r)
	page := queryInt(r, "page")
	size := queryInt(r, "size")
	if size <= 0 {
		size = 20
	}

	p, err := s.settings.PaymentMethods(r.Context(), tenantID, page, size)
	if err != nil {
		slog.ErrorContext(r.Context(), "Payment method list failed", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusBadGateway, "no se pudieron cargar los métodos de pago")
		return
	}

	resp := paymentMethodPage{
		Items:    make([]paymentMethodView, len(p.Items)),
		Page:     p.Page,
		Size:     p.Size,
		Elements: p.Elements,
	}
	for i, m := range p.Items {
		resp.Items[i] = toPaymentMethodView(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req api.PaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de petición no válido")
		return
	}

	m, err := s.settings.CreatePaymentMethod(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPaymentMethod) {
			writeError(w, http.StatusBadRequest, "método de pago no válido")
			return
		}
		slog.ErrorContext(r.Context(), "Payment method create failed", "error", err)
		writeError(w, http.StatusBadGateway, "no se pudo registrar el método de pago")
		return
	}

	s.flushViewCaches()
	writeJSON(w, http.StatusCreated, toPaymentMethodView(m))
}

// handlePaymentMethodByID serves PUT and DELETE /api/payment-methods/{id}.
func (s *Server) handlePaymentMethodByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/payment-methods/")
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "recurso no encontrado")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req api.PaymentMethodRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "cuerpo de petición no válido")
			return
		}
		m, err := s.settings.UpdatePaymentMethod(r.Context(), id, req)
		if err != nil {
			if errors.Is(err, services.ErrInvalidPaymentMethod) {
				writeError(w, http.StatusBadRequest, "método de pago no válido")
				return
			}
			slog.ErrorContext(r.Context(), "Payment method update failed",
				"payment_method_id", id,
				"error", err)
			writeError(w, http.StatusBadGateway, "no se pudo actualizar el método de pago")
			return
		}
		s.flushViewCaches()
		writeJSON(w, http.StatusOK, toPaymentMethodView(m))

	case http.MethodDelete:
		if err := s.settings.DeletePaymentMethod(r.Context(), id); err != nil {
			slog.ErrorContext(r.Context(), "Payment method delete failed",
				"payment_method_id", id,
				"error", err)
			writeError(w, http.StatusBadGateway, "no se pudo eliminar el método de pago")
			return
		}
		s.flushViewCaches()
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})

	default:
		w.Header().Set("Allow", "PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "método no permitido")
	}
}

// handleUsers serves GET /api/users.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "método no permitido")
		return
	}

	tenantID := s.tenantID(r)
	users, err := s.settings.Users(r.Context(), tenantID)
	if err != nil {
		slog.ErrorContext(r.Context(), "User list failed", "tenant_id", tenantID, "error", err)
		writeError(w, http.StatusBadGateway, "no se pudieron cargar los miembros")
		return
	}

	views := make([]userView, len(users))
	for i, u := range users {
		views[i] = userView{
			ID:                     u.ID,
			TenantID:               u.TenantID,
			Name:                   u.Name,
			Email:                  u.Email,
			ContributionPercentage: u.ContributionPercentage,
			IsActive:               u.IsActive,
		}
	}
	writeJSON(w, http.StatusOK, map[string][]userView{"users": views})
}
