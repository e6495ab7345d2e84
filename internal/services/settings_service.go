package services

import (
	"context"
	"errors"
	"fmt"

	"gastos/internal/api"
	"gastos/internal/core"
)

// ErrInvalidPaymentMethod wraps a domain validation failure on a proxied
// payment-method mutation.
var ErrInvalidPaymentMethod = errors.New("invalid payment method")

// SettingsBackend is the slice of the backend client the settings proxy
// needs. *api.Client satisfies it.
type SettingsBackend interface {
	PaymentMethodsByTenant(ctx context.Context, tenantID int64, page, size int) (api.Page[core.PaymentMethod], error)
	CreatePaymentMethod(ctx context.Context, req api.PaymentMethodRequest) (core.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id int64, req api.PaymentMethodRequest) (core.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, id int64) error
	UsersByTenant(ctx context.Context, tenantID int64) ([]core.User, error)
}

// SettingsService proxies the tenant's payment-method catalogue and
// member listing to the backend.
type SettingsService struct {
	backend SettingsBackend
}

func NewSettingsService(backend SettingsBackend) *SettingsService {
	return &SettingsService{backend: backend}
}

// PaymentMethods returns one page of the tenant's accounts and cards.
func (s *SettingsService) PaymentMethods(ctx context.Context, tenantID int64, page, size int) (api.Page[core.PaymentMethod], error) {
	return s.backend.PaymentMethodsByTenant(ctx, tenantID, page, size)
}

// CreatePaymentMethod registers a new account or card.
func (s *SettingsService) CreatePaymentMethod(ctx context.Context, req api.PaymentMethodRequest) (core.PaymentMethod, error) {
	if err := validatePaymentMethodRequest(req); err != nil {
		return core.PaymentMethod{}, err
	}
	m, err := s.backend.CreatePaymentMethod(ctx, req)
	if err != nil {
		return core.PaymentMethod{}, fmt.Errorf("create payment method: %w", err)
	}
	return m, nil
}

// UpdatePaymentMethod replaces an existing method.
func (s *SettingsService) UpdatePaymentMethod(ctx context.Context, id int64, req api.PaymentMethodRequest) (core.PaymentMethod, error) {
	if err := validatePaymentMethodRequest(req); err != nil {
		return core.PaymentMethod{}, err
	}
	m, err := s.backend.UpdatePaymentMethod(ctx, id, req)
	if err != nil {
		return core.PaymentMethod{}, fmt.Errorf("update payment method: %w", err)
	}
	return m, nil
}

// DeletePaymentMethod removes a method.
func (s *SettingsService) DeletePaymentMethod(ctx context.Context, id int64) error {
	if err := s.backend.DeletePaymentMethod(ctx, id); err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}
	return nil
}

// Users lists the tenant members.
func (s *SettingsService) Users(ctx context.Context, tenantID int64) ([]core.User, error) {
	return s.backend.UsersByTenant(ctx, tenantID)
}

func validatePaymentMethodRequest(req api.PaymentMethodRequest) error {
	m := core.PaymentMethod{
		UserID:     req.UserID,
		BankName:   req.BankName,
		Alias:      req.Alias,
		Type:       core.AccountType(req.AccountType),
		CutDay:     req.CutDay,
		PaymentDay: req.PaymentDay,
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPaymentMethod, err)
	}
	return nil
}
