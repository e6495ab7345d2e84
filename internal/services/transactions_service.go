package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/api"
	"gastos/internal/core"
)

// ErrInvalidTransaction wraps a domain validation failure on a proxied
// mutation; callers can map it to a client error instead of a backend one.
var ErrInvalidTransaction = errors.New("invalid transaction")

// TransactionsBackend is the slice of the backend client the transaction
// proxy needs. *api.Client satisfies it.
type TransactionsBackend interface {
	TransactionsByTenant(ctx context.Context, tenantID int64, f api.TransactionFilters) ([]core.Transaction, error)
	SharedTransactions(ctx context.Context, tenantID int64, start, end string) ([]core.Transaction, error)
	TransactionsWithInstallments(ctx context.Context, tenantID int64) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, req api.TransactionRequest) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, req api.TransactionRequest) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

// TransactionListFilters selects which backend listing serves a query.
type TransactionListFilters struct {
	StartDate        string
	EndDate          string
	SharedOnly       bool
	WithInstallments bool
}

// TransactionsService proxies transaction listings and mutations to the
// backend. Mutations are validated locally first and announce themselves
// on the refresh exchange so the views get rebuilt.
type TransactionsService struct {
	backend   TransactionsBackend
	publisher RefreshPublisher
}

func NewTransactionsService(backend TransactionsBackend, publisher RefreshPublisher) *TransactionsService {
	return &TransactionsService{backend: backend, publisher: publisher}
}

// List returns the tenant's transactions for the requested slice.
func (s *TransactionsService) List(ctx context.Context, tenantID int64, f TransactionListFilters) ([]core.Transaction, error) {
	switch {
	case f.WithInstallments:
		return s.backend.TransactionsWithInstallments(ctx, tenantID)
	case f.SharedOnly:
		return s.backend.SharedTransactions(ctx, tenantID, f.StartDate, f.EndDate)
	default:
		return s.backend.TransactionsByTenant(ctx, tenantID, api.TransactionFilters{
			StartDate: f.StartDate,
			EndDate:   f.EndDate,
		})
	}
}

// Create registers a transaction on the backend.
func (s *TransactionsService) Create(ctx context.Context, tenantID int64, req api.TransactionRequest) (core.Transaction, error) {
	req.TenantID = tenantID
	if err := validateTransactionRequest(req); err != nil {
		return core.Transaction{}, err
	}
	tx, err := s.backend.CreateTransaction(ctx, req)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.publishChange(ctx, tenantID)
	return tx, nil
}

// Update replaces an existing transaction.
func (s *TransactionsService) Update(ctx context.Context, tenantID, id int64, req api.TransactionRequest) (core.Transaction, error) {
	req.TenantID = tenantID
	if err := validateTransactionRequest(req); err != nil {
		return core.Transaction{}, err
	}
	tx, err := s.backend.UpdateTransaction(ctx, id, req)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.publishChange(ctx, tenantID)
	return tx, nil
}

// Delete removes a transaction.
func (s *TransactionsService) Delete(ctx context.Context, tenantID, id int64) error {
	if err := s.backend.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publishChange(ctx, tenantID)
	return nil
}

// publishChange emits the refresh event. Publish failures do not fail
// the mutation, mirroring MarkPaid.
func (s *TransactionsService) publishChange(ctx context.Context, tenantID int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRefresh(ctx, tenantID, amqp.ReasonTransaction); err != nil {
		slog.ErrorContext(ctx, "Failed to publish refresh message",
			"tenant_id", tenantID,
			"error", err)
	}
}

func validateTransactionRequest(req api.TransactionRequest) error {
	t := core.Transaction{
		TenantID:            req.TenantID,
		UserID:              req.UserID,
		CategoryID:          req.CategoryID,
		PaymentMethodID:     req.PaymentMethodID,
		DestinationMethodID: req.DestinationMethodID,
		Description:         req.Description,
		Amount:              core.CentsFromFloat(req.Amount),
		IsShared:            req.IsShared,
		Type:                core.TransactionType(req.TransactionType),
		HasInstallments:     req.HasInstallments,
		TotalInstallments:   req.TotalInstallments,
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	return nil
}
