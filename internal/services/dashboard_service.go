package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/api"
	"gastos/internal/core"
	"gastos/internal/storage"
)

// topCategories is how many breakdown groups the dashboard shows.
const topCategories = 10

// DashboardBackend is the slice of the backend client the dashboard
// needs. *api.Client satisfies it.
type DashboardBackend interface {
	TransactionsByDateRange(ctx context.Context, tenantID int64, start, end string) ([]core.Transaction, error)
	MonthlyBalances(ctx context.Context, tenantID int64, start, end string, mode api.BalanceMode) ([]core.MonthlyBalance, error)
	UpcomingInstallments(ctx context.Context, tenantID int64, months int) ([]core.InstallmentMSI, error)
	CategoriesByTenant(ctx context.Context, tenantID int64, page, size int) (api.Page[core.Category], error)
	BalanceByPaymentMethod(ctx context.Context, tenantID int64, year, month int) ([]core.MethodBalance, error)
}

// Dashboard is the month-to-date view served to the UI and persisted as
// a snapshot. Either everything in it comes from one backend round, or
// the whole value is replaced by a stored snapshot.
type Dashboard struct {
	TenantID       int64                  `json:"tenantId"`
	Month          string                 `json:"month"`
	Summary        core.RangeSummary      `json:"summary"`
	Breakdown      []core.CategoryShare   `json:"breakdown"`
	Comparison     core.MonthComparison   `json:"comparison"`
	Upcoming       []core.InstallmentMonth `json:"upcoming"`
	MethodBalances []core.MethodBalance   `json:"methodBalances"`
	FetchedAt      time.Time              `json:"fetchedAt"`
	Stale          bool                   `json:"stale"`
}

// DashboardService joins the backend fetches the dashboard needs and
// derives its aggregates. Fetches are all-or-nothing: one failure
// discards the whole batch.
type DashboardService struct {
	backend DashboardBackend
	store   *storage.Store
}

func NewDashboardService(backend DashboardBackend, store *storage.Store) *DashboardService {
	return &DashboardService{
		backend: backend,
		store:   store,
	}
}

// Load builds the dashboard for the month containing now. On backend
// failure it falls back to the latest stored snapshot when one exists.
func (s *DashboardService) Load(ctx context.Context, tenantID int64, now time.Time) (Dashboard, error) {
	d, fetchedAt, stale, err := fetchWithSnapshot(ctx, s.store, tenantID, storage.KindDashboard,
		func(ctx context.Context) (Dashboard, error) {
			return s.fetch(ctx, tenantID, now)
		})
	if err != nil {
		return Dashboard{}, err
	}
	d.FetchedAt = fetchedAt
	d.Stale = stale
	return d, nil
}

func (s *DashboardService) fetch(ctx context.Context, tenantID int64, now time.Time) (Dashboard, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	start := monthStart.Format("2006-01-02")
	end := now.Format("2006-01-02")

	var (
		txs          []core.Transaction
		balances     []core.MonthlyBalance
		installments []core.InstallmentMSI
		categories   api.Page[core.Category]
		methods      []core.MethodBalance
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		txs, err = s.backend.TransactionsByDateRange(gctx, tenantID, start, end)
		if err != nil {
			return fmt.Errorf("transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		balances, err = s.backend.MonthlyBalances(gctx, tenantID, "", "", api.Accrual)
		if err != nil {
			return fmt.Errorf("monthly balances: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		installments, err = s.backend.UpcomingInstallments(gctx, tenantID, 0)
		if err != nil {
			return fmt.Errorf("upcoming installments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = s.backend.CategoriesByTenant(gctx, tenantID, 0, 100)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		methods, err = s.backend.BalanceByPaymentMethod(gctx, tenantID, now.Year(), int(now.Month()))
		if err != nil {
			return fmt.Errorf("method balances: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}

	return Dashboard{
		TenantID:       tenantID,
		Month:          monthStart.Format("2006-01"),
		Summary:        core.Summarize(txs),
		Breakdown:      core.BreakdownByCategory(txs, categories.Items, topCategories),
		Comparison:     core.CompareMonths(balances),
		Upcoming:       core.GroupInstallmentsByMonth(installments),
		MethodBalances: methods,
	}, nil
}
