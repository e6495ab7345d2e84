// Package worker rebuilds tenant snapshots off the request path and
// exports monthly reports to a spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/services"
	"gastos/internal/sheets"
)

// DashboardLoader is implemented by *services.DashboardService.
type DashboardLoader interface {
	Load(ctx context.Context, tenantID int64, now time.Time) (services.Dashboard, error)
}

// ReportsLoader is implemented by *services.ReportsService.
type ReportsLoader interface {
	Cards(ctx context.Context, tenantID int64) (services.CardsView, error)
	Debit(ctx context.Context, tenantID int64, f services.DebitFilters) (services.DebitView, error)
	MSI(ctx context.Context, tenantID int64, months int) (services.MSIView, error)
	PairSettlement(ctx context.Context, tenantID int64, start, end string) (core.PairSettlement, bool, error)
}

// RefreshWorker consumes refresh messages and rebuilds every view for
// the tenant, which also rewrites the stored snapshots.
type RefreshWorker struct {
	dashboards      DashboardLoader
	reports         ReportsLoader
	exporter        sheets.ReportWriter
	defaultTenantID int64
}

func NewRefreshWorker(dashboards DashboardLoader, reports ReportsLoader, exporter sheets.ReportWriter, defaultTenantID int64) *RefreshWorker {
	return &RefreshWorker{
		dashboards:      dashboards,
		reports:         reports,
		exporter:        exporter,
		defaultTenantID: defaultTenantID,
	}
}

// HandleRefresh processes one refresh message. Returning an error makes
// the consumer requeue the message.
func (w *RefreshWorker) HandleRefresh(ctx context.Context, msg *amqp.RefreshMessage) error {
	tenantID := msg.TenantID
	if tenantID == 0 {
		tenantID = w.defaultTenantID
	}

	slog.InfoContext(ctx, "Processing refresh message",
		"tenant_id", tenantID,
		"reason", msg.Reason)

	return w.RefreshTenant(ctx, tenantID)
}

// RefreshTenant rebuilds every view for a tenant.
func (w *RefreshWorker) RefreshTenant(ctx context.Context, tenantID int64) error {
	if _, err := w.dashboards.Load(ctx, tenantID, time.Now()); err != nil {
		return fmt.Errorf("refresh dashboard: %w", err)
	}
	if _, err := w.reports.Cards(ctx, tenantID); err != nil {
		return fmt.Errorf("refresh cards: %w", err)
	}
	if _, err := w.reports.Debit(ctx, tenantID, services.DebitFilters{}); err != nil {
		return fmt.Errorf("refresh debit balances: %w", err)
	}
	if _, err := w.reports.MSI(ctx, tenantID, 0); err != nil {
		return fmt.Errorf("refresh installments: %w", err)
	}

	slog.InfoContext(ctx, "Tenant views refreshed", "tenant_id", tenantID)
	return nil
}

// ExportMonthly writes the tenant's current month to the spreadsheet.
// A nil exporter turns this into a no-op.
func (w *RefreshWorker) ExportMonthly(ctx context.Context, tenantID int64, now time.Time) error {
	if w.exporter == nil {
		return nil
	}

	d, err := w.dashboards.Load(ctx, tenantID, now)
	if err != nil {
		return fmt.Errorf("load dashboard for export: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)
	pair, ok, err := w.reports.PairSettlement(ctx, tenantID,
		monthStart.Format("2006-01-02"), monthEnd.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("load settlement for export: %w", err)
	}

	report := sheets.MonthlyReport{
		Year:       now.Year(),
		Month:      int(now.Month()),
		Summary:    d.Summary,
		Breakdown:  d.Breakdown,
		Comparison: d.Comparison,
	}
	if ok {
		report.Settlement = pair
	}

	ref, err := w.exporter.WriteMonthly(ctx, report)
	if err != nil {
		return fmt.Errorf("export monthly report: %w", err)
	}

	slog.InfoContext(ctx, "Monthly report exported",
		"tenant_id", tenantID,
		"sheets_ref", ref)
	return nil
}
