package sheets

import (
	"context"

	"gastos/internal/core"
)

// MonthlyReport is the flattened monthly view exported to a spreadsheet.
type MonthlyReport struct {
	Year       int
	Month      int
	Summary    core.RangeSummary
	Breakdown  []core.CategoryShare
	Comparison core.MonthComparison
	Settlement core.PairSettlement
}

// Ports for outbound adapters.
type (
	// ReportWriter appends a monthly report and returns a reference to
	// the written rows.
	ReportWriter interface {
		WriteMonthly(ctx context.Context, r MonthlyReport) (rowRef string, err error)
	}
)
