package memory

import (
	"context"
	"fmt"
	"sync"

	ports "gastos/internal/sheets"
)

// Store is an in-memory ReportWriter used in tests and local runs
// without Google credentials.
type Store struct {
	mu    sync.Mutex
	items []ports.MonthlyReport
}

func New() *Store {
	return &Store{}
}

// WriteMonthly stores the report and returns a synthetic row reference.
func (s *Store) WriteMonthly(_ context.Context, r ports.MonthlyReport) (string, error) {
	if r.Month < 1 || r.Month > 12 {
		return "", fmt.Errorf("invalid month: %d", r.Month)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Reports returns a copy of everything written so far.
func (s *Store) Reports() []ports.MonthlyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.MonthlyReport(nil), s.items...)
}
