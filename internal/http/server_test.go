package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gastos/internal/api"
	"gastos/internal/core"
	"gastos/internal/services"
)

type fakeViews struct {
	dashboardCalls int
	dashboardErr   error
	cardsCalls     int
	markPaid       []core.PeriodRef
	markPaidErr    error

	listFilters []services.TransactionListFilters
	created     []api.TransactionRequest
	createErr   error
	updated     []int64
	deleted     []int64
	pmDeleted   []int64
}

func (f *fakeViews) Load(ctx context.Context, tenantID int64, now time.Time) (services.Dashboard, error) {
	f.dashboardCalls++
	if f.dashboardErr != nil {
		return services.Dashboard{}, f.dashboardErr
	}
	return services.Dashboard{
		TenantID: tenantID,
		Month:    "2026-03",
		Summary:  core.RangeSummary{Income: core.Money{Cents: 100000}},
	}, nil
}

func (f *fakeViews) Cards(ctx context.Context, tenantID int64) (services.CardsView, error) {
	f.cardsCalls++
	return services.CardsView{
		Periods: []core.CardPeriod{
			{
				PaymentMethodID: 10,
				OwnerID:         1,
				PeriodID:        "2026-03",
				Shares: []core.UserShare{
					{UserID: 1, UserName: "Ana", AmountToPay: core.Money{Cents: 60000}},
					{UserID: 2, UserName: "Luis", AmountToPay: core.Money{Cents: 40000}},
				},
			},
		},
	}, nil
}

func (f *fakeViews) Settle(ctx context.Context, tenantID, currentUserID int64, selected []core.PeriodRef) (core.CardSettlement, bool, error) {
	view, _ := f.Cards(ctx, tenantID)
	set := make(map[core.PeriodRef]struct{}, len(selected))
	for _, ref := range selected {
		set[ref] = struct{}{}
	}
	settlement, ok := core.SettleCards(view.Periods, set, currentUserID)
	return settlement, ok, nil
}

func (f *fakeViews) PairSettlement(ctx context.Context, tenantID int64, start, end string) (core.PairSettlement, bool, error) {
	return core.PairSettlement{Amount: core.Money{Cents: 5000}}, true, nil
}

func (f *fakeViews) Debit(ctx context.Context, tenantID int64, filters services.DebitFilters) (services.DebitView, error) {
	return services.DebitView{Accounts: []services.DebitAccount{{PaymentMethodID: 1, Name: "Débito"}}}, nil
}

func (f *fakeViews) MSI(ctx context.Context, tenantID int64, months int) (services.MSIView, error) {
	return services.MSIView{}, nil
}

func (f *fakeViews) MarkPaid(ctx context.Context, tenantID int64, ref core.PeriodRef) error {
	if f.markPaidErr != nil {
		return f.markPaidErr
	}
	f.markPaid = append(f.markPaid, ref)
	return nil
}

func (f *fakeViews) List(ctx context.Context, tenantID int64, filters services.TransactionListFilters) ([]core.Transaction, error) {
	f.listFilters = append(f.listFilters, filters)
	return []core.Transaction{
		{ID: 5, TenantID: tenantID, Description: "Súper", Amount: core.Money{Cents: 12500}, Type: core.Expense, CategoryID: 3},
	}, nil
}

func (f *fakeViews) Create(ctx context.Context, tenantID int64, req api.TransactionRequest) (core.Transaction, error) {
	if f.createErr != nil {
		return core.Transaction{}, f.createErr
	}
	f.created = append(f.created, req)
	return core.Transaction{
		ID:          99,
		TenantID:    tenantID,
		Description: req.Description,
		Amount:      core.CentsFromFloat(req.Amount),
		Type:        core.TransactionType(req.TransactionType),
		CategoryID:  req.CategoryID,
	}, nil
}

func (f *fakeViews) Update(ctx context.Context, tenantID, id int64, req api.TransactionRequest) (core.Transaction, error) {
	f.updated = append(f.updated, id)
	return core.Transaction{ID: id, TenantID: tenantID, Description: req.Description, Type: core.TransactionType(req.TransactionType), CategoryID: req.CategoryID}, nil
}

func (f *fakeViews) Delete(ctx context.Context, tenantID, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeViews) PaymentMethods(ctx context.Context, tenantID int64, page, size int) (api.Page[core.PaymentMethod], error) {
	return api.Page[core.PaymentMethod]{
		Items:    []core.PaymentMethod{{ID: 1, UserID: 1, BankName: "BBVA", Type: core.Debit, IsActive: true}},
		Page:     page,
		Size:     size,
		Elements: 1,
	}, nil
}

func (f *fakeViews) CreatePaymentMethod(ctx context.Context, req api.PaymentMethodRequest) (core.PaymentMethod, error) {
	return core.PaymentMethod{ID: 2, UserID: req.UserID, BankName: req.BankName, Type: core.AccountType(req.AccountType)}, nil
}

func (f *fakeViews) UpdatePaymentMethod(ctx context.Context, id int64, req api.PaymentMethodRequest) (core.PaymentMethod, error) {
	return core.PaymentMethod{ID: id, UserID: req.UserID, BankName: req.BankName, Type: core.AccountType(req.AccountType)}, nil
}

func (f *fakeViews) DeletePaymentMethod(ctx context.Context, id int64) error {
	f.pmDeleted = append(f.pmDeleted, id)
	return nil
}

func (f *fakeViews) Users(ctx context.Context, tenantID int64) ([]core.User, error) {
	return []core.User{
		{ID: 1, TenantID: tenantID, Name: "Ana", ContributionPercentage: 60, IsActive: true},
		{ID: 2, TenantID: tenantID, Name: "Luis", ContributionPercentage: 40, IsActive: true},
	}, nil
}

func newTestServer(t *testing.T) (*Server, *fakeViews) {
	t.Helper()
	views := &fakeViews{}
	srv := NewServer(":0", views, views, views, views, 1, time.Minute)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, views
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestDashboardServedAndCached(t *testing.T) {
	srv, views := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var d services.Dashboard
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.TenantID != 1 || d.Summary.Income.Cents != 100000 {
		t.Errorf("dashboard = %+v", d)
	}

	// Second request hits the view cache.
	rec = httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("cached status = %d", rec.Code)
	}
	if views.dashboardCalls != 1 {
		t.Errorf("loader calls = %d, want 1", views.dashboardCalls)
	}
}

func TestDashboardLoadErrorIsBadGateway(t *testing.T) {
	srv, views := newTestServer(t)
	views.dashboardErr = errors.New("backend down")

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["error"] == "" {
		t.Error("error body should carry a message")
	}
}

func TestSettlement(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"currentUserId":1,"periods":[{"paymentMethodId":10,"periodId":"2026-03"}]}`
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports/settlement", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp settlementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.HasSelection || resp.Settlement == nil {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Settlement.OwedToMe.Cents != 40000 {
		t.Errorf("OwedToMe = %d, want 40000", resp.Settlement.OwedToMe.Cents)
	}
}

func TestSettlementEmptySelection(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports/settlement", strings.NewReader(`{"currentUserId":1,"periods":[]}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp settlementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.HasSelection || resp.Settlement != nil {
		t.Errorf("empty selection should not produce a settlement, got %+v", resp)
	}
}

func TestSettlementRequiresUser(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports/settlement", strings.NewReader(`{"periods":[]}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMarkPaidFlushesCaches(t *testing.T) {
	srv, views := newTestServer(t)

	// Prime the dashboard cache.
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if views.dashboardCalls != 1 {
		t.Fatalf("loader calls = %d", views.dashboardCalls)
	}

	rec = httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cards/10/mark-paid", strings.NewReader(`{"periodId":"2026-03"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("mark-paid status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(views.markPaid) != 1 || views.markPaid[0] != (core.PeriodRef{PaymentMethodID: 10, PeriodID: "2026-03"}) {
		t.Errorf("markPaid = %+v", views.markPaid)
	}

	// The cached dashboard must be gone after the mutation.
	rec = httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if views.dashboardCalls != 2 {
		t.Errorf("loader calls after flush = %d, want 2", views.dashboardCalls)
	}
}

func TestMarkPaidValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"bad path", "/api/cards/10/close", `{"periodId":"p"}`, http.StatusNotFound},
		{"bad id", "/api/cards/abc/mark-paid", `{"periodId":"p"}`, http.StatusBadRequest},
		{"missing period", "/api/cards/10/mark-paid", `{}`, http.StatusBadRequest},
		{"bad body", "/api/cards/10/mark-paid", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body)))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/dashboard", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST dashboard status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/settlement", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET settlement status = %d", rec.Code)
	}
}

func TestTenantFromQuery(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard?tenantId=7", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var d services.Dashboard
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.TenantID != 7 {
		t.Errorf("TenantID = %d, want 7", d.TenantID)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestTransactionListDispatchesFilters(t *testing.T) {
	srv, views := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?shared=true&startDate=2026-03-01&endDate=2026-03-31", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if len(views.listFilters) != 1 {
		t.Fatalf("list calls = %d", len(views.listFilters))
	}
	f := views.listFilters[0]
	if !f.SharedOnly || f.StartDate != "2026-03-01" || f.EndDate != "2026-03-31" {
		t.Errorf("filters = %+v", f)
	}

	var resp struct {
		Transactions []transactionView `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Transactions) != 1 || resp.Transactions[0].Description != "Súper" {
		t.Errorf("transactions = %+v", resp.Transactions)
	}
}

func TestCreateTransactionFlushesViewCaches(t *testing.T) {
	srv, views := newTestServer(t)

	// Prime the dashboard cache.
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if views.dashboardCalls != 1 {
		t.Fatalf("loader calls = %d, want 1", views.dashboardCalls)
	}

	body := strings.NewReader(`{"description":"Luz","amount":430.50,"transactionType":"EXPENSE","categoryId":3,"paymentMethodId":1,"userId":1}`)
	rec = httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/transactions", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(views.created) != 1 || views.created[0].Description != "Luz" {
		t.Fatalf("created = %+v", views.created)
	}

	// The mutation must drop the cached dashboard.
	rec = httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if views.dashboardCalls != 2 {
		t.Errorf("loader calls = %d, want 2 after mutation", views.dashboardCalls)
	}
}

func TestCreateTransactionInvalid(t *testing.T) {
	srv, views := newTestServer(t)
	views.createErr = services.ErrInvalidTransaction

	body := strings.NewReader(`{"description":"Luz","amount":-1,"transactionType":"EXPENSE"}`)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/transactions", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(views.created) != 0 {
		t.Errorf("created = %+v, want none", views.created)
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv, views := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/transactions/7", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(views.deleted) != 1 || views.deleted[0] != 7 {
		t.Errorf("deleted = %v", views.deleted)
	}

	rec = httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/transactions/abc", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("bad id status = %d, want 404", rec.Code)
	}
}

func TestPaymentMethodsPage(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payment-methods?page=0&size=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp paymentMethodPage
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].BankName != "BBVA" || resp.Elements != 1 {
		t.Errorf("page = %+v", resp)
	}
}

func TestUsersList(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string][]userView
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp["users"]) != 2 || resp["users"][0].Name != "Ana" {
		t.Errorf("users = %+v", resp["users"])
	}
}
