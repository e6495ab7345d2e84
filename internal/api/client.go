// Package api is the typed client for the remote finance backend. It owns
// the REST envelope decoding and the wire-to-domain conversions; all
// derived views are computed elsewhere from the returned domain values.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gastos/internal/core"
)

// ErrBackendStatus wraps non-2xx responses from the backend.
var ErrBackendStatus = errors.New("unexpected backend status")

// TransactionFilters narrows tenant transaction listings.
type TransactionFilters struct {
	StartDate       string
	EndDate         string
	Type            core.TransactionType
	CategoryID      int64
	PaymentMethodID int64
	UserID          int64
	IsShared        *bool
}

// BalanceMode selects how the backend attributes amounts to months.
type BalanceMode string

const (
	Accrual BalanceMode = "accrual"
	CashOut BalanceMode = "cash"
)

type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient builds a backend client for a base URL like
// "http://localhost:8080/api/v1".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (*Metadata, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: %w (%d)", path, ErrBackendStatus, resp.StatusCode)
	}
	return decodeEnvelope(resp.Body, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %w (%d)", method, path, ErrBackendStatus, resp.StatusCode)
	}
	_, err = decodeEnvelope(resp.Body, out)
	return err
}

// TransactionsByTenant lists a tenant's transactions with optional filters.
func (c *Client) TransactionsByTenant(ctx context.Context, tenantID int64, f TransactionFilters) ([]core.Transaction, error) {
	q := url.Values{}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	if f.CategoryID != 0 {
		q.Set("categoryId", strconv.FormatInt(f.CategoryID, 10))
	}
	if f.PaymentMethodID != 0 {
		q.Set("paymentMethodId", strconv.FormatInt(f.PaymentMethodID, 10))
	}
	if f.UserID != 0 {
		q.Set("userId", strconv.FormatInt(f.UserID, 10))
	}
	if f.IsShared != nil {
		q.Set("isShared", strconv.FormatBool(*f.IsShared))
	}

	var dtos []transactionDTO
	if _, err := c.get(ctx, fmt.Sprintf("/transactions/tenant/%d", tenantID), q, &dtos); err != nil {
		return nil, err
	}
	txs := make([]core.Transaction, len(dtos))
	for i, d := range dtos {
		txs[i] = d.toCore()
	}
	return txs, nil
}

// TransactionsByDateRange is the dashboard's month-to-date listing.
func (c *Client) TransactionsByDateRange(ctx context.Context, tenantID int64, start, end string) ([]core.Transaction, error) {
	return c.TransactionsByTenant(ctx, tenantID, TransactionFilters{StartDate: start, EndDate: end})
}

// SharedTransactions lists transactions flagged as shared.
func (c *Client) SharedTransactions(ctx context.Context, tenantID int64, start, end string) ([]core.Transaction, error) {
	q := url.Values{}
	if start != "" {
		q.Set("startDate", start)
	}
	if end != "" {
		q.Set("endDate", end)
	}
	var dtos []transactionDTO
	if _, err := c.get(ctx, fmt.Sprintf("/transactions/tenant/%d/shared", tenantID), q, &dtos); err != nil {
		return nil, err
	}
	txs := make([]core.Transaction, len(dtos))
	for i, d := range dtos {
		txs[i] = d.toCore()
	}
	return txs, nil
}

// TransactionsWithInstallments lists installment (MSI) purchases.
func (c *Client) TransactionsWithInstallments(ctx context.Context, tenantID int64) ([]core.Transaction, error) {
	var dtos []transactionDTO
	if _, err := c.get(ctx, fmt.Sprintf("/transactions/tenant/%d/with-installments", tenantID), nil, &dtos); err != nil {
		return nil, err
	}
	txs := make([]core.Transaction, len(dtos))
	for i, d := range dtos {
		txs[i] = d.toCore()
	}
	return txs, nil
}

// CreateTransaction registers a new transaction.
func (c *Client) CreateTransaction(ctx context.Context, req TransactionRequest) (core.Transaction, error) {
	var dto transactionDTO
	if err := c.send(ctx, http.MethodPost, "/transactions", req, &dto); err != nil {
		return core.Transaction{}, err
	}
	return dto.toCore(), nil
}

// UpdateTransaction replaces an existing transaction.
func (c *Client) UpdateTransaction(ctx context.Context, id int64, req TransactionRequest) (core.Transaction, error) {
	var dto transactionDTO
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/transactions/%d", id), req, &dto); err != nil {
		return core.Transaction{}, err
	}
	return dto.toCore(), nil
}

// DeleteTransaction removes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/transactions/%d", id), nil, nil)
}

// CategoriesByTenant returns one page of the tenant's categories.
func (c *Client) CategoriesByTenant(ctx context.Context, tenantID int64, page, size int) (Page[core.Category], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var dtos []categoryDTO
	meta, err := c.get(ctx, fmt.Sprintf("/categories/tenant/%d", tenantID), q, &dtos)
	if err != nil {
		return Page[core.Category]{}, err
	}
	p := Page[core.Category]{Items: make([]core.Category, len(dtos)), Page: page, Size: size}
	for i, d := range dtos {
		p.Items[i] = d.toCore()
	}
	if meta != nil {
		p.Page, p.Size, p.Elements = meta.Page, meta.Size, meta.Elements
	}
	return p, nil
}

// PaymentMethodsByTenant returns one page of the tenant's methods.
func (c *Client) PaymentMethodsByTenant(ctx context.Context, tenantID int64, page, size int) (Page[core.PaymentMethod], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var dtos []paymentMethodDTO
	meta, err := c.get(ctx, fmt.Sprintf("/payment-methods/tenant/%d", tenantID), q, &dtos)
	if err != nil {
		return Page[core.PaymentMethod]{}, err
	}
	p := Page[core.PaymentMethod]{Items: make([]core.PaymentMethod, len(dtos)), Page: page, Size: size}
	for i, d := range dtos {
		p.Items[i] = d.toCore()
	}
	if meta != nil {
		p.Page, p.Size, p.Elements = meta.Page, meta.Size, meta.Elements
	}
	return p, nil
}

// CreatePaymentMethod registers a new account or card.
func (c *Client) CreatePaymentMethod(ctx context.Context, req PaymentMethodRequest) (core.PaymentMethod, error) {
	var dto paymentMethodDTO
	if err := c.send(ctx, http.MethodPost, "/payment-methods", req, &dto); err != nil {
		return core.PaymentMethod{}, err
	}
	return dto.toCore(), nil
}

// UpdatePaymentMethod replaces an existing method.
func (c *Client) UpdatePaymentMethod(ctx context.Context, id int64, req PaymentMethodRequest) (core.PaymentMethod, error) {
	var dto paymentMethodDTO
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/payment-methods/%d", id), req, &dto); err != nil {
		return core.PaymentMethod{}, err
	}
	return dto.toCore(), nil
}

// DeletePaymentMethod removes a method.
func (c *Client) DeletePaymentMethod(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/payment-methods/%d", id), nil, nil)
}

// UsersByTenant lists the tenant members.
func (c *Client) UsersByTenant(ctx context.Context, tenantID int64) ([]core.User, error) {
	var dtos []userDTO
	if _, err := c.get(ctx, fmt.Sprintf("/users/tenant/%d", tenantID), nil, &dtos); err != nil {
		return nil, err
	}
	users := make([]core.User, len(dtos))
	for i, d := range dtos {
		users[i] = d.toCore()
	}
	return users, nil
}

// MonthlyBalances returns ascending tenant-month aggregates.
func (c *Client) MonthlyBalances(ctx context.Context, tenantID int64, start, end string, mode BalanceMode) ([]core.MonthlyBalance, error) {
	q := url.Values{}
	if start != "" {
		q.Set("startDate", start)
	}
	if end != "" {
		q.Set("endDate", end)
	}
	if mode == "" {
		mode = Accrual
	}
	q.Set("mode", string(mode))

	var dtos []monthlyBalanceDTO
	if _, err := c.get(ctx, fmt.Sprintf("/finance-reports/tenant/%d/monthly-balance", tenantID), q, &dtos); err != nil {
		return nil, err
	}
	balances := make([]core.MonthlyBalance, len(dtos))
	for i, d := range dtos {
		balances[i] = d.toCore()
	}
	return balances, nil
}

// ProportionalSettlement returns the per-member settlement array; the
// two-member shape is validated by core.SettlePair, not here.
func (c *Client) ProportionalSettlement(ctx context.Context, tenantID int64, start, end string) ([]core.MemberSettlement, error) {
	q := url.Values{}
	if start != "" {
		q.Set("startDate", start)
	}
	if end != "" {
		q.Set("endDate", end)
	}
	var dtos []memberSettlementDTO
	if _, err := c.get(ctx, fmt.Sprintf("/finance-reports/tenant/%d/proportional-settlement", tenantID), q, &dtos); err != nil {
		return nil, err
	}
	members := make([]core.MemberSettlement, len(dtos))
	for i, d := range dtos {
		members[i] = d.toCore()
	}
	return members, nil
}

// UpcomingInstallments projects installments months ahead (0 = backend
// default).
func (c *Client) UpcomingInstallments(ctx context.Context, tenantID int64, months int) ([]core.InstallmentMSI, error) {
	q := url.Values{}
	if months > 0 {
		q.Set("months", strconv.Itoa(months))
	}
	var dtos []installmentDTO
	if _, err := c.get(ctx, fmt.Sprintf("/finance-reports/tenant/%d/upcoming-installments", tenantID), q, &dtos); err != nil {
		return nil, err
	}
	items := make([]core.InstallmentMSI, len(dtos))
	for i, d := range dtos {
		items[i] = d.toCore()
	}
	return items, nil
}

// OverdueInstallments lists installments past their due date.
func (c *Client) OverdueInstallments(ctx context.Context, tenantID int64) ([]core.InstallmentMSI, error) {
	var dtos []installmentDTO
	if _, err := c.get(ctx, fmt.Sprintf("/finance-reports/tenant/%d/overdue-installments", tenantID), nil, &dtos); err != nil {
		return nil, err
	}
	items := make([]core.InstallmentMSI, len(dtos))
	for i, d := range dtos {
		items[i] = d.toCore()
	}
	return items, nil
}

// CardProportionalPayments returns the per-period card split snapshots.
func (c *Client) CardProportionalPayments(ctx context.Context, tenantID int64) ([]core.CardPeriod, error) {
	var dtos []cardPeriodDTO
	if _, err := c.get(ctx, fmt.Sprintf("/finance-reports/tenant/%d/credit-card-proportional-payments", tenantID), nil, &dtos); err != nil {
		return nil, err
	}
	periods := make([]core.CardPeriod, len(dtos))
	for i, d := range dtos {
		periods[i] = d.toCore()
	}
	return periods, nil
}

// NonCreditProportionalPayments returns debit/cash balance splits.
func (c *Client) NonCreditProportionalPayments(ctx context.Context, tenantID int64, start, end string) ([]core.NonCreditBalance, error) {
	q := url.Values{}
	if start != "" {
		q.Set("startDate", start)
	}
	if end != "" {
		q.Set("endDate", end)
	}
	var dtos []nonCreditDTO
	if _, err := c.get(ctx, fmt.Sprintf("/finance-reports/tenant/%d/non-credit-proportional-payments", tenantID), q, &dtos); err != nil {
		return nil, err
	}
	balances := make([]core.NonCreditBalance, len(dtos))
	for i, d := range dtos {
		balances[i] = d.toCore()
	}
	return balances, nil
}

// BalanceByPaymentMethod returns per-method balances for a month.
func (c *Client) BalanceByPaymentMethod(ctx context.Context, tenantID int64, year, month int) ([]core.MethodBalance, error) {
	q := url.Values{}
	if year > 0 {
		q.Set("year", strconv.Itoa(year))
	}
	if month > 0 {
		q.Set("month", strconv.Itoa(month))
	}
	var dtos []methodBalanceDTO
	if _, err := c.get(ctx, fmt.Sprintf("/finance-reports/tenant/%d/balance-by-payment-method", tenantID), q, &dtos); err != nil {
		return nil, err
	}
	balances := make([]core.MethodBalance, len(dtos))
	for i, d := range dtos {
		balances[i] = d.toCore()
	}
	return balances, nil
}

// MarkCardPeriodPaid marks a billing period as settled.
func (c *Client) MarkCardPeriodPaid(ctx context.Context, ref core.PeriodRef) error {
	payload := map[string]string{"periodId": ref.PeriodID}
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/finance-reports/card-balance/%d/mark-paid", ref.PaymentMethodID), payload, nil)
}
