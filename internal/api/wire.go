package api

import (
	"time"

	"gastos/internal/core"
)

// Wire DTOs mirror the backend's JSON field names. Amounts arrive as
// decimal numbers and are converted to cents at the boundary; missing
// numeric fields decode to 0 and missing arrays to nil.

const dateLayout = "2006-01-02"

type transactionDTO struct {
	ID                  int64   `json:"id"`
	TenantID            int64   `json:"tenantId"`
	UserID              int64   `json:"userId"`
	CategoryID          int64   `json:"categoryId"`
	PaymentMethodID     int64   `json:"paymentMethodId"`
	DestinationMethodID int64   `json:"destinationPaymentMethodId"`
	Description         string  `json:"description"`
	Amount              float64 `json:"amount"`
	Date                string  `json:"date"`
	IsShared            bool    `json:"isShared"`
	TransactionType     string  `json:"transactionType"`
	HasInstallments     bool    `json:"hasInstallments"`
	TotalInstallments   int     `json:"totalInstallments"`
}

type categoryDTO struct {
	ID       int64  `json:"id"`
	TenantID int64  `json:"tenantId"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

type paymentMethodDTO struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	BankName    string `json:"bankName"`
	Alias       string `json:"alias"`
	AccountType string `json:"accountType"`
	CutDay      int    `json:"cutDay"`
	PaymentDay  int    `json:"paymentDay"`
	IsActive    bool   `json:"isActive"`
}

type userDTO struct {
	ID                     int64   `json:"id"`
	TenantID               int64   `json:"tenantId"`
	Name                   string  `json:"name"`
	Email                  string  `json:"email"`
	ContributionPercentage float64 `json:"contributionPercentage"`
	IsActive               bool    `json:"isActive"`
}

type monthlyBalanceDTO struct {
	TenantID                int64   `json:"tenantId"`
	YearMonth               string  `json:"yearMonth"`
	TotalIncome             float64 `json:"totalIncome"`
	TotalExpenses           float64 `json:"totalExpenses"`
	NetBalance              float64 `json:"netBalance"`
	IncomeTransactionCount  int     `json:"incomeTransactionCount"`
	ExpenseTransactionCount int     `json:"expenseTransactionCount"`
}

type installmentDTO struct {
	InstallmentID     int64   `json:"installmentId"`
	TransactionID     int64   `json:"transactionId"`
	Description       string  `json:"transactionDescription"`
	Amount            float64 `json:"installmentAmount"`
	ProjectedDate     string  `json:"projectedDate"`
	PaymentMethodID   int64   `json:"paymentMethodId"`
	PaymentMethodName string  `json:"paymentMethodName"`
	InstallmentNumber int     `json:"installmentNumber"`
	TotalInstallments int     `json:"totalInstallments"`
	IsPaid            bool    `json:"isPaid"`
}

type userShareDTO struct {
	UserID      int64   `json:"userId"`
	UserName    string  `json:"userName"`
	Percentage  float64 `json:"contributionPercentage"`
	AmountToPay float64 `json:"amountToPay"`
}

type cardPeriodDTO struct {
	PaymentMethodID int64          `json:"paymentMethodId"`
	UserID          int64          `json:"userId"`
	BankName        string         `json:"bankName"`
	Alias           string         `json:"alias"`
	CutDate         string         `json:"cutDate"`
	PaymentDate     string         `json:"paymentDate"`
	TotalDue        float64        `json:"totalDue"`
	Status          string         `json:"status"`
	PaymentStatus   string         `json:"paymentStatus"`
	PeriodID        string         `json:"periodId"`
	UserShares      []userShareDTO `json:"userShares"`
}

type nonCreditDTO struct {
	PaymentMethodID  int64          `json:"paymentMethodId"`
	UserID           int64          `json:"userId"`
	BankName         string         `json:"bankName"`
	Alias            string         `json:"alias"`
	AccountType      string         `json:"accountType"`
	CurrentBalance   float64        `json:"currentBalance"`
	TransactionCount int            `json:"transactionCount"`
	UserShares       []userShareDTO `json:"userShares"`
}

type memberSettlementDTO struct {
	UserID          int64   `json:"userId"`
	UserName        string  `json:"userName"`
	ExpectedExpense float64 `json:"expectedExpense"`
	ActualExpense   float64 `json:"actualExpense"`
	Difference      float64 `json:"difference"`
}

type methodBalanceDTO struct {
	PaymentMethodID  int64   `json:"paymentMethodId"`
	Name             string  `json:"paymentMethodName"`
	Alias            string  `json:"alias"`
	AccountType      string  `json:"accountType"`
	Balance          float64 `json:"balance"`
	TotalIncome      float64 `json:"totalIncome"`
	TotalExpenses    float64 `json:"totalExpenses"`
	TransactionCount int     `json:"transactionCount"`
}

// TransactionRequest is the create/update payload.
type TransactionRequest struct {
	TenantID            int64   `json:"tenantId"`
	UserID              int64   `json:"userId"`
	CategoryID          int64   `json:"categoryId,omitempty"`
	PaymentMethodID     int64   `json:"paymentMethodId"`
	DestinationMethodID int64   `json:"destinationPaymentMethodId,omitempty"`
	Description         string  `json:"description"`
	Amount              float64 `json:"amount"`
	Date                string  `json:"date"`
	IsShared            bool    `json:"isShared"`
	TransactionType     string  `json:"transactionType"`
	HasInstallments     bool    `json:"hasInstallments"`
	TotalInstallments   int     `json:"totalInstallments"`
}

// PaymentMethodRequest is the create/update payload.
type PaymentMethodRequest struct {
	UserID      int64  `json:"userId"`
	BankName    string `json:"bankName"`
	AccountType string `json:"accountType"`
	CutDay      int    `json:"cutDay,omitempty"`
	PaymentDay  int    `json:"paymentDay,omitempty"`
	Alias       string `json:"alias,omitempty"`
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	// Full timestamps and bare dates both occur in the wild.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d transactionDTO) toCore() core.Transaction {
	return core.Transaction{
		ID:                  d.ID,
		TenantID:            d.TenantID,
		UserID:              d.UserID,
		CategoryID:          d.CategoryID,
		PaymentMethodID:     d.PaymentMethodID,
		DestinationMethodID: d.DestinationMethodID,
		Description:         d.Description,
		Amount:              core.CentsFromFloat(d.Amount),
		Date:                parseDate(d.Date),
		IsShared:            d.IsShared,
		Type:                core.TransactionType(d.TransactionType),
		HasInstallments:     d.HasInstallments,
		TotalInstallments:   d.TotalInstallments,
	}
}

func (d categoryDTO) toCore() core.Category {
	return core.Category{ID: d.ID, TenantID: d.TenantID, Name: d.Name, IsActive: d.IsActive}
}

func (d paymentMethodDTO) toCore() core.PaymentMethod {
	return core.PaymentMethod{
		ID:         d.ID,
		UserID:     d.UserID,
		BankName:   d.BankName,
		Alias:      d.Alias,
		Type:       core.AccountType(d.AccountType),
		CutDay:     d.CutDay,
		PaymentDay: d.PaymentDay,
		IsActive:   d.IsActive,
	}
}

func (d userDTO) toCore() core.User {
	return core.User{
		ID:                     d.ID,
		TenantID:               d.TenantID,
		Name:                   d.Name,
		Email:                  d.Email,
		ContributionPercentage: d.ContributionPercentage,
		IsActive:               d.IsActive,
	}
}

func (d monthlyBalanceDTO) toCore() core.MonthlyBalance {
	return core.MonthlyBalance{
		TenantID:      d.TenantID,
		YearMonth:     d.YearMonth,
		TotalIncome:   core.CentsFromFloat(d.TotalIncome),
		TotalExpenses: core.CentsFromFloat(d.TotalExpenses),
		NetBalance:    core.CentsFromFloat(d.NetBalance),
		IncomeCount:   d.IncomeTransactionCount,
		ExpenseCount:  d.ExpenseTransactionCount,
	}
}

func (d installmentDTO) toCore() core.InstallmentMSI {
	return core.InstallmentMSI{
		InstallmentID:     d.InstallmentID,
		TransactionID:     d.TransactionID,
		Description:       d.Description,
		Amount:            core.CentsFromFloat(d.Amount),
		DueDate:           parseDate(d.ProjectedDate),
		PaymentMethodID:   d.PaymentMethodID,
		PaymentMethodName: d.PaymentMethodName,
		InstallmentNumber: d.InstallmentNumber,
		TotalInstallments: d.TotalInstallments,
		IsPaid:            d.IsPaid,
	}
}

func (d userShareDTO) toCore() core.UserShare {
	return core.UserShare{
		UserID:      d.UserID,
		UserName:    d.UserName,
		Percentage:  d.Percentage,
		AmountToPay: core.CentsFromFloat(d.AmountToPay),
	}
}

func sharesToCore(dtos []userShareDTO) []core.UserShare {
	if len(dtos) == 0 {
		return nil
	}
	shares := make([]core.UserShare, len(dtos))
	for i, s := range dtos {
		shares[i] = s.toCore()
	}
	return shares
}

func (d cardPeriodDTO) toCore() core.CardPeriod {
	return core.CardPeriod{
		PaymentMethodID: d.PaymentMethodID,
		OwnerID:         d.UserID,
		BankName:        d.BankName,
		Alias:           d.Alias,
		CutDate:         parseDate(d.CutDate),
		PaymentDate:     parseDate(d.PaymentDate),
		TotalDue:        core.CentsFromFloat(d.TotalDue),
		Status:          d.Status,
		PaymentStatus:   d.PaymentStatus,
		PeriodID:        d.PeriodID,
		Shares:          sharesToCore(d.UserShares),
	}
}

func (d nonCreditDTO) toCore() core.NonCreditBalance {
	return core.NonCreditBalance{
		PaymentMethodID: d.PaymentMethodID,
		OwnerID:         d.UserID,
		BankName:        d.BankName,
		Alias:           d.Alias,
		Type:            core.AccountType(d.AccountType),
		Balance:         core.CentsFromFloat(d.CurrentBalance),
		Count:           d.TransactionCount,
		Shares:          sharesToCore(d.UserShares),
	}
}

func (d memberSettlementDTO) toCore() core.MemberSettlement {
	return core.MemberSettlement{
		UserID:          d.UserID,
		UserName:        d.UserName,
		ExpectedExpense: core.CentsFromFloat(d.ExpectedExpense),
		ActualExpense:   core.CentsFromFloat(d.ActualExpense),
		Difference:      core.CentsFromFloat(d.Difference),
	}
}

func (d methodBalanceDTO) toCore() core.MethodBalance {
	return core.MethodBalance{
		PaymentMethodID: d.PaymentMethodID,
		Name:            d.Name,
		Alias:           d.Alias,
		Type:            core.AccountType(d.AccountType),
		Balance:         core.CentsFromFloat(d.Balance),
		TotalIncome:     core.CentsFromFloat(d.TotalIncome),
		TotalExpenses:   core.CentsFromFloat(d.TotalExpenses),
		Count:           d.TransactionCount,
	}
}
