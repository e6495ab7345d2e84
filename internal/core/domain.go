package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense       TransactionType = "EXPENSE"
	Income        TransactionType = "INCOME"
	Transfer      TransactionType = "TRANSFER"
	CreditPayment TransactionType = "CREDIT_PAYMENT"
)

const (
	Cash   AccountType = "CASH"
	Debit  AccountType = "DEBIT"
	Credit AccountType = "CREDIT"
)

type (
	TransactionType string

	AccountType string

	Money struct {
		Cents int64 `json:"cents"`
	}

	// Transaction is a tenant-scoped financial event fetched from the backend.
	Transaction struct {
		ID                  int64
		TenantID            int64
		UserID              int64
		CategoryID          int64 // zero for TRANSFER / CREDIT_PAYMENT
		PaymentMethodID     int64
		DestinationMethodID int64 // set only for TRANSFER / CREDIT_PAYMENT
		Description         string
		Amount              Money
		Date                time.Time
		IsShared            bool
		Type                TransactionType
		HasInstallments     bool
		TotalInstallments   int
	}

	Category struct {
		ID       int64
		TenantID int64
		Name     string
		IsActive bool
	}

	// PaymentMethod is a tenant member's account or card. CutDay and
	// PaymentDay are meaningful only when Type is Credit.
	PaymentMethod struct {
		ID         int64
		UserID     int64
		BankName   string
		Alias      string
		Type       AccountType
		CutDay     int
		PaymentDay int
		IsActive   bool
	}

	User struct {
		ID                     int64
		TenantID               int64
		Name                   string
		Email                  string
		ContributionPercentage float64
		IsActive               bool
	}

	Tenant struct {
		ID        int64
		GroupName string
		PlanType  string
		IsActive  bool
	}

	// MonthlyBalance is one tenant-month aggregate as computed by the
	// backend. Sequences are ordered by ascending month.
	MonthlyBalance struct {
		TenantID      int64
		YearMonth     string
		TotalIncome   Money
		TotalExpenses Money
		NetBalance    Money
		IncomeCount   int
		ExpenseCount  int
	}

	// InstallmentMSI is one projected interest-free installment.
	InstallmentMSI struct {
		InstallmentID     int64     `json:"installmentId"`
		TransactionID     int64     `json:"transactionId"`
		Description       string    `json:"description"`
		Amount            Money     `json:"amount"`
		DueDate           time.Time `json:"dueDate"`
		PaymentMethodID   int64     `json:"paymentMethodId"`
		PaymentMethodName string    `json:"paymentMethodName"`
		InstallmentNumber int       `json:"installmentNumber"`
		TotalInstallments int       `json:"totalInstallments"`
		IsPaid            bool      `json:"isPaid"`
	}

	// UserShare is one member's slice of a proportional payment.
	UserShare struct {
		UserID      int64   `json:"userId"`
		UserName    string  `json:"userName"`
		Percentage  float64 `json:"percentage"`
		AmountToPay Money   `json:"amountToPay"`
	}

	// PeriodRef identifies a credit-card billing period.
	PeriodRef struct {
		PaymentMethodID int64  `json:"paymentMethodId"`
		PeriodID        string `json:"periodId"`
	}

	// CardPeriod is a backend-computed per-billing-period snapshot of a
	// credit card, including the proportional split between members.
	CardPeriod struct {
		PaymentMethodID int64       `json:"paymentMethodId"`
		OwnerID         int64       `json:"ownerId"`
		BankName        string      `json:"bankName"`
		Alias           string      `json:"alias"`
		CutDate         time.Time   `json:"cutDate"`
		PaymentDate     time.Time   `json:"paymentDate"`
		TotalDue        Money       `json:"totalDue"`
		Status          string      `json:"status"`
		PaymentStatus   string      `json:"paymentStatus"`
		PeriodID        string      `json:"periodId"`
		Shares          []UserShare `json:"shares"`
	}

	// NonCreditBalance is the debit/cash counterpart of CardPeriod.
	NonCreditBalance struct {
		PaymentMethodID int64
		OwnerID         int64
		BankName        string
		Alias           string
		Type            AccountType
		Balance         Money
		Count           int
		Shares          []UserShare
	}

	// MemberSettlement is one element of the backend's proportional
	// settlement array (one per tenant member).
	MemberSettlement struct {
		UserID          int64  `json:"userId"`
		UserName        string `json:"userName"`
		ExpectedExpense Money  `json:"expectedExpense"`
		ActualExpense   Money  `json:"actualExpense"`
		Difference      Money  `json:"difference"`
	}

	// MethodBalance is a per-payment-method balance snapshot.
	MethodBalance struct {
		PaymentMethodID int64       `json:"paymentMethodId"`
		Name            string      `json:"name"`
		Alias           string      `json:"alias"`
		Type            AccountType `json:"type"`
		Balance         Money       `json:"balance"`
		TotalIncome     Money       `json:"totalIncome"`
		TotalExpenses   Money       `json:"totalExpenses"`
		Count           int         `json:"count"`
	}
)

var (
	ErrNegativeAmount        = errors.New("negative amount")
	ErrEmptyDescription      = errors.New("empty description")
	ErrMissingCategory       = errors.New("missing category")
	ErrUnexpectedCategory    = errors.New("category not allowed for this type")
	ErrMissingDestination    = errors.New("missing destination payment method")
	ErrUnexpectedDestination = errors.New("destination not allowed for this type")
	ErrSameDestination       = errors.New("destination equals source payment method")
	ErrInvalidType           = errors.New("invalid transaction type")
	ErrInvalidCutDay         = errors.New("cut day out of range")
	ErrInvalidPaymentDay     = errors.New("payment day out of range")
)

// Ref returns the billing-period identifier for a card period.
func (p CardPeriod) Ref() PeriodRef {
	return PeriodRef{PaymentMethodID: p.PaymentMethodID, PeriodID: p.PeriodID}
}

// DisplayName prefers the alias over the bank name.
func (p CardPeriod) DisplayName() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.BankName
}

func (t Transaction) Validate() error {
	if t.Amount.Cents < 0 {
		return ErrNegativeAmount
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	switch t.Type {
	case Expense, Income:
		if t.CategoryID == 0 {
			return ErrMissingCategory
		}
		if t.DestinationMethodID != 0 {
			return ErrUnexpectedDestination
		}
	case Transfer, CreditPayment:
		if t.CategoryID != 0 {
			return ErrUnexpectedCategory
		}
		if t.DestinationMethodID == 0 {
			return ErrMissingDestination
		}
		if t.DestinationMethodID == t.PaymentMethodID {
			return ErrSameDestination
		}
	default:
		return ErrInvalidType
	}
	return nil
}

func (m PaymentMethod) Validate() error {
	if m.Type != Credit {
		return nil
	}
	if m.CutDay < 1 || m.CutDay > 31 {
		return ErrInvalidCutDay
	}
	if m.PaymentDay < 1 || m.PaymentDay > 31 {
		return ErrInvalidPaymentDay
	}
	return nil
}
