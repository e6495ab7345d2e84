package core

import (
	"errors"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	base := Transaction{
		Description:     "super",
		Amount:          Money{Cents: 1500},
		Date:            time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		PaymentMethodID: 1,
	}

	cases := []struct {
		name string
		mut  func(*Transaction)
		err  error
	}{
		{"expense ok", func(tx *Transaction) { tx.Type = Expense; tx.CategoryID = 3 }, nil},
		{"income ok", func(tx *Transaction) { tx.Type = Income; tx.CategoryID = 3 }, nil},
		{"transfer ok", func(tx *Transaction) { tx.Type = Transfer; tx.DestinationMethodID = 2 }, nil},
		{"credit payment ok", func(tx *Transaction) { tx.Type = CreditPayment; tx.DestinationMethodID = 2 }, nil},
		{"negative amount", func(tx *Transaction) { tx.Type = Expense; tx.CategoryID = 3; tx.Amount = Money{Cents: -1} }, ErrNegativeAmount},
		{"blank description", func(tx *Transaction) { tx.Type = Expense; tx.CategoryID = 3; tx.Description = "  " }, ErrEmptyDescription},
		{"expense without category", func(tx *Transaction) { tx.Type = Expense }, ErrMissingCategory},
		{"expense with destination", func(tx *Transaction) { tx.Type = Expense; tx.CategoryID = 3; tx.DestinationMethodID = 2 }, ErrUnexpectedDestination},
		{"transfer with category", func(tx *Transaction) { tx.Type = Transfer; tx.CategoryID = 3; tx.DestinationMethodID = 2 }, ErrUnexpectedCategory},
		{"transfer without destination", func(tx *Transaction) { tx.Type = Transfer }, ErrMissingDestination},
		{"transfer to itself", func(tx *Transaction) { tx.Type = Transfer; tx.DestinationMethodID = 1 }, ErrSameDestination},
		{"unknown type", func(tx *Transaction) { tx.Type = "LOAN" }, ErrInvalidType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := base
			tc.mut(&tx)
			err := tx.Validate()
			if !errors.Is(err, tc.err) {
				t.Fatalf("got %v, want %v", err, tc.err)
			}
		})
	}
}

func TestPaymentMethodValidate(t *testing.T) {
	if err := (PaymentMethod{Type: Cash}).Validate(); err != nil {
		t.Fatalf("cut days are not required for cash: %v", err)
	}
	if err := (PaymentMethod{Type: Debit, CutDay: 99}).Validate(); err != nil {
		t.Fatalf("cut days are ignored for debit: %v", err)
	}
	if err := (PaymentMethod{Type: Credit, CutDay: 15, PaymentDay: 5}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (PaymentMethod{Type: Credit, CutDay: 0, PaymentDay: 5}).Validate(); !errors.Is(err, ErrInvalidCutDay) {
		t.Fatalf("got %v", err)
	}
	if err := (PaymentMethod{Type: Credit, CutDay: 15, PaymentDay: 32}).Validate(); !errors.Is(err, ErrInvalidPaymentDay) {
		t.Fatalf("got %v", err)
	}
}

func TestMoneyHelpers(t *testing.T) {
	if m := CentsFromFloat(12.34); m.Cents != 1234 {
		t.Fatalf("got %d", m.Cents)
	}
	// 0.1+0.2 is the classic binary float artifact; rounding must absorb it.
	if m := CentsFromFloat(0.1 + 0.2); m.Cents != 30 {
		t.Fatalf("got %d", m.Cents)
	}
	if m := (Money{Cents: -150}).Abs(); m.Cents != 150 {
		t.Fatalf("got %d", m.Cents)
	}
	if v := (Money{Cents: 1234}).Float(); v != 12.34 {
		t.Fatalf("got %v", v)
	}
}
