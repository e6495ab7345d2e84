package core

import "testing"

func TestDebtors(t *testing.T) {
	b := NonCreditBalance{
		OwnerID: 10,
		Shares: []UserShare{
			{UserID: 10, UserName: "Ana", AmountToPay: Money{Cents: 0}},
			{UserID: 20, UserName: "Luis", AmountToPay: Money{Cents: 12000}},
		},
	}
	debtors := Debtors(b)
	if len(debtors) != 1 {
		t.Fatalf("expected 1 debtor, got %d", len(debtors))
	}
	if debtors[0].UserID != 20 || debtors[0].AmountToPay.Cents != 12000 {
		t.Fatalf("got %+v", debtors[0])
	}
	if owed := TotalOwed(b); owed.Cents != 12000 {
		t.Fatalf("got total owed=%d", owed.Cents)
	}
}

func TestDebtorsSortedDescending(t *testing.T) {
	b := NonCreditBalance{
		OwnerID: 10,
		Shares: []UserShare{
			{UserID: 20, AmountToPay: Money{Cents: 500}},
			{UserID: 30, AmountToPay: Money{Cents: 2500}},
			{UserID: 40, AmountToPay: Money{Cents: 1500}},
		},
	}
	debtors := Debtors(b)
	if len(debtors) != 3 {
		t.Fatalf("expected 3 debtors, got %d", len(debtors))
	}
	if debtors[0].UserID != 30 || debtors[1].UserID != 40 || debtors[2].UserID != 20 {
		t.Fatalf("got order %d %d %d", debtors[0].UserID, debtors[1].UserID, debtors[2].UserID)
	}
}

func TestDebtorsSkipsZeroAndOwner(t *testing.T) {
	b := NonCreditBalance{
		OwnerID: 10,
		Shares: []UserShare{
			{UserID: 10, AmountToPay: Money{Cents: 9000}}, // owner's own share
			{UserID: 20, AmountToPay: Money{Cents: 0}},
		},
	}
	if debtors := Debtors(b); len(debtors) != 0 {
		t.Fatalf("expected no debtors, got %+v", debtors)
	}
	// The owner's share never counts toward the owed total; zero shares do.
	if owed := TotalOwed(b); owed.Cents != 0 {
		t.Fatalf("got total owed=%d", owed.Cents)
	}
}

func TestDebtorsEmptyShares(t *testing.T) {
	b := NonCreditBalance{OwnerID: 10}
	if debtors := Debtors(b); len(debtors) != 0 {
		t.Fatalf("expected empty result, got %+v", debtors)
	}
	if owed := TotalOwed(b); owed.Cents != 0 {
		t.Fatalf("got total owed=%d", owed.Cents)
	}
	if name := OwnerName(b); name != "Titular" {
		t.Fatalf("got owner name=%q", name)
	}
}
