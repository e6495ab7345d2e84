package core

import "testing"

func expense(cat int64, cents int64) Transaction {
	return Transaction{Type: Expense, CategoryID: cat, Amount: Money{Cents: cents}}
}

func TestBreakdownByCategory(t *testing.T) {
	cats := []Category{{ID: 1, Name: "Comida"}, {ID: 2, Name: "Transporte"}}
	txs := []Transaction{expense(1, 6000), expense(2, 4000)}

	shares := BreakdownByCategory(txs, cats, 10)
	if len(shares) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(shares))
	}
	if shares[0].Name != "Comida" || shares[0].Percentage != 60 {
		t.Fatalf("got %+v", shares[0])
	}
	if shares[1].Name != "Transporte" || shares[1].Percentage != 40 {
		t.Fatalf("got %+v", shares[1])
	}
	if sum := shares[0].Percentage + shares[1].Percentage; sum != 100 {
		t.Fatalf("percentages must sum to 100, got %v", sum)
	}
}

func TestBreakdownUnmatchedCategory(t *testing.T) {
	txs := []Transaction{expense(99, 1000)}
	shares := BreakdownByCategory(txs, nil, 10)
	if len(shares) != 1 || shares[0].Name != UncategorizedBucket {
		t.Fatalf("got %+v", shares)
	}
}

func TestBreakdownZeroTotal(t *testing.T) {
	txs := []Transaction{expense(1, 0)}
	shares := BreakdownByCategory(txs, []Category{{ID: 1, Name: "Comida"}}, 10)
	if len(shares) != 1 {
		t.Fatalf("expected the group to survive, got %d", len(shares))
	}
	if shares[0].Percentage != 0 {
		t.Fatalf("zero total must yield 0%%, got %v", shares[0].Percentage)
	}
}

func TestBreakdownTruncatesAndSkipsNonExpense(t *testing.T) {
	cats := []Category{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}, {ID: 4, Name: "D"}}
	txs := []Transaction{
		expense(1, 100),
		expense(2, 400),
		expense(3, 300),
		expense(4, 200),
		{Type: Income, CategoryID: 1, Amount: Money{Cents: 99999}},
		{Type: Transfer, Amount: Money{Cents: 99999}},
	}
	shares := BreakdownByCategory(txs, cats, 3)
	if len(shares) != 3 {
		t.Fatalf("expected top 3, got %d", len(shares))
	}
	if shares[0].Name != "B" || shares[1].Name != "C" || shares[2].Name != "D" {
		t.Fatalf("got order %q %q %q", shares[0].Name, shares[1].Name, shares[2].Name)
	}
}

func TestBreakdownTieKeepsInsertionOrder(t *testing.T) {
	cats := []Category{{ID: 1, Name: "Primero"}, {ID: 2, Name: "Segundo"}}
	txs := []Transaction{expense(1, 500), expense(2, 500)}
	shares := BreakdownByCategory(txs, cats, 10)
	if shares[0].Name != "Primero" || shares[1].Name != "Segundo" {
		t.Fatalf("ties must keep first-seen order, got %q %q", shares[0].Name, shares[1].Name)
	}
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		{Type: Income, Amount: Money{Cents: 10000}},
		{Type: Expense, Amount: Money{Cents: 3000}},
		{Type: Expense, Amount: Money{Cents: 2000}},
		{Type: Transfer, Amount: Money{Cents: 50000}},
		{Type: CreditPayment, Amount: Money{Cents: 40000}},
	}
	s := Summarize(txs)
	if s.Income.Cents != 10000 || s.Expense.Cents != 5000 || s.Net.Cents != 5000 {
		t.Fatalf("got %+v", s)
	}
}
