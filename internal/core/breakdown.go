package core

import "sort"

// UncategorizedBucket collects expenses whose category id has no match.
const UncategorizedBucket = "Otros"

// CategoryShare is one ranked entry of the expense breakdown.
type CategoryShare struct {
	Name       string  `json:"name"`
	Amount     Money   `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// BreakdownByCategory groups EXPENSE transactions by resolved category
// name, ranks the groups by summed amount and truncates to the top n.
// Percentages are of the total expense, 0 when the total is 0. Ties keep
// the first-seen order of the category names.
func BreakdownByCategory(txs []Transaction, categories []Category, n int) []CategoryShare {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	var (
		order  []string
		groups = make(map[string]Money)
		total  Money
	)
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		name, ok := names[t.CategoryID]
		if !ok || name == "" {
			name = UncategorizedBucket
		}
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = groups[name].Add(t.Amount)
		total = total.Add(t.Amount)
	}

	shares := make([]CategoryShare, 0, len(order))
	for _, name := range order {
		amount := groups[name]
		var pct float64
		if !total.IsZero() {
			pct = float64(amount.Cents) / float64(total.Cents) * 100
		}
		shares = append(shares, CategoryShare{Name: name, Amount: amount, Percentage: pct})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Amount.Cents > shares[j].Amount.Cents
	})
	if n > 0 && len(shares) > n {
		shares = shares[:n]
	}
	return shares
}

// RangeSummary is the income/expense/net aggregate over a fetched range.
type RangeSummary struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Net     Money `json:"net"`
}

// Summarize totals income and expense transactions; transfers and credit
// payments move money between accounts and are excluded.
func Summarize(txs []Transaction) RangeSummary {
	var s RangeSummary
	for _, t := range txs {
		switch t.Type {
		case Income:
			s.Income = s.Income.Add(t.Amount)
		case Expense:
			s.Expense = s.Expense.Add(t.Amount)
		}
	}
	s.Net = s.Income.Sub(s.Expense)
	return s
}
