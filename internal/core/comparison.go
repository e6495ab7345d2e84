package core

// MonthComparison is the current-vs-previous-month delta over an
// ascending-by-month balance sequence.
type MonthComparison struct {
	Current       Money   `json:"current"`
	Previous      Money   `json:"previous"`
	Change        Money   `json:"change"`
	PercentChange float64 `json:"percentChange"`
	Positive      bool    `json:"positive"`
}

// CompareMonths derives the comparison from the last two entries of an
// ascending sequence. Missing entries count as zero, and a zero previous
// balance yields a 0% change instead of dividing by zero.
func CompareMonths(balances []MonthlyBalance) MonthComparison {
	var current, previous Money
	if n := len(balances); n > 0 {
		current = balances[n-1].NetBalance
		if n > 1 {
			previous = balances[n-2].NetBalance
		}
	}

	change := current.Sub(previous)
	var percent float64
	if !previous.IsZero() {
		percent = float64(change.Cents) / float64(previous.Abs().Cents) * 100
	}
	return MonthComparison{
		Current:       current,
		Previous:      previous,
		Change:        change,
		PercentChange: percent,
		Positive:      change.Cents >= 0,
	}
}
