package core

import "time"

// InstallmentMonth groups projected installments under one calendar month.
type InstallmentMonth struct {
	Year         int              `json:"year"`
	Month        time.Month       `json:"month"`
	Installments []InstallmentMSI `json:"installments"`
	Total        Money            `json:"total"`
}

// GroupInstallmentsByMonth buckets installments by the calendar month of
// their due date, preserving the order months first appear in the input.
func GroupInstallmentsByMonth(items []InstallmentMSI) []InstallmentMonth {
	type key struct {
		year  int
		month time.Month
	}
	index := make(map[key]int)
	var groups []InstallmentMonth

	for _, it := range items {
		k := key{year: it.DueDate.Year(), month: it.DueDate.Month()}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, InstallmentMonth{Year: k.year, Month: k.month})
		}
		groups[i].Installments = append(groups[i].Installments, it)
		groups[i].Total = groups[i].Total.Add(it.Amount)
	}
	return groups
}

// DueInMonth totals the installments falling due in the given month.
func DueInMonth(items []InstallmentMSI, year int, month time.Month) Money {
	var total Money
	for _, it := range items {
		if it.DueDate.Year() == year && it.DueDate.Month() == month {
			total = total.Add(it.Amount)
		}
	}
	return total
}

// DaysUntil returns the calendar days from now until the due date: 0 on
// the due day itself, negative once the day is behind.
func DaysUntil(due, now time.Time) int {
	d := startOfDay(due).Sub(startOfDay(now))
	return int(d.Hours() / 24)
}

// IsOverdue reports whether the due date is behind the current day.
func IsOverdue(due, now time.Time) bool {
	return DaysUntil(due, now) < 0
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
