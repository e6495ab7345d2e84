package core

import "sort"

// Debtors returns the shares of members other than the titular owner with
// a positive amount owed, sorted descending by amount. A missing share
// list yields an empty result.
func Debtors(b NonCreditBalance) []UserShare {
	var debtors []UserShare
	for _, s := range b.Shares {
		if s.UserID != b.OwnerID && s.AmountToPay.Cents > 0 {
			debtors = append(debtors, s)
		}
	}
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].AmountToPay.Cents > debtors[j].AmountToPay.Cents
	})
	return debtors
}

// TotalOwed sums every non-owner share, the owner's own share excluded.
func TotalOwed(b NonCreditBalance) Money {
	var total Money
	for _, s := range b.Shares {
		if s.UserID != b.OwnerID {
			total = total.Add(s.AmountToPay)
		}
	}
	return total
}

// OwnerName resolves the titular owner's display name from the share list.
func OwnerName(b NonCreditBalance) string {
	for _, s := range b.Shares {
		if s.UserID == b.OwnerID && s.UserName != "" {
			return s.UserName
		}
	}
	return "Titular"
}
