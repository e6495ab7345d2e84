package core

import "fmt"

// FallbackPartnerName is used when no selected period carries a share for
// the other tenant member.
const FallbackPartnerName = "Pareja"

// CardSettlement is the net proportional debt between the current user and
// the other tenant member across a set of selected billing periods.
type CardSettlement struct {
	PartnerName   string `json:"partnerName"`
	OwedToMe      Money  `json:"owedToMe"`
	IOwe          Money  `json:"iOwe"`
	NetDifference Money  `json:"netDifference"`
	Message       string `json:"message"`
}

// SettleCards computes the net card debt between exactly two tenant members
// over the periods whose ref is in selected. The second return value is
// false when the selection is empty, which is distinct from a settlement
// with a zero net difference.
//
// For each selected period: if the current user owns the card, the partner
// owes their share; otherwise the current user owes their own share.
// Missing shares count as zero, so irregular share lists never fail.
func SettleCards(periods []CardPeriod, selected map[PeriodRef]struct{}, currentUserID int64) (CardSettlement, bool) {
	var (
		owedToMe    Money
		iOwe        Money
		partnerName = FallbackPartnerName
		any         bool
	)

	for _, p := range periods {
		if _, ok := selected[p.Ref()]; !ok {
			continue
		}
		any = true

		var myShare, partnerShare Money
		for _, s := range p.Shares {
			if s.UserID == currentUserID {
				myShare = s.AmountToPay
				continue
			}
			// Partner name comes from the first selected period that
			// yields a non-current-user share. A single fixed counterpart
			// per tenant is assumed; shares beyond the second member are
			// folded into the partner total.
			if partnerName == FallbackPartnerName && s.UserName != "" {
				partnerName = s.UserName
			}
			partnerShare = partnerShare.Add(s.AmountToPay)
		}

		if p.OwnerID == currentUserID {
			owedToMe = owedToMe.Add(partnerShare)
		} else {
			iOwe = iOwe.Add(myShare)
		}
	}

	if !any {
		return CardSettlement{}, false
	}

	diff := owedToMe.Sub(iOwe)
	s := CardSettlement{
		PartnerName:   partnerName,
		OwedToMe:      owedToMe,
		IOwe:          iOwe,
		NetDifference: diff.Abs(),
	}
	switch {
	case diff.IsZero():
		s.Message = "Están a mano"
	case diff.Cents > 0:
		s.Message = fmt.Sprintf("%s te debe", partnerName)
	default:
		s.Message = fmt.Sprintf("Tú le debes a %s", partnerName)
	}
	return s, true
}

// PairSettlement is the backend proportional settlement reduced to the
// two-member domain shape.
type PairSettlement struct {
	First  MemberSettlement `json:"first"`
	Second MemberSettlement `json:"second"`
	// Amount the member with the negative difference owes the other.
	Amount  Money  `json:"amount"`
	Message string `json:"message"`
}

// SettlePair folds the backend settlement array into a PairSettlement.
// The backend contract is a two-element array, one per tenant member;
// any other shape degrades to a neutral result with ok=false rather
// than failing.
func SettlePair(members []MemberSettlement) (PairSettlement, bool) {
	if len(members) != 2 {
		return PairSettlement{}, false
	}
	p := PairSettlement{First: members[0], Second: members[1]}
	debtor, creditor := members[1], members[0]
	if members[0].Difference.Cents < 0 {
		debtor, creditor = members[0], members[1]
	}
	p.Amount = debtor.Difference.Abs()
	if p.Amount.IsZero() {
		p.Message = "Están a mano"
	} else {
		p.Message = fmt.Sprintf("%s le debe a %s", debtor.UserName, creditor.UserName)
	}
	return p, true
}
