package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/storage"
)

// ReportsBackend is the slice of the backend client the report views
// need. *api.Client satisfies it.
type ReportsBackend interface {
	CardProportionalPayments(ctx context.Context, tenantID int64) ([]core.CardPeriod, error)
	NonCreditProportionalPayments(ctx context.Context, tenantID int64, start, end string) ([]core.NonCreditBalance, error)
	UpcomingInstallments(ctx context.Context, tenantID int64, months int) ([]core.InstallmentMSI, error)
	OverdueInstallments(ctx context.Context, tenantID int64) ([]core.InstallmentMSI, error)
	ProportionalSettlement(ctx context.Context, tenantID int64, start, end string) ([]core.MemberSettlement, error)
	MarkCardPeriodPaid(ctx context.Context, ref core.PeriodRef) error
}

// CardsView lists the credit-card billing periods for a tenant.
type CardsView struct {
	Periods   []core.CardPeriod `json:"periods"`
	FetchedAt time.Time         `json:"fetchedAt"`
	Stale     bool              `json:"stale"`
}

// DebitFilters narrows the debit/cash view.
type DebitFilters struct {
	StartDate   string
	EndDate     string
	OwnerID     int64
	AccountType core.AccountType
}

// DebitAccount is one non-credit account with its debtor breakdown.
type DebitAccount struct {
	PaymentMethodID int64            `json:"paymentMethodId"`
	Name            string           `json:"name"`
	OwnerName       string           `json:"ownerName"`
	Type            core.AccountType `json:"type"`
	Balance         core.Money       `json:"balance"`
	Count           int              `json:"count"`
	Debtors         []core.UserShare `json:"debtors"`
	TotalOwed       core.Money       `json:"totalOwed"`
}

// DebitView is the debit/cash balances report.
type DebitView struct {
	Accounts  []DebitAccount `json:"accounts"`
	FetchedAt time.Time      `json:"fetchedAt"`
	Stale     bool           `json:"stale"`
}

// OverdueInstallment is an overdue installment annotated with how many
// days it has been due.
type OverdueInstallment struct {
	core.InstallmentMSI
	DaysOverdue int `json:"daysOverdue"`
}

// MSIView is the installment projection report.
type MSIView struct {
	Months    []core.InstallmentMonth `json:"months"`
	Overdue   []OverdueInstallment    `json:"overdue"`
	FetchedAt time.Time               `json:"fetchedAt"`
	Stale     bool                    `json:"stale"`
}

// RefreshPublisher emits refresh events after a mutation. *amqp.Client
// satisfies it.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, tenantID int64, reason string) error
}

// ReportsService serves the card, debit and installment reports and the
// card settlement computed over a user-selected set of periods.
type ReportsService struct {
	backend   ReportsBackend
	store     *storage.Store
	publisher RefreshPublisher
}

func NewReportsService(backend ReportsBackend, store *storage.Store, publisher RefreshPublisher) *ReportsService {
	return &ReportsService{
		backend:   backend,
		store:     store,
		publisher: publisher,
	}
}

// Cards returns the per-period credit-card snapshots, with snapshot
// fallback when the backend is down.
func (s *ReportsService) Cards(ctx context.Context, tenantID int64) (CardsView, error) {
	periods, fetchedAt, stale, err := fetchWithSnapshot(ctx, s.store, tenantID, storage.KindCards,
		func(ctx context.Context) ([]core.CardPeriod, error) {
			return s.backend.CardProportionalPayments(ctx, tenantID)
		})
	if err != nil {
		return CardsView{}, err
	}
	return CardsView{Periods: periods, FetchedAt: fetchedAt, Stale: stale}, nil
}

// Settle computes who owes whom over the selected billing periods.
// ok is false when the selection is empty.
func (s *ReportsService) Settle(ctx context.Context, tenantID, currentUserID int64, selected []core.PeriodRef) (core.CardSettlement, bool, error) {
	view, err := s.Cards(ctx, tenantID)
	if err != nil {
		return core.CardSettlement{}, false, err
	}

	set := make(map[core.PeriodRef]struct{}, len(selected))
	for _, ref := range selected {
		set[ref] = struct{}{}
	}

	settlement, ok := core.SettleCards(view.Periods, set, currentUserID)
	return settlement, ok, nil
}

// PairSettlement returns the tenant-wide proportional settlement between
// the two members for a date range.
func (s *ReportsService) PairSettlement(ctx context.Context, tenantID int64, start, end string) (core.PairSettlement, bool, error) {
	members, err := s.backend.ProportionalSettlement(ctx, tenantID, start, end)
	if err != nil {
		return core.PairSettlement{}, false, fmt.Errorf("proportional settlement: %w", err)
	}
	settlement, ok := core.SettlePair(members)
	return settlement, ok, nil
}

// Debit returns the non-credit balances with their debtor breakdowns,
// filtered by owner and account type.
func (s *ReportsService) Debit(ctx context.Context, tenantID int64, f DebitFilters) (DebitView, error) {
	balances, fetchedAt, stale, err := fetchWithSnapshot(ctx, s.store, tenantID, storage.KindDebit,
		func(ctx context.Context) ([]core.NonCreditBalance, error) {
			return s.backend.NonCreditProportionalPayments(ctx, tenantID, f.StartDate, f.EndDate)
		})
	if err != nil {
		return DebitView{}, err
	}

	accounts := make([]DebitAccount, 0, len(balances))
	for _, b := range balances {
		if f.OwnerID != 0 && b.OwnerID != f.OwnerID {
			continue
		}
		if f.AccountType != "" && b.Type != f.AccountType {
			continue
		}
		name := b.Alias
		if name == "" {
			name = b.BankName
		}
		accounts = append(accounts, DebitAccount{
			PaymentMethodID: b.PaymentMethodID,
			Name:            name,
			OwnerName:       core.OwnerName(b),
			Type:            b.Type,
			Balance:         b.Balance,
			Count:           b.Count,
			Debtors:         core.Debtors(b),
			TotalOwed:       core.TotalOwed(b),
		})
	}

	return DebitView{Accounts: accounts, FetchedAt: fetchedAt, Stale: stale}, nil
}

// MSI returns the installment projection grouped by month plus the
// overdue list. Both fetches either succeed together or fail together.
func (s *ReportsService) MSI(ctx context.Context, tenantID int64, months int) (MSIView, error) {
	type payload struct {
		Months  []core.InstallmentMonth `json:"months"`
		Overdue []OverdueInstallment    `json:"overdue"`
	}

	p, fetchedAt, stale, err := fetchWithSnapshot(ctx, s.store, tenantID, storage.KindInstallments,
		func(ctx context.Context) (payload, error) {
			var upcoming, overdue []core.InstallmentMSI

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				upcoming, err = s.backend.UpcomingInstallments(gctx, tenantID, months)
				if err != nil {
					return fmt.Errorf("upcoming installments: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				var err error
				overdue, err = s.backend.OverdueInstallments(gctx, tenantID)
				if err != nil {
					return fmt.Errorf("overdue installments: %w", err)
				}
				return nil
			})
			if err := g.Wait(); err != nil {
				return payload{}, err
			}

			now := time.Now()
			annotated := make([]OverdueInstallment, len(overdue))
			for i, it := range overdue {
				annotated[i] = OverdueInstallment{InstallmentMSI: it}
				if core.IsOverdue(it.DueDate, now) {
					annotated[i].DaysOverdue = -core.DaysUntil(it.DueDate, now)
				}
			}

			return payload{
				Months:  core.GroupInstallmentsByMonth(upcoming),
				Overdue: annotated,
			}, nil
		})
	if err != nil {
		return MSIView{}, err
	}

	return MSIView{Months: p.Months, Overdue: p.Overdue, FetchedAt: fetchedAt, Stale: stale}, nil
}

// MarkPaid marks a billing period as settled on the backend and emits a
// refresh event. Publish failures do not fail the mutation.
func (s *ReportsService) MarkPaid(ctx context.Context, tenantID int64, ref core.PeriodRef) error {
	if err := s.backend.MarkCardPeriodPaid(ctx, ref); err != nil {
		return fmt.Errorf("mark period paid: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRefresh(ctx, tenantID, amqp.ReasonPeriodPaid); err != nil {
			slog.ErrorContext(ctx, "Failed to publish refresh message",
				"tenant_id", tenantID,
				"period_id", ref.PeriodID,
				"error", err)
		}
	}

	return nil
}
