package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"splitfair/internal/ledger"
	"splitfair/internal/models"
	"splitfair/internal/storage"
)

// unknownUserName is substituted when a counterparty referenced by an
// expense or settlement no longer resolves to a user record. The report
// still succeeds; only viewer identity is fatal.
const unknownUserName = "Unknown"

// CounterpartyDetail is one annotated entry of the personal balance report.
type CounterpartyDetail struct {
	UserID   string  `json:"userId"`
	Name     string  `json:"name"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Amount   float64 `json:"amount"`
}

// OweDetails carries the per-counterparty breakdowns, both sorted
// descending by amount.
type OweDetails struct {
	YouOweTo     []CounterpartyDetail `json:"youOweTo"`
	YouAreOwedBy []CounterpartyDetail `json:"youAreOwedBy"`
}

// BalanceReport is the viewer's global personal net position.
type BalanceReport struct {
	YouOwe       float64    `json:"youOwe"`
	YouAreOwed   float64    `json:"youAreOwed"`
	TotalBalance float64    `json:"totalBalance"`
	OweDetails   OweDetails `json:"oweDetails"`
}

// GroupWithBalance is a group annotated with the viewer's net balance in it.
type GroupWithBalance struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	MemberCount int     `json:"memberCount"`
	CreatedAt   int64   `json:"createdAt"`
	Balance     float64 `json:"balance"`
}

// DashboardService computes the viewer-facing balance and spending reports.
// All operations are pure read-and-aggregate; nothing is mutated.
type DashboardService struct {
	store storage.Store
}

// NewDashboardService creates a new DashboardService with the given storage backend.
func NewDashboardService(store storage.Store) *DashboardService {
	return &DashboardService{store: store}
}

// GetUserBalances computes the viewer's global personal net position with
// per-counterparty detail.
func (s *DashboardService) GetUserBalances(ctx context.Context) (*BalanceReport, error) {
	viewer, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}

	// Two explicit queries unioned client-side: expenses the viewer paid,
	// and expenses the viewer participates in but did not pay.
	paid, err := s.store.ListPersonalExpensesByPayer(ctx, viewer.ID)
	if err != nil {
		slog.Error("GetUserBalances: failed to list expenses by payer", "user_id", viewer.ID, "error", err)
		return nil, err
	}
	participating, err := s.store.ListPersonalExpensesByParticipant(ctx, viewer.ID)
	if err != nil {
		slog.Error("GetUserBalances: failed to list expenses by participant", "user_id", viewer.ID, "error", err)
		return nil, err
	}
	expenses := append(paid, participating...)

	settlements, err := s.store.ListPersonalSettlementsByUser(ctx, viewer.ID)
	if err != nil {
		slog.Error("GetUserBalances: failed to list settlements", "user_id", viewer.ID, "error", err)
		return nil, err
	}

	summary := ledger.CalculateUserBalances(expenses, settlements, viewer.ID)

	report := &BalanceReport{
		YouOwe:       summary.YouOwe,
		YouAreOwed:   summary.YouAreOwed,
		TotalBalance: summary.TotalBalance,
	}
	report.OweDetails.YouOweTo, err = s.annotate(ctx, summary.YouOweTo)
	if err != nil {
		return nil, err
	}
	report.OweDetails.YouAreOwedBy, err = s.annotate(ctx, summary.YouAreOwedBy)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// annotate resolves counterparty IDs to display names and avatars,
// substituting a placeholder for users that no longer exist.
func (s *DashboardService) annotate(ctx context.Context, balances []ledger.CounterpartyBalance) ([]CounterpartyDetail, error) {
	details := make([]CounterpartyDetail, 0, len(balances))
	for _, b := range balances {
		detail := CounterpartyDetail{UserID: b.UserID, Name: unknownUserName, Amount: b.Amount}
		user, err := s.store.GetUserByID(ctx, b.UserID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if user != nil {
			detail.Name = user.Name
			detail.ImageURL = user.ImageURL
		}
		details = append(details, detail)
	}
	return details, nil
}

// GetTotalSpent sums the viewer's own share of spending for the current
// calendar year.
func (s *DashboardService) GetTotalSpent(ctx context.Context) (float64, error) {
	viewer, err := currentUser(ctx, s.store)
	if err != nil {
		return 0, err
	}

	year := time.Now().UTC().Year()
	expenses, err := s.listYearExpenses(ctx, year)
	if err != nil {
		return 0, err
	}
	return ledger.TotalSpent(expenses, viewer.ID, year), nil
}

// GetMonthlySpending buckets the viewer's share of spending into the 12
// months of the current calendar year.
func (s *DashboardService) GetMonthlySpending(ctx context.Context) ([]ledger.MonthlySpend, error) {
	viewer, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}

	year := time.Now().UTC().Year()
	expenses, err := s.listYearExpenses(ctx, year)
	if err != nil {
		return nil, err
	}
	return ledger.MonthlySpending(expenses, viewer.ID, year), nil
}

func (s *DashboardService) listYearExpenses(ctx context.Context, year int) ([]models.Expense, error) {
	from, to := ledger.YearBounds(year)
	expenses, err := s.store.ListExpensesInRange(ctx, from, to)
	if err != nil {
		slog.Error("failed to list expenses by date range", "year", year, "error", err)
		return nil, err
	}
	return expenses, nil
}

// GetUserGroups returns every group the viewer belongs to, each annotated
// with the viewer's net balance within it. Per-group lookups are
// independent and run concurrently; the result is complete or an error.
func (s *DashboardService) GetUserGroups(ctx context.Context) ([]GroupWithBalance, error) {
	viewer, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsByMember(ctx, viewer.ID)
	if err != nil {
		slog.Error("GetUserGroups: failed to list groups", "user_id", viewer.ID, "error", err)
		return nil, err
	}

	results := make([]GroupWithBalance, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for i := range groups {
		i := i
		group := groups[i]
		g.Go(func() error {
			expenses, err := s.store.ListExpensesByGroup(gctx, group.ID)
			if err != nil {
				return err
			}
			settlements, err := s.store.ListGroupSettlementsByUser(gctx, group.ID, viewer.ID)
			if err != nil {
				return err
			}
			results[i] = GroupWithBalance{
				ID:          group.ID,
				Name:        group.Name,
				Description: group.Description,
				MemberCount: len(group.Members),
				CreatedAt:   group.CreatedAt,
				Balance:     ledger.GroupBalance(expenses, settlements, viewer.ID),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("GetUserGroups: failed to compute group balances", "user_id", viewer.ID, "error", err)
		return nil, err
	}
	return results, nil
}
