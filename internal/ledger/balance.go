// Package ledger implements the balance engine: single-pass, read-only
// aggregation over an already-fetched snapshot of expenses and settlements.
// Every function is a pure function of its inputs; nothing is mutated and
// no state survives between invocations.
package ledger

import (
	"sort"

	"splitfair/internal/models"
)

// CounterpartyBalance is one entry of a balance breakdown. Amount is always
// positive; the list the entry appears in carries the direction.
type CounterpartyBalance struct {
	UserID string
	Amount float64
}

// BalanceSummary is the viewer's global personal (non-group) net position.
type BalanceSummary struct {
	// YouOwe is the running total of the viewer's unpaid shares, minus
	// settlements the viewer paid.
	YouOwe float64

	// YouAreOwed is the running total of other participants' unpaid
	// shares on expenses the viewer fronted, minus settlements the
	// viewer received.
	YouAreOwed float64

	// TotalBalance is always exactly YouAreOwed - YouOwe.
	TotalBalance float64

	// YouOweTo lists counterparties with a negative net toward the
	// viewer, sorted descending by amount. Zero nets are excluded.
	YouOweTo []CounterpartyBalance

	// YouAreOwedBy lists counterparties with a positive net toward the
	// viewer, sorted descending by amount. Zero nets are excluded.
	YouAreOwedBy []CounterpartyBalance
}

// bucket is the per-counterparty accumulator, built once per invocation
// and discarded.
type bucket struct {
	owed  float64 // they owe the viewer
	owing float64 // the viewer owes them
}

// CalculateUserBalances computes the viewer's net position against every
// counterparty over the given expenses and settlements. Callers pass the
// personal (groupless) records; records not involving the viewer are
// skipped, so over-fetching is harmless.
//
// A split marked Paid and an offsetting settlement are two independent
// reduction paths; the engine deliberately does not reconcile them.
func CalculateUserBalances(expenses []models.Expense, settlements []models.Settlement, viewerID string) BalanceSummary {
	var youOwe, youAreOwed float64
	buckets := make(map[string]*bucket)

	get := func(userID string) *bucket {
		b, ok := buckets[userID]
		if !ok {
			b = &bucket{}
			buckets[userID] = b
		}
		return b
	}

	for i := range expenses {
		e := &expenses[i]
		if !e.Involves(viewerID) {
			continue
		}
		if e.PaidByUserID == viewerID {
			for _, s := range e.Splits {
				if s.UserID == viewerID || s.Paid {
					continue
				}
				youAreOwed += s.Amount
				get(s.UserID).owed += s.Amount
			}
		} else if my := e.SplitFor(viewerID); my != nil && !my.Paid {
			youOwe += my.Amount
			get(e.PaidByUserID).owing += my.Amount
		}
	}

	for i := range settlements {
		s := &settlements[i]
		if !s.Involves(viewerID) {
			continue
		}
		if s.PaidByUserID == viewerID {
			youOwe -= s.Amount
			get(s.ReceivedByUserID).owing -= s.Amount
		} else {
			youAreOwed -= s.Amount
			get(s.PaidByUserID).owed -= s.Amount
		}
	}

	summary := BalanceSummary{
		YouOwe:       youOwe,
		YouAreOwed:   youAreOwed,
		TotalBalance: youAreOwed - youOwe,
		YouOweTo:     []CounterpartyBalance{},
		YouAreOwedBy: []CounterpartyBalance{},
	}

	for userID, b := range buckets {
		net := b.owed - b.owing
		if net == 0 {
			continue
		}
		if net > 0 {
			summary.YouAreOwedBy = append(summary.YouAreOwedBy, CounterpartyBalance{UserID: userID, Amount: net})
		} else {
			summary.YouOweTo = append(summary.YouOweTo, CounterpartyBalance{UserID: userID, Amount: -net})
		}
	}

	// Largest debt/credit first. Tie order among equal amounts is unspecified.
	sort.Slice(summary.YouOweTo, func(i, j int) bool {
		return summary.YouOweTo[i].Amount > summary.YouOweTo[j].Amount
	})
	sort.Slice(summary.YouAreOwedBy, func(i, j int) bool {
		return summary.YouAreOwedBy[i].Amount > summary.YouAreOwedBy[j].Amount
	})

	return summary
}

// GroupBalance collapses the viewer's position within one group into a
// single signed number: positive means the group owes the viewer net,
// negative means the viewer owes the group net. Callers pass the group's
// expenses and the group's settlements involving the viewer.
func GroupBalance(expenses []models.Expense, settlements []models.Settlement, viewerID string) float64 {
	var balance float64

	for i := range expenses {
		e := &expenses[i]
		if e.PaidByUserID == viewerID {
			for _, s := range e.Splits {
				if s.UserID != viewerID && !s.Paid {
					balance += s.Amount
				}
			}
		} else if my := e.SplitFor(viewerID); my != nil && !my.Paid {
			balance -= my.Amount
		}
	}

	for i := range settlements {
		s := &settlements[i]
		if !s.Involves(viewerID) {
			continue
		}
		if s.PaidByUserID == viewerID {
			balance += s.Amount
		} else {
			balance -= s.Amount
		}
	}

	return balance
}
