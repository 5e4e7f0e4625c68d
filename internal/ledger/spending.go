package ledger

import (
	"sort"
	"time"

	"splitfair/internal/models"
)

// MonthlySpend is the viewer's share total for one calendar month.
type MonthlySpend struct {
	// Month is the start-of-month Unix millisecond timestamp (UTC).
	Month int64 `json:"month"`

	// Total is the sum of the viewer's own split amounts in that month.
	Total float64 `json:"total"`
}

// YearBounds returns the half-open Unix millisecond range [from, to) of a
// calendar year in UTC.
func YearBounds(year int) (from, to int64) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
		time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
}

// relevantSplit returns the viewer's split amount for an expense dated in
// the given year, or 0. Only an exact split match counts: an expense the
// viewer paid but holds no split in contributes nothing. This measures the
// viewer's cost exposure, not cash flow, so the Paid flag is irrelevant.
func relevantSplit(e *models.Expense, viewerID string, from, to int64) (float64, bool) {
	if e.Date < from || e.Date >= to {
		return 0, false
	}
	if !e.Involves(viewerID) {
		return 0, false
	}
	my := e.SplitFor(viewerID)
	if my == nil {
		return 0, false
	}
	return my.Amount, true
}

// TotalSpent sums the viewer's own split amounts across all expenses in
// the given calendar year where the viewer is payer or a split participant.
func TotalSpent(expenses []models.Expense, viewerID string, year int) float64 {
	from, to := YearBounds(year)
	var total float64
	for i := range expenses {
		if amount, ok := relevantSplit(&expenses[i], viewerID, from, to); ok {
			total += amount
		}
	}
	return total
}

// MonthlySpending buckets the viewer's share of spending into the 12
// calendar months of the given year, all initialized to zero, and returns
// them in ascending chronological order. The buckets always sum to
// TotalSpent for the same inputs.
func MonthlySpending(expenses []models.Expense, viewerID string, year int) []MonthlySpend {
	from, to := YearBounds(year)

	totals := make(map[int64]float64, 12)
	for m := time.January; m <= time.December; m++ {
		totals[time.Date(year, m, 1, 0, 0, 0, 0, time.UTC).UnixMilli()] = 0
	}

	for i := range expenses {
		e := &expenses[i]
		amount, ok := relevantSplit(e, viewerID, from, to)
		if !ok {
			continue
		}
		d := time.UnixMilli(e.Date).UTC()
		monthStart := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).UnixMilli()
		totals[monthStart] += amount
	}

	result := make([]MonthlySpend, 0, len(totals))
	for month, total := range totals {
		result = append(result, MonthlySpend{Month: month, Total: total})
	}
	// Map iteration order is random; restore chronology.
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result
}
