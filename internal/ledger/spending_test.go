package ledger

import (
	"testing"
	"time"

	"splitfair/internal/models"
)

func msAt(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC).UnixMilli()
}

func spendingFixture() []models.Expense {
	return []models.Expense{
		{
			ID:           "jan",
			Amount:       100,
			PaidByUserID: "alice",
			Date:         msAt(2026, time.January, 10),
			Splits: []models.Split{
				{UserID: "alice", Amount: 60},
				{UserID: "bob", Amount: 40},
			},
		},
		{
			ID:           "jan2",
			Amount:       30,
			PaidByUserID: "bob",
			Date:         msAt(2026, time.January, 20),
			Splits: []models.Split{
				{UserID: "bob", Amount: 15},
				{UserID: "alice", Amount: 15, Paid: true},
			},
		},
		{
			ID:           "mar",
			Amount:       90,
			PaidByUserID: "alice",
			Date:         msAt(2026, time.March, 5),
			Splits: []models.Split{
				{UserID: "alice", Amount: 30},
				{UserID: "bob", Amount: 30},
				{UserID: "carol", Amount: 30},
			},
		},
		{
			// Alice fronted but holds no split; her own exposure is zero.
			ID:           "apr",
			Amount:       50,
			PaidByUserID: "alice",
			Date:         msAt(2026, time.April, 1),
			Splits: []models.Split{
				{UserID: "bob", Amount: 50},
			},
		},
		{
			// Previous year, excluded entirely.
			ID:           "old",
			Amount:       200,
			PaidByUserID: "alice",
			Date:         msAt(2025, time.December, 31),
			Splits: []models.Split{
				{UserID: "alice", Amount: 200},
			},
		},
	}
}

func TestTotalSpent(t *testing.T) {
	expenses := spendingFixture()

	// 60 (jan) + 15 (jan2, paid flag irrelevant) + 30 (mar) = 105.
	if got := TotalSpent(expenses, "alice", 2026); !almostEqual(got, 105) {
		t.Errorf("TotalSpent(alice, 2026) = %v, want 105", got)
	}

	// 40 + 15 + 30 + 50 = 135.
	if got := TotalSpent(expenses, "bob", 2026); !almostEqual(got, 135) {
		t.Errorf("TotalSpent(bob, 2026) = %v, want 135", got)
	}

	if got := TotalSpent(expenses, "alice", 2025); !almostEqual(got, 200) {
		t.Errorf("TotalSpent(alice, 2025) = %v, want 200", got)
	}

	if got := TotalSpent(nil, "alice", 2026); got != 0 {
		t.Errorf("TotalSpent(nil) = %v, want 0", got)
	}
}

func TestMonthlySpending(t *testing.T) {
	expenses := spendingFixture()

	months := MonthlySpending(expenses, "alice", 2026)

	if len(months) != 12 {
		t.Fatalf("got %d buckets, want 12", len(months))
	}

	var sum float64
	for i, m := range months {
		sum += m.Total

		want := time.Date(2026, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).UnixMilli()
		if m.Month != want {
			t.Errorf("bucket %d keyed at %d, want %d", i, m.Month, want)
		}
	}

	if !almostEqual(sum, TotalSpent(expenses, "alice", 2026)) {
		t.Errorf("bucket sum = %v, want TotalSpent = %v", sum, TotalSpent(expenses, "alice", 2026))
	}

	if !almostEqual(months[0].Total, 75) {
		t.Errorf("January = %v, want 75", months[0].Total)
	}
	if months[1].Total != 0 {
		t.Errorf("February = %v, want 0", months[1].Total)
	}
	if !almostEqual(months[2].Total, 30) {
		t.Errorf("March = %v, want 30", months[2].Total)
	}
	if months[3].Total != 0 {
		t.Errorf("April = %v, want 0 (no split held)", months[3].Total)
	}
}

func TestMonthlySpending_EmptyYear(t *testing.T) {
	months := MonthlySpending(nil, "alice", 2026)

	if len(months) != 12 {
		t.Fatalf("got %d buckets, want 12", len(months))
	}
	for _, m := range months {
		if m.Total != 0 {
			t.Errorf("bucket %d = %v, want 0", m.Month, m.Total)
		}
	}
}

func TestYearBounds(t *testing.T) {
	from, to := YearBounds(2026)

	if got := time.UnixMilli(from).UTC(); got.Year() != 2026 || got.Month() != time.January || got.Day() != 1 {
		t.Errorf("from = %v, want 2026-01-01", got)
	}
	if got := time.UnixMilli(to).UTC(); got.Year() != 2027 || got.Month() != time.January || got.Day() != 1 {
		t.Errorf("to = %v, want 2027-01-01", got)
	}

	// New Year's Eve is in; midnight of New Year's Day is out.
	eve := time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC).UnixMilli()
	if eve < from || eve >= to {
		t.Error("last second of the year fell outside the bounds")
	}
	if to < from || to-from <= 0 {
		t.Error("bounds are not a forward range")
	}
}
