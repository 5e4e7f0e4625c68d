package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"splitfair/internal/models"
)

// CreateExpense persists a new expense and its splits in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.Date == 0 {
		expense.Date = time.Now().UnixMilli()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount, paid_by_user_id, group_id, date, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Description, expense.Amount, expense.PaidByUserID,
		nullString(expense.GroupID), expense.Date, expense.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount, paid, position) VALUES (?, ?, ?, ?, ?)",
			expense.ID, split.UserID, split.Amount, split.Paid, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListPersonalExpensesByPayer returns groupless expenses paid by the user.
func (s *SQLiteStore) ListPersonalExpensesByPayer(ctx context.Context, userID string) ([]models.Expense, error) {
	return s.listExpenses(ctx,
		"WHERE group_id IS NULL AND paid_by_user_id = ?", userID)
}

// ListPersonalExpensesByParticipant returns groupless expenses the user
// holds a split in but did not pay.
func (s *SQLiteStore) ListPersonalExpensesByParticipant(ctx context.Context, userID string) ([]models.Expense, error) {
	return s.listExpenses(ctx,
		`WHERE group_id IS NULL AND paid_by_user_id != ?
		 AND id IN (SELECT expense_id FROM expense_splits WHERE user_id = ?)`,
		userID, userID)
}

// ListExpensesByGroup returns all expenses scoped to the group.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	return s.listExpenses(ctx, "WHERE group_id = ?", groupID)
}

// ListExpensesInRange returns all expenses with from <= date < to.
func (s *SQLiteStore) ListExpensesInRange(ctx context.Context, from, to int64) ([]models.Expense, error) {
	return s.listExpenses(ctx, "WHERE date >= ? AND date < ?", from, to)
}

func (s *SQLiteStore) listExpenses(ctx context.Context, where string, args ...any) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, amount, paid_by_user_id, group_id, date, created_by
		 FROM expenses `+where+" ORDER BY date DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var groupID sql.NullString
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.PaidByUserID, &groupID, &e.Date, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.GroupID = groupID.String
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range expenses {
		if err := s.loadSplits(ctx, &expenses[i]); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

func (s *SQLiteStore) loadSplits(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, amount, paid FROM expense_splits WHERE expense_id = ? ORDER BY position",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.Split
		if err := rows.Scan(&split.UserID, &split.Amount, &split.Paid); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		expense.Splits = append(expense.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}
