package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"splitfair/internal/models"
)

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.Date == 0 {
		settlement.Date = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, paid_by_user_id, received_by_user_id, group_id, amount, date, note, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.PaidByUserID, settlement.ReceivedByUserID,
		nullString(settlement.GroupID), settlement.Amount, settlement.Date,
		nullString(settlement.Note), settlement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// ListPersonalSettlementsByUser returns groupless settlements with the user
// as either party.
func (s *SQLiteStore) ListPersonalSettlementsByUser(ctx context.Context, userID string) ([]models.Settlement, error) {
	return s.listSettlements(ctx,
		"WHERE group_id IS NULL AND (paid_by_user_id = ? OR received_by_user_id = ?)",
		userID, userID)
}

// ListGroupSettlementsByUser returns the group's settlements with the user
// as either party.
func (s *SQLiteStore) ListGroupSettlementsByUser(ctx context.Context, groupID, userID string) ([]models.Settlement, error) {
	return s.listSettlements(ctx,
		"WHERE group_id = ? AND (paid_by_user_id = ? OR received_by_user_id = ?)",
		groupID, userID, userID)
}

func (s *SQLiteStore) listSettlements(ctx context.Context, where string, args ...any) ([]models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, paid_by_user_id, received_by_user_id, group_id, amount, date, note, created_by
		 FROM settlements `+where+" ORDER BY date DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		var st models.Settlement
		var groupID, note sql.NullString
		if err := rows.Scan(&st.ID, &st.PaidByUserID, &st.ReceivedByUserID, &groupID,
			&st.Amount, &st.Date, &note, &st.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		st.GroupID = groupID.String
		st.Note = note.String
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}
