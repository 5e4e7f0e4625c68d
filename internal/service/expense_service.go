package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"splitfair/internal/models"
	"splitfair/internal/storage"
)

// splitTolerance is the allowed gap between an expense total and the sum
// of its splits, one cent.
const splitTolerance = 0.01

// SplitInput is one participant's share in an expense request.
type SplitInput struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
	Paid   bool    `json:"paid"`
}

// CreateExpenseInput is the request to record a new expense.
type CreateExpenseInput struct {
	Description  string       `json:"description"`
	Amount       float64      `json:"amount"`
	PaidByUserID string       `json:"paidByUserId"`
	GroupID      string       `json:"groupId,omitempty"`
	Date         int64        `json:"date,omitempty"`
	Splits       []SplitInput `json:"splits"`
}

// CreateSettlementInput is the request to record a direct payment.
type CreateSettlementInput struct {
	PaidByUserID     string  `json:"paidByUserId"`
	ReceivedByUserID string  `json:"receivedByUserId"`
	GroupID          string  `json:"groupId,omitempty"`
	Amount           float64 `json:"amount"`
	Date             int64   `json:"date,omitempty"`
	Note             string  `json:"note,omitempty"`
}

// ExpenseService records expenses and settlements. Validation happens here,
// at creation time; the balance engine downstream assumes consistent data.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpense validates and persists a new expense. The viewer must be
// involved, each user appears at most once in the splits, and the splits
// must reconcile to the expense total.
func (s *ExpenseService) CreateExpense(ctx context.Context, input CreateExpenseInput) (*models.Expense, error) {
	viewer, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}

	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}
	if len(input.Splits) == 0 {
		return nil, fmt.Errorf("%w: at least one split required", ErrInvalidArgument)
	}
	if input.PaidByUserID == "" {
		return nil, fmt.Errorf("%w: paidByUserId required", ErrInvalidArgument)
	}

	var sum float64
	seen := make(map[string]bool, len(input.Splits))
	splits := make([]models.Split, len(input.Splits))
	for i, split := range input.Splits {
		if split.UserID == "" {
			return nil, fmt.Errorf("%w: split userId required", ErrInvalidArgument)
		}
		if split.Amount < 0 {
			return nil, fmt.Errorf("%w: split amount cannot be negative", ErrInvalidArgument)
		}
		if seen[split.UserID] {
			return nil, fmt.Errorf("%w: user %s appears in splits more than once", ErrInvalidArgument, split.UserID)
		}
		seen[split.UserID] = true
		sum += split.Amount
		splits[i] = models.Split{UserID: split.UserID, Amount: split.Amount, Paid: split.Paid}
	}
	if math.Abs(sum-input.Amount) > splitTolerance {
		return nil, fmt.Errorf("%w: splits sum to %.2f, expense total is %.2f", ErrInvalidArgument, sum, input.Amount)
	}

	if input.PaidByUserID != viewer.ID && !seen[viewer.ID] {
		return nil, fmt.Errorf("%w: you must be the payer or a participant", ErrPermissionDenied)
	}

	if input.GroupID != "" {
		group, err := s.store.GetGroup(ctx, input.GroupID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: group %s not found", ErrInvalidArgument, input.GroupID)
		}
		if err != nil {
			return nil, err
		}
		if !group.HasMember(viewer.ID) {
			return nil, fmt.Errorf("%w: you must be a member of the group", ErrPermissionDenied)
		}
		if !group.HasMember(input.PaidByUserID) {
			return nil, fmt.Errorf("%w: payer is not a group member", ErrInvalidArgument)
		}
		for userID := range seen {
			if !group.HasMember(userID) {
				return nil, fmt.Errorf("%w: split user %s is not a group member", ErrInvalidArgument, userID)
			}
		}
	}

	expense := &models.Expense{
		Description:  input.Description,
		Amount:       input.Amount,
		PaidByUserID: input.PaidByUserID,
		GroupID:      input.GroupID,
		Date:         input.Date,
		Splits:       splits,
		CreatedBy:    viewer.ID,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "user_id", viewer.ID, "error", err)
		return nil, err
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", expense.GroupID, "amount", expense.Amount)
	return expense, nil
}

// CreateSettlement validates and persists a direct payment between two
// users. The viewer must be one of the parties.
func (s *ExpenseService) CreateSettlement(ctx context.Context, input CreateSettlementInput) (*models.Settlement, error) {
	viewer, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}

	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}
	if input.PaidByUserID == "" || input.ReceivedByUserID == "" {
		return nil, fmt.Errorf("%w: both parties required", ErrInvalidArgument)
	}
	if input.PaidByUserID == input.ReceivedByUserID {
		return nil, fmt.Errorf("%w: payer and receiver must differ", ErrInvalidArgument)
	}
	if viewer.ID != input.PaidByUserID && viewer.ID != input.ReceivedByUserID {
		return nil, fmt.Errorf("%w: you must be a party of the settlement", ErrPermissionDenied)
	}

	if input.GroupID != "" {
		group, err := s.store.GetGroup(ctx, input.GroupID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: group %s not found", ErrInvalidArgument, input.GroupID)
		}
		if err != nil {
			return nil, err
		}
		if !group.HasMember(input.PaidByUserID) || !group.HasMember(input.ReceivedByUserID) {
			return nil, fmt.Errorf("%w: both parties must be group members", ErrInvalidArgument)
		}
	}

	settlement := &models.Settlement{
		PaidByUserID:     input.PaidByUserID,
		ReceivedByUserID: input.ReceivedByUserID,
		GroupID:          input.GroupID,
		Amount:           input.Amount,
		Date:             input.Date,
		Note:             input.Note,
		CreatedBy:        viewer.ID,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("CreateSettlement failed", "user_id", viewer.ID, "error", err)
		return nil, err
	}

	slog.Info("Settlement created", "settlement_id", settlement.ID, "amount", settlement.Amount)
	return settlement, nil
}
