package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"splitfair/internal/models"
	"splitfair/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitfair-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser and GetUserByID", func(t *testing.T) {
		user := models.NewUser("alice@example.com", "Alice", "hash")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		got, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Email != "alice@example.com" || got.Name != "Alice" {
			t.Errorf("Got user %+v, want Alice/alice@example.com", got)
		}
		if got.PasswordHash != "hash" {
			t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, "hash")
		}
		if got.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetUserByEmail", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.Name != "Alice" {
			t.Errorf("Name = %q, want Alice", got.Name)
		}
	})

	t.Run("GetUserByID returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetUserByExternalID", func(t *testing.T) {
		user := &models.User{
			ID:         "synced-1",
			Name:       "Synced",
			Email:      "synced@example.com",
			ExternalID: "user_ext_1",
			CreatedAt:  time.Now().UnixMilli(),
		}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		got, err := store.GetUserByExternalID(ctx, "user_ext_1")
		if err != nil {
			t.Fatalf("GetUserByExternalID failed: %v", err)
		}
		if got.ID != "synced-1" {
			t.Errorf("ID = %q, want synced-1", got.ID)
		}
	})

	t.Run("UpdateUser", func(t *testing.T) {
		user, err := store.GetUserByExternalID(ctx, "user_ext_1")
		if err != nil {
			t.Fatalf("GetUserByExternalID failed: %v", err)
		}

		user.Name = "Renamed"
		user.ImageURL = "https://example.com/avatar.png"
		if err := store.UpdateUser(ctx, user); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}

		got, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Name != "Renamed" || got.ImageURL != "https://example.com/avatar.png" {
			t.Errorf("Update not applied: %+v", got)
		}
	})

	t.Run("SearchUsersByName", func(t *testing.T) {
		for _, name := range []string{"Bob", "Bobby", "Carol"} {
			u := models.NewUser(name+"@example.com", name, "")
			if err := store.CreateUser(ctx, u); err != nil {
				t.Fatalf("CreateUser failed: %v", err)
			}
		}

		results, err := store.SearchUsersByName(ctx, "Bob", 10)
		if err != nil {
			t.Fatalf("SearchUsersByName failed: %v", err)
		}
		if len(results) != 2 {
			t.Errorf("Got %d results, want 2 (Bob, Bobby)", len(results))
		}

		limited, err := store.SearchUsersByName(ctx, "Bob", 1)
		if err != nil {
			t.Fatalf("SearchUsersByName failed: %v", err)
		}
		if len(limited) != 1 {
			t.Errorf("Got %d results with limit 1, want 1", len(limited))
		}
	})

	t.Run("DeleteUserByExternalID", func(t *testing.T) {
		if err := store.DeleteUserByExternalID(ctx, "user_ext_1"); err != nil {
			t.Fatalf("DeleteUserByExternalID failed: %v", err)
		}
		_, err := store.GetUserByExternalID(ctx, "user_ext_1")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}

		err = store.DeleteUserByExternalID(ctx, "user_ext_1")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestSQLiteStore_Expenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateExpense generates ID and date", func(t *testing.T) {
		expense := &models.Expense{
			Description:  "Dinner",
			Amount:       60,
			PaidByUserID: "alice",
			CreatedBy:    "alice",
			Splits: []models.Split{
				{UserID: "alice", Amount: 30},
				{UserID: "bob", Amount: 30},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" {
			t.Error("Expected expense ID to be generated")
		}
		if expense.Date == 0 {
			t.Error("Expected Date to be set")
		}
	})

	t.Run("ListPersonalExpensesByPayer round-trips splits in order", func(t *testing.T) {
		expenses, err := store.ListPersonalExpensesByPayer(ctx, "alice")
		if err != nil {
			t.Fatalf("ListPersonalExpensesByPayer failed: %v", err)
		}
		if len(expenses) != 1 {
			t.Fatalf("Got %d expenses, want 1", len(expenses))
		}

		e := expenses[0]
		if e.Description != "Dinner" || e.Amount != 60 {
			t.Errorf("Got %+v, want Dinner/60", e)
		}
		if len(e.Splits) != 2 {
			t.Fatalf("Got %d splits, want 2", len(e.Splits))
		}
		if e.Splits[0].UserID != "alice" || e.Splits[1].UserID != "bob" {
			t.Errorf("Split order = [%s %s], want [alice bob]", e.Splits[0].UserID, e.Splits[1].UserID)
		}
	})

	t.Run("ListPersonalExpensesByParticipant excludes the payer", func(t *testing.T) {
		byBob, err := store.ListPersonalExpensesByParticipant(ctx, "bob")
		if err != nil {
			t.Fatalf("ListPersonalExpensesByParticipant failed: %v", err)
		}
		if len(byBob) != 1 {
			t.Errorf("Got %d expenses for bob, want 1", len(byBob))
		}

		byAlice, err := store.ListPersonalExpensesByParticipant(ctx, "alice")
		if err != nil {
			t.Fatalf("ListPersonalExpensesByParticipant failed: %v", err)
		}
		if len(byAlice) != 0 {
			t.Errorf("Got %d expenses for alice as participant, want 0 (she paid)", len(byAlice))
		}
	})

	t.Run("group expenses excluded from personal lists", func(t *testing.T) {
		group := &models.Group{
			Name:      "Trip",
			CreatedBy: "alice",
			Members: []models.GroupMember{
				{UserID: "alice", Role: models.RoleAdmin, JoinedAt: time.Now().UnixMilli()},
			},
		}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		expense := &models.Expense{
			Description:  "Hotel",
			Amount:       200,
			PaidByUserID: "alice",
			GroupID:      group.ID,
			CreatedBy:    "alice",
			Splits:       []models.Split{{UserID: "alice", Amount: 200}},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		personal, err := store.ListPersonalExpensesByPayer(ctx, "alice")
		if err != nil {
			t.Fatalf("ListPersonalExpensesByPayer failed: %v", err)
		}
		for _, e := range personal {
			if e.GroupID != "" {
				t.Errorf("Personal list contains group expense %s", e.ID)
			}
		}

		grouped, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(grouped) != 1 || grouped[0].Description != "Hotel" {
			t.Errorf("Got %+v, want one Hotel expense", grouped)
		}
	})

	t.Run("ListExpensesInRange uses half-open bounds", func(t *testing.T) {
		base := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
		for i, date := range []int64{base - 1, base, base + 1000} {
			e := &models.Expense{
				Description:  "ranged",
				Amount:       float64(i + 1),
				PaidByUserID: "carol",
				Date:         date,
				CreatedBy:    "carol",
				Splits:       []models.Split{{UserID: "carol", Amount: float64(i + 1)}},
			}
			if err := store.CreateExpense(ctx, e); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
		}

		got, err := store.ListExpensesInRange(ctx, base, base+2000)
		if err != nil {
			t.Fatalf("ListExpensesInRange failed: %v", err)
		}

		count := 0
		for _, e := range got {
			if e.Description == "ranged" {
				count++
			}
		}
		if count != 2 {
			t.Errorf("Got %d expenses in range, want 2", count)
		}
	})
}

func TestSQLiteStore_Settlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateSettlement and list by user", func(t *testing.T) {
		settlement := &models.Settlement{
			PaidByUserID:     "bob",
			ReceivedByUserID: "alice",
			Amount:           25,
			Note:             "lunch payback",
			CreatedBy:        "bob",
		}
		if err := store.CreateSettlement(ctx, settlement); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
		if settlement.ID == "" {
			t.Error("Expected settlement ID to be generated")
		}

		for _, userID := range []string{"alice", "bob"} {
			got, err := store.ListPersonalSettlementsByUser(ctx, userID)
			if err != nil {
				t.Fatalf("ListPersonalSettlementsByUser(%s) failed: %v", userID, err)
			}
			if len(got) != 1 {
				t.Fatalf("Got %d settlements for %s, want 1", len(got), userID)
			}
			if got[0].Note != "lunch payback" {
				t.Errorf("Note = %q, want %q", got[0].Note, "lunch payback")
			}
		}

		none, err := store.ListPersonalSettlementsByUser(ctx, "carol")
		if err != nil {
			t.Fatalf("ListPersonalSettlementsByUser failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Got %d settlements for carol, want 0", len(none))
		}
	})

	t.Run("group settlements scoped and party-filtered", func(t *testing.T) {
		group := &models.Group{
			Name:      "Flat",
			CreatedBy: "alice",
			Members: []models.GroupMember{
				{UserID: "alice", Role: models.RoleAdmin, JoinedAt: time.Now().UnixMilli()},
				{UserID: "bob", Role: models.RoleMember, JoinedAt: time.Now().UnixMilli()},
			},
		}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		settlement := &models.Settlement{
			PaidByUserID:     "alice",
			ReceivedByUserID: "bob",
			GroupID:          group.ID,
			Amount:           40,
			CreatedBy:        "alice",
		}
		if err := store.CreateSettlement(ctx, settlement); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}

		got, err := store.ListGroupSettlementsByUser(ctx, group.ID, "alice")
		if err != nil {
			t.Fatalf("ListGroupSettlementsByUser failed: %v", err)
		}
		if len(got) != 1 || got[0].GroupID != group.ID {
			t.Errorf("Got %+v, want one settlement in group %s", got, group.ID)
		}

		personal, err := store.ListPersonalSettlementsByUser(ctx, "alice")
		if err != nil {
			t.Fatalf("ListPersonalSettlementsByUser failed: %v", err)
		}
		for _, s := range personal {
			if s.GroupID != "" {
				t.Errorf("Personal list contains group settlement %s", s.ID)
			}
		}

		none, err := store.ListGroupSettlementsByUser(ctx, group.ID, "carol")
		if err != nil {
			t.Fatalf("ListGroupSettlementsByUser failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Got %d settlements for non-party carol, want 0", len(none))
		}
	})
}

func TestSQLiteStore_Groups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup and GetGroup with members", func(t *testing.T) {
		group := &models.Group{
			Name:        "Ski Trip",
			Description: "January trip",
			CreatedBy:   "alice",
			Members: []models.GroupMember{
				{UserID: "alice", Role: models.RoleAdmin, JoinedAt: time.Now().UnixMilli()},
				{UserID: "bob", Role: models.RoleMember, JoinedAt: time.Now().UnixMilli()},
			},
		}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Ski Trip" || got.Description != "January trip" {
			t.Errorf("Got %+v, want Ski Trip/January trip", got)
		}
		if len(got.Members) != 2 {
			t.Fatalf("Got %d members, want 2", len(got.Members))
		}
		if !got.HasMember("alice") || !got.HasMember("bob") {
			t.Error("Expected alice and bob as members")
		}
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroupsByMember", func(t *testing.T) {
		second := &models.Group{
			Name:      "Dinner Club",
			CreatedBy: "bob",
			Members: []models.GroupMember{
				{UserID: "bob", Role: models.RoleAdmin, JoinedAt: time.Now().UnixMilli()},
			},
		}
		if err := store.CreateGroup(ctx, second); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		bobGroups, err := store.ListGroupsByMember(ctx, "bob")
		if err != nil {
			t.Fatalf("ListGroupsByMember failed: %v", err)
		}
		if len(bobGroups) != 2 {
			t.Errorf("Got %d groups for bob, want 2", len(bobGroups))
		}

		aliceGroups, err := store.ListGroupsByMember(ctx, "alice")
		if err != nil {
			t.Fatalf("ListGroupsByMember failed: %v", err)
		}
		if len(aliceGroups) != 1 {
			t.Errorf("Got %d groups for alice, want 1", len(aliceGroups))
		}

		for _, g := range aliceGroups {
			if len(g.Members) == 0 {
				t.Errorf("Group %s listed without members", g.ID)
			}
		}
	})
}
