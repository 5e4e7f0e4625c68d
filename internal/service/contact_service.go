package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"splitfair/internal/models"
	"splitfair/internal/storage"
)

// ContactUser is a person the viewer shares personal expenses with.
type ContactUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl,omitempty"`
	Type     string `json:"type"` // always "user"
}

// ContactGroup is a group summary for the contacts view.
type ContactGroup struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberCount int    `json:"memberCount"`
	Type        string `json:"type"` // always "group"
}

// Contacts is the combined contacts view.
type Contacts struct {
	Users  []ContactUser  `json:"users"`
	Groups []ContactGroup `json:"groups"`
}

// ContactService derives the viewer's contacts from personal expense
// history and group memberships, and manages group creation.
type ContactService struct {
	store storage.Store
}

// NewContactService creates a new ContactService with the given storage backend.
func NewContactService(store storage.Store) *ContactService {
	return &ContactService{store: store}
}

// GetAllContacts returns every user the viewer shares a personal expense
// with, plus every group the viewer belongs to.
func (s *ContactService) GetAllContacts(ctx context.Context) (*Contacts, error) {
	viewer, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}

	paid, err := s.store.ListPersonalExpensesByPayer(ctx, viewer.ID)
	if err != nil {
		slog.Error("GetAllContacts: failed to list expenses by payer", "user_id", viewer.ID, "error", err)
		return nil, err
	}
	participating, err := s.store.ListPersonalExpensesByParticipant(ctx, viewer.ID)
	if err != nil {
		slog.Error("GetAllContacts: failed to list expenses by participant", "user_id", viewer.ID, "error", err)
		return nil, err
	}

	contactIDs := make(map[string]bool)
	for _, e := range append(paid, participating...) {
		if e.PaidByUserID != viewer.ID {
			contactIDs[e.PaidByUserID] = true
		}
		for _, split := range e.Splits {
			if split.UserID != viewer.ID {
				contactIDs[split.UserID] = true
			}
		}
	}

	users := make([]ContactUser, 0, len(contactIDs))
	for id := range contactIDs {
		user, err := s.store.GetUserByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue // counterparty account deleted; contact silently dropped
		}
		if err != nil {
			return nil, err
		}
		users = append(users, ContactUser{
			ID:       user.ID,
			Name:     user.Name,
			Email:    user.Email,
			ImageURL: user.ImageURL,
			Type:     "user",
		})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })

	memberGroups, err := s.store.ListGroupsByMember(ctx, viewer.ID)
	if err != nil {
		slog.Error("GetAllContacts: failed to list groups", "user_id", viewer.ID, "error", err)
		return nil, err
	}
	groups := make([]ContactGroup, 0, len(memberGroups))
	for _, g := range memberGroups {
		groups = append(groups, ContactGroup{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			MemberCount: len(g.Members),
			Type:        "group",
		})
	}

	return &Contacts{Users: users, Groups: groups}, nil
}

// CreateGroup creates a group with the viewer as admin. Members are
// deduplicated, must exist, and always include the viewer.
func (s *ContactService) CreateGroup(ctx context.Context, name, description string, memberIDs []string) (*models.Group, error) {
	viewer, err := currentUser(ctx, s.store)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name cannot be empty", ErrInvalidArgument)
	}

	unique := make(map[string]bool, len(memberIDs)+1)
	unique[viewer.ID] = true
	for _, id := range memberIDs {
		unique[id] = true
	}

	now := time.Now().UnixMilli()
	members := make([]models.GroupMember, 0, len(unique))
	for id := range unique {
		if _, err := s.store.GetUserByID(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: user %s not found", ErrInvalidArgument, id)
			}
			return nil, err
		}
		role := models.RoleMember
		if id == viewer.ID {
			role = models.RoleAdmin
		}
		members = append(members, models.GroupMember{UserID: id, Role: role, JoinedAt: now})
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   viewer.ID,
		Members:     members,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "user_id", viewer.ID, "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "members_count", len(members))
	return group, nil
}
