package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"splitfair/internal/auth"
	"splitfair/internal/models"
	"splitfair/internal/storage"
)

// searchLimit caps prefix-search results.
const searchLimit = 10

// UserService keeps the local user table in sync with the identity
// provider and serves user lookups.
type UserService struct {
	store storage.Store
}

// NewUserService creates a new UserService with the given storage backend.
func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// SyncProviderUser applies a provider webhook event to the user table.
// Events for unknown types are ignored. Update and delete events for users
// that never synced are logged and dropped rather than failed, so the
// provider does not retry them forever.
func (s *UserService) SyncProviderUser(ctx context.Context, event *auth.WebhookEvent) error {
	switch event.Type {
	case auth.EventUserCreated:
		return s.createFromProvider(ctx, &event.Data)
	case auth.EventUserUpdated:
		return s.updateFromProvider(ctx, &event.Data)
	case auth.EventUserDeleted:
		err := s.store.DeleteUserByExternalID(ctx, event.Data.ID)
		if errors.Is(err, storage.ErrNotFound) {
			slog.Warn("SyncProviderUser: can't delete unknown user", "external_id", event.Data.ID)
			return nil
		}
		return err
	default:
		slog.Info("Ignored identity webhook event", "type", event.Type)
		return nil
	}
}

func (s *UserService) createFromProvider(ctx context.Context, data *auth.WebhookUserData) error {
	if data.ID == "" {
		return fmt.Errorf("%w: external id required", ErrInvalidArgument)
	}

	// Redelivered create events are treated as updates.
	if _, err := s.store.GetUserByExternalID(ctx, data.ID); err == nil {
		return s.updateFromProvider(ctx, data)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	user := &models.User{
		Name:       data.DisplayName(),
		Email:      data.PrimaryEmail(),
		ImageURL:   data.ImageURL,
		ExternalID: data.ID,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		slog.Error("SyncProviderUser: create failed", "external_id", data.ID, "error", err)
		return err
	}
	slog.Info("Provider user synced", "user_id", user.ID, "external_id", data.ID)
	return nil
}

func (s *UserService) updateFromProvider(ctx context.Context, data *auth.WebhookUserData) error {
	user, err := s.store.GetUserByExternalID(ctx, data.ID)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Warn("SyncProviderUser: can't update unknown user", "external_id", data.ID)
		return nil
	}
	if err != nil {
		return err
	}

	if name := data.DisplayName(); name != "" {
		user.Name = name
	}
	if email := data.PrimaryEmail(); email != "" {
		user.Email = email
	}
	user.ImageURL = data.ImageURL
	return s.store.UpdateUser(ctx, user)
}

// Search returns up to ten users whose display name starts with the given
// prefix, for counterparty pickers.
func (s *UserService) Search(ctx context.Context, prefix string) ([]ContactUser, error) {
	if _, err := currentUser(ctx, s.store); err != nil {
		return nil, err
	}
	if prefix == "" {
		return []ContactUser{}, nil
	}

	users, err := s.store.SearchUsersByName(ctx, prefix, searchLimit)
	if err != nil {
		slog.Error("Search failed", "error", err)
		return nil, err
	}

	results := make([]ContactUser, 0, len(users))
	for _, user := range users {
		results = append(results, ContactUser{
			ID:       user.ID,
			Name:     user.Name,
			Email:    user.Email,
			ImageURL: user.ImageURL,
			Type:     "user",
		})
	}
	return results, nil
}
