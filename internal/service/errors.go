// Package service implements the application services on top of the
// storage layer: the dashboard reports, contacts, expense entry and
// authentication.
package service

import (
	"context"
	"errors"

	"splitfair/internal/middleware"
	"splitfair/internal/storage"

	"splitfair/internal/models"
)

var (
	// ErrUnauthorized is returned when the viewer identity cannot be
	// resolved. No partial results are produced; callers are expected to
	// redirect to sign-in.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidArgument is returned when request input fails validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPermissionDenied is returned when the viewer is authenticated
	// but not allowed to act on the target records.
	ErrPermissionDenied = errors.New("permission denied")
)

// currentUser resolves the viewer from the request context. Every report
// and mutation starts here; a missing or unresolvable identity fails with
// ErrUnauthorized before any computation happens.
func currentUser(ctx context.Context, store storage.Store) (*models.User, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	user, err := store.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
