package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"splitfair/internal/models"
	"splitfair/internal/storage"
)

// CreateUser persists a new user to the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, image_url, external_id, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, nullString(user.ImageURL),
		nullString(user.ExternalID), nullString(user.PasswordHash), user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

const userColumns = "id, name, email, image_url, external_id, password_hash, created_at"

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	var imageURL, externalID, passwordHash sql.NullString
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &imageURL, &externalID, &passwordHash, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.ImageURL = imageURL.String
	user.ExternalID = externalID.String
	user.PasswordHash = passwordHash.String
	return user, nil
}

func (s *SQLiteStore) getUserWhere(ctx context.Context, where string, arg any) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE %s", userColumns, where), arg)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUserWhere(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserWhere(ctx, "email = ?", email)
}

// GetUserByExternalID retrieves a user by the identity provider's subject.
func (s *SQLiteStore) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.getUserWhere(ctx, "external_id = ?", externalID)
}

// UpdateUser updates name, email and avatar of an existing user.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ?, image_url = ? WHERE id = ?",
		user.Name, user.Email, nullString(user.ImageURL), user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteUserByExternalID removes a provider-synced user.
func (s *SQLiteStore) DeleteUserByExternalID(ctx context.Context, externalID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE external_id = ?", externalID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SearchUsersByName returns up to limit users whose name starts with prefix.
func (s *SQLiteStore) SearchUsersByName(ctx context.Context, prefix string, limit int) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE name LIKE ? || '%%' ORDER BY name LIMIT ?", userColumns),
		prefix, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// nullString maps empty strings to NULL so UNIQUE columns stay usable.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
