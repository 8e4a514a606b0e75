package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/too-doo/internal/model"
)

// CreateUser inserts a new account. Emails are stored lowercased and
// must be unique.
func (s *SQLStore) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" {
		return model.User{}, fmt.Errorf("%w: user email must not be empty", ErrInvalid)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Provider == "" {
		user.Provider = "password"
	}
	user.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, s.rebind(
		"INSERT INTO users (id, email, password_hash, provider, created_at) VALUES (?, ?, ?, ?, ?)"),
		user.ID, user.Email, user.PasswordHash, user.Provider, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("user %s: %w", user.Email, ErrConflict)
		}
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

const userColumns = "id, email, password_hash, provider, created_at, last_login_at"

// GetUserByID retrieves an account by id.
func (s *SQLStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, s.rebind(
		"SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, notFoundIf(err, "user", id))
	}
	return &u, nil
}

// GetUserByEmail retrieves an account by email, case-insensitively.
func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := s.db.GetContext(ctx, &u, s.rebind(
		"SELECT "+userColumns+" FROM users WHERE email = ?"), email)
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", notFoundIf(err, "user", email))
	}
	return &u, nil
}

// ListUserIDs returns every account id.
func (s *SQLStore) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, "SELECT id FROM users ORDER BY created_at, id"); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return ids, nil
}

// TouchLogin records the time of a successful sign in.
func (s *SQLStore) TouchLogin(ctx context.Context, userID string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE users SET last_login_at = ? WHERE id = ?"), at.UTC(), userID)
	if err != nil {
		return fmt.Errorf("updating last login of %s: %w", userID, err)
	}
	return requireAffected(result, "user", userID)
}

// CreateSession stores a session token.
func (s *SQLStore) CreateSession(ctx context.Context, session model.Session) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		"INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)"),
		session.Token, session.UserID, session.CreatedAt.UTC(), session.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// GetSession looks up a session by token. Expiry is checked by the caller.
func (s *SQLStore) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var sess model.Session
	err := s.db.GetContext(ctx, &sess, s.rebind(
		"SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?"), token)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", notFoundIf(err, "session", "token"))
	}
	return &sess, nil
}

// DeleteSession removes a session. Deleting an unknown token is not an error.
func (s *SQLStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(
		"DELETE FROM sessions WHERE token = ?"), token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes every session that expired at or before now.
func (s *SQLStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, s.rebind(
		"DELETE FROM sessions WHERE expires_at <= ?"), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return int(n), nil
}

// GetPreference returns a stored preference value, or "" when unset.
func (s *SQLStore) GetPreference(ctx context.Context, userID, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.rebind(
		"SELECT value FROM preferences WHERE user_id = ? AND key = ?"), userID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting preference %s: %w", key, err)
	}
	return value, nil
}

// SetPreference stores a preference value, replacing any previous one.
func (s *SQLStore) SetPreference(ctx context.Context, userID, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO preferences (user_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`),
		userID, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting preference %s: %w", key, err)
	}
	return nil
}

// IsMessageImported reports whether a mail message already produced a note.
func (s *SQLStore) IsMessageImported(ctx context.Context, messageID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, s.rebind(
		"SELECT COUNT(*) FROM imported_messages WHERE message_id = ?"), messageID)
	if err != nil {
		return false, fmt.Errorf("checking imported message: %w", err)
	}
	return count > 0, nil
}

// MarkMessageImported records that messageID produced noteID.
func (s *SQLStore) MarkMessageImported(ctx context.Context, messageID, noteID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		"INSERT INTO imported_messages (message_id, note_id, imported_at) VALUES (?, ?, ?)"),
		messageID, noteID, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("message %s: %w", messageID, ErrConflict)
		}
		return fmt.Errorf("marking message imported: %w", err)
	}
	return nil
}
