package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medfront/medfront/internal/core"
)

// CreateUser inserts a new user record. It fails when the username is
// already taken.
func (s *Store) CreateUser(ctx context.Context, user core.User) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	username := strings.TrimSpace(user.Username)
	if username == "" {
		return errors.New("username is required")
	}
	if !user.Role.Valid() {
		return fmt.Errorf("invalid role: %s", user.Role)
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO users (username, email, hashed_password, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, username, strings.TrimSpace(user.Email), user.HashedPassword, string(user.Role), user.CreatedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("store user: %w", err)
	}

	return nil
}

// GetUser returns a user by username, or nil when no such user exists.
func (s *Store) GetUser(ctx context.Context, username string) (*core.User, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}

	var (
		user      core.User
		role      string
		createdAt int64
	)
	row := s.DB.QueryRowContext(ctx, `
		SELECT username, email, hashed_password, role, created_at
		FROM users
		WHERE username = ?
	`, username)
	if err := row.Scan(&user.Username, &user.Email, &user.HashedPassword, &role, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	user.Role = core.UserRole(role)
	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &user, nil
}

// EmailExists reports whether another user already uses the email. An
// optional excludeUsername skips the named user's own record.
func (s *Store) EmailExists(ctx context.Context, email, excludeUsername string) (bool, error) {
	if s == nil || s.DB == nil {
		return false, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var count int
	row := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE email = ? AND username != ?
	`, strings.TrimSpace(email), strings.TrimSpace(excludeUsername))
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

// UpdateUserInfo updates a user's email and/or password hash. Empty
// arguments leave the corresponding column untouched.
func (s *Store) UpdateUserInfo(ctx context.Context, username, email, hashedPassword string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if email = strings.TrimSpace(email); email != "" {
		sets = append(sets, "email = ?")
		args = append(args, email)
	}
	if hashedPassword != "" {
		sets = append(sets, "hashed_password = ?")
		args = append(args, hashedPassword)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, strings.TrimSpace(username))

	res, err := s.DB.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE username = ?", args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRowAffected(res, "user")
}

// UpdateUserRole changes a user's role.
func (s *Store) UpdateUserRole(ctx context.Context, username string, role core.UserRole) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !role.Valid() {
		return fmt.Errorf("invalid role: %s", role)
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE users SET role = ? WHERE username = ?
	`, string(role), strings.TrimSpace(username))
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return requireRowAffected(res, "user")
}

// DeleteUser removes a user record.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, strings.TrimSpace(username))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRowAffected(res, "user")
}

// ListUsers returns one page of users ordered by creation time (newest
// first) along with the total user count.
func (s *Store) ListUsers(ctx context.Context, page, pageSize int) ([]core.User, int, error) {
	if s == nil || s.DB == nil {
		return nil, 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = core.DefaultPageSize
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT username, email, hashed_password, role, created_at
		FROM users
		ORDER BY created_at DESC, username
		LIMIT ? OFFSET ?
	`, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	users, err := scanUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CountUsersByRole returns how many users hold any of the given roles.
func (s *Store) CountUsersByRole(ctx context.Context, roles ...core.UserRole) (int, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if len(roles) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(roles)), ", ")
	args := make([]any, len(roles))
	for i, r := range roles {
		args[i] = string(r)
	}

	var count int
	row := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role IN ("+placeholders+")", args...)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return count, nil
}

// RecentUsers returns the most recently registered users.
func (s *Store) RecentUsers(ctx context.Context, limit int) ([]core.User, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if limit < 1 {
		limit = 5
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT username, email, hashed_password, role, created_at
		FROM users
		ORDER BY created_at DESC, username
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent users: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	return scanUsers(rows)
}

func scanUsers(rows *sql.Rows) ([]core.User, error) {
	var users []core.User
	for rows.Next() {
		var (
			user      core.User
			role      string
			createdAt int64
		)
		if err := rows.Scan(&user.Username, &user.Email, &user.HashedPassword, &role, &createdAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		user.Role = core.UserRole(role)
		user.CreatedAt = time.Unix(createdAt, 0).UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ErrNotFound reports that a store mutation matched no rows.
var ErrNotFound = errors.New("record not found")

func requireRowAffected(res sql.Result, noun string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("confirm %s update: %w", noun, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", noun, ErrNotFound)
	}
	return nil
}
