package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civicsite/civicsite/internal/model"
)

// NormalizeEmail lowercases and trims an email address. All admin lookups
// and inserts go through this so the uniqueness check is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAdmin inserts a new admin account. The password hash must already be
// computed by the caller.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	now := time.Now().UTC()
	admin.Email = NormalizeEmail(admin.Email)
	admin.CreatedAt = now
	admin.UpdatedAt = now

	id, err := s.insertReturningID(ctx,
		`INSERT INTO admins (email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		admin.Email, admin.PasswordHash, admin.CreatedAt, admin.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	admin.ID = id
	return nil
}

// GetAdminByEmail returns the admin with the given email, or ErrNotFound.
// The password hash is included; it is the only call site that sees it.
func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	err := s.db.GetContext(ctx, &admin,
		s.rebind(`SELECT * FROM admins WHERE email = ?`), NormalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &admin, nil
}

// SetAdminPassword replaces the password hash for an existing admin account.
// Used by the seeding CLI to make `admin create` idempotent per email.
func (s *Store) SetAdminPassword(ctx context.Context, email, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE admins SET password_hash = ?, updated_at = ? WHERE email = ?`),
		passwordHash, time.Now().UTC(), NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("set admin password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAdminLastLogin records a successful login.
func (s *Store) UpdateAdminLastLogin(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE admins SET last_login_at = ? WHERE id = ?`), time.Now().UTC(), id)
	return err
}

// HasAnyAdmin reports whether at least one admin account exists.
func (s *Store) HasAnyAdmin(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admins`); err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListAdmins returns all admin accounts.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.SelectContext(ctx, &admins, `SELECT * FROM admins ORDER BY email`); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// insertReturningID runs an INSERT and returns the generated id, papering
// over the pgx/LastInsertId split.
func (s *Store) insertReturningID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if s.driver == "pgx" {
		var id int64
		err := s.db.QueryRowxContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
