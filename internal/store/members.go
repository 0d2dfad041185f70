package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/civicsite/civicsite/internal/model"
)

// CreateMember inserts a self-registered member. JoinedAt defaults to now
// and IsPublic defaults to true unless the caller set them.
func (s *Store) CreateMember(ctx context.Context, m *model.Member) error {
	now := time.Now().UTC()
	if m.JoinedAt.IsZero() {
		m.JoinedAt = now
	}
	m.CreatedAt = now
	m.UpdatedAt = now

	id, err := s.insertReturningID(ctx,
		`INSERT INTO members (name, phone, area, joined_at, is_public, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Name, m.Phone, m.Area, m.JoinedAt, m.IsPublic, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	m.ID = id
	return nil
}

// ListMembers returns one page of members sorted by join date, newest first,
// along with the total count for the same filter. With onlyPublic set, hidden
// members are excluded (the public directory view).
func (s *Store) ListMembers(ctx context.Context, onlyPublic bool, page, pageSize int) ([]model.Member, int64, error) {
	where := ""
	if onlyPublic {
		where = " WHERE is_public = TRUE"
	}

	var total int64
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM members`+where); err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}

	offset := (page - 1) * pageSize
	var members []model.Member
	err := s.db.SelectContext(ctx, &members,
		s.rebind(`SELECT * FROM members`+where+` ORDER BY joined_at DESC, id DESC LIMIT ? OFFSET ?`),
		pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	return members, total, nil
}

// GetMember returns a member by id, or ErrNotFound.
func (s *Store) GetMember(ctx context.Context, id int64) (*model.Member, error) {
	var m model.Member
	err := s.db.GetContext(ctx, &m, s.rebind(`SELECT * FROM members WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

// SetMemberVisibility sets the isPublic flag of a member. Returns ErrNotFound
// if the member does not exist.
func (s *Store) SetMemberVisibility(ctx context.Context, id int64, isPublic bool) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE members SET is_public = ?, updated_at = ? WHERE id = ?`),
		isPublic, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set member visibility: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
