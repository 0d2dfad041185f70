package store

import (
	"context"
	"fmt"
	"time"

	"github.com/civicsite/civicsite/internal/model"
)

// CreateEvent inserts a new event.
func (s *Store) CreateEvent(ctx context.Context, e *model.Event) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	id, err := s.insertReturningID(ctx,
		`INSERT INTO events (title, description, event_date, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Title, e.Description, e.Date, e.ImageURL, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	e.ID = id
	return nil
}

// ListEvents returns all events, soonest first.
func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := s.db.SelectContext(ctx, &events, `SELECT * FROM events ORDER BY event_date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// DeleteEvent removes an event by id. Returns ErrNotFound if it does not exist.
func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM events WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
