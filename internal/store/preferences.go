package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LoadDarkMode returns the stored flag for visitorID; ok is false when
// the visitor never chose.
func (s *Store) LoadDarkMode(ctx context.Context, visitorID string) (dark, ok bool, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT dark_mode FROM preferences WHERE visitor_id = ?`, visitorID,
	).Scan(&dark)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("load preference: %w", err)
	}
	return dark, true, nil
}

// SaveDarkMode upserts the flag for visitorID.
func (s *Store) SaveDarkMode(ctx context.Context, visitorID string, dark bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (visitor_id, dark_mode, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(visitor_id) DO UPDATE SET
			dark_mode = excluded.dark_mode,
			updated_at = excluded.updated_at
	`, visitorID, dark, utc(time.Now()))
	if err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	return nil
}
