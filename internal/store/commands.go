package store

import (
	"context"
	"fmt"
	"time"
)

// RecordCommand counts one console submission. Only the command word is
// stored, never the raw input line.
func (s *Store) RecordCommand(ctx context.Context, command string, elevated bool, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO console_commands (command, elevated, timestamp)
		VALUES (?, ?, ?)
	`, command, elevated, utc(at))
	if err != nil {
		return fmt.Errorf("record command: %w", err)
	}
	return nil
}

// TopCommands returns the most submitted commands, most popular first.
func (s *Store) TopCommands(ctx context.Context, limit int) ([]CommandStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT command, COUNT(*) AS n
		FROM console_commands
		GROUP BY command
		ORDER BY n DESC, command ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top commands: %w", err)
	}
	defer rows.Close()

	var out []CommandStat
	for rows.Next() {
		var c CommandStat
		if err := rows.Scan(&c.Command, &c.Count); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
