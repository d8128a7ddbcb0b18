package sqlite

import (
	"context"
	"fmt"

	"github.com/lborres/bantay/core"
)

func (a *Adapter) CreateSession(ctx context.Context, s *core.Session) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, token_hash, created_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.UserID, s.TokenHash, s.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (a *Adapter) FindSessions(ctx context.Context, tokenHash string) ([]*core.Session, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, user_id, token_hash, created_at FROM sessions WHERE token_hash = ? ORDER BY created_at`,
		tokenHash)
	if err != nil {
		return nil, fmt.Errorf("failed to select sessions: %w", err)
	}
	defer rows.Close()

	var result []*core.Session
	for rows.Next() {
		s := &core.Session{}
		var createdAt int64
		if err := rows.Scan(&s.ID, &s.UserID, &s.TokenHash, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.CreatedAt = fromUnixNano(createdAt)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (a *Adapter) RemoveSession(ctx context.Context, s *core.Session) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, s.ID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}
