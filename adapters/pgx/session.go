package pgx

import (
	"context"
	"fmt"

	"github.com/lborres/bantay/core"
)

func (a *Adapter) CreateSession(ctx context.Context, session *core.Session) error {
	q := `INSERT INTO public.sessions (id, user_id, token_hash, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := a.db.Exec(ctx, q, session.ID, session.UserID, session.TokenHash, session.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (a *Adapter) FindSessions(ctx context.Context, tokenHash string) ([]*core.Session, error) {
	q := `SELECT id, user_id, token_hash, created_at FROM public.sessions WHERE token_hash = $1 ORDER BY created_at`

	rows, err := a.db.Query(ctx, q, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("failed to select sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*core.Session
	for rows.Next() {
		s := &core.Session{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (a *Adapter) RemoveSession(ctx context.Context, session *core.Session) error {
	tag, err := a.db.Exec(ctx, `DELETE FROM public.sessions WHERE id = $1`, session.ID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}
