package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/internal/dbx"
)

const userSelect = `SELECT id, email, password_hash, first_name, last_name, reset_token, created_at, updated_at FROM users`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*core.User, error) {
	u := &core.User{}
	var first, last, reset sql.NullString
	var createdAt, updatedAt int64

	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &first, &last, &reset, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	u.FirstName = nullable(first)
	u.LastName = nullable(last)
	u.ResetToken = nullable(reset)
	u.CreatedAt = fromUnixNano(createdAt)
	u.UpdatedAt = fromUnixNano(updatedAt)
	return u, nil
}

func (a *Adapter) FindByAttributes(ctx context.Context, attrs map[string]string) ([]*core.User, error) {
	where, args, err := dbx.UserFilter(attrs, dbx.Question)
	if err != nil {
		return nil, err
	}

	rows, err := a.db.QueryContext(ctx, userSelect+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	var result []*core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (a *Adapter) FindByID(ctx context.Context, id string) (*core.User, error) {
	u, err := scanUser(a.db.QueryRowContext(ctx, userSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return u, nil
}

// Save inserts u or, when the id exists, updates every column.
func (a *Adapter) Save(ctx context.Context, u *core.User) error {
	query := `INSERT INTO users (id, email, password_hash, first_name, last_name, reset_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email,
			password_hash = excluded.password_hash,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			reset_token = excluded.reset_token,
			updated_at = excluded.updated_at`

	_, err := a.db.ExecContext(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.ResetToken,
		u.CreatedAt.UnixNano(), u.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (a *Adapter) Remove(ctx context.Context, u *core.User) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, u.ID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func (a *Adapter) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (a *Adapter) All(ctx context.Context) ([]*core.User, error) {
	return a.FindByAttributes(ctx, nil)
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
