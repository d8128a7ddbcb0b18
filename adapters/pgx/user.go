package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/internal/dbx"
)

const userSelect = `SELECT id, email, password_hash, first_name, last_name, reset_token, created_at, updated_at FROM public.users`

func scanUser(row pgx.Row) (*core.User, error) {
	user := &core.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.ResetToken,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (a *Adapter) FindByAttributes(ctx context.Context, attrs map[string]string) ([]*core.User, error) {
	where, args, err := dbx.UserFilter(attrs, dbx.Dollar)
	if err != nil {
		return nil, err
	}

	rows, err := a.db.Query(ctx, userSelect+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	var users []*core.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (a *Adapter) FindByID(ctx context.Context, id string) (*core.User, error) {
	user, err := scanUser(a.db.QueryRow(ctx, userSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return user, nil
}

// Save upserts user; updated_at is taken from the database on conflict.
func (a *Adapter) Save(ctx context.Context, user *core.User) error {
	q := `INSERT INTO public.users (id, email, password_hash, first_name, last_name, reset_token, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	      ON CONFLICT (id) DO UPDATE SET
	          email = EXCLUDED.email,
	          password_hash = EXCLUDED.password_hash,
	          first_name = EXCLUDED.first_name,
	          last_name = EXCLUDED.last_name,
	          reset_token = EXCLUDED.reset_token,
	          updated_at = EXCLUDED.updated_at`

	_, err := a.db.Exec(ctx, q,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.ResetToken,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (a *Adapter) Remove(ctx context.Context, user *core.User) error {
	tag, err := a.db.Exec(ctx, `DELETE FROM public.users WHERE id = $1`, user.ID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func (a *Adapter) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRow(ctx, `SELECT COUNT(*) FROM public.users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (a *Adapter) All(ctx context.Context) ([]*core.User, error) {
	return a.FindByAttributes(ctx, nil)
}
