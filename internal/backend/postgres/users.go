package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/domain"
)

const userColumns = `
	id, email, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(avatar_url, ''), created_at
`

// LookupUserByEmail finds a user by exact email, case-insensitively.
func (c *Client) LookupUserByEmail(ctx context.Context, email string) (domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`

	row := c.db.Pool.QueryRow(ctx, query, email)
	u, err := scanUser(row.Scan)
	if err != nil {
		return domain.User{}, mapErr("lookup user by email", err)
	}
	return u, nil
}

// SearchUsers matches the query as a substring of email or name.
func (c *Client) SearchUsers(ctx context.Context, query string, limit int) ([]domain.User, error) {
	sql := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email ILIKE '%' || $1 || '%'
		   OR COALESCE(first_name, '') ILIKE '%' || $1 || '%'
		   OR COALESCE(last_name, '') ILIKE '%' || $1 || '%'
		ORDER BY email ASC
		LIMIT $2
	`

	rows, err := c.db.Pool.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, mapErr("search users", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, mapErr("scan user", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListRecentUsers returns the most recently created users, bounded by limit.
// Used as the client-side fallback listing when search is unavailable.
func (c *Client) ListRecentUsers(ctx context.Context, limit int) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := c.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, mapErr("list recent users", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, mapErr("scan user", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (c *Client) getUser(ctx context.Context, id uuid.UUID) (domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	row := c.db.Pool.QueryRow(ctx, query, id)
	u, err := scanUser(row.Scan)
	if err != nil {
		return domain.User{}, mapErr("get user", err)
	}
	return u, nil
}

func scanUser(scan func(dest ...any) error) (domain.User, error) {
	var u domain.User
	err := scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.AvatarURL,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
