package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ashokafoundation/website/pkg/pg"
)

const userColumns = `id, username, email, full_name, password_hash, is_active, is_admin, created_at, updated_at, last_login_at`

// Repository is the data-access layer over the users table. All writes are
// single statements, so a cancelled request never leaves a half-applied
// mutation behind.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var fullName *string
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &fullName, &u.PasswordHash,
		&u.IsActive, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if fullName != nil {
		u.FullName = *fullName
	}
	return &u, nil
}

// FindByID returns the user with the given id, or ErrNotFound.
func (r *Repository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByUsername matches the normalized (lowercase) username exactly.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// FindByEmail matches the normalized (lowercase) email exactly.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByIdentifier matches identifier against username or email as-is; the
// caller normalizes. Uniqueness constraints make an ambiguous match
// unreachable, so the first row wins.
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1 LIMIT 1`, identifier)
	return scanUser(row)
}

// Create inserts a new user and returns the stored record. A losing
// concurrent insert surfaces as *DuplicateError attributed to the
// violated column.
func (r *Repository) Create(ctx context.Context, u *User) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, full_name, password_hash, is_active, is_admin)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		RETURNING `+userColumns,
		u.Username, u.Email, u.FullName, u.PasswordHash, u.IsActive, u.IsAdmin,
	)
	created, err := scanUser(row)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, &DuplicateError{Field: duplicateField(err)}
		}
		return nil, err
	}
	return created, nil
}

// duplicateField maps the violated constraint to the colliding column.
func duplicateField(err error) string {
	name := pg.ConstraintName(err)
	switch {
	case strings.Contains(name, "email"):
		return "email"
	case strings.Contains(name, "username"):
		return "username"
	default:
		return "identifier"
	}
}

// Update applies only the provided patch fields in one UPDATE and returns
// the refreshed record.
func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (*User, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.FullName != nil {
		add("full_name", *patch.FullName)
	}
	if patch.PasswordHash != nil {
		add("password_hash", *patch.PasswordHash)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if patch.IsAdmin != nil {
		add("is_admin", *patch.IsAdmin)
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + userColumns
	updated, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, &DuplicateError{Field: duplicateField(err)}
		}
		return nil, err
	}
	return updated, nil
}

// SetLastLogin records a successful authentication. Callers treat a
// failure here as non-fatal.
func (r *Repository) SetLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("set last login: %w", err)
	}
	return nil
}

// Deactivate soft-deletes the account; inactive users may not
// authenticate. Rows are never hard-deleted.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
