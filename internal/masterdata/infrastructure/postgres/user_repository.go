package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	masterdata "swapstation-cloud/internal/masterdata/domain"
)

const defaultUsersTable = "users"

// UserRepository is a Postgres implementation for users.
type UserRepository struct {
	db    DBTX
	table string
}

// NewUserRepository constructs a repository.
func NewUserRepository(db DBTX, opts ...UserOption) *UserRepository {
	repo := &UserRepository{db: db, table: defaultUsersTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// UserOption configures the repository.
type UserOption func(*UserRepository)

// WithUsersTable overrides the default table name.
func WithUsersTable(table string) UserOption {
	return func(repo *UserRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*masterdata.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	if id == "" {
		return nil, errors.New("user repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, name, phone, created_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var user masterdata.User
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}

// List loads all users ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]masterdata.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, phone, created_at
FROM %s
ORDER BY id`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []masterdata.User
	for rows.Next() {
		var user masterdata.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Phone, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	return users, rows.Err()
}

// Save upserts a user.
func (r *UserRepository) Save(ctx context.Context, user *masterdata.User) error {
	if r == nil || r.db == nil {
		return errors.New("user repo: nil db")
	}
	if user == nil {
		return errors.New("user repo: nil user")
	}
	if err := user.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	name,
	phone
) VALUES (
	$1, $2, $3
)
ON CONFLICT (id)
DO UPDATE SET
	name = EXCLUDED.name,
	phone = EXCLUDED.phone`, r.table)

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Phone)
	if err != nil {
		return err
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Delete removes a user by id.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("user repo: nil db")
	}
	if id == "" {
		return errors.New("user repo: empty id")
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.table), id)
	return err
}
