package masterdata

import (
	"context"
	"errors"
	"time"
)

// User represents a registered rider.
type User struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
}

// Validate checks user invariants.
func (u User) Validate() error {
	if u.ID == "" {
		return errors.New("user: empty id")
	}
	if u.Name == "" {
		return errors.New("user: empty name")
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Save(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}
