package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"microblog/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository is read-only access to the seeded accounts.
type UserRepository interface {
	GetUserByName(ctx context.Context, name string) (models.User, error)
	GetUserByID(ctx context.Context, id int) (models.User, error)
	DeleteUsersAbove(ctx context.Context, id int) (int64, error)
}

// UserRepo is a sqlx-backed UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUserByName looks a user up by its unique name.
func (r *UserRepo) GetUserByName(ctx context.Context, name string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, name, salt, password FROM users WHERE name=$1`, name)
	return user, userErr(err)
}

// GetUserByID looks a user up by id.
func (r *UserRepo) GetUserByID(ctx context.Context, id int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, name, salt, password FROM users WHERE id=$1`, id)
	return user, userErr(err)
}

// DeleteUsersAbove removes every user whose id is greater than id.
func (r *UserRepo) DeleteUsersAbove(ctx context.Context, id int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id > $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete users: %w", err)
	}
	return res.RowsAffected()
}

func userErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrUserNotFound
	default:
		return fmt.Errorf("select user: %w", err)
	}
}
