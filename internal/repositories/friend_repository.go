package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"microblog/internal/models"
)

var (
	ErrFriendListNotFound = errors.New("friend list not found")
	ErrNoRowsAffected     = errors.New("no rows affected")
)

// FriendRepository abstracts friend list persistence.
type FriendRepository interface {
	GetFriendList(ctx context.Context, me string) (models.FriendList, error)
	UpdateFriends(ctx context.Context, me string, friends string) error
}

// FriendRepo is a sqlx implementation of FriendRepository.
type FriendRepo struct {
	db *sqlx.DB
}

// NewFriendRepo constructs a FriendRepo.
func NewFriendRepo(db *sqlx.DB) *FriendRepo {
	return &FriendRepo{db: db}
}

// GetFriendList fetches the row keyed by me.
func (r *FriendRepo) GetFriendList(ctx context.Context, me string) (models.FriendList, error) {
	var list models.FriendList
	err := r.db.GetContext(ctx, &list, `SELECT id, me, friends FROM friends WHERE me=$1`, me)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FriendList{}, ErrFriendListNotFound
	}
	if err != nil {
		return models.FriendList{}, fmt.Errorf("select friends: %w", err)
	}
	return list, nil
}

// UpdateFriends overwrites the whole friend column of me.
func (r *FriendRepo) UpdateFriends(ctx context.Context, me string, friends string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE friends SET friends=$1 WHERE me=$2`, friends, me)
	if err != nil {
		return fmt.Errorf("update friends: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update friends: %w", err)
	}
	if count == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
