package friends

import (
	"context"
	"errors"
	"fmt"

	"microblog/internal/models"
	"microblog/internal/repositories"
)

var (
	ErrAlreadyFriend = errors.New("already a friend")
	ErrNotFriend     = errors.New("not a friend")
)

// Seeder restores the friends table to its fixture state.
type Seeder interface {
	Seed(ctx context.Context) error
}

// Service implements friend list reads and writes on top of the denormalized
// friends column. Updates are read-modify-write without locking; concurrent
// writers to the same list may overwrite each other.
type Service struct {
	repo   repositories.FriendRepository
	seeder Seeder
}

// NewService builds a Service.
func NewService(repo repositories.FriendRepository, seeder Seeder) *Service {
	return &Service{repo: repo, seeder: seeder}
}

// GetFriends returns the friend names of me.
func (s *Service) GetFriends(ctx context.Context, me string) ([]string, error) {
	list, err := s.repo.GetFriendList(ctx, me)
	if err != nil {
		return nil, err
	}
	return list.Names(), nil
}

// AddFriend appends user to the friend list of me.
func (s *Service) AddFriend(ctx context.Context, me, user string) ([]string, error) {
	list, err := s.repo.GetFriendList(ctx, me)
	if err != nil {
		return nil, err
	}
	if list.Contains(user) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyFriend, user)
	}

	names := append(list.Names(), user)
	if err := s.repo.UpdateFriends(ctx, me, models.JoinFriends(names)); err != nil {
		return nil, err
	}
	return names, nil
}

// RemoveFriend drops every occurrence of user from the friend list of me.
func (s *Service) RemoveFriend(ctx context.Context, me, user string) ([]string, error) {
	list, err := s.repo.GetFriendList(ctx, me)
	if err != nil {
		return nil, err
	}
	if !list.Contains(user) {
		return nil, fmt.Errorf("%w: %s", ErrNotFriend, user)
	}

	names := make([]string, 0, len(list.Names()))
	for _, n := range list.Names() {
		if n != user {
			names = append(names, n)
		}
	}
	if err := s.repo.UpdateFriends(ctx, me, models.JoinFriends(names)); err != nil {
		return nil, err
	}
	return names, nil
}

// Initialize re-seeds the friends table.
func (s *Service) Initialize(ctx context.Context) error {
	if s.seeder == nil {
		return errors.New("no seeder configured")
	}
	if err := s.seeder.Seed(ctx); err != nil {
		return fmt.Errorf("seed friends: %w", err)
	}
	return nil
}
