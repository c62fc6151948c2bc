package friends_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"microblog/internal/friends"
	"microblog/internal/mocks"
	"microblog/internal/models"
	"microblog/internal/repositories"
)

func TestGetFriends(t *testing.T) {
	repo := &mocks.FriendRepositoryMock{}
	repo.On("GetFriendList", mock.Anything, "alice").Return(models.FriendList{Me: "alice", Friends: "bob,carol"}, nil)
	repo.On("GetFriendList", mock.Anything, "nobody").Return(nil, repositories.ErrFriendListNotFound)

	svc := friends.NewService(repo, nil)
	got, err := svc.GetFriends(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, got)

	_, err = svc.GetFriends(context.Background(), "nobody")
	assert.ErrorIs(t, err, repositories.ErrFriendListNotFound)
}

func TestAddFriend(t *testing.T) {
	repo := &mocks.FriendRepositoryMock{}
	repo.On("GetFriendList", mock.Anything, "alice").Return(models.FriendList{Me: "alice", Friends: "bob"}, nil)
	repo.On("UpdateFriends", mock.Anything, "alice", "bob,carol").Return(nil).Once()

	svc := friends.NewService(repo, nil)
	got, err := svc.AddFriend(context.Background(), "alice", "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, got)

	_, err = svc.AddFriend(context.Background(), "alice", "bob")
	assert.ErrorIs(t, err, friends.ErrAlreadyFriend)
	repo.AssertNumberOfCalls(t, "UpdateFriends", 1)
}

func TestAddFriendToEmptyList(t *testing.T) {
	repo := &mocks.FriendRepositoryMock{}
	repo.On("GetFriendList", mock.Anything, "alice").Return(models.FriendList{Me: "alice"}, nil)
	repo.On("UpdateFriends", mock.Anything, "alice", "bob").Return(nil)

	svc := friends.NewService(repo, nil)
	got, err := svc.AddFriend(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, got)
}

func TestAddFriendNoRowsAffected(t *testing.T) {
	repo := &mocks.FriendRepositoryMock{}
	repo.On("GetFriendList", mock.Anything, "alice").Return(models.FriendList{Me: "alice"}, nil)
	repo.On("UpdateFriends", mock.Anything, "alice", "bob").Return(repositories.ErrNoRowsAffected)

	svc := friends.NewService(repo, nil)
	_, err := svc.AddFriend(context.Background(), "alice", "bob")
	assert.ErrorIs(t, err, repositories.ErrNoRowsAffected)
}

func TestRemoveFriend(t *testing.T) {
	repo := &mocks.FriendRepositoryMock{}
	repo.On("GetFriendList", mock.Anything, "alice").Return(models.FriendList{Me: "alice", Friends: "bob,carol,dave"}, nil)
	repo.On("UpdateFriends", mock.Anything, "alice", "bob,dave").Return(nil)

	svc := friends.NewService(repo, nil)
	got, err := svc.RemoveFriend(context.Background(), "alice", "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "dave"}, got)

	_, err = svc.RemoveFriend(context.Background(), "alice", "erin")
	assert.ErrorIs(t, err, friends.ErrNotFriend)
}

func TestRemoveLastFriend(t *testing.T) {
	repo := &mocks.FriendRepositoryMock{}
	repo.On("GetFriendList", mock.Anything, "alice").Return(models.FriendList{Me: "alice", Friends: "bob"}, nil)
	repo.On("UpdateFriends", mock.Anything, "alice", "").Return(nil)

	svc := friends.NewService(repo, nil)
	got, err := svc.RemoveFriend(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertExpectations(t)
}

func TestInitialize(t *testing.T) {
	seeder := &mocks.SeederMock{}
	seeder.On("Seed", mock.Anything).Return(nil).Once()
	seeder.On("Seed", mock.Anything).Return(errors.New("exit status 1")).Once()

	svc := friends.NewService(&mocks.FriendRepositoryMock{}, seeder)
	require.NoError(t, svc.Initialize(context.Background()))
	assert.Error(t, svc.Initialize(context.Background()))

	assert.Error(t, friends.NewService(&mocks.FriendRepositoryMock{}, nil).Initialize(context.Background()))
}
