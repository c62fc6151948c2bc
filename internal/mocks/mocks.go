package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"microblog/internal/clients"
	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/telemetry"
)

type FriendRepositoryMock struct {
	mock.Mock
}

func (m *FriendRepositoryMock) GetFriendList(ctx context.Context, me string) (models.FriendList, error) {
	args := m.Called(ctx, me)
	var list models.FriendList
	if val := args.Get(0); val != nil {
		list = val.(models.FriendList)
	}
	return list, args.Error(1)
}

func (m *FriendRepositoryMock) UpdateFriends(ctx context.Context, me string, friends string) error {
	args := m.Called(ctx, me, friends)
	return args.Error(0)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUserByName(ctx context.Context, name string) (models.User, error) {
	args := m.Called(ctx, name)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByID(ctx context.Context, id int) (models.User, error) {
	args := m.Called(ctx, id)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) DeleteUsersAbove(ctx context.Context, id int) (int64, error) {
	args := m.Called(ctx, id)
	return int64(args.Int(0)), args.Error(1)
}

// TweetRepositoryMock feeds the configured tweets to the visitor in order.
type TweetRepositoryMock struct {
	mock.Mock
}

func (m *TweetRepositoryMock) ScanTweets(ctx context.Context, q repositories.TweetQuery, visit repositories.TweetVisitor) error {
	args := m.Called(ctx, q)
	if val := args.Get(0); val != nil {
		for _, tweet := range val.([]models.Tweet) {
			more, err := visit(tweet)
			if err != nil {
				return err
			}
			if !more {
				break
			}
		}
	}
	return args.Error(1)
}

func (m *TweetRepositoryMock) CreateTweet(ctx context.Context, userID int, text string) (models.Tweet, error) {
	args := m.Called(ctx, userID, text)
	var tweet models.Tweet
	if val := args.Get(0); val != nil {
		tweet = val.(models.Tweet)
	}
	return tweet, args.Error(1)
}

func (m *TweetRepositoryMock) DeleteTweetsAbove(ctx context.Context, id int) (int64, error) {
	args := m.Called(ctx, id)
	return int64(args.Int(0)), args.Error(1)
}

type FriendsClientMock struct {
	mock.Mock
}

func (m *FriendsClientMock) GetFriends(ctx context.Context, me string) ([]string, error) {
	args := m.Called(ctx, me)
	var friends []string
	if val := args.Get(0); val != nil {
		friends = val.([]string)
	}
	return friends, args.Error(1)
}

func (m *FriendsClientMock) AddFriend(ctx context.Context, me, user string) ([]string, error) {
	args := m.Called(ctx, me, user)
	var friends []string
	if val := args.Get(0); val != nil {
		friends = val.([]string)
	}
	return friends, args.Error(1)
}

func (m *FriendsClientMock) RemoveFriend(ctx context.Context, me, user string) ([]string, error) {
	args := m.Called(ctx, me, user)
	var friends []string
	if val := args.Get(0); val != nil {
		friends = val.([]string)
	}
	return friends, args.Error(1)
}

func (m *FriendsClientMock) Initialize(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// PublisherMock records audit publishes.
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

type SeederMock struct {
	mock.Mock
}

func (m *SeederMock) Seed(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ repositories.FriendRepository = (*FriendRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.TweetRepository = (*TweetRepositoryMock)(nil)
var _ clients.Friends = (*FriendsClientMock)(nil)
var _ telemetry.Publisher = (*PublisherMock)(nil)
var _ interface {
	Seed(context.Context) error
} = (*SeederMock)(nil)
