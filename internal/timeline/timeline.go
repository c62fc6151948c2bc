// Package timeline collects tweet pages: the friend-filtered home timeline, a
// single user's tweets and substring search results.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"microblog/internal/htmlify"
	"microblog/internal/models"
	"microblog/internal/repositories"
)

// PerPage caps every page.
const PerPage = 50

// DisplayLayout is the rendered tweet time, always in UTC. It doubles as the
// until cursor; tweets are stored at second precision.
const DisplayLayout = "2006-01-02 15:04:05"

var (
	ErrInvalidCursor = errors.New("invalid until cursor")
	ErrUnknownAuthor = errors.New("tweet author not found")
)

// Entry is a tweet ready for rendering.
type Entry struct {
	ID        int
	UserName  string
	HTML      template.HTML
	Time      string
	CreatedAt time.Time
}

// Event converts the entry for websocket delivery.
func (e Entry) Event() models.TweetEvent {
	return models.TweetEvent{
		Type:     "tweet",
		ID:       e.ID,
		UserName: e.UserName,
		HTML:     string(e.HTML),
		Time:     e.Time,
	}
}

// NewEntry renders tweet as written by userName.
func NewEntry(tweet models.Tweet, userName string) Entry {
	return Entry{
		ID:        tweet.ID,
		UserName:  userName,
		HTML:      template.HTML(htmlify.Escape(tweet.Text)),
		Time:      tweet.CreatedAt.UTC().Format(DisplayLayout),
		CreatedAt: tweet.CreatedAt,
	}
}

// ParseUntil reads the pagination cursor: DisplayLayout in UTC, or RFC 3339.
// An empty cursor means none.
func ParseUntil(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(DisplayLayout, raw, time.UTC); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidCursor, raw)
}

// Service reads tweet pages.
type Service struct {
	tweets repositories.TweetRepository
	users  repositories.UserRepository
}

// NewService builds a Service.
func NewService(tweets repositories.TweetRepository, users repositories.UserRepository) *Service {
	return &Service{tweets: tweets, users: users}
}

// Home returns the newest tweets whose author is in friends. The caller's own
// tweets appear only when the caller is listed in friends.
func (s *Service) Home(ctx context.Context, friends []string, until *time.Time) ([]Entry, error) {
	set := make(map[string]struct{}, len(friends))
	for _, f := range friends {
		set[f] = struct{}{}
	}
	return s.collect(ctx, repositories.TweetQuery{Until: until}, nil, func(name string) bool {
		_, ok := set[name]
		return ok
	})
}

// ForUser returns the tweets of user regardless of relationship.
func (s *Service) ForUser(ctx context.Context, user models.User, until *time.Time) ([]Entry, error) {
	entries := make([]Entry, 0)
	err := s.tweets.ScanTweets(ctx, repositories.TweetQuery{UserID: user.ID, Until: until}, func(t models.Tweet) (bool, error) {
		entries = append(entries, NewEntry(t, user.Name))
		return len(entries) < PerPage, nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Search returns tweets whose raw text contains query, case-sensitively.
func (s *Service) Search(ctx context.Context, query string, until *time.Time) ([]Entry, error) {
	return s.collect(ctx, repositories.TweetQuery{Until: until}, func(t models.Tweet) bool {
		return strings.Contains(t.Text, query)
	}, nil)
}

// Post stores a tweet for author and returns it rendered.
func (s *Service) Post(ctx context.Context, author models.User, text string) (Entry, error) {
	tweet, err := s.tweets.CreateTweet(ctx, author.ID, text)
	if err != nil {
		return Entry{}, err
	}
	return NewEntry(tweet, author.Name), nil
}

// collect scans newest first until PerPage tweets pass both filters. A nil
// filter passes everything; byText runs before the author lookup.
func (s *Service) collect(ctx context.Context, q repositories.TweetQuery, byText func(models.Tweet) bool, byAuthor func(string) bool) ([]Entry, error) {
	names := map[int]string{}
	entries := make([]Entry, 0)

	err := s.tweets.ScanTweets(ctx, q, func(t models.Tweet) (bool, error) {
		if byText != nil && !byText(t) {
			return true, nil
		}
		name, ok := names[t.UserID]
		if !ok {
			user, err := s.users.GetUserByID(ctx, t.UserID)
			if errors.Is(err, repositories.ErrUserNotFound) {
				return false, fmt.Errorf("%w: tweet %d user %d", ErrUnknownAuthor, t.ID, t.UserID)
			}
			if err != nil {
				return false, err
			}
			name = user.Name
			names[t.UserID] = name
		}

		if byAuthor != nil && !byAuthor(name) {
			return true, nil
		}
		entries = append(entries, NewEntry(t, name))
		return len(entries) < PerPage, nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
