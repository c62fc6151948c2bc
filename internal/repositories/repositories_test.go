package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

func TestGetFriendListSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, me, friends FROM friends WHERE me=$1`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "me", "friends"}).AddRow(1, "alice", "bob,carol"))

	list, err := repo.GetFriendList(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, list.Names())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFriendListNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendRepo(db)

	mock.ExpectQuery(`SELECT id, me, friends FROM friends`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetFriendList(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrFriendListNotFound)
}

func TestUpdateFriendsZeroRowsAffected(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE friends SET friends=$1 WHERE me=$2`)).
		WithArgs("bob", "alice").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateFriends(context.Background(), "alice", "bob")
	require.ErrorIs(t, err, ErrNoRowsAffected)
}

func TestUpdateFriendsSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendRepo(db)

	mock.ExpectExec(`UPDATE friends`).
		WithArgs("bob,carol", "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateFriends(context.Background(), "alice", "bob,carol"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFriendsDBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFriendRepo(db)

	mock.ExpectExec(`UPDATE friends`).WillReturnError(assert.AnError)

	err := repo.UpdateFriends(context.Background(), "alice", "bob")
	require.ErrorIs(t, err, assert.AnError)
	require.NotErrorIs(t, err, ErrNoRowsAffected)
}

func TestGetUserByNameNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, salt, password FROM users WHERE name=$1`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByName(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByIDSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, salt, password FROM users WHERE id=$1`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "salt", "password"}).AddRow(7, "alice", "s", "p"))

	user, err := repo.GetUserByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.User{ID: 7, Name: "alice", Salt: "s", Password: "p"}, user)
}

func TestDeleteAboveThresholds(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tweets WHERE id > $1`)).
		WithArgs(100000).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id > $1`)).
		WithArgs(1000).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := NewTweetRepo(db).DeleteTweetsAbove(context.Background(), 100000)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = NewUserRepo(db).DeleteUsersAbove(context.Background(), 1000)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildTweetScan(t *testing.T) {
	until := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	query, args := buildTweetScan(TweetQuery{})
	assert.Equal(t, `SELECT id, user_id, text, created_at FROM tweets ORDER BY created_at DESC`, query)
	assert.Empty(t, args)

	query, args = buildTweetScan(TweetQuery{Until: &until})
	assert.Equal(t, `SELECT id, user_id, text, created_at FROM tweets WHERE created_at < $1 ORDER BY created_at DESC`, query)
	assert.Equal(t, []any{until}, args)

	query, args = buildTweetScan(TweetQuery{UserID: 4, Until: &until})
	assert.Equal(t, `SELECT id, user_id, text, created_at FROM tweets WHERE user_id=$1 AND created_at < $2 ORDER BY created_at DESC`, query)
	assert.Equal(t, []any{4, until}, args)
}

func TestScanTweetsStopsWhenVisitorDeclines(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTweetRepo(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "user_id", "text", "created_at"}).
		AddRow(3, 1, "c", now).
		AddRow(2, 1, "b", now.Add(-time.Second)).
		AddRow(1, 1, "a", now.Add(-2*time.Second))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, text, created_at FROM tweets WHERE user_id=$1 ORDER BY created_at DESC`)).
		WithArgs(1).
		WillReturnRows(rows)

	var seen []int
	err := repo.ScanTweets(context.Background(), TweetQuery{UserID: 1}, func(tw models.Tweet) (bool, error) {
		seen = append(seen, tw.ID)
		return len(seen) < 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, seen)
}

func TestScanTweetsPropagatesVisitorError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTweetRepo(db)

	mock.ExpectQuery(`SELECT id, user_id, text, created_at FROM tweets`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "text", "created_at"}).AddRow(1, 1, "a", time.Now()))

	err := repo.ScanTweets(context.Background(), TweetQuery{}, func(models.Tweet) (bool, error) {
		return false, assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
}

func TestCreateTweet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTweetRepo(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tweets (user_id, text, created_at) VALUES ($1, $2, NOW())`)).
		WithArgs(5, "hello").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "text", "created_at"}).AddRow(11, 5, "hello", now))

	tweet, err := repo.CreateTweet(context.Background(), 5, "hello")
	require.NoError(t, err)
	assert.Equal(t, 11, tweet.ID)
	assert.Equal(t, "hello", tweet.Text)
	assert.True(t, now.Equal(tweet.CreatedAt))
}
