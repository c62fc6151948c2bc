package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"microblog/internal/models"
)

// TweetQuery narrows a newest-first tweet scan. Zero values mean no filter.
type TweetQuery struct {
	UserID int
	Until  *time.Time
}

// TweetVisitor receives tweets in scan order and returns false to stop.
type TweetVisitor func(tweet models.Tweet) (bool, error)

// TweetRepository defines interactions for tweets.
type TweetRepository interface {
	ScanTweets(ctx context.Context, q TweetQuery, visit TweetVisitor) error
	CreateTweet(ctx context.Context, userID int, text string) (models.Tweet, error)
	DeleteTweetsAbove(ctx context.Context, id int) (int64, error)
}

// TweetRepo is a sqlx-backed repository.
type TweetRepo struct {
	db *sqlx.DB
}

// NewTweetRepo constructs TweetRepo.
func NewTweetRepo(db *sqlx.DB) *TweetRepo {
	return &TweetRepo{db: db}
}

// ScanTweets streams tweets ordered by created_at descending into visit until
// it returns false or the rows run out.
func (r *TweetRepo) ScanTweets(ctx context.Context, q TweetQuery, visit TweetVisitor) error {
	query, args := buildTweetScan(q)
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("select tweets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tweet models.Tweet
		if err := rows.StructScan(&tweet); err != nil {
			return fmt.Errorf("scan tweet: %w", err)
		}
		more, err := visit(tweet)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return rows.Err()
}

func buildTweetScan(q TweetQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.UserID > 0 {
		args = append(args, q.UserID)
		conds = append(conds, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if q.Until != nil {
		args = append(args, *q.Until)
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}

	query := `SELECT id, user_id, text, created_at FROM tweets`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return query + ` ORDER BY created_at DESC`, args
}

// CreateTweet stores a tweet stamped with the database clock.
func (r *TweetRepo) CreateTweet(ctx context.Context, userID int, text string) (models.Tweet, error) {
	var tweet models.Tweet
	err := r.db.QueryRowxContext(ctx, `INSERT INTO tweets (user_id, text, created_at) VALUES ($1, $2, NOW()) RETURNING id, user_id, text, created_at`, userID, text).
		StructScan(&tweet)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("insert tweet: %w", err)
	}
	return tweet, nil
}

// DeleteTweetsAbove removes every tweet whose id is greater than id.
func (r *TweetRepo) DeleteTweetsAbove(ctx context.Context, id int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tweets WHERE id > $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete tweets: %w", err)
	}
	return res.RowsAffected()
}
