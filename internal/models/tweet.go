package models

import "time"

// Tweet is an append-only post.
type Tweet struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TweetEvent is pushed to live timeline websocket clients.
type TweetEvent struct {
	Type     string `json:"type"`
	ID       int    `json:"id"`
	UserName string `json:"user_name"`
	HTML     string `json:"html"`
	Time     string `json:"time"`
}
