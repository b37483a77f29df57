package main

import (
	"time"

	"gorm.io/gorm"
)

// QueryModel is a saved search definition created through the admin API
type QueryModel struct {
	gorm.Model
	Name             string            `gorm:"column:name" json:"name"`
	SearchText       string            `gorm:"column:search_text" json:"search_text"`
	Filters          map[string]string `gorm:"column:filters;serializer:json" json:"filters,omitempty"`
	ScheduleInterval string            `gorm:"column:schedule_interval" json:"schedule_interval,omitempty"` // e.g. "30m", "6h", "daily"
	IsActive         bool              `gorm:"column:is_active" json:"is_active"`
	LastRunAt        *time.Time        `gorm:"column:last_run_at" json:"last_run_at,omitempty"`
}

func (QueryModel) TableName() string {
	return "queries"
}

// Tweet model for database storage. ID is the upstream tweet id and the
// sole dedup key: an existing row is never overwritten by a later fetch.
type TweetModel struct {
	gorm.Model
	ID           string    `gorm:"primaryKey;column:id" json:"id"` // Twitter ID as unique index
	Text         string    `gorm:"column:text" json:"text"`
	AuthorID     string    `gorm:"column:author_id;index" json:"author_id"`
	CreatedAt    time.Time `gorm:"column:created_at;index" json:"created_at"`
	RetweetCount int       `gorm:"column:retweet_count" json:"retweet_count"`
	LikeCount    int       `gorm:"column:like_count" json:"like_count"`
	ReplyCount   int       `gorm:"column:reply_count" json:"reply_count"`
	QuoteCount   int       `gorm:"column:quote_count" json:"quote_count"`
	TweetType    string    `gorm:"column:tweet_type;default:original" json:"tweet_type"` // original, reply, retweet, quote
	Hashtags     []string  `gorm:"column:hashtags;serializer:json" json:"hashtags,omitempty"`
	Mentions     []string  `gorm:"column:mentions;serializer:json" json:"mentions,omitempty"`
	MediaUrls    []string  `gorm:"column:media_urls;serializer:json" json:"media_urls,omitempty"`
	QueryID      *uint     `gorm:"column:query_id;index" json:"query_id,omitempty"` // which saved query produced it
	Source       string    `gorm:"column:source;default:x" json:"source"`
	OriginalUrl  string    `gorm:"column:original_url" json:"original_url,omitempty"`
	ScrapedAt    time.Time `gorm:"column:scraped_at" json:"scraped_at"`
}

func (TweetModel) TableName() string {
	return "tweets"
}

// User model for database storage. Unlike tweets, users are upserted:
// the latest profile data replaces whatever was stored before.
type UserModel struct {
	gorm.Model
	ID              string    `gorm:"primaryKey;column:id" json:"id"`
	Username        string    `gorm:"column:username;index" json:"username"`
	DisplayName     string    `gorm:"column:display_name" json:"display_name"`
	Bio             string    `gorm:"column:bio" json:"bio,omitempty"`
	FollowersCount  int       `gorm:"column:followers_count" json:"followers_count"`
	FollowingCount  int       `gorm:"column:following_count" json:"following_count"`
	ProfileImageUrl string    `gorm:"column:profile_image_url" json:"profile_image_url,omitempty"`
	HeaderImageUrl  string    `gorm:"column:header_image_url" json:"header_image_url,omitempty"`
	Location        string    `gorm:"column:location" json:"location,omitempty"`
	AutoUpdate      bool      `gorm:"column:auto_update;default:false" json:"auto_update"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}

// MediaFile model, one row per media URL of a tweet
type MediaFileModel struct {
	gorm.Model
	TweetID     string `gorm:"column:tweet_id;index" json:"tweet_id"`
	MediaType   string `gorm:"column:media_type" json:"media_type"` // photo or video
	OriginalUrl string `gorm:"column:original_url" json:"original_url"`
	FileSize    int64  `gorm:"column:file_size" json:"file_size,omitempty"`
}

func (MediaFileModel) TableName() string {
	return "media_files"
}

// UserRecentTweetModel is the snapshot of a user's latest tweets, at most
// RECENT_TWEETS_COUNT rows per user, fully replaced on every refresh.
type UserRecentTweetModel struct {
	gorm.Model
	UserID    string    `gorm:"column:user_id;index" json:"user_id"`
	TweetID   string    `gorm:"column:tweet_id" json:"tweet_id"`
	Text      string    `gorm:"column:text" json:"text"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (UserRecentTweetModel) TableName() string {
	return "user_recent_tweets"
}
