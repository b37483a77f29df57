package main

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type DatabaseService struct {
	db *gorm.DB
}

// NewDatabaseService creates a new database service instance
func NewDatabaseService(dbPath string) (*DatabaseService, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Silent to reduce log noise
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	service := &DatabaseService{
		db: db,
	}

	// Run migrations
	if err := service.runMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return service, nil
}

// runMigrations runs database migrations
func (s *DatabaseService) runMigrations() error {
	return s.db.AutoMigrate(
		&QueryModel{},
		&TweetModel{},
		&UserModel{},
		&MediaFileModel{},
		&UserRecentTweetModel{},
	)
}

// Query related methods

// SaveQuery inserts a new query when ID is unset, otherwise updates the
// existing row. CreatedAt and LastRunAt are never touched by an update.
func (s *DatabaseService) SaveQuery(query QueryModel) (*QueryModel, error) {
	if query.ID == 0 {
		if err := s.db.Create(&query).Error; err != nil {
			return nil, err
		}
		return s.GetQuery(query.ID)
	}

	existing, err := s.GetQuery(query.ID)
	if err != nil {
		return nil, err
	}
	existing.Name = query.Name
	existing.SearchText = query.SearchText
	existing.Filters = query.Filters
	existing.ScheduleInterval = query.ScheduleInterval
	existing.IsActive = query.IsActive
	if err := s.db.Save(existing).Error; err != nil {
		return nil, err
	}
	return s.GetQuery(query.ID)
}

// GetQuery retrieves a query by its assigned id
func (s *DatabaseService) GetQuery(id uint) (*QueryModel, error) {
	var query QueryModel
	err := s.db.Where("id = ?", id).First(&query).Error
	if err != nil {
		return nil, err
	}
	return &query, nil
}

// ListActiveQueries retrieves all queries with the active flag set
func (s *DatabaseService) ListActiveQueries() ([]QueryModel, error) {
	var queries []QueryModel
	err := s.db.Where("is_active = ?", true).Order("id ASC").Find(&queries).Error
	return queries, err
}

// ListQueries retrieves every saved query regardless of state
func (s *DatabaseService) ListQueries() ([]QueryModel, error) {
	var queries []QueryModel
	err := s.db.Order("id ASC").Find(&queries).Error
	return queries, err
}

// UpdateQueryLastRun stamps the last-run timestamp. The timestamp only
// moves forward, a stale write is silently dropped.
func (s *DatabaseService) UpdateQueryLastRun(queryID uint, timestamp time.Time) error {
	return s.db.Model(&QueryModel{}).
		Where("id = ? AND (last_run_at IS NULL OR last_run_at < ?)", queryID, timestamp).
		Update("last_run_at", timestamp).Error
}

// DeleteQuery removes a query by id, reporting whether a row was deleted
func (s *DatabaseService) DeleteQuery(id uint) (bool, error) {
	result := s.db.Delete(&QueryModel{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Tweet related methods

// SaveManyTweets inserts only the tweets whose ids are not stored yet and
// returns the count actually created. Existing rows are left untouched.
// The primary key constraint is the backstop against concurrent inserts
// of the same tweet id.
func (s *DatabaseService) SaveManyTweets(tweets []TweetModel) (int, error) {
	if len(tweets) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(tweets))
	for _, tweet := range tweets {
		ids = append(ids, tweet.ID)
	}

	var existingIDs []string
	if err := s.db.Model(&TweetModel{}).Where("id IN ?", ids).Pluck("id", &existingIDs).Error; err != nil {
		return 0, err
	}
	existing := make(map[string]bool, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = true
	}

	toInsert := make([]TweetModel, 0, len(tweets))
	for _, tweet := range tweets {
		if existing[tweet.ID] {
			continue
		}
		existing[tweet.ID] = true // dedup inside the batch itself
		toInsert = append(toInsert, tweet)
	}

	if len(toInsert) == 0 {
		return 0, nil
	}

	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&toInsert)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

// GetTweet retrieves a tweet by Twitter ID
func (s *DatabaseService) GetTweet(id string) (*TweetModel, error) {
	var tweet TweetModel
	err := s.db.Where("id = ?", id).First(&tweet).Error
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

// TweetExists checks if a tweet exists by Twitter ID
func (s *DatabaseService) TweetExists(id string) bool {
	var count int64
	s.db.Model(&TweetModel{}).Where("id = ?", id).Count(&count)
	return count > 0
}

// GetTweetsByQuery retrieves tweets produced by a saved query
func (s *DatabaseService) GetTweetsByQuery(queryID uint, limit int) ([]TweetModel, error) {
	var tweets []TweetModel
	err := s.db.Where("query_id = ?", queryID).Order("created_at DESC").Limit(limit).Find(&tweets).Error
	return tweets, err
}

// GetRecentTweets retrieves recent tweets with optional limit
func (s *DatabaseService) GetRecentTweets(limit int) ([]TweetModel, error) {
	var tweets []TweetModel
	err := s.db.Order("created_at DESC").Limit(limit).Find(&tweets).Error
	return tweets, err
}

// GetTweetCount returns the total number of tweets in the database
func (s *DatabaseService) GetTweetCount() (int64, error) {
	var count int64
	err := s.db.Model(&TweetModel{}).Count(&count).Error
	return count, err
}

// User related methods

// SaveUser inserts or overwrites the profile row for this user id, bumps
// updated_at and returns the post-save representation.
func (s *DatabaseService) SaveUser(user UserModel) (*UserModel, error) {
	now := time.Now()
	user.UpdatedAt = now
	if s.UserExists(user.ID) {
		// created_at belongs to the first insert, a refresh keeps it
		if err := s.db.Omit("created_at").Save(&user).Error; err != nil {
			return nil, err
		}
		return s.GetUser(user.ID)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}
	return s.GetUser(user.ID)
}

// GetUser retrieves a user by ID
func (s *DatabaseService) GetUser(id string) (*UserModel, error) {
	var user UserModel
	err := s.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (s *DatabaseService) GetUserByUsername(username string) (*UserModel, error) {
	var user UserModel
	err := s.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists checks if a user exists by ID
func (s *DatabaseService) UserExists(id string) bool {
	var count int64
	s.db.Model(&UserModel{}).Where("id = ?", id).Count(&count)
	return count > 0
}

// ListAutoUpdateUsers retrieves users flagged for profile auto refresh
func (s *DatabaseService) ListAutoUpdateUsers() ([]UserModel, error) {
	var users []UserModel
	err := s.db.Where("auto_update = ?", true).Find(&users).Error
	return users, err
}

// GetUserCount returns the total number of users in the database
func (s *DatabaseService) GetUserCount() (int64, error) {
	var count int64
	err := s.db.Model(&UserModel{}).Count(&count).Error
	return count, err
}

// User recent tweets snapshot methods

// SaveUserRecentTweets replaces the snapshot for this user: delete all
// existing rows, insert at most RECENT_TWEETS_COUNT of the given tweets
// in the order given (callers pass them most-recent-first). Returns the
// number of rows written.
func (s *DatabaseService) SaveUserRecentTweets(userID string, tweets []UserRecentTweetModel) (int, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("user_id = ?", userID).Delete(&UserRecentTweetModel{}).Error; err != nil {
		tx.Rollback()
		return 0, err
	}

	saved := 0
	now := time.Now()
	for _, tweet := range tweets {
		if saved >= RECENT_TWEETS_COUNT {
			break
		}
		tweet.Model = gorm.Model{}
		tweet.UserID = userID
		tweet.UpdatedAt = now
		if err := tx.Create(&tweet).Error; err != nil {
			tx.Rollback()
			return 0, err
		}
		saved++
	}

	if err := tx.Commit().Error; err != nil {
		return 0, err
	}
	return saved, nil
}

// GetUserRecentTweets reads back the current snapshot for a user
func (s *DatabaseService) GetUserRecentTweets(userID string) ([]UserRecentTweetModel, error) {
	var tweets []UserRecentTweetModel
	err := s.db.Where("user_id = ?", userID).Order("id ASC").Find(&tweets).Error
	return tweets, err
}

// Media file methods

// SaveManyMedia batch inserts media rows with no existence check. Re-runs
// over known tweets will add rows again; tweet dedup does not apply here.
func (s *DatabaseService) SaveManyMedia(files []MediaFileModel) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}
	rows := make([]MediaFileModel, len(files))
	copy(rows, files)
	for i := range rows {
		// insert fresh rows even when the caller re-passes a slice that
		// already went through Create and carries assigned ids
		rows[i].Model = gorm.Model{}
	}
	if err := s.db.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

// GetMediaByTweet retrieves all media rows belonging to a tweet
func (s *DatabaseService) GetMediaByTweet(tweetID string) ([]MediaFileModel, error) {
	var files []MediaFileModel
	err := s.db.Where("tweet_id = ?", tweetID).Order("id ASC").Find(&files).Error
	return files, err
}

// GetMediaCount returns the total number of media rows in the database
func (s *DatabaseService) GetMediaCount() (int64, error) {
	var count int64
	err := s.db.Model(&MediaFileModel{}).Count(&count).Error
	return count, err
}

// IsNotFound reports whether an error from this service means the row
// does not exist, as opposed to a storage failure.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Close closes the database connection
func (s *DatabaseService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
