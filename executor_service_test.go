package main

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/grutapig/xscraper/twitterapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockScraper struct {
	searchResults []twitterapi.Tweet
	searchErr     error
	profiles      map[string]*twitterapi.Author
	profileErr    error
	lastTweets    map[string][]twitterapi.Tweet
	lastTweetsErr error

	searchCalls     int
	profileCalls    int
	lastTweetsCalls int
}

func (m *mockScraper) SearchTweets(query string, limit int) ([]twitterapi.Tweet, error) {
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.searchResults) > limit {
		return m.searchResults[:limit], nil
	}
	return m.searchResults, nil
}

func (m *mockScraper) GetUserProfile(userID string) (*twitterapi.Author, error) {
	m.profileCalls++
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	return m.profiles[userID], nil
}

func (m *mockScraper) GetUserLastTweets(userID string, count int) ([]twitterapi.Tweet, error) {
	m.lastTweetsCalls++
	if m.lastTweetsErr != nil {
		return nil, m.lastTweetsErr
	}
	tweets := m.lastTweets[userID]
	if len(tweets) > count {
		return tweets[:count], nil
	}
	return tweets, nil
}

func apiTweet(id, authorID string, mediaUrls ...string) twitterapi.Tweet {
	tweet := twitterapi.Tweet{
		Id:        id,
		Text:      "content of " + id,
		CreatedAt: time.Now().Format(time.RubyDate),
	}
	tweet.Author.Id = authorID
	tweet.Author.UserName = "user_" + authorID
	tweet.Author.Name = "User " + authorID
	for _, url := range mediaUrls {
		tweet.ExtendedEntities.Media = append(tweet.ExtendedEntities.Media, twitterapi.MediaEntity{
			Type:          "photo",
			MediaUrlHttps: url,
		})
	}
	return tweet
}

func setupExecutor(t *testing.T, scraper *mockScraper) (*QueryExecutorService, *DatabaseService) {
	db := setupTestDB(t)
	return NewQueryExecutorService(scraper, db), db
}

func createActiveQuery(t *testing.T, db *DatabaseService) *QueryModel {
	query, err := db.SaveQuery(QueryModel{
		Name:       "test query",
		SearchText: "golang",
		IsActive:   true,
	})
	require.NoError(t, err)
	return query
}

func TestExecuteQuery_MissingQueryIsNoOp(t *testing.T) {
	scraper := &mockScraper{}
	executor, _ := setupExecutor(t, scraper)

	summary, err := executor.ExecuteQuery(12345, 10, true, true)
	require.NoError(t, err)

	assert.Equal(t, ExecutionSummary{QueryID: 12345}, summary)
	assert.Equal(t, 0, scraper.searchCalls)
}

func TestExecuteQuery_InactiveQueryIsNoOp(t *testing.T) {
	scraper := &mockScraper{}
	executor, db := setupExecutor(t, scraper)

	query, err := db.SaveQuery(QueryModel{Name: "paused", SearchText: "golang", IsActive: false})
	require.NoError(t, err)

	summary, err := executor.ExecuteQuery(query.ID, 10, true, true)
	require.NoError(t, err)

	assert.Equal(t, ExecutionSummary{QueryID: query.ID}, summary)
	assert.Equal(t, 0, scraper.searchCalls)

	reloaded, err := db.GetQuery(query.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.LastRunAt)
}

func TestExecuteQuery_FullRun(t *testing.T) {
	scraper := &mockScraper{
		searchResults: []twitterapi.Tweet{
			apiTweet("t1", "a1", "https://pbs.example/one.jpg"),
			apiTweet("t2", "a1"),
			apiTweet("t3", "a2", "https://video.example/clip.mp4"),
		},
		profiles: map[string]*twitterapi.Author{
			"a1": {Id: "a1", UserName: "user_a1", Name: "User a1", Followers: 5},
			"a2": {Id: "a2", UserName: "user_a2", Name: "User a2"},
		},
		lastTweets: map[string][]twitterapi.Tweet{
			"a1": {apiTweet("r1", "a1"), apiTweet("r2", "a1"), apiTweet("r3", "a1"), apiTweet("r4", "a1")},
			"a2": {apiTweet("r5", "a2")},
		},
	}
	executor, db := setupExecutor(t, scraper)
	query := createActiveQuery(t, db)

	summary, err := executor.ExecuteQuery(query.ID, 50, true, true)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Found)
	assert.Equal(t, 3, summary.Saved)
	assert.Equal(t, 2, summary.MediaFilesSaved)
	assert.Equal(t, 2, summary.UsersUpdated)
	assert.Equal(t, query.ID, summary.QueryID)

	stored, err := db.GetTweet("t1")
	require.NoError(t, err)
	assert.Equal(t, "a1", stored.AuthorID)
	require.NotNil(t, stored.QueryID)
	assert.Equal(t, query.ID, *stored.QueryID)

	recent, err := db.GetUserRecentTweets("a1")
	require.NoError(t, err)
	assert.Len(t, recent, RECENT_TWEETS_COUNT)

	media, err := db.GetMediaByTweet("t1")
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Equal(t, MEDIA_TYPE_PHOTO, media[0].MediaType)

	reloaded, err := db.GetQuery(query.ID)
	require.NoError(t, err)
	assert.NotNil(t, reloaded.LastRunAt)
}

func TestExecuteQuery_RerunSkipsKnownTweets(t *testing.T) {
	scraper := &mockScraper{
		searchResults: []twitterapi.Tweet{apiTweet("t1", "a1"), apiTweet("t2", "a1")},
		profiles: map[string]*twitterapi.Author{
			"a1": {Id: "a1", UserName: "user_a1"},
		},
		lastTweets: map[string][]twitterapi.Tweet{},
	}
	executor, db := setupExecutor(t, scraper)
	query := createActiveQuery(t, db)

	first, err := executor.ExecuteQuery(query.ID, 50, false, false)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Saved)

	second, err := executor.ExecuteQuery(query.ID, 50, false, false)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Found)
	assert.Equal(t, 0, second.Saved)

	count, err := db.GetTweetCount()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestExecuteQuery_ProfileRefreshCoversAllAuthors(t *testing.T) {
	// even when every tweet is already stored, a rerun with profile
	// updates enabled still refreshes the authors
	scraper := &mockScraper{
		searchResults: []twitterapi.Tweet{apiTweet("t1", "a1")},
		profiles: map[string]*twitterapi.Author{
			"a1": {Id: "a1", UserName: "user_a1"},
		},
		lastTweets: map[string][]twitterapi.Tweet{},
	}
	executor, db := setupExecutor(t, scraper)
	query := createActiveQuery(t, db)

	_, err := executor.ExecuteQuery(query.ID, 50, false, true)
	require.NoError(t, err)

	summary, err := executor.ExecuteQuery(query.ID, 50, false, true)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Saved)
	assert.Equal(t, 1, summary.UsersUpdated)
	assert.Equal(t, 2, scraper.profileCalls)
}

func TestExecuteQuery_UnresolvableAuthorSkipped(t *testing.T) {
	scraper := &mockScraper{
		searchResults: []twitterapi.Tweet{apiTweet("t1", "a1"), apiTweet("t2", "gone")},
		profiles: map[string]*twitterapi.Author{
			"a1": {Id: "a1", UserName: "user_a1"},
			// "gone" resolves to nil, the upstream 404 case
		},
		lastTweets: map[string][]twitterapi.Tweet{},
	}
	executor, db := setupExecutor(t, scraper)
	query := createActiveQuery(t, db)

	summary, err := executor.ExecuteQuery(query.ID, 50, false, true)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.UsersUpdated)
	assert.False(t, db.UserExists("gone"))
}

func TestExecuteQuery_MediaDisabled(t *testing.T) {
	scraper := &mockScraper{
		searchResults: []twitterapi.Tweet{apiTweet("t1", "a1", "https://pbs.example/one.jpg")},
	}
	executor, db := setupExecutor(t, scraper)
	query := createActiveQuery(t, db)

	summary, err := executor.ExecuteQuery(query.ID, 50, false, false)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.MediaFilesSaved)

	count, err := db.GetMediaCount()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestExecuteQuery_SearchFailureSkipsLastRunStamp(t *testing.T) {
	scraper := &mockScraper{searchErr: errors.New("upstream down")}
	executor, db := setupExecutor(t, scraper)
	query := createActiveQuery(t, db)

	_, err := executor.ExecuteQuery(query.ID, 50, true, true)
	require.Error(t, err)
	assert.ErrorContains(t, err, "upstream down")

	reloaded, err := db.GetQuery(query.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.LastRunAt)
}

func TestExecuteQuery_ProfileFailureKeepsSavedTweets(t *testing.T) {
	scraper := &mockScraper{
		searchResults: []twitterapi.Tweet{apiTweet("t1", "a1")},
		profileErr:    fmt.Errorf("rate limited"),
	}
	executor, db := setupExecutor(t, scraper)
	query := createActiveQuery(t, db)

	summary, err := executor.ExecuteQuery(query.ID, 50, true, true)
	require.Error(t, err)
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 0, summary.UsersUpdated)

	assert.True(t, db.TweetExists("t1"))

	reloaded, err := db.GetQuery(query.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.LastRunAt)
}

func TestExecuteQuery_SuccessStampsLastRun(t *testing.T) {
	scraper := &mockScraper{searchResults: nil}
	executor, db := setupExecutor(t, scraper)
	query := createActiveQuery(t, db)

	before := time.Now()
	summary, err := executor.ExecuteQuery(query.ID, 50, true, true)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Found)

	reloaded, err := db.GetQuery(query.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastRunAt)
	assert.True(t, !reloaded.LastRunAt.Before(before.Truncate(time.Second)))
}
