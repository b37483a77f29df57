package twitterapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modernTweetJSON = `{
	"id": "1960000000000000001",
	"text": "hello #golang from @rob_pike",
	"createdAt": "Mon Aug 25 10:30:00 +0000 2025",
	"retweetCount": 3,
	"likeCount": 12,
	"replyCount": 2,
	"quoteCount": 1,
	"inReplyToId": "",
	"author": {
		"id": "44196397",
		"userName": "gopher",
		"name": "The Gopher",
		"followers": 100,
		"following": 50,
		"profilePicture": "https://pbs.twimg.com/profile.jpg"
	},
	"entities": {
		"hashtags": [{"text": "golang"}],
		"user_mentions": [{"screen_name": "rob_pike"}]
	},
	"extendedEntities": {
		"media": [{"type": "photo", "media_url_https": "https://pbs.twimg.com/media/pic.jpg"}]
	}
}`

const legacyTweetJSON = `{
	"id_str": "1960000000000000002",
	"full_text": "legacy shaped tweet",
	"created_at": "2025-08-25T10:30:00Z",
	"retweet_count": 7,
	"favorite_count": 9,
	"in_reply_to_status_id_str": "1960000000000000001",
	"user": {
		"id_str": "123",
		"screen_name": "old_timer",
		"name": "Old Timer",
		"followers_count": 42,
		"friends_count": 17,
		"profile_image_url_https": "https://pbs.twimg.com/old.jpg"
	},
	"extended_entities": {
		"media": [{"type": "video", "media_url_https": "https://video.twimg.com/clip.mp4"}]
	}
}`

func TestParseTweet_ModernShape(t *testing.T) {
	tweet, err := ParseTweet([]byte(modernTweetJSON))
	require.NoError(t, err)

	assert.Equal(t, "1960000000000000001", tweet.Id)
	assert.Equal(t, "hello #golang from @rob_pike", tweet.Text)
	assert.Equal(t, 3, tweet.RetweetCount)
	assert.Equal(t, 12, tweet.LikeCount)
	assert.Equal(t, 2, tweet.ReplyCount)
	assert.Equal(t, 1, tweet.QuoteCount)

	assert.Equal(t, "44196397", tweet.Author.Id)
	assert.Equal(t, "gopher", tweet.Author.UserName)
	assert.Equal(t, 100, tweet.Author.Followers)

	require.Len(t, tweet.Entities.Hashtags, 1)
	assert.Equal(t, "golang", tweet.Entities.Hashtags[0].Text)
	require.Len(t, tweet.Entities.UserMentions, 1)
	assert.Equal(t, "rob_pike", tweet.Entities.UserMentions[0].ScreenName)

	require.Len(t, tweet.ExtendedEntities.Media, 1)
	assert.Equal(t, "https://pbs.twimg.com/media/pic.jpg", tweet.ExtendedEntities.Media[0].MediaUrlHttps)
}

func TestParseTweet_LegacyShape(t *testing.T) {
	tweet, err := ParseTweet([]byte(legacyTweetJSON))
	require.NoError(t, err)

	assert.Equal(t, "1960000000000000002", tweet.Id)
	assert.Equal(t, "legacy shaped tweet", tweet.Text)
	assert.Equal(t, "2025-08-25T10:30:00Z", tweet.CreatedAt)
	assert.Equal(t, 7, tweet.RetweetCount)
	assert.Equal(t, 9, tweet.LikeCount)
	assert.Equal(t, "1960000000000000001", tweet.InReplyToId)

	assert.Equal(t, "123", tweet.Author.Id)
	assert.Equal(t, "old_timer", tweet.Author.UserName)
	assert.Equal(t, 42, tweet.Author.Followers)
	assert.Equal(t, 17, tweet.Author.Following)

	require.Len(t, tweet.ExtendedEntities.Media, 1)
	assert.Equal(t, "https://video.twimg.com/clip.mp4", tweet.ExtendedEntities.Media[0].MediaUrlHttps)
}

func TestParseTweet_CamelCaseWinsOverLegacy(t *testing.T) {
	data := `{"id": "1", "text": "new", "legacy": {"full_text": "old", "retweet_count": 99}, "retweetCount": 5}`
	tweet, err := ParseTweet([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, "new", tweet.Text)
	assert.Equal(t, 5, tweet.RetweetCount)
}

func TestParseTweet_MissingIdFails(t *testing.T) {
	_, err := ParseTweet([]byte(`{"text": "no id here"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no id")
}

func TestParseTweet_NestedQuotedAndRetweeted(t *testing.T) {
	data := `{
		"id": "10",
		"text": "rt",
		"retweeted_tweet": {"id": "9", "text": "the original"},
		"quoted_tweet": {"id": "8", "text": "the quoted"}
	}`
	tweet, err := ParseTweet([]byte(data))
	require.NoError(t, err)

	require.NotNil(t, tweet.RetweetedTweet)
	assert.Equal(t, "9", tweet.RetweetedTweet.Id)
	require.NotNil(t, tweet.QuotedTweet)
	assert.Equal(t, "8", tweet.QuotedTweet.Id)
}

func TestParseSearchResponse(t *testing.T) {
	t.Run("TopLevelTweets", func(t *testing.T) {
		data := `{"tweets": [` + modernTweetJSON + `], "has_next_page": true, "next_cursor": "abc"}`
		response, err := ParseSearchResponse([]byte(data))
		require.NoError(t, err)
		require.Len(t, response.Tweets, 1)
		assert.True(t, response.HasNextPage)
		assert.Equal(t, "abc", response.NextCursor)
	})

	t.Run("NestedDataTweets", func(t *testing.T) {
		data := `{"data": {"tweets": [` + legacyTweetJSON + `]}, "hasNextPage": false}`
		response, err := ParseSearchResponse([]byte(data))
		require.NoError(t, err)
		require.Len(t, response.Tweets, 1)
		assert.False(t, response.HasNextPage)
	})

	t.Run("MissingTweetsArray", func(t *testing.T) {
		_, err := ParseSearchResponse([]byte(`{"status": "ok"}`))
		require.Error(t, err)
	})

	t.Run("BrokenEntriesDropped", func(t *testing.T) {
		data := `{"tweets": [{"text": "no id"}, ` + modernTweetJSON + `]}`
		response, err := ParseSearchResponse([]byte(data))
		require.NoError(t, err)
		require.Len(t, response.Tweets, 1)
		assert.Equal(t, "1960000000000000001", response.Tweets[0].Id)
	})

	t.Run("AllEntriesBroken", func(t *testing.T) {
		_, err := ParseSearchResponse([]byte(`{"tweets": [{"text": "no id"}]}`))
		require.Error(t, err)
	})
}

func TestParseTwitterTime(t *testing.T) {
	ruby, err := ParseTwitterTime("Mon Aug 25 10:30:00 +0000 2025")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 25, 10, 30, 0, 0, time.UTC), ruby.UTC())

	rfc, err := ParseTwitterTime("2025-08-25T10:30:00Z")
	require.NoError(t, err)
	assert.True(t, ruby.Equal(rfc))

	_, err = ParseTwitterTime("")
	require.Error(t, err)

	_, err = ParseTwitterTime("25/08/2025")
	require.Error(t, err)
}
