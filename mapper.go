package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/grutapig/xscraper/twitterapi"
)

var photoExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// classifyMediaType derives photo/video from the URL's file extension.
// A heuristic, not ground truth: anything without an image extension is
// treated as video.
func classifyMediaType(mediaUrl string) string {
	lowered := strings.ToLower(mediaUrl)
	if idx := strings.IndexAny(lowered, "?#"); idx >= 0 {
		lowered = lowered[:idx]
	}
	for _, ext := range photoExtensions {
		if strings.HasSuffix(lowered, ext) {
			return MEDIA_TYPE_PHOTO
		}
	}
	return MEDIA_TYPE_VIDEO
}

// classifyTweetType maps upstream markers to the stored tweet type
func classifyTweetType(tweet twitterapi.Tweet) string {
	switch {
	case tweet.RetweetedTweet != nil:
		return TWEET_TYPE_RETWEET
	case tweet.InReplyToId != "":
		return TWEET_TYPE_REPLY
	case tweet.QuotedTweet != nil:
		return TWEET_TYPE_QUOTE
	default:
		return TWEET_TYPE_ORIGINAL
	}
}

// toTweetModel converts an upstream tweet into the storage model,
// tagged with the saved query that produced it.
func toTweetModel(tweet twitterapi.Tweet, queryID *uint) TweetModel {
	createdAt, err := twitterapi.ParseTwitterTime(tweet.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}

	hashtags := make([]string, 0, len(tweet.Entities.Hashtags))
	for _, hashtag := range tweet.Entities.Hashtags {
		hashtags = append(hashtags, hashtag.Text)
	}
	mentions := make([]string, 0, len(tweet.Entities.UserMentions))
	for _, mention := range tweet.Entities.UserMentions {
		mentions = append(mentions, mention.ScreenName)
	}
	mediaUrls := make([]string, 0, len(tweet.ExtendedEntities.Media))
	for _, media := range tweet.ExtendedEntities.Media {
		if media.MediaUrlHttps != "" {
			mediaUrls = append(mediaUrls, media.MediaUrlHttps)
		}
	}

	originalUrl := tweet.Url
	if originalUrl == "" && tweet.Author.UserName != "" {
		originalUrl = fmt.Sprintf("https://x.com/%s/status/%s", tweet.Author.UserName, tweet.Id)
	}

	return TweetModel{
		ID:           tweet.Id,
		Text:         tweet.Text,
		AuthorID:     tweet.Author.Id,
		CreatedAt:    createdAt,
		RetweetCount: tweet.RetweetCount,
		LikeCount:    tweet.LikeCount,
		ReplyCount:   tweet.ReplyCount,
		QuoteCount:   tweet.QuoteCount,
		TweetType:    classifyTweetType(tweet),
		Hashtags:     hashtags,
		Mentions:     mentions,
		MediaUrls:    mediaUrls,
		QueryID:      queryID,
		Source:       TWEET_SOURCE_X,
		OriginalUrl:  originalUrl,
		ScrapedAt:    time.Now(),
	}
}

// toUserModel converts an upstream profile into the storage model
func toUserModel(author twitterapi.Author) UserModel {
	return UserModel{
		ID:              author.Id,
		Username:        author.UserName,
		DisplayName:     author.Name,
		Bio:             author.Description,
		FollowersCount:  author.Followers,
		FollowingCount:  author.Following,
		ProfileImageUrl: author.ProfilePicture,
		HeaderImageUrl:  author.CoverPicture,
		Location:        author.Location,
	}
}

// toUserRecentTweetModel converts one of a user's latest tweets into a
// snapshot row
func toUserRecentTweetModel(userID string, tweet twitterapi.Tweet) UserRecentTweetModel {
	createdAt, err := twitterapi.ParseTwitterTime(tweet.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}
	return UserRecentTweetModel{
		UserID:    userID,
		TweetID:   tweet.Id,
		Text:      tweet.Text,
		CreatedAt: createdAt,
	}
}
