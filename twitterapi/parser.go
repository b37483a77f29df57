package twitterapi

import (
	"fmt"
	"time"

	"github.com/buger/jsonparser"
)

// The search endpoint is served by several upstream versions with slightly
// different response shapes. Every field below is resolved through one
// explicit fallback chain, newest shape first, instead of probing ad hoc
// at the call sites.
//
// Fallback order per field:
//
//	tweets array:  "tweets" -> "data.tweets"
//	id:            "id" -> "id_str" -> "legacy.id_str"
//	text:          "text" -> "full_text" -> "legacy.full_text"
//	author:        "author" -> "user"
//	author id:     author "id" -> author "id_str" -> "legacy.user_id_str"
//	username:      author "userName" -> author "screen_name"
//	counts:        camelCase -> snake_case -> "legacy" snake_case
//	created at:    "createdAt" -> "created_at", ruby format then RFC3339
//	reply target:  "inReplyToId" -> "in_reply_to_status_id_str"

// ParseSearchResponse decodes a raw advanced-search payload into typed
// tweets. A tweet that yields no id is dropped and reported.
func ParseSearchResponse(data []byte) (*AdvancedSearchResponse, error) {
	response := &AdvancedSearchResponse{}

	tweetsData, _, _, err := jsonparser.Get(data, "tweets")
	if err != nil {
		tweetsData, _, _, err = jsonparser.Get(data, "data", "tweets")
		if err != nil {
			return nil, fmt.Errorf("no tweets array in search response: %w", err)
		}
	}

	var parseErrors []string
	_, err = jsonparser.ArrayEach(tweetsData, func(value []byte, dataType jsonparser.ValueType, offset int, cbErr error) {
		if cbErr != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("tweet entry at offset %d: %v", offset, cbErr))
			return
		}
		tweet, parseErr := ParseTweet(value)
		if parseErr != nil {
			parseErrors = append(parseErrors, parseErr.Error())
			return
		}
		response.Tweets = append(response.Tweets, tweet)
	})
	if err != nil {
		return nil, fmt.Errorf("error iterating tweets array: %w", err)
	}

	if hasNext, err := jsonparser.GetBoolean(data, "has_next_page"); err == nil {
		response.HasNextPage = hasNext
	} else if hasNext, err := jsonparser.GetBoolean(data, "hasNextPage"); err == nil {
		response.HasNextPage = hasNext
	}
	if cursor, err := jsonparser.GetString(data, "next_cursor"); err == nil {
		response.NextCursor = cursor
	} else if cursor, err := jsonparser.GetString(data, "nextCursor"); err == nil {
		response.NextCursor = cursor
	}
	if status, err := jsonparser.GetString(data, "status"); err == nil {
		response.Status = status
	}

	if len(parseErrors) > 0 && len(response.Tweets) == 0 {
		return nil, fmt.Errorf("no tweets parsed: %v", parseErrors)
	}
	return response, nil
}

// ParseTweet decodes a single tweet object, applying the field fallback
// chains documented above. Missing id is a hard failure, everything else
// is best-effort.
func ParseTweet(data []byte) (Tweet, error) {
	tweet := Tweet{}

	id := getStringFallback(data, [][]string{{"id"}, {"id_str"}, {"legacy", "id_str"}})
	if id == "" {
		return tweet, fmt.Errorf("tweet object has no id field")
	}
	tweet.Id = id

	tweet.Text = getStringFallback(data, [][]string{{"text"}, {"full_text"}, {"legacy", "full_text"}})
	tweet.CreatedAt = getStringFallback(data, [][]string{{"createdAt"}, {"created_at"}, {"legacy", "created_at"}})
	tweet.InReplyToId = getStringFallback(data, [][]string{{"inReplyToId"}, {"in_reply_to_status_id_str"}, {"legacy", "in_reply_to_status_id_str"}})
	tweet.Url = getStringFallback(data, [][]string{{"url"}, {"twitterUrl"}})
	tweet.Lang = getStringFallback(data, [][]string{{"lang"}, {"legacy", "lang"}})
	tweet.Source = getStringFallback(data, [][]string{{"source"}, {"legacy", "source"}})

	tweet.RetweetCount = getIntFallback(data, [][]string{{"retweetCount"}, {"retweet_count"}, {"legacy", "retweet_count"}})
	tweet.LikeCount = getIntFallback(data, [][]string{{"likeCount"}, {"like_count"}, {"favorite_count"}, {"legacy", "favorite_count"}})
	tweet.ReplyCount = getIntFallback(data, [][]string{{"replyCount"}, {"reply_count"}, {"legacy", "reply_count"}})
	tweet.QuoteCount = getIntFallback(data, [][]string{{"quoteCount"}, {"quote_count"}, {"legacy", "quote_count"}})
	tweet.ViewCount = getIntFallback(data, [][]string{{"viewCount"}, {"view_count"}})

	authorData, _, _, err := jsonparser.Get(data, "author")
	if err != nil {
		authorData, _, _, err = jsonparser.Get(data, "user")
	}
	if err == nil {
		tweet.Author = ParseAuthor(authorData)
	}
	if tweet.Author.Id == "" {
		tweet.Author.Id = getStringFallback(data, [][]string{{"legacy", "user_id_str"}})
	}

	jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, cbErr error) {
		if text, err := jsonparser.GetString(value, "text"); err == nil {
			tweet.Entities.Hashtags = append(tweet.Entities.Hashtags, struct {
				Text string `json:"text"`
			}{Text: text})
		}
	}, "entities", "hashtags")

	jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, cbErr error) {
		if screenName, err := jsonparser.GetString(value, "screen_name"); err == nil {
			tweet.Entities.UserMentions = append(tweet.Entities.UserMentions, struct {
				ScreenName string `json:"screen_name"`
			}{ScreenName: screenName})
		}
	}, "entities", "user_mentions")

	mediaPaths := [][]string{{"extendedEntities", "media"}, {"extended_entities", "media"}, {"entities", "media"}}
	for _, path := range mediaPaths {
		found := false
		jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, cbErr error) {
			found = true
			media := MediaEntity{}
			media.Type = getStringFallback(value, [][]string{{"type"}})
			media.MediaUrlHttps = getStringFallback(value, [][]string{{"media_url_https"}, {"mediaUrlHttps"}, {"url"}})
			media.ExpandedUrl = getStringFallback(value, [][]string{{"expanded_url"}})
			tweet.ExtendedEntities.Media = append(tweet.ExtendedEntities.Media, media)
		}, path...)
		if found {
			break
		}
	}

	if quoted, _, _, err := jsonparser.Get(data, "quoted_tweet"); err == nil {
		if quotedTweet, err := ParseTweet(quoted); err == nil {
			tweet.QuotedTweet = &quotedTweet
		}
	}
	if retweeted, _, _, err := jsonparser.Get(data, "retweeted_tweet"); err == nil {
		if retweetedTweet, err := ParseTweet(retweeted); err == nil {
			tweet.RetweetedTweet = &retweetedTweet
		}
	}

	return tweet, nil
}

// ParseAuthor decodes the user object embedded in a tweet
func ParseAuthor(data []byte) Author {
	author := Author{}
	author.Id = getStringFallback(data, [][]string{{"id"}, {"id_str"}, {"rest_id"}})
	author.UserName = getStringFallback(data, [][]string{{"userName"}, {"screen_name"}, {"legacy", "screen_name"}})
	author.Name = getStringFallback(data, [][]string{{"name"}, {"legacy", "name"}})
	author.Description = getStringFallback(data, [][]string{{"description"}, {"legacy", "description"}})
	author.Location = getStringFallback(data, [][]string{{"location"}, {"legacy", "location"}})
	author.ProfilePicture = getStringFallback(data, [][]string{{"profilePicture"}, {"profile_image_url_https"}, {"legacy", "profile_image_url_https"}})
	author.CoverPicture = getStringFallback(data, [][]string{{"coverPicture"}, {"profile_banner_url"}, {"legacy", "profile_banner_url"}})
	author.CreatedAt = getStringFallback(data, [][]string{{"createdAt"}, {"created_at"}})
	author.Followers = getIntFallback(data, [][]string{{"followers"}, {"followers_count"}, {"legacy", "followers_count"}})
	author.Following = getIntFallback(data, [][]string{{"following"}, {"friends_count"}, {"legacy", "friends_count"}})
	return author
}

// ParseTwitterTime parses the two timestamp formats seen in upstream
// payloads: the classic ruby format and RFC3339.
func ParseTwitterTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	if parsed, err := time.Parse(time.RubyDate, value); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", value)
}

func getStringFallback(data []byte, paths [][]string) string {
	for _, path := range paths {
		if value, err := jsonparser.GetString(data, path...); err == nil && value != "" {
			return value
		}
	}
	return ""
}

func getIntFallback(data []byte, paths [][]string) int {
	for _, path := range paths {
		if value, err := jsonparser.GetInt(data, path...); err == nil {
			return int(value)
		}
	}
	return 0
}
