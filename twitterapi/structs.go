package twitterapi

const ENV_TWITTER_API_KEY = "twitter_api_key"
const ENV_TWITTER_API_BASE_URL = "twitter_api_base_url"
const ENV_PROXY_DSN = "proxy_dsn"

type APIResponse struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	RawBody    []byte              `json:"raw_body"`
}

type Author struct {
	Type           string `json:"type"`
	Id             string `json:"id"`
	UserName       string `json:"userName"`
	Name           string `json:"name"`
	Url            string `json:"url"`
	TwitterUrl     string `json:"twitterUrl"`
	ProfilePicture string `json:"profilePicture"`
	CoverPicture   string `json:"coverPicture"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	Followers      int    `json:"followers"`
	Following      int    `json:"following"`
	CreatedAt      string `json:"createdAt"`
}

type MediaEntity struct {
	Type          string `json:"type"`
	MediaUrlHttps string `json:"media_url_https"`
	ExpandedUrl   string `json:"expanded_url"`
}

type Tweet struct {
	Type         string `json:"type"`
	Id           string `json:"id"`
	Url          string `json:"url"`
	TwitterUrl   string `json:"twitterUrl"`
	Text         string `json:"text"`
	Source       string `json:"source"`
	RetweetCount int    `json:"retweetCount"`
	ReplyCount   int    `json:"replyCount"`
	LikeCount    int    `json:"likeCount"`
	QuoteCount   int    `json:"quoteCount"`
	ViewCount    int    `json:"viewCount"`
	CreatedAt    string `json:"createdAt"`
	Lang         string `json:"lang"`
	InReplyToId  string `json:"inReplyToId"`
	Author       Author `json:"author"`
	Entities     struct {
		Hashtags []struct {
			Text string `json:"text"`
		} `json:"hashtags"`
		UserMentions []struct {
			ScreenName string `json:"screen_name"`
		} `json:"user_mentions"`
	} `json:"entities"`
	ExtendedEntities struct {
		Media []MediaEntity `json:"media"`
	} `json:"extendedEntities"`
	QuotedTweet    *Tweet `json:"quoted_tweet,omitempty"`
	RetweetedTweet *Tweet `json:"retweeted_tweet,omitempty"`
}

type AdvancedSearchRequest struct {
	Query     string `json:"query"`
	QueryType string `json:"queryType,omitempty"`
	Cursor    string `json:"cursor,omitempty"`
}

type AdvancedSearchResponse struct {
	Tweets      []Tweet `json:"tweets"`
	HasNextPage bool    `json:"has_next_page"`
	NextCursor  string  `json:"next_cursor"`
	Status      string  `json:"status"`
	Message     string  `json:"message"`
}

type UserInfoResponse struct {
	Data    Author `json:"data"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type UserLastTweetsResponse struct {
	Tweets      []Tweet `json:"tweets"`
	HasNextPage bool    `json:"has_next_page"`
	NextCursor  string  `json:"next_cursor"`
	Status      string  `json:"status"`
	Message     string  `json:"message"`
}

const (
	LATEST = "Latest"
	TOP    = "Top"
)
