package twitterapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const maxRateLimitRetries = 5

type TwitterAPIService struct {
	apiKey     string
	baseUrl    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewTwitterAPIService(apiKey string, baseUrl string, proxyDSN string) *TwitterAPIService {
	transport := &http.Transport{}
	if proxyDSN != "" {
		proxyURL, err := url.Parse(proxyDSN)
		if err != nil {
			panic(err)
		}

		transport = &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: false,
			},
		}
	}

	return &TwitterAPIService{
		apiKey:  apiKey,
		baseUrl: baseUrl,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 10),
	}
}

// makeRequest performs one GET against the upstream API. Throttling is
// handled here: the limiter paces outgoing calls and a 429 answer is
// retried with a growing delay, so callers never see rate-limit pages.
func (s *TwitterAPIService) makeRequest(uri string, params map[string]string) (*APIResponse, error) {
	for attempt := 1; ; attempt++ {
		if err := s.limiter.Wait(context.Background()); err != nil {
			return nil, fmt.Errorf("error waiting for rate limiter: %w", err)
		}

		req, err := http.NewRequest("GET", uri, nil)
		if err != nil {
			return nil, fmt.Errorf("error create request: %w", err)
		}

		req.Header.Set("X-API-Key", s.apiKey)
		req.Header.Set("Content-Type", "application/json")

		q := req.URL.Query()
		for key, value := range params {
			if value != "" && key == "cursor" {
				unescape, _ := url.QueryUnescape(value)
				q.Add(key, unescape)
			} else if value != "" {
				q.Add(key, value)
			}
		}

		req.URL.RawQuery = q.Encode()
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("error send request: %w", err)
		}

		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("error read response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRateLimitRetries {
			wait := time.Duration(attempt*2) * time.Second
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
					wait = time.Duration(seconds) * time.Second
				}
			}
			time.Sleep(wait)
			continue
		}

		return &APIResponse{
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
			RawBody:    bodyBytes,
		}, nil
	}
}

// AdvancedSearch fetches one page of search results for a raw query
func (s *TwitterAPIService) AdvancedSearch(request AdvancedSearchRequest) (*AdvancedSearchResponse, error) {
	uri := s.baseUrl + "/twitter/tweet/advanced_search"

	params := map[string]string{
		"query": request.Query,
	}
	if request.QueryType != "" {
		params["queryType"] = request.QueryType
	}
	if request.Cursor != "" {
		params["cursor"] = request.Cursor
	}

	response, err := s.makeRequest(uri, params)
	if err != nil {
		return nil, fmt.Errorf("error advanced_search: %w", err)
	}
	if response.StatusCode != 200 {
		return nil, fmt.Errorf("error advanced_search, status non 200: %s", string(response.RawBody))
	}

	return ParseSearchResponse(response.RawBody)
}

// SearchTweets pages through search results until limit tweets are
// collected or the upstream runs out. Best-effort: may return fewer.
func (s *TwitterAPIService) SearchTweets(query string, limit int) ([]Tweet, error) {
	tweets := make([]Tweet, 0, limit)
	cursor := ""

	for len(tweets) < limit {
		searchResponse, err := s.AdvancedSearch(AdvancedSearchRequest{
			Query:     query,
			QueryType: LATEST,
			Cursor:    cursor,
		})
		if err != nil {
			return nil, err
		}

		for _, tweet := range searchResponse.Tweets {
			tweets = append(tweets, tweet)
			if len(tweets) >= limit {
				break
			}
		}

		if !searchResponse.HasNextPage || searchResponse.NextCursor == "" {
			break
		}
		cursor = searchResponse.NextCursor
	}

	return tweets, nil
}

// GetUserProfile fetches a user profile by id. An unresolvable user
// (deleted, suspended) is (nil, nil), not an error.
func (s *TwitterAPIService) GetUserProfile(userID string) (*Author, error) {
	uri := s.baseUrl + "/twitter/user/info"

	params := map[string]string{
		"userId": userID,
	}

	response, err := s.makeRequest(uri, params)
	if err != nil {
		return nil, fmt.Errorf("error user info: %w", err)
	}
	if response.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if response.StatusCode != 200 {
		return nil, fmt.Errorf("error user info, status non 200: %s", string(response.RawBody))
	}

	userInfoResponse := UserInfoResponse{}
	if err := json.Unmarshal(response.RawBody, &userInfoResponse); err != nil {
		return nil, fmt.Errorf("error decode user info: %w", err)
	}
	if userInfoResponse.Data.Id == "" {
		return nil, nil
	}
	return &userInfoResponse.Data, nil
}

// GetUserLastTweets fetches up to count of a user's latest tweets,
// most-recent-first as returned by the upstream.
func (s *TwitterAPIService) GetUserLastTweets(userID string, count int) ([]Tweet, error) {
	uri := s.baseUrl + "/twitter/user/last_tweets"

	params := map[string]string{
		"userId":         userID,
		"includeReplies": "false",
	}

	response, err := s.makeRequest(uri, params)
	if err != nil {
		return nil, fmt.Errorf("error last user tweets: %w", err)
	}
	if response.StatusCode != 200 {
		return nil, fmt.Errorf("error last user tweets, status non 200: %s", string(response.RawBody))
	}

	userLastTweetsResponse := UserLastTweetsResponse{}
	if err := json.Unmarshal(response.RawBody, &userLastTweetsResponse); err != nil {
		return nil, fmt.Errorf("error decode last user tweets: %w", err)
	}

	tweets := userLastTweetsResponse.Tweets
	if count > 0 && len(tweets) > count {
		tweets = tweets[:count]
	}
	return tweets, nil
}
