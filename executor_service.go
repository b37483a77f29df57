package main

import (
	"fmt"
	"log"
	"time"

	"github.com/grutapig/xscraper/twitterapi"
)

// Scraper is the capability set the executor needs from the content
// source. The production implementation is twitterapi.TwitterAPIService;
// tests substitute their own.
type Scraper interface {
	SearchTweets(query string, limit int) ([]twitterapi.Tweet, error)
	GetUserProfile(userID string) (*twitterapi.Author, error)
	GetUserLastTweets(userID string, count int) ([]twitterapi.Tweet, error)
}

// ExecutionSummary reports what one run of one query did
type ExecutionSummary struct {
	Found           int  `json:"found"`
	Saved           int  `json:"saved"`
	MediaFilesSaved int  `json:"media_files_saved"`
	UsersUpdated    int  `json:"users_updated"`
	QueryID         uint `json:"query_id"`
}

type QueryExecutorService struct {
	scraper   Scraper
	dbService *DatabaseService
}

func NewQueryExecutorService(scraper Scraper, dbService *DatabaseService) *QueryExecutorService {
	return &QueryExecutorService{
		scraper:   scraper,
		dbService: dbService,
	}
}

// ExecuteQuery runs one execution of one saved query: fetch up to limit
// tweets, insert the ones not seen before, optionally refresh author
// profiles and their recent-tweet snapshots, optionally persist media
// references, then stamp the query's last-run time.
//
// A missing or inactive query is a no-op returning a zero summary. Any
// scraper or storage error aborts the run and propagates; the last-run
// stamp is skipped so a failed run never marks progress. Entities already
// written by earlier steps stay written.
func (s *QueryExecutorService) ExecuteQuery(queryID uint, limit int, includeMedia bool, updateUserProfiles bool) (ExecutionSummary, error) {
	summary := ExecutionSummary{QueryID: queryID}

	query, err := s.dbService.GetQuery(queryID)
	if err != nil {
		if IsNotFound(err) {
			return summary, nil
		}
		return summary, fmt.Errorf("failed to load query %d: %w", queryID, err)
	}
	if !query.IsActive {
		return summary, nil
	}

	tweets, err := s.scraper.SearchTweets(query.SearchText, limit)
	if err != nil {
		return summary, fmt.Errorf("search failed for query %d: %w", queryID, err)
	}
	summary.Found = len(tweets)

	tweetModels := make([]TweetModel, 0, len(tweets))
	for _, tweet := range tweets {
		tweetModels = append(tweetModels, toTweetModel(tweet, &query.ID))
	}
	saved, err := s.dbService.SaveManyTweets(tweetModels)
	if err != nil {
		return summary, fmt.Errorf("failed to save tweets for query %d: %w", queryID, err)
	}
	summary.Saved = saved

	if updateUserProfiles {
		// All authors seen this run, not just authors of newly saved
		// tweets: re-runs refresh profiles even when nothing was new.
		usersUpdated, err := s.refreshAuthorProfiles(tweets)
		if err != nil {
			summary.UsersUpdated = usersUpdated
			return summary, err
		}
		summary.UsersUpdated = usersUpdated
	}

	if includeMedia {
		mediaFiles := make([]MediaFileModel, 0)
		for _, tweetModel := range tweetModels {
			for _, mediaUrl := range tweetModel.MediaUrls {
				mediaFiles = append(mediaFiles, MediaFileModel{
					TweetID:     tweetModel.ID,
					MediaType:   classifyMediaType(mediaUrl),
					OriginalUrl: mediaUrl,
				})
			}
		}
		mediaSaved, err := s.dbService.SaveManyMedia(mediaFiles)
		if err != nil {
			return summary, fmt.Errorf("failed to save media for query %d: %w", queryID, err)
		}
		summary.MediaFilesSaved = mediaSaved
	}

	if err := s.dbService.UpdateQueryLastRun(query.ID, time.Now()); err != nil {
		return summary, fmt.Errorf("failed to stamp last run for query %d: %w", queryID, err)
	}

	return summary, nil
}

// refreshAuthorProfiles upserts the profile and replaces the recent-tweet
// snapshot for every distinct author in the batch. An unresolvable author
// is skipped silently; upstream or storage errors abort.
func (s *QueryExecutorService) refreshAuthorProfiles(tweets []twitterapi.Tweet) (int, error) {
	seen := make(map[string]bool)
	authorIDs := make([]string, 0)
	for _, tweet := range tweets {
		authorID := tweet.Author.Id
		if authorID == "" || seen[authorID] {
			continue
		}
		seen[authorID] = true
		authorIDs = append(authorIDs, authorID)
	}

	usersUpdated := 0
	for _, authorID := range authorIDs {
		profile, err := s.scraper.GetUserProfile(authorID)
		if err != nil {
			return usersUpdated, fmt.Errorf("failed to fetch profile %s: %w", authorID, err)
		}
		if profile == nil {
			log.Printf("Author %s could not be resolved, skipping profile refresh", authorID)
			continue
		}

		if _, err := s.dbService.SaveUser(toUserModel(*profile)); err != nil {
			return usersUpdated, fmt.Errorf("failed to save user %s: %w", authorID, err)
		}

		recent, err := s.scraper.GetUserLastTweets(authorID, RECENT_TWEETS_COUNT)
		if err != nil {
			return usersUpdated, fmt.Errorf("failed to fetch recent tweets for %s: %w", authorID, err)
		}
		recentModels := make([]UserRecentTweetModel, 0, len(recent))
		for _, tweet := range recent {
			recentModels = append(recentModels, toUserRecentTweetModel(authorID, tweet))
		}
		if _, err := s.dbService.SaveUserRecentTweets(authorID, recentModels); err != nil {
			return usersUpdated, fmt.Errorf("failed to save recent tweets for %s: %w", authorID, err)
		}
		usersUpdated++
	}

	return usersUpdated, nil
}
