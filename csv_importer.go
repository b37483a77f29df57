package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type CSVImporter struct {
	dbService *DatabaseService
}

type CSVTweetData struct {
	TweetID        string
	Text           string
	AuthorID       string
	AuthorUsername string
	Date           string
	ReplyCount     int
	InReplyToID    string
}

func NewCSVImporter(dbService *DatabaseService) *CSVImporter {
	return &CSVImporter{
		dbService: dbService,
	}
}

// ImportCSV loads historical tweets from a CSV export. Rows whose ids
// already exist in the store are counted as duplicates and left
// untouched, matching the search ingestion dedup policy.
func (c *CSVImporter) ImportCSV(csvFilePath string) (*ImportResult, error) {
	if _, err := os.Stat(csvFilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("CSV file not found: %s", csvFilePath)
	}

	file, err := os.Open(csvFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	header := records[0]
	columnMap := c.mapColumns(header)

	if err := c.validateColumns(columnMap); err != nil {
		return nil, fmt.Errorf("CSV validation failed: %w", err)
	}

	result := &ImportResult{}
	tweets := []TweetModel{}
	seenUsers := map[string]bool{}

	for i, record := range records[1:] {
		if len(record) < len(header) {
			result.Skipped++
			continue
		}

		row := c.parseRow(record, columnMap)
		if row.TweetID == "" || row.AuthorID == "" {
			result.Skipped++
			continue
		}

		createdAt, err := c.parseDate(row.Date)
		if err != nil {
			fmt.Printf("Error parsing date %s: %v\n", row.Date, err)
			createdAt = time.Now()
		}

		tweetType := TWEET_TYPE_ORIGINAL
		if row.InReplyToID != "" {
			tweetType = TWEET_TYPE_REPLY
		}

		tweets = append(tweets, TweetModel{
			ID:         row.TweetID,
			Text:       row.Text,
			AuthorID:   row.AuthorID,
			CreatedAt:  createdAt,
			ReplyCount: row.ReplyCount,
			TweetType:  tweetType,
			Source:     TWEET_SOURCE_X,
			ScrapedAt:  time.Now(),
		})

		if !seenUsers[row.AuthorID] && !c.dbService.UserExists(row.AuthorID) {
			user := UserModel{
				ID:          row.AuthorID,
				Username:    row.AuthorUsername,
				DisplayName: row.AuthorUsername,
			}
			if _, err := c.dbService.SaveUser(user); err != nil {
				fmt.Printf("Error saving user %s: %v\n", row.AuthorUsername, err)
			}
		}
		seenUsers[row.AuthorID] = true

		if (i+1)%1000 == 0 {
			fmt.Printf("Parsed %d tweets...\n", i+1)
		}
	}

	fmt.Printf("Found %d tweets to import\n", len(tweets))

	batchSize := 500
	for start := 0; start < len(tweets); start += batchSize {
		end := start + batchSize
		if end > len(tweets) {
			end = len(tweets)
		}
		batch := tweets[start:end]

		saved, err := c.dbService.SaveManyTweets(batch)
		if err != nil {
			return nil, fmt.Errorf("failed to import batch at row %d: %w", start, err)
		}
		result.Imported += saved
		result.Duplicates += len(batch) - saved
	}

	return result, nil
}

func (c *CSVImporter) parseRow(record []string, columnMap map[string]int) CSVTweetData {
	row := CSVTweetData{
		TweetID:        strings.TrimSpace(record[columnMap["tweet_id"]]),
		Text:           record[columnMap["text"]],
		AuthorID:       strings.TrimSpace(record[columnMap["author_id"]]),
		AuthorUsername: strings.TrimSpace(record[columnMap["author_username"]]),
		Date:           strings.TrimSpace(record[columnMap["date"]]),
	}
	if idx, ok := columnMap["reply_count"]; ok {
		row.ReplyCount, _ = strconv.Atoi(record[idx])
	}
	if idx, ok := columnMap["reply_to_id"]; ok {
		row.InReplyToID = strings.TrimSpace(record[idx])
	}
	return row
}

func (c *CSVImporter) mapColumns(header []string) map[string]int {
	columnMap := make(map[string]int)

	for i, col := range header {
		col = strings.TrimSpace(col)
		switch col {
		case "tweet_id", "id":
			columnMap["tweet_id"] = i
		case "text", "content":
			columnMap["text"] = i
		case "author_id", "user_id":
			columnMap["author_id"] = i
		case "author_username", "username":
			columnMap["author_username"] = i
		case "date", "created_at":
			columnMap["date"] = i
		case "reply_count", "replies":
			columnMap["reply_count"] = i
		case "reply_to_id", "in_reply_to":
			columnMap["reply_to_id"] = i
		}
	}

	return columnMap
}

func (c *CSVImporter) validateColumns(columnMap map[string]int) error {
	required := []string{"tweet_id", "text", "author_id", "author_username", "date"}

	for _, field := range required {
		if _, exists := columnMap[field]; !exists {
			return fmt.Errorf("required column not found: %s", field)
		}
	}

	return nil
}

func (c *CSVImporter) parseDate(dateStr string) (time.Time, error) {
	formats := []string{
		"Mon Jan 02 15:04:05 -0700 2006", // Twitter format
		"2006-01-02 15:04:05",            // SQL format
		"2006-01-02T15:04:05Z",           // ISO format
		"2006-01-02",                     // Date only
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

type ImportResult struct {
	Imported   int
	Duplicates int
	Skipped    int
}

func (r *ImportResult) String() string {
	return fmt.Sprintf("Import Result:\n  Imported: %d\n  Duplicates: %d\n  Skipped rows: %d",
		r.Imported, r.Duplicates, r.Skipped)
}
