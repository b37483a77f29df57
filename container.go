package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/grutapig/xscraper/twitterapi"
	"go.uber.org/dig"
)

type Config struct {
	TwitterAPIKey         string
	TwitterAPIBaseURL     string
	ProxyDSN              string
	DatabaseName          string
	ExecutionLogDBPath    string
	TelegramAPIKey        string
	TelegramAdminChatID   int64
	ListenAddr            string
	SchedulerPollInterval time.Duration
	SchedulerDisabled     bool
	ImportCSVPath         string
}

func ProvideConfig() (*Config, error) {
	apiKey := os.Getenv(ENV_TWITTER_API_KEY)
	if apiKey == "" {
		return nil, fmt.Errorf("twitter api key should be set .env: %s", ENV_TWITTER_API_KEY)
	}

	baseURL := os.Getenv(ENV_TWITTER_API_BASE_URL)
	if baseURL == "" {
		return nil, fmt.Errorf("twitter api base url should be set .env: %s", ENV_TWITTER_API_BASE_URL)
	}

	dbName := os.Getenv(ENV_DATABASE_NAME)
	if dbName == "" {
		dbName = "scraper.db"
	}

	executionLogDBPath := os.Getenv(ENV_EXECUTION_LOG_DB_PATH)
	if executionLogDBPath == "" {
		executionLogDBPath = "execution_logs.db"
	}

	listenAddr := os.Getenv(ENV_HTTP_LISTEN_ADDR)
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	pollInterval := time.Minute
	if raw := os.Getenv(ENV_SCHEDULER_POLL_INTERVAL); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", ENV_SCHEDULER_POLL_INTERVAL, raw, err)
		}
		pollInterval = parsed
	}

	var adminChatID int64
	if raw := os.Getenv(ENV_TELEGRAM_ADMIN_CHAT_ID); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", ENV_TELEGRAM_ADMIN_CHAT_ID, raw, err)
		}
		adminChatID = parsed
	}

	return &Config{
		TwitterAPIKey:         apiKey,
		TwitterAPIBaseURL:     baseURL,
		ProxyDSN:              os.Getenv(ENV_PROXY_DSN),
		DatabaseName:          dbName,
		ExecutionLogDBPath:    executionLogDBPath,
		TelegramAPIKey:        os.Getenv(ENV_TELEGRAM_API_KEY),
		TelegramAdminChatID:   adminChatID,
		ListenAddr:            listenAddr,
		SchedulerPollInterval: pollInterval,
		SchedulerDisabled:     os.Getenv(ENV_SCHEDULER_DISABLED) == "true",
		ImportCSVPath:         os.Getenv(ENV_IMPORT_CSV_PATH),
	}, nil
}

func ProvideTwitterAPI(config *Config) *twitterapi.TwitterAPIService {
	return twitterapi.NewTwitterAPIService(config.TwitterAPIKey, config.TwitterAPIBaseURL, config.ProxyDSN)
}

func ProvideDatabaseService(config *Config) (*DatabaseService, error) {
	return NewDatabaseService(config.DatabaseName)
}

func ProvideExecutionLogService(config *Config) (*ExecutionLogService, error) {
	return NewExecutionLogService(config.ExecutionLogDBPath)
}

func ProvideNotificationService(config *Config) (*NotificationService, error) {
	return NewNotificationService(config.TelegramAPIKey, config.TelegramAdminChatID)
}

func ProvideExecutorService(twitterapiService *twitterapi.TwitterAPIService, dbService *DatabaseService) *QueryExecutorService {
	return NewQueryExecutorService(twitterapiService, dbService)
}

func ProvideSchedulerService(config *Config, dbService *DatabaseService, executor *QueryExecutorService, executionLogService *ExecutionLogService, notificationService *NotificationService) *SchedulerService {
	return NewSchedulerService(dbService, executor, executionLogService, notificationService, config.SchedulerPollInterval)
}

func ProvideCleanupScheduler(executionLogService *ExecutionLogService) *CleanupScheduler {
	return NewCleanupScheduler(executionLogService)
}

func ProvideApiServer(config *Config, dbService *DatabaseService, executor *QueryExecutorService, executionLogService *ExecutionLogService) *ApiServer {
	return NewApiServer(dbService, executor, executionLogService, config.ListenAddr)
}

func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(ProvideConfig); err != nil {
		return nil, fmt.Errorf("failed to provide config: %w", err)
	}

	if err := container.Provide(ProvideTwitterAPI); err != nil {
		return nil, fmt.Errorf("failed to provide Twitter API: %w", err)
	}

	if err := container.Provide(ProvideDatabaseService); err != nil {
		return nil, fmt.Errorf("failed to provide database service: %w", err)
	}

	if err := container.Provide(ProvideExecutionLogService); err != nil {
		return nil, fmt.Errorf("failed to provide execution log service: %w", err)
	}

	if err := container.Provide(ProvideNotificationService); err != nil {
		return nil, fmt.Errorf("failed to provide notification service: %w", err)
	}

	if err := container.Provide(ProvideExecutorService); err != nil {
		return nil, fmt.Errorf("failed to provide executor service: %w", err)
	}

	if err := container.Provide(ProvideSchedulerService); err != nil {
		return nil, fmt.Errorf("failed to provide scheduler service: %w", err)
	}

	if err := container.Provide(ProvideCleanupScheduler); err != nil {
		return nil, fmt.Errorf("failed to provide cleanup scheduler: %w", err)
	}

	if err := container.Provide(ProvideApiServer); err != nil {
		return nil, fmt.Errorf("failed to provide api server: %w", err)
	}

	if err := container.Provide(NewApplication); err != nil {
		return nil, fmt.Errorf("failed to provide application: %w", err)
	}

	return container, nil
}
